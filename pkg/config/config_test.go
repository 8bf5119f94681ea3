package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestExpand(t *testing.T) {
	t.Setenv("QUIRE_SET", "value")
	t.Setenv("QUIRE_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"$QUIRE_SET", "value"},
		{"${QUIRE_SET}", "value"},
		{"${QUIRE_SET:-other}", "value"},
		{"${QUIRE_EMPTY:-fallback}", "fallback"},
		{"${QUIRE_UNSET_VAR:-fallback}", "fallback"},
		{"${QUIRE_UNSET_VAR}", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	t.Setenv("QUIRE_TEST_NAME", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("name: ${QUIRE_TEST_NAME}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := sample{Port: 8080}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_ = os.WriteFile(path, []byte("port: 0\n"), 0o644)
	if err := Load(path, &sample{}); err == nil {
		t.Error("expected validation error")
	}

	_ = os.WriteFile(path, []byte("port: [\n"), 0o644)
	if err := Load(path, &sample{Port: 1}); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	cfg := sample{Port: 9000}
	if err := LoadWithDefaults(missing, "", &cfg); err != nil {
		t.Fatalf("missing file with valid defaults: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d", cfg.Port)
	}

	if err := LoadWithDefaults(missing, "", &sample{}); err == nil {
		t.Error("expected invalid defaults to fail")
	}

	fallback := filepath.Join(t.TempDir(), "fallback.yaml")
	_ = os.WriteFile(fallback, []byte("port: 7000\n"), 0o644)
	cfg = sample{}
	if err := LoadWithDefaults(missing, fallback, &cfg); err != nil || cfg.Port != 7000 {
		t.Errorf("fallback: cfg=%+v err=%v", cfg, err)
	}
}
