package manifest

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/starford/quire/internal/models"
)

var now = time.Unix(1_700_000_000, 0).UTC()

func TestBuild_SelectedFilesSorted(t *testing.T) {
	w := models.NewWork("Manifest", models.TemplateStandard, now)
	w.UpdateDocumentByFileName("content.md", "body", now)
	w.UpdateDocumentByFileName("outline.md", "outline", now)

	m, err := Build(w, []string{"outline.md", "content.md"}, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("version = %d, want 1", m.Version)
	}
	if !m.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", m.CreatedAt, now)
	}
	want := []File{{FileName: "content.md", Text: "body"}, {FileName: "outline.md", Text: "outline"}}
	if !reflect.DeepEqual(m.Files, want) {
		t.Errorf("files = %+v, want %+v", m.Files, want)
	}
}

func TestBuild_DuplicateNamesCollapse(t *testing.T) {
	w := models.NewWork("Dups", models.TemplateMinimal, now)
	m, err := Build(w, []string{"content.md", "content.md"}, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Files) != 1 {
		t.Errorf("files = %+v", m.Files)
	}
}

func TestBuild_EmptySelection(t *testing.T) {
	w := models.NewWork("Empty", models.TemplateStandard, now)
	_, err := Build(w, nil, now)
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("err = %v, want ErrEmptySelection", err)
	}
}

func TestBuild_UnresolvedIsAllOrNothing(t *testing.T) {
	w := models.NewWork("Unknown", models.TemplateStandard, now)
	m, err := Build(w, []string{"content.md", "unknown.md"}, now)

	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("err = %v, want *UnresolvedError", err)
	}
	if !reflect.DeepEqual(unresolved.FileNames, []string{"unknown.md"}) {
		t.Errorf("unresolved = %v, want [unknown.md]", unresolved.FileNames)
	}
	if !errors.Is(err, ErrUnresolvedFileNames) {
		t.Error("errors.Is(err, ErrUnresolvedFileNames) = false")
	}
	if len(m.Files) != 0 || m.Version != 0 {
		t.Errorf("partial manifest returned: %+v", m)
	}
}

func TestBuild_ReportsEveryUnresolvedName(t *testing.T) {
	w := models.NewWork("Minimal", models.TemplateMinimal, now)
	_, err := Build(w, []string{"plot.md", "content.md", "zzz.md", "info.md"}, now)

	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("err = %v", err)
	}
	want := []string{"info.md", "plot.md", "zzz.md"}
	if !reflect.DeepEqual(unresolved.FileNames, want) {
		t.Errorf("unresolved = %v, want %v", unresolved.FileNames, want)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []Manifest{
		{
			Version:   1,
			CreatedAt: time.Unix(1_700_000_100, 0).UTC(),
			Files: []File{
				{FileName: "content.md", Text: "本文"},
				{FileName: "plot.md", Text: "plot <b>&</b>\n\"quoted\"\n"},
			},
		},
		{Version: 1, CreatedAt: time.Unix(0, 123456789).UTC(), Files: []File{}},
		{Version: 1, CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 6, time.FixedZone("JST", 9*3600)), Files: []File{{FileName: "info.md"}}},
	}
	for _, m := range cases {
		payload, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(payload)
		if err != nil {
			t.Fatalf("Decode(%q): %v", payload, err)
		}
		if !got.Equal(m) {
			t.Errorf("round trip = %+v, want %+v", got, m)
		}
	}
}

func TestEncode_RejectsWhatDecodeCannotRestore(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
		want error
	}{
		{"invalid text", Manifest{Version: 1, CreatedAt: now, Files: []File{{FileName: "content.md", Text: "a\xffb"}}}, ErrInvalidUTF8},
		{"invalid file name", Manifest{Version: 1, CreatedAt: now, Files: []File{{FileName: "plot\xfe.md", Text: "ok"}}}, ErrInvalidUTF8},
		{"year above 9999", Manifest{Version: 1, CreatedAt: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), Files: []File{}}, ErrTimeOutOfRange},
		{"negative year", Manifest{Version: 1, CreatedAt: time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC), Files: []File{}}, ErrTimeOutOfRange},
	}
	for _, tt := range tests {
		payload, err := Encode(tt.m)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: Encode = %q, %v; want %v", tt.name, payload, err, tt.want)
			continue
		}
		if payload != "" {
			t.Errorf("%s: payload = %q, want empty", tt.name, payload)
		}
		if !strings.HasPrefix(err.Error(), "manifest: encode: ") {
			t.Errorf("%s: err = %q", tt.name, err)
		}
	}

	edge := Manifest{Version: 1, CreatedAt: time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), Files: []File{{FileName: "content.md", Text: "\u00e9"}}}
	payload, err := Encode(edge)
	if err != nil {
		t.Fatalf("Encode(year 9999): %v", err)
	}
	if got, err := Decode(payload); err != nil || !got.Equal(edge) {
		t.Errorf("round trip = %+v, %v", got, err)
	}
}

func TestManifest_JSONTags(t *testing.T) {
	out, err := json.Marshal(Manifest{Version: 1, CreatedAt: now, Files: []File{}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"version":1,"createdAt":"2023-11-14T22:13:20Z","files":[]}`
	if string(out) != want {
		t.Errorf("json = %s, want %s", out, want)
	}
}

func TestEncode_IsDeterministic(t *testing.T) {
	m := Manifest{Version: 1, CreatedAt: now, Files: []File{{FileName: "content.md", Text: "a<b"}}}
	first, _ := Encode(m)
	second, _ := Encode(m)
	if first != second {
		t.Fatalf("encodings differ:\n%s\n%s", first, second)
	}
	want := `{"version":1,"createdAt":"2023-11-14T22:13:20Z","files":[{"fileName":"content.md","text":"a<b"}]}`
	if first != want {
		t.Errorf("payload = %s, want %s", first, want)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed":   `{"version":1,`,
		"version":     `{"version":2,"createdAt":"2023-11-14T22:13:20Z","files":[]}`,
		"timestamp":   `{"version":1,"createdAt":"yesterday","files":[]}`,
		"empty":       ``,
		"placeholder": `{}`,
	}
	for name, payload := range cases {
		if _, err := Decode(payload); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "manifest:") {
			t.Errorf("%s: error %q lacks package prefix", name, err)
		}
	}
}

func TestTexts(t *testing.T) {
	m := Manifest{Files: []File{{FileName: "a.md", Text: "A"}, {FileName: "b.md", Text: "B"}}}
	if got := m.Texts(); got["a.md"] != "A" || got["b.md"] != "B" || len(got) != 2 {
		t.Errorf("Texts = %v", got)
	}
}
