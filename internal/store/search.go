package store

import (
	"strings"
	"unicode/utf8"
)

// SearchHit is one document matching a search query.
type SearchHit struct {
	WorkID    string `json:"work_id"`
	WorkTitle string `json:"work_title"`
	FileName  string `json:"file_name"`
	Snippet   string `json:"snippet"`
}

const (
	defaultSearchLimit = 20
	snippetRadius      = 60
)

func searchLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultSearchLimit
	}
	return limit
}

// snippet cuts a window of text around the first case-insensitive match of
// query, marking the match with <b></b>. Without a match it returns the head
// of text.
func snippet(text, query string) string {
	lower, q := strings.ToLower(text), strings.ToLower(query)
	i := strings.Index(lower, q)
	if q == "" || i < 0 || len(lower) != len(text) {
		return clip(text, 0, 2*snippetRadius)
	}
	start := max(i-snippetRadius, 0)
	end := min(i+len(q)+snippetRadius, len(text))
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(text[start:i])
	b.WriteString("<b>")
	b.WriteString(text[i : i+len(q)])
	b.WriteString("</b>")
	b.WriteString(text[i+len(q) : end])
	if end < len(text) {
		b.WriteString("...")
	}
	return b.String()
}

// clip returns at most n bytes of text starting at from, cut on a rune boundary.
func clip(text string, from, n int) string {
	end := min(from+n, len(text))
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	out := text[from:end]
	if end < len(text) {
		out += "..."
	}
	return out
}

// escapeLike escapes the LIKE wildcards of s for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
