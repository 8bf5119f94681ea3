package mcpserver

// ManifestFormatContract describes what a snapshot captures and how its
// payload is encoded, for LLM consumers that stage snapshots.
const ManifestFormatContract = `# Quire Snapshot Manifest Format

A snapshot freezes the full text of the files selected when it was saved.
Its payload is a manifest: compact UTF-8 JSON with a fixed key order.

## Structure

` + "```" + `json
{"version":1,"createdAt":"2025-01-20T09:30:00.5Z","files":[{"fileName":"content.md","text":"# Chapter 1\n..."}]}
` + "```" + `

## Rules

1. **version** is always 1.
2. **createdAt** is RFC 3339 with fractional seconds, in UTC.
3. **files** holds one entry per selected file, sorted by ` + "`" + `fileName` + "`" + `, without duplicates.
4. **text** is the full text of the file at save time. There is no delta encoding.
5. A snapshot is all-or-nothing: if any selected name does not resolve to a
   document of the work, nothing is saved and every unresolved name is reported.
6. An empty selection is rejected.

## File names

Each work has at most these document files:

- ` + "`" + `content.md` + "`" + ` the manuscript
- ` + "`" + `outline.md` + "`" + ` the outline
- ` + "`" + `plot.md` + "`" + ` plot notes
- ` + "`" + `characters.md` + "`" + ` character sheets
- ` + "`" + `info.md` + "`" + ` work metadata

Names are matched case-insensitively, with or without the ` + "`" + `.md` + "`" + ` suffix.

## Baseline

` + "`" + `review_changes` + "`" + ` compares each file with its text in the newest snapshot that
contains it. A file that no snapshot contains is compared with empty text, so
all of its lines show as added.
`
