package changes

import "sort"

// Selection is the staging state of a review session: the changed files, the
// names selected for the next snapshot and the file whose diff is open.
//
// Selection is a value; every transition returns a new Selection and leaves
// the receiver untouched. Selected names are always a subset of Files, and
// the open diff, if any, always names one of Files.
type Selection struct {
	files    []FileSummary
	index    map[string]int
	selected map[string]struct{}
	diff     string
}

// NewSelection keeps the changed files and selects all of them.
func NewSelection(summaries []FileSummary) Selection {
	s := newSelection(summaries)
	for name := range s.index {
		s.selected[name] = struct{}{}
	}
	return s
}

// NewSelectionFrom keeps the changed files and selects the names in initial
// that are still selectable. Stale names are dropped silently.
func NewSelectionFrom(summaries []FileSummary, initial []string) Selection {
	s := newSelection(summaries)
	for _, name := range initial {
		if _, ok := s.index[name]; ok {
			s.selected[name] = struct{}{}
		}
	}
	return s
}

func newSelection(summaries []FileSummary) Selection {
	s := Selection{
		index:    make(map[string]int),
		selected: make(map[string]struct{}),
	}
	for _, f := range summaries {
		if !f.Changed() {
			continue
		}
		if _, dup := s.index[f.FileName]; dup {
			continue
		}
		s.index[f.FileName] = len(s.files)
		s.files = append(s.files, f)
	}
	return s
}

func (s Selection) withSelected(selected map[string]struct{}) Selection {
	s.selected = selected
	return s
}

// Files returns the selectable files in review order.
func (s Selection) Files() []FileSummary {
	return append([]FileSummary(nil), s.files...)
}

// Selected returns the selected file names, sorted.
func (s Selection) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for name := range s.selected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports whether name is staged.
func (s Selection) IsSelected(name string) bool {
	_, ok := s.selected[name]
	return ok
}

// CanSave reports whether at least one selectable file is staged.
func (s Selection) CanSave() bool {
	for name := range s.selected {
		if _, ok := s.index[name]; ok {
			return true
		}
	}
	return false
}

// DiffFile returns the summary of the file whose diff is open.
func (s Selection) DiffFile() (FileSummary, bool) {
	if s.diff == "" {
		return FileSummary{}, false
	}
	i, ok := s.index[s.diff]
	if !ok {
		return FileSummary{}, false
	}
	return s.files[i], true
}

// SelectAll stages every selectable file.
func (s Selection) SelectAll() Selection {
	selected := make(map[string]struct{}, len(s.index))
	for name := range s.index {
		selected[name] = struct{}{}
	}
	return s.withSelected(selected)
}

// ClearAll unstages everything.
func (s Selection) ClearAll() Selection {
	return s.withSelected(make(map[string]struct{}))
}

// Toggle flips the staging of name. Names that are not selectable are ignored.
func (s Selection) Toggle(name string) Selection {
	if _, ok := s.index[name]; !ok {
		return s
	}
	selected := make(map[string]struct{}, len(s.selected)+1)
	for n := range s.selected {
		selected[n] = struct{}{}
	}
	if _, on := selected[name]; on {
		delete(selected, name)
	} else {
		selected[name] = struct{}{}
	}
	return s.withSelected(selected)
}

// OpenDiff opens the diff of name. Names not in Files are ignored.
func (s Selection) OpenDiff(name string) Selection {
	if _, ok := s.index[name]; !ok {
		return s
	}
	s.diff = name
	return s
}

// CloseDiff closes the open diff.
func (s Selection) CloseDiff() Selection {
	s.diff = ""
	return s
}
