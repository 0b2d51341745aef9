package studyset

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fileNameStrip  = regexp.MustCompile(`(?i)[^a-z0-9\s-]`)
	fileNameSpaces = regexp.MustCompile(`\s+`)
)

// Export serializes s as indented JSON. Unless withProgress is set, every
// question is written as unanswered.
func Export(s *StudySet, withProgress bool) ([]byte, error) {
	out := s.Clone()
	if !withProgress {
		ResetProgress(out)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export study set: %w", err)
	}
	return data, nil
}

// ExportFileName derives a file-system friendly name from the title, e.g.
// "Algebra: Basics!" becomes "algebra-basics-fresh.json".
func ExportFileName(title string, withProgress bool) string {
	name := fileNameStrip.ReplaceAllString(title, "")
	name = fileNameSpaces.ReplaceAllString(name, "-")
	name = strings.ToLower(name)

	suffix := "fresh"
	if withProgress {
		suffix = "with-progress"
	}
	return fmt.Sprintf("%s-%s.json", name, suffix)
}

// Template serializes the content of s for use as an editing base: the id,
// timestamps, pin flag and progress are left out.
func Template(s *StudySet) ([]byte, error) {
	out := s.Clone()
	ResetProgress(out)
	out.ID = ""
	out.CreatedAt, out.LastAccessed = 0, 0
	out.IsPinned = false
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize study set template: %w", err)
	}
	return data, nil
}
