package studyset

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed samples/*.json
var sampleFS embed.FS

// Samples returns the bundled example study sets, sorted by file name.
// Each call returns fresh copies without ids.
func Samples() ([]*StudySet, error) {
	names, err := fs.Glob(sampleFS, "samples/*.json")
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	sort.Strings(names)

	sets := make([]*StudySet, 0, len(names))
	for _, name := range names {
		data, err := sampleFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", name, err)
		}
		set, err := Import(data)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", name, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}
