package grader

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const datasetExtension = ".sql"

// AllDatasets looks up the names of all available datasets (.sql files)
// under dir, extension stripped.
func AllDatasets(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), datasetExtension) {
			return nil
		}
		names = append(names, strings.TrimSuffix(d.Name(), datasetExtension))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
