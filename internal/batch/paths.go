package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/edgefinder/internal/imaging"
)

// ExpandPaths replaces every directory in args with the image files it
// directly contains, sorted by name. Other arguments, including remote
// URLs and paths that do not exist, pass through unchanged so the failure
// is reported on that image.
func ExpandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !isDir(arg) {
			out = append(out, arg)
			continue
		}
		files, err := expandDirectory(arg)
		if err != nil {
			return nil, fmt.Errorf("list directory %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return out, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func expandDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if imaging.IsImagePath(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
