package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"semtiles/internal/domain"
)

// Discoverer finds documents under a root using include/exclude globs.
type Discoverer struct {
	includes []string
	excludes []string
}

func NewDiscoverer(includes, excludes []string) *Discoverer {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Discoverer{
		includes: includes,
		excludes: excludes,
	}
}

// Walk returns matching file paths relative to root, in lexical order.
func (d *Discoverer) Walk(root string) ([]string, error) {
	var files []string

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && d.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldInclude(relPath) && !d.shouldExclude(relPath) {
			files = append(files, relPath)
		}
		return nil
	})

	return files, err
}

// Items turns every discovered document into a document-backed item. The id
// and document path are the path relative to root; the name is the file name
// without its extension.
func (d *Discoverer) Items(root string) ([]domain.Item, error) {
	files, err := d.Walk(root)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(files))
	for _, rel := range files {
		base := filepath.Base(rel)
		items = append(items, domain.Item{
			ID:           rel,
			Name:         strings.TrimSuffix(base, filepath.Ext(base)),
			DocumentPath: rel,
		})
	}
	return items, nil
}

func (d *Discoverer) shouldInclude(path string) bool {
	for _, pattern := range d.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (d *Discoverer) shouldExclude(path string) bool {
	for _, pattern := range d.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
