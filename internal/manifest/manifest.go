// Package manifest handles the newline-delimited bitcode path lists embedded
// in compiled objects, and the directory grouping used when rebuilding
// archives.
package manifest

import (
	"path/filepath"
	"strings"
)

// Parse splits raw section text into the ordered list of bitcode paths.
// Empty entries (consecutive or trailing newlines) are discarded.
func Parse(content string) []string {
	var paths []string
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// DirGroups partitions bitcode paths by containing directory, preserving
// first-seen order of both directories and filenames. The archiver has to be
// invoked from inside each directory so only base filenames end up in the
// resulting archive, so duplicates are dropped here as well.
type DirGroups struct {
	order  []string
	groups map[string][]string
	seen   map[string]struct{}
}

// NewDirGroups returns an empty DirGroups.
func NewDirGroups() *DirGroups {
	return &DirGroups{
		groups: make(map[string][]string),
		seen:   make(map[string]struct{}),
	}
}

// Add records one bitcode path under its directory. Re-adding a path is a
// no-op.
func (g *DirGroups) Add(path string) {
	if _, dup := g.seen[path]; dup {
		return
	}
	g.seen[path] = struct{}{}

	dir := filepath.Dir(path)
	if _, ok := g.groups[dir]; !ok {
		g.order = append(g.order, dir)
	}
	g.groups[dir] = append(g.groups[dir], filepath.Base(path))
}

// Dirs returns the directories in first-seen order.
func (g *DirGroups) Dirs() []string { return g.order }

// Files returns the ordered base filenames recorded under dir.
func (g *DirGroups) Files(dir string) []string { return g.groups[dir] }

// Len reports the number of directory groups.
func (g *DirGroups) Len() int { return len(g.order) }
