// Package index resolves user-typed file names and searches transcript text.
//
// Information Hiding:
// - Listings are held in a radix tree keyed by path and by lower-cased name
// - Transcript search runs on a suffix array; callers see line matches only
package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/armon/go-radix"

	"github.com/richinex/studio/model"
)

// ErrNotFound is returned when no file matches a query.
var ErrNotFound = errors.New("no matching file")

// AmbiguousError is returned when a prefix matches more than one file.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous: %s", e.Query, strings.Join(e.Candidates, ", "))
}

// Names indexes a file listing for lookup by path, name or name prefix.
//
// Lookup is O(k) in the query length for exact hits and O(k + m) for
// prefix hits with m candidates.
type Names struct {
	paths *radix.Tree
	names *radix.Tree
	size  int
}

// NewNames builds an index over files. Later entries with the same path
// replace earlier ones.
func NewNames(files []model.FileInfo) *Names {
	n := &Names{paths: radix.New(), names: radix.New()}
	for _, f := range files {
		n.Insert(f)
	}
	return n
}

// Insert adds or replaces a file.
func (n *Names) Insert(f model.FileInfo) {
	if _, updated := n.paths.Insert(f.Path, f); !updated {
		n.size++
	}
	key := nameKey(f)
	var paths []string
	if v, ok := n.names.Get(key); ok {
		paths = v.([]string)
	}
	for _, p := range paths {
		if p == f.Path {
			return
		}
	}
	n.names.Insert(key, append(paths, f.Path))
}

// Len returns the number of indexed files.
func (n *Names) Len() int {
	return n.size
}

// Resolve finds the file a query refers to: an exact path, an exact
// (case-insensitive) name, or a unique name prefix.
func (n *Names) Resolve(query string) (model.FileInfo, error) {
	if v, ok := n.paths.Get(query); ok {
		return v.(model.FileInfo), nil
	}

	q := strings.ToLower(query)
	if v, ok := n.names.Get(q); ok {
		return n.pick(query, v.([]string))
	}

	var candidates []string
	n.names.WalkPrefix(q, func(_ string, v interface{}) bool {
		candidates = append(candidates, v.([]string)...)
		return false
	})
	if len(candidates) == 0 {
		return model.FileInfo{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return n.pick(query, candidates)
}

func (n *Names) pick(query string, paths []string) (model.FileInfo, error) {
	if len(paths) > 1 {
		sorted := append([]string(nil), paths...)
		sort.Strings(sorted)
		return model.FileInfo{}, &AmbiguousError{Query: query, Candidates: sorted}
	}
	v, _ := n.paths.Get(paths[0])
	return v.(model.FileInfo), nil
}

// Complete returns the names starting with prefix, sorted.
func (n *Names) Complete(prefix string) []string {
	var out []string
	n.paths.Walk(func(_ string, v interface{}) bool {
		f := v.(model.FileInfo)
		if strings.HasPrefix(nameKey(f), strings.ToLower(prefix)) {
			out = append(out, displayName(f))
		}
		return false
	})
	sort.Strings(out)
	return out
}

func displayName(f model.FileInfo) string {
	if f.Name != "" {
		return f.Name
	}
	return f.Artifact().Filename
}

func nameKey(f model.FileInfo) string {
	return strings.ToLower(displayName(f))
}
