package index

import (
	"sort"
	"strings"
)

// Match is one line of a document containing the searched pattern.
type Match struct {
	Line   int    // 1-based line number
	Column int    // 1-based byte column of the first occurrence on the line
	Text   string // the full line
}

// Text is a case-insensitive full-text index over one document.
type Text struct {
	doc    string
	folded string
	sa     []int
	starts []int // byte offset of each line start
}

// NewText indexes doc. Construction is O(n log² n) by prefix doubling.
func NewText(doc string) *Text {
	t := &Text{doc: doc, folded: foldASCII(doc), starts: []int{0}}
	for i := 0; i < len(doc); i++ {
		if doc[i] == '\n' {
			t.starts = append(t.starts, i+1)
		}
	}
	t.sa = buildSuffixArray(t.folded)
	return t
}

// Count returns the number of occurrences of pattern.
func (t *Text) Count(pattern string) int {
	return len(t.positions(pattern))
}

// Search returns the lines containing pattern, in document order.
func (t *Text) Search(pattern string) []Match {
	var out []Match
	last := -1
	for _, pos := range t.positions(pattern) {
		line := sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > pos }) - 1
		if line == last {
			continue
		}
		last = line
		start := t.starts[line]
		end := len(t.doc)
		if line+1 < len(t.starts) {
			end = t.starts[line+1] - 1
		}
		out = append(out, Match{
			Line:   line + 1,
			Column: pos - start + 1,
			Text:   strings.TrimRight(t.doc[start:end], "\r"),
		})
	}
	return out
}

// positions returns the sorted start offsets of pattern.
func (t *Text) positions(pattern string) []int {
	p := foldASCII(pattern)
	n, m := len(t.sa), len(p)
	if m == 0 || n == 0 {
		return nil
	}
	prefix := func(i int) string {
		pos := t.sa[i]
		end := pos + m
		if end > len(t.folded) {
			end = len(t.folded)
		}
		return t.folded[pos:end]
	}
	left := sort.Search(n, func(i int) bool { return prefix(i) >= p })
	right := sort.Search(n, func(i int) bool { return prefix(i) > p })

	out := make([]int, 0, right-left)
	for i := left; i < right; i++ {
		out = append(out, t.sa[i])
	}
	sort.Ints(out)
	return out
}

// buildSuffixArray sorts the suffixes of s by prefix doubling.
func buildSuffixArray(s string) []int {
	n := len(s)
	sa := make([]int, n)
	if n == 0 {
		return sa
	}
	rank := make([]int, n)
	tmp := make([]int, n)
	for i := range sa {
		sa[i] = i
		rank[i] = int(s[i])
	}

	second := func(i, k int) int {
		if i+k < n {
			return rank[i+k]
		}
		return -1
	}
	for k := 1; ; k *= 2 {
		sort.Slice(sa, func(a, b int) bool {
			x, y := sa[a], sa[b]
			if rank[x] != rank[y] {
				return rank[x] < rank[y]
			}
			return second(x, k) < second(y, k)
		})
		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			tmp[cur] = tmp[prev]
			if rank[prev] != rank[cur] || second(prev, k) != second(cur, k) {
				tmp[cur]++
			}
		}
		copy(rank, tmp)
		if rank[sa[n-1]] == n-1 || k >= n {
			break
		}
	}
	return sa
}

// foldASCII lower-cases ASCII letters only, keeping byte offsets stable.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
