package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-tree ignore file read from the walk root.
const IgnoreFileName = ".wallsortignore"

// defaultIgnorePatterns are always applied regardless of config or the ignore file.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignoreRule is one parsed line of an ignore list.
type ignoreRule struct {
	glob     string
	anchored bool // matched against the whole relative path instead of the base name
	dirOnly  bool // trailing '/': directories only
	negate   bool // leading '!': re-include what an earlier rule ignored
}

// IgnoreMatcher decides which walked paths are pruned. The syntax is a small
// subset of gitignore:
//
//	Thumbs.db     base name at any depth
//	exports/*.png path relative to the walk root ('/' anywhere but the end)
//	/cover.jpg    leading '/' anchors a plain name to the root
//	@eaDir/       trailing '/' only matches directories
//	!keep.png     re-include; the last matching rule wins
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses raw pattern strings. Blank lines, '#' comments and
// malformed globs are dropped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range rawPatterns {
		if r, ok := parseIgnoreRule(raw); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

func parseIgnoreRule(raw string) (ignoreRule, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var r ignoreRule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negate = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		r.anchored = true
		line = rest
	}
	if strings.Contains(line, "/") {
		r.anchored = true
	}
	if line == "" {
		return ignoreRule{}, false
	}
	if _, err := path.Match(line, ""); err != nil {
		return ignoreRule{}, false
	}
	r.glob = line
	return r, true
}

// Match reports whether relativePath, relative to the walk root, is ignored.
// dir tells whether the path is a directory; directory-only rules skip files.
func (m *IgnoreMatcher) Match(relativePath string, dir bool) bool {
	rel := filepath.ToSlash(relativePath)
	base := path.Base(rel)

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !dir {
			continue
		}
		subject := base
		if r.anchored {
			subject = rel
		}
		if ok, _ := path.Match(r.glob, subject); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns its raw lines.
// A missing file yields nil and no error.
func ParseIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
