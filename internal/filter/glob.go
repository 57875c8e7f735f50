package filter

import (
	"fmt"
	"path"
	"strings"
)

// glob is an rsync-style pattern split into slash-separated segments.
// Each segment is matched with path.Match; a "**" segment spans any
// number of path segments, including none.
type glob struct {
	original string
	segments []string
	anchored bool // leading "/" or an inner "/" pins the match to the root
	dirOnly  bool // trailing "/" matches directories only
}

func compileGlob(pattern string) (*glob, error) {
	g := &glob{original: pattern}

	p := pattern
	if strings.HasSuffix(p, "/") {
		g.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}
	if strings.HasPrefix(p, "/") {
		g.anchored = true
		p = strings.TrimPrefix(p, "/")
	} else if strings.Contains(p, "/") {
		g.anchored = true
	}
	if p == "" {
		return nil, fmt.Errorf("empty pattern %q", pattern)
	}

	for _, seg := range strings.Split(p, "/") {
		// rsync negates classes with "[!", path.Match with "[^".
		seg = strings.ReplaceAll(seg, "[!", "[^")
		if seg != "**" {
			if _, err := path.Match(seg, ""); err != nil {
				return nil, fmt.Errorf("pattern %q: %w", pattern, err)
			}
		}
		g.segments = append(g.segments, seg)
	}
	return g, nil
}

func (g *glob) match(relPath string, isDir bool) bool {
	if g.dirOnly && !isDir {
		return false
	}
	parts := strings.Split(strings.Trim(relPath, "/"), "/")
	if g.anchored {
		return matchSegments(g.segments, parts)
	}
	for i := range parts {
		if matchSegments(g.segments, parts[i:]) {
			return true
		}
	}
	return false
}

func matchSegments(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			for i := 0; i <= len(name); i++ {
				if matchSegments(pat[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], name[0]); !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}
