// Package filter decides which sampled entries are eligible for copying.
//
// Rules follow rsync conventions: an ordered list of include and exclude
// glob patterns where the first matching rule wins, plus optional size
// bounds that apply to regular files only.
package filter

// rule is a single include or exclude pattern.
type rule struct {
	glob    *glob
	include bool
}

// Chain holds an ordered list of filter rules plus size bounds.
// A nil *Chain matches everything.
type Chain struct {
	rules   []rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	g, err := compileGlob(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, rule{glob: g, include: include})
	return nil
}

// SetMinSize excludes regular files smaller than n bytes. Zero disables.
func (c *Chain) SetMinSize(n int64) { c.minSize = n }

// SetMaxSize excludes regular files larger than n bytes. Zero disables.
func (c *Chain) SetMaxSize(n int64) { c.maxSize = n }

// Empty reports whether the chain has no rules and no size bounds.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Match reports whether the entry should be kept. relPath uses forward
// slashes and is relative to the walk root; size is ignored for directories.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}
	for _, r := range c.rules {
		if r.glob.match(relPath, isDir) {
			return r.include
		}
	}
	return true
}
