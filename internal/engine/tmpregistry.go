package engine

import (
	"os"
	"sync"
)

// tmpRegistry tracks staged copies that have not been renamed into place so
// that an interrupted run can remove them.
type tmpRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (r *tmpRegistry) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paths == nil {
		r.paths = make(map[string]struct{})
	}
	r.paths[path] = struct{}{}
}

func (r *tmpRegistry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

// cleanup removes every registered file and empties the registry.
func (r *tmpRegistry) cleanup() int {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	for p := range paths {
		_ = os.Remove(p)
	}
	return len(paths)
}
