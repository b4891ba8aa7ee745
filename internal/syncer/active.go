package syncer

import "sync"

// Active tracks the document currently under the user's attention. The
// host sets it on focus changes; the controller moves it along when it
// renames the focused note.
type Active struct {
	mu   sync.RWMutex
	path string
}

// Get returns the active document path, if any.
func (a *Active) Get() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.path, a.path != ""
}

// Set marks path as the active document. An empty path clears it.
func (a *Active) Set(path string) {
	a.mu.Lock()
	a.path = path
	a.mu.Unlock()
}

// Is reports whether path is the active document.
func (a *Active) Is(path string) bool {
	cur, ok := a.Get()
	return ok && cur == path
}

func (a *Active) follow(from, to string) {
	a.mu.Lock()
	if a.path == from {
		a.path = to
	}
	a.mu.Unlock()
}
