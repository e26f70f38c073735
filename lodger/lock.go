package lodger

import "sync"

// =============================================================================
// KEYED MUTEX - Single writer per key
// =============================================================================

// keyedLocks serializes mutating commands per key. The engine holds one
// instance keyed by tenancy ID (commands on different tenancies proceed
// independently; two writers on the same tenancy queue, so the second
// always observes the first's committed state) and one keyed by landlord
// ID, which serializes the concurrent-tenancy cap check at creation.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the key and returns the unlock function.
func (l *keyedLocks) acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
