package locks

import "sync"

// Manager hands out one mutex per tournament. Every seat, table and live
// state mutation for a tournament goes through the same lock, so mutations
// for the same tournament serialize while different tournaments run in
// parallel.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]*entry),
	}
}

// Lock acquires the mutex for tournamentID and returns the matching unlock.
// Entries are reference counted so the map does not grow with every
// tournament ever seen.
func (m *Manager) Lock(tournamentID string) func() {
	m.mu.Lock()
	e, ok := m.entries[tournamentID]
	if !ok {
		e = &entry{}
		m.entries[tournamentID] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.entries, tournamentID)
			}
			m.mu.Unlock()
		})
	}
}
