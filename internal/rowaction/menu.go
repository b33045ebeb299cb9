package rowaction

import "sync"

// Menu tracks which row's action menu is open. At most one is open at a
// time; the zero value is closed.
type Menu struct {
	mu   sync.Mutex
	open string
}

// Click handles a click on a row's action button: it opens that row's menu,
// or closes it if it was already open.
func (m *Menu) Click(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == id {
		m.open = ""
		return
	}
	m.open = id
}

// Close closes any open menu.
func (m *Menu) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = ""
}

// OpenID returns the id of the row whose menu is open, or "".
func (m *Menu) OpenID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// IsOpen reports whether the menu for id is open.
func (m *Menu) IsOpen(id string) bool {
	return id != "" && m.OpenID() == id
}
