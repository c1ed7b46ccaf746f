package nav

// MenuState tracks whether the compact-layout menu is expanded.
type MenuState struct {
	open bool
}

// Toggle flips the menu and returns the new state.
func (m *MenuState) Toggle() bool {
	m.open = !m.open
	return m.open
}

// Open reports whether the menu is expanded.
func (m *MenuState) Open() bool {
	return m.open
}
