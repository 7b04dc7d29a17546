package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the ticket board.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Filters.
	Search        key.Binding
	CycleStatus   key.Binding
	CyclePriority key.Binding
	CycleAssignee key.Binding
	CycleProject  key.Binding
	ClearFilters  key.Binding
	Refresh       key.Binding

	// Form.
	New        key.Binding
	Edit       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	OptionNext key.Binding
	OptionPrev key.Binding
	Submit     key.Binding
	Cancel     key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	CyclePriority: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "priority"),
	),
	CycleAssignee: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assignee"),
	),
	CycleProject: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "project"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new ticket"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-Tab", "prev field"),
	),
	OptionNext: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
	OptionPrev: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev option"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
