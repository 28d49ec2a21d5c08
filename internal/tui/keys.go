package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/kingrea/wasteless/internal/nav"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Back        key.Binding
	Quit        key.Binding
	Recipes     key.Binding
	Home        key.Binding
	Reminders   key.Binding
	SetReminder key.Binding
	Remove      key.Binding
	AddItems    key.Binding
	NewReminder key.Binding
	Edit        key.Binding
	LoadMore    key.Binding
	Done        key.Binding
	Confirm     key.Binding
	RememberTab key.Binding
	Prev        key.Binding
	Next        key.Binding
	NextField   key.Binding
	Yes         key.Binding
	No          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:        key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("b/esc", "back")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Recipes:     key.NewBinding(key.WithKeys("1", "r"), key.WithHelp("1/r", "recipes")),
		Home:        key.NewBinding(key.WithKeys("2", "h"), key.WithHelp("2/h", "home")),
		Reminders:   key.NewBinding(key.WithKeys("3", "m"), key.WithHelp("3/m", "reminders")),
		SetReminder: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "reminder")),
		Remove:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		AddItems:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add items")),
		NewReminder: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "set new")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		LoadMore:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load more")),
		Done:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
		Confirm:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "confirm")),
		RememberTab: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "remember tab")),
		Prev:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev")),
		Next:        key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "field")),
		Yes:         key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("y", "yes")),
		No:          key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("n", "no")),
	}
}

// screenHelp lists the bindings shown in the footer for a screen.
func (k keyMap) screenHelp(s nav.Screen) []key.Binding {
	tabs := []key.Binding{k.Recipes, k.Home, k.Reminders}
	switch s.(type) {
	case nav.Home:
		return append([]key.Binding{k.Up, k.Down, k.SetReminder, k.Remove, k.AddItems, k.LoadMore}, append(tabs, k.Quit)...)
	case nav.Recipes:
		return append([]key.Binding{k.Up, k.Down, k.Open}, append(tabs, k.Quit)...)
	case nav.RecipeDetail:
		return append([]key.Binding{k.Back}, append(tabs, k.Quit)...)
	case nav.Reminders:
		return append([]key.Binding{k.Up, k.Down, k.NewReminder, k.Edit, k.Remove, k.LoadMore}, append(tabs, k.Quit)...)
	case nav.AddItemsScan:
		return []key.Binding{k.Back, k.Done, k.Quit}
	case nav.AddItemsConfirm:
		return []key.Binding{k.Up, k.Down, k.Edit, k.Remove, k.Back, k.Confirm, k.Quit}
	}
	return []key.Binding{k.Quit}
}

// modalHelp lists the bindings shown while a modal is open.
func (k keyMap) modalHelp(m nav.Modal, form formKind) []key.Binding {
	switch m.(type) {
	case nav.HomeRemoveItem, nav.ScanRemoveItem, nav.ReminderCancel:
		if form == formConfirm {
			return []key.Binding{k.Yes, k.No}
		}
	case nav.HomeSetReminder, nav.ScanEditItem, nav.ReminderEditor:
		if form == formFields {
			return []key.Binding{k.Prev, k.Next, k.NextField, k.Open, k.Back}
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "close")),
	}
}
