package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/store"
	"github.com/kingrea/wasteless/internal/timefmt"
)

var (
	dayOptions        = []int{0, 1, 2, 3, 5, 7, 14}
	timeOptions       = []string{"08:00", "09:00", "10:00", "12:00", "15:00", "17:00", "20:00"}
	scanExpiryOptions = []int{2, 4, 7, 10, 14, 21}
)

const (
	defaultReminderDays = 2
	defaultScanExpiry   = 7
)

type formKind int

const (
	formNone    formKind = iota
	formInfo             // title + lines, enter closes
	formConfirm          // yes / no
	formFields           // editable fields, enter submits
)

type fieldKind int

const (
	fieldSelect fieldKind = iota
	fieldStepper
	fieldText
)

type choice struct {
	label string
	value int
	text  string
}

type formField struct {
	label   string
	kind    fieldKind
	choices []choice
	index   int
	count   int
}

func (f *formField) cycle(delta int) {
	switch f.kind {
	case fieldSelect:
		if len(f.choices) == 0 {
			return
		}
		f.index = (f.index + delta + len(f.choices)) % len(f.choices)
	case fieldStepper:
		f.count = max(1, f.count+delta)
	}
}

func (f *formField) current() choice {
	if len(f.choices) == 0 {
		return choice{}
	}
	return f.choices[f.index]
}

func (f *formField) display() string {
	switch f.kind {
	case fieldStepper:
		return fmt.Sprintf("- %02d +", f.count)
	case fieldSelect:
		return "‹ " + f.current().label + " ›"
	}
	return ""
}

// modalForm is the transient input state of the open modal. It is thrown
// away on close, so cancelling never commits anything.
type modalForm struct {
	modal  nav.Modal
	kind   formKind
	title  string
	lines  []string
	action string
	fields []*formField
	focus  int
	name   textinput.Model

	// bound ids resolved when the form was built
	itemID   int
	scanID   int
	editID   *int
	reminder int
}

func (f *modalForm) focused() *formField {
	if f == nil || len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.focus]
}

func (f *modalForm) textFocused() bool {
	field := f.focused()
	return field != nil && field.kind == fieldText
}

func (f *modalForm) nextField() {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (f.focus + 1) % len(f.fields)
	if f.textFocused() {
		f.name.Focus()
	} else {
		f.name.Blur()
	}
}

func (f *modalForm) field(label string) *formField {
	for _, field := range f.fields {
		if field.label == label {
			return field
		}
	}
	return nil
}

func infoForm(m nav.Modal, title string, lines ...string) *modalForm {
	return &modalForm{modal: m, kind: formInfo, title: title, lines: lines, action: "close"}
}

// buildForm derives the form for the current modal from store state.
func buildForm(m nav.Modal, s *store.Store) *modalForm {
	switch m := m.(type) {
	case nav.NoModal:
		return nil
	case nav.HomeSetReminder:
		return homeReminderForm(m, s)
	case nav.HomeReminderSet:
		return infoForm(m, "Reminder set",
			m.ItemName,
			"for "+timefmt.RelativeLabelFromDays(m.RemindInDays),
			timefmt.ToMeridiem(m.Time))
	case nav.HomeRemoveItem:
		item, ok := s.Item(m.InventoryItemID)
		if !ok {
			return infoForm(m, "Item not found", "This inventory item no longer exists.")
		}
		return &modalForm{
			modal:  m,
			kind:   formConfirm,
			title:  "Remove item?",
			lines:  []string{fmt.Sprintf("%s, x%d", item.Name, item.Quantity), "Are you sure you want to remove this from the grocery list?"},
			action: "yes, remove",
			itemID: item.ID,
		}
	case nav.HomeItemRemoved:
		return infoForm(m, "Removed from grocery list", m.ItemName)
	case nav.ScanEditItem:
		return scanEditForm(m, s)
	case nav.ScanRemoveItem:
		item, ok := s.ScanItem(m.ScanItemID)
		if !ok {
			return infoForm(m, "Scanned item not found", "It may have been removed already.")
		}
		return &modalForm{
			modal:  m,
			kind:   formConfirm,
			title:  "Remove from scan?",
			lines:  []string{fmt.Sprintf("%s, x%d", item.Name, item.Quantity)},
			action: "yes, remove",
			scanID: item.ID,
		}
	case nav.ReminderEditor:
		return reminderEditorForm(m, s)
	case nav.ReminderCancel:
		r, ok := s.ReminderByID(m.ReminderID)
		if !ok {
			return infoForm(m, "Reminder not found", "It may have already been removed.")
		}
		return &modalForm{
			modal: m,
			kind:  formConfirm,
			title: "Cancel reminder?",
			lines: []string{
				r.ItemName,
				fmt.Sprintf("Set for %s, %s", timefmt.RelativeLabelFromDays(r.RemindInDays), timefmt.ToMeridiem(r.Time)),
			},
			action:   "yes, cancel",
			reminder: r.ID,
		}
	case nav.ReminderRemoved:
		return infoForm(m, "Reminder removed", m.ItemName)
	}
	return nil
}

func homeReminderForm(m nav.HomeSetReminder, s *store.Store) *modalForm {
	item, ok := s.Item(m.InventoryItemID)
	if !ok {
		return infoForm(m, "Item not found", "This inventory item no longer exists.")
	}
	days, at := defaultReminderDays, timefmt.DefaultTime
	title, action := "Set Reminder", "confirm"
	if existing, ok := s.ReminderFor(item.ID); ok {
		days, at = existing.RemindInDays, existing.Time
		title, action = "Edit Reminder", "save changes"
	}
	return &modalForm{
		modal:  m,
		kind:   formFields,
		title:  title,
		lines:  []string{fmt.Sprintf("%s, x%d", item.Name, item.Quantity)},
		action: action,
		fields: []*formField{daysField(days), timeField(at)},
		itemID: item.ID,
	}
}

func reminderEditorForm(m nav.ReminderEditor, s *store.Store) *modalForm {
	inventory := s.Inventory()
	if len(inventory) == 0 {
		return infoForm(m, "No inventory items", "Add an item before creating a reminder.")
	}
	form := &modalForm{modal: m, kind: formFields, title: "New reminder", action: "confirm"}
	itemID, days, at := inventory[0].ID, defaultReminderDays, timefmt.DefaultTime
	if m.ReminderID != nil {
		if r, ok := s.ReminderByID(*m.ReminderID); ok {
			id := r.ID
			form.editID = &id
			form.title = "Edit reminder"
			itemID, days, at = r.InventoryItemID, r.RemindInDays, r.Time
		}
	}
	items := make([]choice, 0, len(inventory))
	index := 0
	for i, item := range inventory {
		if item.ID == itemID {
			index = i
		}
		items = append(items, choice{label: item.Name, value: item.ID})
	}
	form.fields = []*formField{
		{label: "For", kind: fieldSelect, choices: items, index: index},
		daysField(days),
		timeField(at),
	}
	return form
}

func scanEditForm(m nav.ScanEditItem, s *store.Store) *modalForm {
	item, ok := s.ScanItem(m.ScanItemID)
	if !ok {
		return infoForm(m, "Scanned item not found", "It may have been removed already.")
	}
	name := textinput.New()
	name.Placeholder = item.Name
	name.SetValue(item.Name)
	name.CharLimit = 48
	name.Prompt = ""
	name.Focus()

	expiry := make([]choice, 0, len(scanExpiryOptions)+1)
	for _, d := range withOption(scanExpiryOptions, item.ExpirationInDays) {
		expiry = append(expiry, choice{label: timefmt.ExpiryLabelFromDays(d), value: d})
	}
	return &modalForm{
		modal:  m,
		kind:   formFields,
		title:  "Edit item",
		action: "confirm",
		name:   name,
		fields: []*formField{
			{label: "Name", kind: fieldText},
			{label: "Quantity", kind: fieldStepper, count: max(1, item.Quantity)},
			{label: "Expiration", kind: fieldSelect, choices: expiry, index: indexOf(expiry, item.ExpirationInDays)},
		},
		scanID: item.ID,
	}
}

func daysField(days int) *formField {
	choices := make([]choice, 0, len(dayOptions)+1)
	for _, d := range withOption(dayOptions, days) {
		choices = append(choices, choice{label: dayOptionLabel(d), value: d})
	}
	return &formField{label: "Remind me in", kind: fieldSelect, choices: choices, index: indexOf(choices, days)}
}

func timeField(at string) *formField {
	if normalized, ok := timefmt.NormalizeTime(at); ok {
		at = normalized
	} else {
		at = timefmt.DefaultTime
	}
	values := timeOptions
	if !containsString(values, at) {
		values = append(append([]string{}, values...), at)
		sort.Strings(values)
	}
	choices := make([]choice, 0, len(values))
	index := 0
	for i, v := range values {
		if v == at {
			index = i
		}
		choices = append(choices, choice{label: timefmt.ToMeridiem(v), text: v})
	}
	return &formField{label: "At", kind: fieldSelect, choices: choices, index: index}
}

func dayOptionLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "1 Day"
	}
	return fmt.Sprintf("%d Days", days)
}

// withOption returns options with value merged in, ascending, so a stored
// value outside the preset list can still be shown and kept.
func withOption(options []int, value int) []int {
	for _, o := range options {
		if o == value {
			return options
		}
	}
	out := append(append([]int{}, options...), value)
	sort.Ints(out)
	return out
}

func indexOf(choices []choice, value int) int {
	for i, c := range choices {
		if c.value == value {
			return i
		}
	}
	return 0
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func (f *modalForm) scanEdit() store.ScanEdit {
	return store.ScanEdit{
		Name:             strings.TrimSpace(f.name.Value()),
		Quantity:         f.field("Quantity").count,
		ExpirationInDays: f.field("Expiration").current().value,
	}
}
