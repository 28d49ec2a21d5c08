// Package store owns the inventory, reminder and scan-draft collections and
// every mutation applied to them. Callers read copies and change state only
// through the Store methods; each method is one transition that either
// applies fully or not at all.
package store

import (
	"sort"
	"strings"

	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/timefmt"
)

// Outcome reports how an operation resolved. Missing references are not
// errors: the operation dismisses the modal and reports NotFound.
type Outcome int

const (
	Applied Outcome = iota
	NotFound
	// Rejected means the navigator refused the screen transition the
	// operation depends on, so nothing changed.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NotFound:
		return "not found"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Logger receives one line per applied transition.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// ScanSource produces the simulated scan result.
type ScanSource interface {
	MockScanBatch() []ScanDraftItem
}

// Seed is the starting content of the store.
type Seed struct {
	Inventory []InventoryItem
	Reminders []Reminder
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used when committing scans.
func WithClock(clock timefmt.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a transition log.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the domain state engine. It is not safe for concurrent use; the
// UI loop handles one intent at a time.
type Store struct {
	nav    *nav.Navigator
	scans  ScanSource
	clock  timefmt.Clock
	logger Logger

	inventory []InventoryItem
	reminders []Reminder
	scanDraft []ScanDraftItem
}

// New builds a store over navigator, seeded with seed. The seed slices are
// copied.
func New(navigator *nav.Navigator, scans ScanSource, seed Seed, opts ...Option) *Store {
	if navigator == nil {
		navigator = nav.New()
	}
	s := &Store{
		nav:       navigator,
		scans:     scans,
		clock:     timefmt.SystemClock,
		logger:    nopLogger{},
		inventory: append([]InventoryItem(nil), seed.Inventory...),
		reminders: append([]Reminder(nil), seed.Reminders...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Navigator exposes the navigator the store drives.
func (s *Store) Navigator() *nav.Navigator { return s.nav }

// SetOrUpdateReminder sets the reminder of an inventory item, editing the
// existing one when the item already has a reminder, and opens the
// confirmation modal with the resulting values.
func (s *Store) SetOrUpdateReminder(itemID, remindInDays int, time24 string) Outcome {
	item, ok := s.Item(itemID)
	if !ok {
		s.nav.Close()
		return NotFound
	}
	days := clampDays(remindInDays)
	at := normalizeTime(time24)

	next := make([]Reminder, 0, len(s.reminders)+1)
	updated := false
	for _, r := range s.reminders {
		if r.InventoryItemID == itemID {
			if updated {
				continue
			}
			r.ItemName = item.Name
			r.RemindInDays = days
			r.Time = at
			updated = true
		}
		next = append(next, r)
	}
	if !updated {
		next = append(next, Reminder{
			ID:              NextID(s.reminders, reminderID),
			InventoryItemID: itemID,
			ItemName:        item.Name,
			RemindInDays:    days,
			Time:            at,
		})
	}
	s.reminders = next
	s.nav.Open(nav.HomeReminderSet{ItemName: item.Name, RemindInDays: days, Time: at})
	s.logger.Printf("Reminder set for %s in %s at %s", item.Name, timefmt.DaysPhrase(days), at)
	return Applied
}

// SaveReminder backs the standalone reminder editor. With a reminder id it
// edits that reminder, possibly pointing it at a different item; without
// one it creates a reminder for the item, or edits the item's existing one.
// Any other reminder bound to the target item is dropped so an item never
// carries two. The modal is closed in every case.
func (s *Store) SaveReminder(editID *int, itemID, remindInDays int, time24 string) Outcome {
	item, ok := s.Item(itemID)
	if !ok {
		s.nav.Close()
		return NotFound
	}
	days := clampDays(remindInDays)
	at := normalizeTime(time24)

	targetID := 0
	if editID != nil {
		if _, found := s.ReminderByID(*editID); !found {
			s.nav.Close()
			return NotFound
		}
		targetID = *editID
	} else if existing, found := s.ReminderFor(itemID); found {
		targetID = existing.ID
	}

	next := make([]Reminder, 0, len(s.reminders)+1)
	for _, r := range s.reminders {
		switch {
		case r.ID == targetID:
			r.InventoryItemID = itemID
			r.ItemName = item.Name
			r.RemindInDays = days
			r.Time = at
		case r.InventoryItemID == itemID:
			continue
		}
		next = append(next, r)
	}
	if targetID == 0 {
		next = append(next, Reminder{
			ID:              NextID(s.reminders, reminderID),
			InventoryItemID: itemID,
			ItemName:        item.Name,
			RemindInDays:    days,
			Time:            at,
		})
	}
	s.reminders = next
	s.nav.Close()
	s.logger.Printf("Reminder saved for %s in %s at %s", item.Name, timefmt.DaysPhrase(days), at)
	return Applied
}

// RemoveInventoryItem deletes an item together with every reminder bound to
// it and opens the removed-confirmation modal.
func (s *Store) RemoveInventoryItem(itemID int) Outcome {
	item, ok := s.Item(itemID)
	if !ok {
		s.nav.Close()
		return NotFound
	}
	inventory := make([]InventoryItem, 0, len(s.inventory))
	for _, it := range s.inventory {
		if it.ID != itemID {
			inventory = append(inventory, it)
		}
	}
	reminders := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.InventoryItemID != itemID {
			reminders = append(reminders, r)
		}
	}
	s.inventory = inventory
	s.reminders = reminders
	s.nav.Open(nav.HomeItemRemoved{ItemName: item.Name})
	s.logger.Printf("Removed %s from inventory", item.Name)
	return Applied
}

// EditScanDraftItem replaces the editable fields of a draft item. The modal
// is closed whether or not the item exists.
func (s *Store) EditScanDraftItem(scanItemID int, edit ScanEdit) Outcome {
	defer s.nav.Close()
	idx := s.scanIndex(scanItemID)
	if idx < 0 {
		return NotFound
	}
	draft := append([]ScanDraftItem(nil), s.scanDraft...)
	item := &draft[idx]
	if name := strings.TrimSpace(edit.Name); name != "" {
		item.Name = name
	}
	item.Quantity = clampQuantity(edit.Quantity)
	item.ExpirationInDays = clampDays(edit.ExpirationInDays)
	s.scanDraft = draft
	s.logger.Printf("Scan item %d updated: %s x%d", item.ID, item.Name, item.Quantity)
	return Applied
}

// RemoveScanDraftItem drops one draft item and closes the modal.
func (s *Store) RemoveScanDraftItem(scanItemID int) Outcome {
	defer s.nav.Close()
	idx := s.scanIndex(scanItemID)
	if idx < 0 {
		return NotFound
	}
	removed := s.scanDraft[idx]
	draft := make([]ScanDraftItem, 0, len(s.scanDraft)-1)
	draft = append(draft, s.scanDraft[:idx]...)
	draft = append(draft, s.scanDraft[idx+1:]...)
	s.scanDraft = draft
	s.logger.Printf("Scan item %s discarded", removed.Name)
	return Applied
}

// CancelReminder deletes a reminder and opens the removed-confirmation modal
// carrying the reminder's stored item name.
func (s *Store) CancelReminder(id int) Outcome {
	r, ok := s.ReminderByID(id)
	if !ok {
		s.nav.Close()
		return NotFound
	}
	reminders := make([]Reminder, 0, len(s.reminders))
	for _, existing := range s.reminders {
		if existing.ID != id {
			reminders = append(reminders, existing)
		}
	}
	s.reminders = reminders
	s.nav.Open(nav.ReminderRemoved{ItemName: r.ItemName})
	s.logger.Printf("Reminder for %s cancelled", r.ItemName)
	return Applied
}

// StartScanBatch replaces the draft with a fresh simulated scan and moves
// from the scan screen to the confirm screen.
func (s *Store) StartScanBatch() Outcome {
	if _, ok := s.nav.Screen().(nav.AddItemsScan); !ok {
		return Rejected
	}
	var batch []ScanDraftItem
	if s.scans != nil {
		batch = append(batch, s.scans.MockScanBatch()...)
	}
	s.scanDraft = batch
	s.nav.ScanDone()
	s.logger.Printf("Scan finished with %d item(s)", len(batch))
	return Applied
}

// CommitScanBatch turns every draft item into an inventory item, clears the
// draft and returns Home. New ids form one contiguous block after the
// current maximum inventory id, and expiration offsets are added to the
// current moment.
func (s *Store) CommitScanBatch() Outcome {
	if _, ok := s.nav.Screen().(nav.AddItemsConfirm); !ok {
		return Rejected
	}
	now := s.clock.Now()
	start := NextID(s.inventory, inventoryID)
	inventory := make([]InventoryItem, 0, len(s.inventory)+len(s.scanDraft))
	inventory = append(inventory, s.inventory...)
	for i, d := range s.scanDraft {
		inventory = append(inventory, InventoryItem{
			ID:              start + i,
			Name:            d.Name,
			Category:        d.Category,
			CaloriesPerUnit: d.CaloriesPerUnit,
			ExpirationDate:  timefmt.AddDaysISO(now, d.ExpirationInDays),
			Quantity:        clampQuantity(d.Quantity),
		})
	}
	added := len(s.scanDraft)
	s.inventory = inventory
	s.scanDraft = nil
	s.nav.ConfirmDone()
	s.logger.Printf("Added %d scanned item(s) to inventory", added)
	return Applied
}

// Inventory returns the items ordered by expiration date, ties in insertion
// order. Dates that do not parse sort last.
func (s *Store) Inventory() []InventoryItem {
	out := append([]InventoryItem(nil), s.inventory...)
	keys := make(map[int]int64, len(out))
	for _, item := range out {
		t, err := timefmt.ParseISO(item.ExpirationDate)
		if err != nil {
			keys[item.ID] = int64(^uint64(0) >> 1)
			continue
		}
		keys[item.ID] = t.UnixMilli()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keys[out[i].ID] < keys[out[j].ID]
	})
	return out
}

// Reminders returns the reminders ordered by remindInDays, ties in
// insertion order.
func (s *Store) Reminders() []Reminder {
	out := append([]Reminder(nil), s.reminders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemindInDays < out[j].RemindInDays
	})
	return out
}

// ScanDraft returns the draft items in scan order.
func (s *Store) ScanDraft() []ScanDraftItem {
	return append([]ScanDraftItem(nil), s.scanDraft...)
}

// Item looks up an inventory item.
func (s *Store) Item(id int) (InventoryItem, bool) {
	for _, item := range s.inventory {
		if item.ID == id {
			return item, true
		}
	}
	return InventoryItem{}, false
}

// ReminderFor returns the reminder bound to an inventory item.
func (s *Store) ReminderFor(itemID int) (Reminder, bool) {
	for _, r := range s.reminders {
		if r.InventoryItemID == itemID {
			return r, true
		}
	}
	return Reminder{}, false
}

// ReminderByID looks up a reminder.
func (s *Store) ReminderByID(id int) (Reminder, bool) {
	for _, r := range s.reminders {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}

// ScanItem looks up a draft item.
func (s *Store) ScanItem(id int) (ScanDraftItem, bool) {
	if idx := s.scanIndex(id); idx >= 0 {
		return s.scanDraft[idx], true
	}
	return ScanDraftItem{}, false
}

// NextInventoryID is the id the next added inventory item would receive.
func (s *Store) NextInventoryID() int { return NextID(s.inventory, inventoryID) }

// NextReminderID is the id the next created reminder would receive.
func (s *Store) NextReminderID() int { return NextID(s.reminders, reminderID) }

// Snapshot copies every collection in display order.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Inventory: s.Inventory(),
		Reminders: s.Reminders(),
		ScanDraft: s.ScanDraft(),
	}
}

func (s *Store) scanIndex(id int) int {
	for i, d := range s.scanDraft {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func clampDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

func normalizeTime(value string) string {
	if v, ok := timefmt.NormalizeTime(value); ok {
		return v
	}
	return timefmt.DefaultTime
}
