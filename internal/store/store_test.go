package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/wasteless/internal/catalog"
	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/store"
	"github.com/kingrea/wasteless/internal/timefmt"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

const garlicID = 4

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func newStore(t *testing.T, withReminders bool) (*store.Store, *nav.Navigator) {
	t.Helper()
	profile := catalog.MustDefault()
	seed := store.Seed{Inventory: profile.InitialInventory()}
	if withReminders {
		seed.Reminders = catalog.InitialReminders(seed.Inventory, testNow)
	}
	n := nav.New()
	s := store.New(n, profile, seed, store.WithClock(timefmt.FixedClock(testNow)))
	return s, n
}

func remindersFor(s *store.Store, itemID int) []store.Reminder {
	var out []store.Reminder
	for _, r := range s.Reminders() {
		if r.InventoryItemID == itemID {
			out = append(out, r)
		}
	}
	return out
}

func TestSetOrUpdateReminderCreatesThenEdits(t *testing.T) {
	s, n := newStore(t, false)
	garlic, ok := s.Item(garlicID)
	require.True(t, ok)
	require.Equal(t, "Garlic", garlic.Name)
	require.Equal(t, 3, garlic.Quantity)
	require.Equal(t, 3, timefmt.DaysUntil(garlic.ExpirationDate, testNow))

	require.Equal(t, store.Applied, s.SetOrUpdateReminder(garlicID, 2, "09:00"))
	got := remindersFor(s, garlicID)
	require.Len(t, got, 1)
	assert.Equal(t, store.Reminder{ID: 1, InventoryItemID: garlicID, ItemName: "Garlic", RemindInDays: 2, Time: "09:00"}, got[0])
	assert.Equal(t, nav.HomeReminderSet{ItemName: "Garlic", RemindInDays: 2, Time: "09:00"}, n.Modal())

	require.Equal(t, store.Applied, s.SetOrUpdateReminder(garlicID, 0, "08:00"))
	got = remindersFor(s, garlicID)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 0, got[0].RemindInDays)
	assert.Equal(t, "08:00", got[0].Time)
	assert.Equal(t, nav.HomeReminderSet{ItemName: "Garlic", RemindInDays: 0, Time: "08:00"}, n.Modal())
}

func TestSetOrUpdateReminderMissingItemClosesModal(t *testing.T) {
	s, n := newStore(t, true)
	n.Open(nav.HomeSetReminder{InventoryItemID: 99})
	before := s.Reminders()

	assert.Equal(t, store.NotFound, s.SetOrUpdateReminder(99, 1, "09:00"))
	assert.Equal(t, nav.NoModal{}, n.Modal())
	assert.Equal(t, before, s.Reminders())
}

func TestSetOrUpdateReminderNormalisesInput(t *testing.T) {
	s, _ := newStore(t, false)
	s.SetOrUpdateReminder(garlicID, -4, "7:5")
	r, ok := s.ReminderFor(garlicID)
	require.True(t, ok)
	assert.Equal(t, 0, r.RemindInDays)
	assert.Equal(t, "07:05", r.Time)

	s.SetOrUpdateReminder(garlicID, 1, "late")
	r, _ = s.ReminderFor(garlicID)
	assert.Equal(t, timefmt.DefaultTime, r.Time)
}

func TestAtMostOneReminderPerItem(t *testing.T) {
	s, _ := newStore(t, true)
	calls := []struct {
		item int
		days int
	}{{1, 1}, {4, 2}, {1, 0}, {3, 5}, {4, 7}, {3, 1}, {1, 14}}
	for _, c := range calls {
		s.SetOrUpdateReminder(c.item, c.days, "10:00")
		counts := map[int]int{}
		for _, r := range s.Reminders() {
			counts[r.InventoryItemID]++
		}
		for item, count := range counts {
			require.LessOrEqualf(t, count, 1, "item %d has %d reminders", item, count)
		}
	}
}

func TestSaveReminderReassignsAndKeepsUniqueness(t *testing.T) {
	s, n := newStore(t, true)
	reminders := s.Reminders()
	require.Len(t, reminders, 2)
	chicken, ok := s.ReminderFor(1)
	require.True(t, ok)
	garlic, ok := s.ReminderFor(garlicID)
	require.True(t, ok)

	n.Open(nav.EditReminder(chicken.ID))
	id := chicken.ID
	require.Equal(t, store.Applied, s.SaveReminder(&id, 6, 3, "15:00"))
	assert.Equal(t, nav.NoModal{}, n.Modal())

	moved, ok := s.ReminderByID(chicken.ID)
	require.True(t, ok)
	assert.Equal(t, 6, moved.InventoryItemID)
	assert.Equal(t, "Lemon", moved.ItemName)
	_, stillChicken := s.ReminderFor(1)
	assert.False(t, stillChicken)

	// Pointing the chicken reminder at garlic drops garlic's own reminder.
	require.Equal(t, store.Applied, s.SaveReminder(&id, garlicID, 1, "08:00"))
	assert.Len(t, remindersFor(s, garlicID), 1)
	_, ok = s.ReminderByID(garlic.ID)
	assert.False(t, ok)
}

func TestSaveReminderWithoutIDCreatesOrEdits(t *testing.T) {
	s, _ := newStore(t, true)
	next := s.NextReminderID()

	require.Equal(t, store.Applied, s.SaveReminder(nil, 7, 2, "12:00"))
	created, ok := s.ReminderFor(7)
	require.True(t, ok)
	assert.Equal(t, next, created.ID)

	require.Equal(t, store.Applied, s.SaveReminder(nil, 7, 5, "17:00"))
	got := remindersFor(s, 7)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
	assert.Equal(t, 5, got[0].RemindInDays)
}

func TestSaveReminderUnknownReferences(t *testing.T) {
	s, n := newStore(t, true)
	before := s.Reminders()
	missing := 42

	n.Open(nav.EditReminder(missing))
	assert.Equal(t, store.NotFound, s.SaveReminder(&missing, 1, 1, "09:00"))
	assert.Equal(t, nav.NoModal{}, n.Modal())

	n.Open(nav.NewReminderEditor())
	assert.Equal(t, store.NotFound, s.SaveReminder(nil, 500, 1, "09:00"))
	assert.Equal(t, nav.NoModal{}, n.Modal())
	assert.Equal(t, before, s.Reminders())
}

func TestRemoveInventoryItemCascades(t *testing.T) {
	s, n := newStore(t, false)
	s.SetOrUpdateReminder(garlicID, 2, "09:00")
	s.SetOrUpdateReminder(2, 4, "10:00")

	require.Equal(t, store.Applied, s.RemoveInventoryItem(garlicID))
	_, ok := s.Item(garlicID)
	assert.False(t, ok)
	assert.Empty(t, remindersFor(s, garlicID))
	assert.Len(t, remindersFor(s, 2), 1)
	assert.Equal(t, nav.HomeItemRemoved{ItemName: "Garlic"}, n.Modal())

	assert.Equal(t, store.NotFound, s.RemoveInventoryItem(garlicID))
	assert.Equal(t, nav.NoModal{}, n.Modal())
}

func TestCancelReminder(t *testing.T) {
	s, n := newStore(t, true)
	r, ok := s.ReminderFor(garlicID)
	require.True(t, ok)

	require.Equal(t, store.Applied, s.CancelReminder(r.ID))
	assert.Equal(t, nav.ReminderRemoved{ItemName: "Garlic"}, n.Modal())
	_, ok = s.ReminderByID(r.ID)
	assert.False(t, ok)
	assert.Len(t, s.Reminders(), 1)

	assert.Equal(t, store.NotFound, s.CancelReminder(r.ID))
	assert.Equal(t, nav.NoModal{}, n.Modal())
}

func TestScanBatchRoundTrip(t *testing.T) {
	s, n := newStore(t, true)
	require.Equal(t, 8, s.NextInventoryID())

	assert.Equal(t, store.Rejected, s.StartScanBatch(), "scan only runs from the scan screen")
	require.True(t, n.OpenAddItems())
	require.Equal(t, store.Applied, s.StartScanBatch())
	assert.Equal(t, nav.AddItemsConfirm{}, n.Screen())

	draft := s.ScanDraft()
	require.Len(t, draft, 3)
	assert.Equal(t, []int{1001, 1002, 1003}, []int{draft[0].ID, draft[1].ID, draft[2].ID})
	assert.Equal(t, "Spinach", draft[0].Name)
	assert.Equal(t, 2, draft[0].Quantity)
	assert.Equal(t, 5, draft[0].ExpirationInDays)

	require.Equal(t, store.Applied, s.CommitScanBatch())
	assert.Equal(t, nav.Home{}, n.Screen())
	assert.Empty(t, s.ScanDraft())

	var added []store.InventoryItem
	for _, id := range []int{8, 9, 10} {
		item, ok := s.Item(id)
		require.Truef(t, ok, "item %d", id)
		assert.Nil(t, item.SourceIngredientID)
		added = append(added, item)
	}
	assert.Equal(t, "Spinach", added[0].Name)
	assert.Equal(t, "2026-10-22T12:00:00.000Z", added[0].ExpirationDate)
	assert.Equal(t, "Broccoli", added[1].Name)
	assert.Equal(t, "2026-10-21T12:00:00.000Z", added[1].ExpirationDate)
	assert.Equal(t, "Chicken Breast", added[2].Name)
	assert.Equal(t, "2026-10-24T12:00:00.000Z", added[2].ExpirationDate)
	assert.Len(t, s.Inventory(), 10)
	assert.Equal(t, 11, s.NextInventoryID())
}

func TestCommitAfterRemovalsStaysContiguous(t *testing.T) {
	s, n := newStore(t, false)
	s.RemoveInventoryItem(7)
	s.RemoveInventoryItem(2)
	n.Close()

	require.True(t, n.OpenAddItems())
	s.StartScanBatch()
	draft := s.ScanDraft()
	s.RemoveScanDraftItem(draft[1].ID)
	require.Len(t, s.ScanDraft(), 2)

	s.CommitScanBatch()
	for _, id := range []int{7, 8} {
		_, ok := s.Item(id)
		assert.Truef(t, ok, "item %d", id)
	}
	_, ok := s.Item(9)
	assert.False(t, ok)
}

func TestCommitRejectedOutsideConfirm(t *testing.T) {
	s, _ := newStore(t, false)
	before := s.Inventory()
	assert.Equal(t, store.Rejected, s.CommitScanBatch())
	assert.Equal(t, before, s.Inventory())
}

func TestStartScanBatchDiscardsPreviousDraft(t *testing.T) {
	s, n := newStore(t, false)
	require.True(t, n.OpenAddItems())
	s.StartScanBatch()
	s.RemoveScanDraftItem(1001)
	require.Len(t, s.ScanDraft(), 2)

	require.True(t, n.ConfirmBack())
	s.StartScanBatch()
	assert.Len(t, s.ScanDraft(), 3)
}

func TestEditScanDraftItem(t *testing.T) {
	s, n := newStore(t, false)
	require.True(t, n.OpenAddItems())
	s.StartScanBatch()

	n.Open(nav.ScanEditItem{ScanItemID: 1002})
	require.Equal(t, store.Applied, s.EditScanDraftItem(1002, store.ScanEdit{Name: "  Baby Broccoli ", Quantity: 4, ExpirationInDays: 10}))
	assert.Equal(t, nav.NoModal{}, n.Modal())
	item, ok := s.ScanItem(1002)
	require.True(t, ok)
	assert.Equal(t, "Baby Broccoli", item.Name)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, 10, item.ExpirationInDays)
	assert.Equal(t, "Vegetables", item.Category)

	s.EditScanDraftItem(1002, store.ScanEdit{Name: " ", Quantity: 0, ExpirationInDays: -3})
	item, _ = s.ScanItem(1002)
	assert.Equal(t, "Baby Broccoli", item.Name)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 0, item.ExpirationInDays)

	n.Open(nav.ScanEditItem{ScanItemID: 77})
	assert.Equal(t, store.NotFound, s.EditScanDraftItem(77, store.ScanEdit{Name: "x", Quantity: 1}))
	assert.Equal(t, nav.NoModal{}, n.Modal())
}

func TestRemoveScanDraftItemMissing(t *testing.T) {
	s, n := newStore(t, false)
	n.Open(nav.ScanRemoveItem{ScanItemID: 1001})
	assert.Equal(t, store.NotFound, s.RemoveScanDraftItem(1001))
	assert.Equal(t, nav.NoModal{}, n.Modal())
}

func TestInventoryOrderIsStableByExpiration(t *testing.T) {
	seed := store.Seed{Inventory: []store.InventoryItem{
		{ID: 1, Name: "late", ExpirationDate: "2026-12-01", Quantity: 1},
		{ID: 2, Name: "tie-a", ExpirationDate: "2026-10-20", Quantity: 1},
		{ID: 3, Name: "broken", ExpirationDate: "someday", Quantity: 1},
		{ID: 4, Name: "tie-b", ExpirationDate: "2026-10-20", Quantity: 1},
		{ID: 5, Name: "soon", ExpirationDate: "2026-10-18T08:00:00.000Z", Quantity: 1},
	}}
	s := store.New(nav.New(), nil, seed)
	var names []string
	for _, item := range s.Inventory() {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"soon", "tie-a", "tie-b", "late", "broken"}, names)
}

func TestRemindersOrderIsStableByDays(t *testing.T) {
	seed := store.Seed{
		Inventory: []store.InventoryItem{{ID: 1, Name: "a", ExpirationDate: "2026-10-20", Quantity: 1}},
		Reminders: []store.Reminder{
			{ID: 1, InventoryItemID: 1, RemindInDays: 3},
			{ID: 2, InventoryItemID: 2, RemindInDays: 1},
			{ID: 3, InventoryItemID: 3, RemindInDays: 3},
			{ID: 4, InventoryItemID: 4, RemindInDays: 0},
		},
	}
	s := store.New(nav.New(), nil, seed)
	var ids []int
	for _, r := range s.Reminders() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{4, 2, 1, 3}, ids)
}

func TestIDsStayUniqueAcrossMutations(t *testing.T) {
	s, n := newStore(t, true)
	check := func() {
		t.Helper()
		seen := map[int]bool{}
		next := s.NextInventoryID()
		for _, item := range s.Inventory() {
			require.False(t, seen[item.ID], "duplicate inventory id %d", item.ID)
			require.Less(t, item.ID, next)
			seen[item.ID] = true
		}
		seenR := map[int]bool{}
		nextR := s.NextReminderID()
		for _, r := range s.Reminders() {
			require.False(t, seenR[r.ID], "duplicate reminder id %d", r.ID)
			require.Less(t, r.ID, nextR)
			seenR[r.ID] = true
		}
	}
	for round := 0; round < 3; round++ {
		require.True(t, n.OpenAddItems())
		s.StartScanBatch()
		s.CommitScanBatch()
		check()
		s.RemoveInventoryItem(s.NextInventoryID() - 1)
		n.Close()
		check()
		s.SetOrUpdateReminder(s.NextInventoryID()-2, round, "09:00")
		n.Close()
		check()
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newStore(t, true)
	snap := s.Snapshot()
	snap.Inventory[0].Name = "mutated"
	snap.Reminders[0].ItemName = "mutated"
	assert.NotEqual(t, "mutated", s.Inventory()[0].Name)
	assert.NotEqual(t, "mutated", s.Reminders()[0].ItemName)
}

func TestTransitionsAreLogged(t *testing.T) {
	logger := &recordingLogger{}
	profile := catalog.MustDefault()
	s := store.New(nav.New(), profile, store.Seed{Inventory: profile.InitialInventory()}, store.WithLogger(logger))
	s.SetOrUpdateReminder(garlicID, 2, "09:00")
	s.RemoveInventoryItem(garlicID)
	s.RemoveInventoryItem(garlicID)
	require.Len(t, logger.lines, 2)
	assert.Equal(t, "Reminder set for Garlic in 2 days at 09:00", logger.lines[0])
	assert.Equal(t, "Removed Garlic from inventory", logger.lines[1])
}
