package catalog

import (
	"sort"
	"time"

	"github.com/kingrea/wasteless/internal/store"
	"github.com/kingrea/wasteless/internal/timefmt"
)

// ScanIDBase is the first id handed to mock scan results. It sits well above
// any seeded inventory id so drafts and inventory never collide.
const ScanIDBase = 1001

var starterQuantityByName = map[string]int{
	"Chicken Breast": 2,
	"Rice":           1,
	"Broccoli":       1,
	"Garlic":         3,
	"Soy Sauce":      1,
}

var starterReminderTimes = [...]string{"09:00", "10:00"}

// StarterQuantity returns the seeded quantity for an ingredient name.
func StarterQuantity(name string) int {
	if q, ok := starterQuantityByName[name]; ok {
		return q
	}
	return 1
}

// InitialInventory maps every catalog ingredient to an inventory item that
// keeps the ingredient id as both its id and its provenance link.
func (p *Profile) InitialInventory() []store.InventoryItem {
	items := make([]store.InventoryItem, 0, len(p.Ingredients))
	for _, in := range p.Ingredients {
		source := in.ID
		items = append(items, store.InventoryItem{
			ID:                 in.ID,
			SourceIngredientID: &source,
			Name:               in.Name,
			Category:           in.Category,
			CaloriesPerUnit:    in.CaloriesPerUnit,
			ExpirationDate:     in.ExpirationDate,
			Quantity:           StarterQuantity(in.Name),
		})
	}
	return items
}

// InitialReminders creates one reminder for each of the two items expiring
// soonest, set one day ahead of expiry.
func InitialReminders(inventory []store.InventoryItem, now time.Time) []store.Reminder {
	ordered := make([]store.InventoryItem, len(inventory))
	copy(ordered, inventory)
	sort.SliceStable(ordered, func(i, j int) bool {
		return timefmt.DaysUntil(ordered[i].ExpirationDate, now) < timefmt.DaysUntil(ordered[j].ExpirationDate, now)
	})
	if len(ordered) > len(starterReminderTimes) {
		ordered = ordered[:len(starterReminderTimes)]
	}
	reminders := make([]store.Reminder, 0, len(ordered))
	for i, item := range ordered {
		reminders = append(reminders, store.Reminder{
			ID:              i + 1,
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			RemindInDays:    max(timefmt.DaysUntil(item.ExpirationDate, now)-1, 0),
			Time:            starterReminderTimes[i],
		})
	}
	return reminders
}

// MockScanBatch returns the fixed demo result of a simulated barcode scan.
func (p *Profile) MockScanBatch() []store.ScanDraftItem {
	fallback := p.Ingredients[0]
	lookup := func(name string) Ingredient {
		if in, ok := p.IngredientByName(name); ok {
			return in
		}
		return fallback
	}
	demo := p.DemoIngredient
	broccoli := lookup("Broccoli")
	chicken := lookup("Chicken Breast")
	return []store.ScanDraftItem{
		draftFrom(ScanIDBase, demo, 2, 5),
		draftFrom(ScanIDBase+1, broccoli, 1, 4),
		draftFrom(ScanIDBase+2, chicken, 1, 7),
	}
}

func draftFrom(id int, in Ingredient, quantity, expirationInDays int) store.ScanDraftItem {
	return store.ScanDraftItem{
		ID:               id,
		Name:             in.Name,
		Category:         in.Category,
		CaloriesPerUnit:  in.CaloriesPerUnit,
		Quantity:         quantity,
		ExpirationInDays: expirationInDays,
	}
}
