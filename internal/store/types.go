package store

// InventoryItem is one tracked pantry entry.
type InventoryItem struct {
	ID int `json:"id"`
	// SourceIngredientID links seeded items back to their catalog ingredient.
	// Items added through a scan have no source.
	SourceIngredientID *int    `json:"source_ingredient_id,omitempty"`
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	CaloriesPerUnit    float64 `json:"calories_per_unit"`
	ExpirationDate     string  `json:"expiration_date"`
	Quantity           int     `json:"quantity"`
}

// Reminder is a stored intent to be nudged about one inventory item.
// ItemName is a snapshot taken when the reminder was last written.
type Reminder struct {
	ID              int    `json:"id"`
	InventoryItemID int    `json:"inventory_item_id"`
	ItemName        string `json:"item_name"`
	RemindInDays    int    `json:"remind_in_days"`
	Time            string `json:"time"`
}

// ScanDraftItem is an editable result of a simulated scan awaiting
// confirmation. ExpirationInDays stays relative until the batch is committed.
type ScanDraftItem struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	CaloriesPerUnit  float64 `json:"calories_per_unit"`
	Quantity         int     `json:"quantity"`
	ExpirationInDays int     `json:"expiration_in_days"`
}

// ScanEdit carries the fields of a draft item that may be changed before
// the batch is committed.
type ScanEdit struct {
	Name             string
	Quantity         int
	ExpirationInDays int
}

// Snapshot is a read-only copy of every collection, in display order.
type Snapshot struct {
	Inventory []InventoryItem `json:"inventory"`
	Reminders []Reminder      `json:"reminders"`
	ScanDraft []ScanDraftItem `json:"scan_draft"`
}

// NextID returns one past the highest id in items, or 1 when empty.
func NextID[T any](items []T, id func(T) int) int {
	maxID := 0
	for _, item := range items {
		if v := id(item); v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

func inventoryID(item InventoryItem) int { return item.ID }
func reminderID(r Reminder) int          { return r.ID }
