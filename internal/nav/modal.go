package nav

// ModalID names a modal variant.
type ModalID string

const (
	ModalNone            ModalID = "none"
	ModalHomeSetReminder ModalID = "homeSetReminder"
	ModalHomeReminderSet ModalID = "homeReminderSet"
	ModalHomeRemoveItem  ModalID = "homeRemoveItem"
	ModalHomeItemRemoved ModalID = "homeItemRemoved"
	ModalScanEditItem    ModalID = "scanEditItem"
	ModalScanRemoveItem  ModalID = "scanRemoveItem"
	ModalReminderEditor  ModalID = "reminderEditor"
	ModalReminderCancel  ModalID = "reminderCancel"
	ModalReminderRemoved ModalID = "reminderRemoved"
)

// Modal is the overlay layered on the current screen. NoModal means none.
type Modal interface {
	ID() ModalID
	isModal()
}

// Payload fields that carry names, days or times are snapshots taken when
// the modal was opened. They are not looked up again while it is shown.
type (
	NoModal struct{}

	HomeSetReminder struct{ InventoryItemID int }

	HomeReminderSet struct {
		ItemName     string
		RemindInDays int
		Time         string
	}

	HomeRemoveItem struct{ InventoryItemID int }

	HomeItemRemoved struct{ ItemName string }

	ScanEditItem struct{ ScanItemID int }

	ScanRemoveItem struct{ ScanItemID int }

	// ReminderEditor edits ReminderID, or creates a reminder when it is nil.
	ReminderEditor struct{ ReminderID *int }

	ReminderCancel struct{ ReminderID int }

	ReminderRemoved struct{ ItemName string }
)

func (NoModal) ID() ModalID         { return ModalNone }
func (HomeSetReminder) ID() ModalID { return ModalHomeSetReminder }
func (HomeReminderSet) ID() ModalID { return ModalHomeReminderSet }
func (HomeRemoveItem) ID() ModalID  { return ModalHomeRemoveItem }
func (HomeItemRemoved) ID() ModalID { return ModalHomeItemRemoved }
func (ScanEditItem) ID() ModalID    { return ModalScanEditItem }
func (ScanRemoveItem) ID() ModalID  { return ModalScanRemoveItem }
func (ReminderEditor) ID() ModalID  { return ModalReminderEditor }
func (ReminderCancel) ID() ModalID  { return ModalReminderCancel }
func (ReminderRemoved) ID() ModalID { return ModalReminderRemoved }

func (NoModal) isModal()         {}
func (HomeSetReminder) isModal() {}
func (HomeReminderSet) isModal() {}
func (HomeRemoveItem) isModal()  {}
func (HomeItemRemoved) isModal() {}
func (ScanEditItem) isModal()    {}
func (ScanRemoveItem) isModal()  {}
func (ReminderEditor) isModal()  {}
func (ReminderCancel) isModal()  {}
func (ReminderRemoved) isModal() {}

// NewReminderEditor opens the editor in create mode.
func NewReminderEditor() ReminderEditor { return ReminderEditor{} }

// EditReminder opens the editor on an existing reminder.
func EditReminder(id int) ReminderEditor { return ReminderEditor{ReminderID: &id} }
