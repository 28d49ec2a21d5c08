package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/wasteless/internal/bridge"
	"github.com/kingrea/wasteless/internal/camera"
	"github.com/kingrea/wasteless/internal/config"
	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/prefs"
	"github.com/kingrea/wasteless/internal/timefmt"
)

var pinnedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type stubStream struct {
	closed int
}

func (s *stubStream) Label() string { return "stub camera" }

func (s *stubStream) Close() error {
	s.closed++
	return nil
}

type stubCamera struct {
	stream *stubStream
}

func (c *stubCamera) Open(context.Context, camera.Constraints) (camera.Stream, error) {
	return c.stream, nil
}

func TestHomeSetReminderEditsExisting(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "down", "s")
	modal, ok := app.nav.Modal().(nav.HomeSetReminder)
	if !ok || modal.InventoryItemID != 4 {
		t.Fatalf("expected set reminder modal for Garlic, got %#v", app.nav.Modal())
	}
	if app.form == nil || app.form.title != "Edit Reminder" {
		t.Fatalf("expected edit form for existing reminder, got %+v", app.form)
	}
	app = press(t, app, "left", "tab", "right", "enter")
	set, ok := app.nav.Modal().(nav.HomeReminderSet)
	if !ok {
		t.Fatalf("expected reminder set modal, got %#v", app.nav.Modal())
	}
	if set.ItemName != "Garlic" || set.RemindInDays != 1 || set.Time != "12:00" {
		t.Fatalf("unexpected modal payload %+v", set)
	}
	if got := len(app.store.Reminders()); got != 2 {
		t.Fatalf("expected reminder to be edited in place, got %d reminders", got)
	}
	app = press(t, app, "enter")
	if app.nav.HasModal() {
		t.Fatalf("expected enter to close the confirmation")
	}
}

func TestEscapeDiscardsReminderForm(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	before := app.store.Reminders()
	app = press(t, app, "s", "right", "right", "esc")
	if app.nav.HasModal() {
		t.Fatalf("expected modal to close")
	}
	after := app.store.Reminders()
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("closing the form must not change reminders: %+v -> %+v", before, after)
	}
}

func TestRemoveItemCascadesReminder(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "down", "x")
	if _, ok := app.nav.Modal().(nav.HomeRemoveItem); !ok {
		t.Fatalf("expected remove modal, got %#v", app.nav.Modal())
	}
	if !strings.Contains(app.View(), "Remove item?") {
		t.Fatalf("expected remove prompt in view")
	}
	app = press(t, app, "y")
	removed, ok := app.nav.Modal().(nav.HomeItemRemoved)
	if !ok || removed.ItemName != "Garlic" {
		t.Fatalf("expected removed modal for Garlic, got %#v", app.nav.Modal())
	}
	if _, ok := app.store.ReminderFor(4); ok {
		t.Fatalf("expected Garlic reminder to be removed with the item")
	}
	if _, ok := app.store.ReminderFor(1); !ok {
		t.Fatalf("expected other reminders to survive")
	}
}

func TestScanFlowCommitsBatch(t *testing.T) {
	cam := &stubCamera{stream: &stubStream{}}
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(cam))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	if _, ok := app.nav.Screen().(nav.AddItemsScan); !ok {
		t.Fatalf("expected scan screen, got %#v", app.nav.Screen())
	}
	if app.camera == nil || app.camera.State() != camera.StateReady {
		t.Fatalf("expected camera to be ready")
	}
	if !strings.Contains(app.View(), "stub camera") {
		t.Fatalf("expected camera label in view")
	}

	app = press(t, app, "1")
	if _, ok := app.nav.Screen().(nav.AddItemsScan); !ok {
		t.Fatalf("tab keys must be ignored in the scan flow")
	}

	app = press(t, app, "d")
	if _, ok := app.nav.Screen().(nav.AddItemsConfirm); !ok {
		t.Fatalf("expected confirm screen, got %#v", app.nav.Screen())
	}
	if cam.stream.closed != 1 {
		t.Fatalf("expected camera to be released on done, closed %d times", cam.stream.closed)
	}
	if got := len(app.store.ScanDraft()); got != 3 {
		t.Fatalf("expected 3 draft items, got %d", got)
	}

	app = press(t, app, "e", "tab", "right", "enter")
	if app.nav.HasModal() {
		t.Fatalf("expected edit to close the modal")
	}
	if first := app.store.ScanDraft()[0]; first.Quantity != 3 || first.Name != "Spinach" {
		t.Fatalf("unexpected edited draft item %+v", first)
	}

	app = press(t, app, "c")
	if _, ok := app.nav.Screen().(nav.Home); !ok {
		t.Fatalf("expected home after confirm, got %#v", app.nav.Screen())
	}
	if got := len(app.store.ScanDraft()); got != 0 {
		t.Fatalf("expected draft to be cleared, got %d", got)
	}
	ids := map[int]bool{}
	for _, item := range app.store.Inventory() {
		ids[item.ID] = true
	}
	for _, id := range []int{8, 9, 10} {
		if !ids[id] {
			t.Fatalf("expected committed item with id %d", id)
		}
	}
}

func TestScanEditTypesName(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(&stubCamera{stream: &stubStream{}}))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	app = press(t, app, "d", "e")
	if app.form == nil || !app.form.textFocused() {
		t.Fatalf("expected name field to have focus")
	}
	app.form.name.SetValue("")
	app = press(t, app, "q", "enter")
	if got := app.store.ScanDraft()[0].Name; got != "q" {
		t.Fatalf("expected typed name, got %q", got)
	}
}

func TestConfirmWithEmptyDraftDoesNothing(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(nil))
	app = press(t, app, "a", "d")
	for range app.store.ScanDraft() {
		app = press(t, app, "x", "y")
	}
	app = press(t, app, "c")
	if _, ok := app.nav.Screen().(nav.AddItemsConfirm); !ok {
		t.Fatalf("expected to stay on confirm with an empty draft, got %#v", app.nav.Screen())
	}
	if got := len(app.store.Inventory()); got != 7 {
		t.Fatalf("expected inventory untouched, got %d items", got)
	}
}

func TestQuitReleasesCamera(t *testing.T) {
	cam := &stubCamera{stream: &stubStream{}}
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(cam))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	_, cmd = app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if cam.stream.closed != 1 {
		t.Fatalf("expected camera release on quit, closed %d times", cam.stream.closed)
	}
}

func TestBackReleasesCamera(t *testing.T) {
	cam := &stubCamera{stream: &stubStream{}}
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(cam))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	app = press(t, app, "b")
	if _, ok := app.nav.Screen().(nav.Home); !ok {
		t.Fatalf("expected home after back, got %#v", app.nav.Screen())
	}
	if cam.stream.closed != 1 {
		t.Fatalf("expected camera release on back, closed %d times", cam.stream.closed)
	}
}

func TestBridgeStartScanReleasesCamera(t *testing.T) {
	cam := &stubCamera{stream: &stubStream{}}
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore(), WithCameraSource(cam))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	if app.camera.State() != camera.StateReady {
		t.Fatalf("expected camera to be ready")
	}
	model, cmd = app.Update(IntentMsg{Intent: bridge.Intent{Version: 1, IntentID: "scan-1", Type: bridge.IntentStartScan}})
	app = runCommands(t, model, cmd)
	if _, ok := app.nav.Screen().(nav.AddItemsConfirm); !ok {
		t.Fatalf("expected confirm screen, got %#v", app.nav.Screen())
	}
	if cam.stream.closed != 1 {
		t.Fatalf("expected camera release on bridge scan, closed %d times", cam.stream.closed)
	}
}

func TestRecipeListShowsPantryChips(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "1")
	first, ok := app.recipes.Items()[0].(recipeItem)
	if !ok {
		t.Fatalf("unexpected list item %T", app.recipes.Items()[0])
	}
	desc := first.Description()
	if !strings.Contains(desc, "✓ Chicken Breast") || !strings.Contains(desc, "✓ Soy Sauce") {
		t.Fatalf("expected in-pantry chips, got %q", desc)
	}
	if strings.Contains(desc, "Broccoli") {
		t.Fatalf("expected only the first four ingredients, got %q", desc)
	}

	app = press(t, app, "2", "x", "y", "enter", "1")
	first = app.recipes.Items()[0].(recipeItem)
	if desc := first.Description(); !strings.Contains(desc, "✗ Chicken Breast") {
		t.Fatalf("expected chicken to be missing after removal, got %q", desc)
	}
}

type closeCountingStore struct {
	*prefs.MemoryStore
	closed int
}

func (c *closeCountingStore) Close() error {
	c.closed++
	return nil
}

func TestCloseReleasesCameraAndPrefs(t *testing.T) {
	cam := &stubCamera{stream: &stubStream{}}
	backend := &closeCountingStore{MemoryStore: prefs.NewMemoryStore()}
	app := newTestApp(t, t.TempDir(), backend, WithCameraSource(cam))
	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)
	if err := app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if cam.stream.closed != 1 {
		t.Fatalf("expected camera release on close, closed %d times", cam.stream.closed)
	}
	if backend.closed == 0 {
		t.Fatalf("expected prefs backend to be closed")
	}
}

func TestTabIsRemembered(t *testing.T) {
	projectDir := t.TempDir()
	memory := prefs.NewMemoryStore()
	app := newTestApp(t, projectDir, memory)
	app = press(t, app, "3")
	if _, ok := app.nav.Screen().(nav.Reminders); !ok {
		t.Fatalf("expected reminders screen, got %#v", app.nav.Screen())
	}
	got, err := memory.Get(context.Background(), prefs.ActiveTabKey)
	if err != nil || got != "reminders" {
		t.Fatalf("expected remembered tab, got %q (%v)", got, err)
	}
	reopened := newTestApp(t, projectDir, memory)
	if _, ok := reopened.nav.Screen().(nav.Reminders); !ok {
		t.Fatalf("expected restart to open reminders, got %#v", reopened.nav.Screen())
	}
}

func TestRememberTabToggle(t *testing.T) {
	projectDir := t.TempDir()
	memory := prefs.NewMemoryStore()
	app := newTestApp(t, projectDir, memory)
	app = press(t, app, "t")
	if app.config.RememberTab() {
		t.Fatalf("expected toggle to disable tab memory")
	}
	app = press(t, app, "1")
	if _, err := memory.Get(context.Background(), prefs.ActiveTabKey); err == nil {
		t.Fatalf("expected no tab to be stored while disabled")
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.RememberTab() {
		t.Fatalf("expected setting to be persisted")
	}
}

func TestReminderEditorCreatesForChosenItem(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "3", "n")
	if app.form == nil || app.form.title != "New reminder" {
		t.Fatalf("expected new reminder form, got %+v", app.form)
	}
	app = press(t, app, "right", "right", "enter")
	if app.nav.HasModal() {
		t.Fatalf("expected editor to close after save")
	}
	r, ok := app.store.ReminderFor(3)
	if !ok || r.ItemName != "Broccoli" || r.RemindInDays != 2 || r.Time != "10:00" {
		t.Fatalf("expected Broccoli reminder, got %+v (%t)", r, ok)
	}
	if got := len(app.store.Reminders()); got != 3 {
		t.Fatalf("expected 3 reminders, got %d", got)
	}
}

func TestCancelReminderFromRemindersTab(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "3", "x")
	if !strings.Contains(app.View(), "Cancel reminder?") {
		t.Fatalf("expected cancel prompt in view")
	}
	app = press(t, app, "y")
	removed, ok := app.nav.Modal().(nav.ReminderRemoved)
	if !ok || removed.ItemName != "Chicken Breast" {
		t.Fatalf("expected removed modal for Chicken Breast, got %#v", app.nav.Modal())
	}
	if got := len(app.store.Reminders()); got != 1 {
		t.Fatalf("expected 1 reminder left, got %d", got)
	}
}

func TestLoadMorePagesInventory(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	if got := len(app.visibleInventory()); got != 4 {
		t.Fatalf("expected first page of 4, got %d", got)
	}
	app = press(t, app, "l")
	if got := len(app.visibleInventory()); got != 7 {
		t.Fatalf("expected all 7 items after load more, got %d", got)
	}
}

func TestRecipeDetailUnknownID(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	app = press(t, app, "1", "enter")
	if detail, ok := app.nav.Screen().(nav.RecipeDetail); !ok || detail.RecipeID != 1 {
		t.Fatalf("expected first recipe detail, got %#v", app.nav.Screen())
	}
	app = press(t, app, "b")
	app.nav.OpenRecipe(99)
	if !strings.Contains(app.View(), "Recipe not found.") {
		t.Fatalf("expected not found placeholder")
	}
	if _, ok := app.nav.Screen().(nav.RecipeDetail); !ok {
		t.Fatalf("unknown recipe must not navigate away")
	}
}

func TestBridgeIntentsDriveStore(t *testing.T) {
	app := newTestApp(t, t.TempDir(), prefs.NewMemoryStore())
	send := func(kind bridge.IntentType, payload any) {
		t.Helper()
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		model, cmd := app.Update(IntentMsg{Intent: bridge.Intent{Version: 1, IntentID: string(kind), Type: kind, Payload: raw}})
		app = runCommands(t, model, cmd)
	}
	send(bridge.IntentSetReminder, bridge.SetReminderPayload{ItemID: 4, Days: 2, Time: "09:00"})
	if r, ok := app.store.ReminderFor(4); !ok || r.Time != "09:00" {
		t.Fatalf("expected garlic reminder at 09:00, got %+v", r)
	}
	app.nav.Close()
	send(bridge.IntentGoToTab, bridge.TabPayload{Tab: "recipes"})
	if _, ok := app.nav.Screen().(nav.Recipes); !ok {
		t.Fatalf("expected recipes screen, got %#v", app.nav.Screen())
	}
	send(bridge.IntentGoToTab, bridge.TabPayload{Tab: "home"})
	send(bridge.IntentStartScan, nil)
	if got := len(app.store.ScanDraft()); got != 3 {
		t.Fatalf("expected scan draft after start_scan, got %d", got)
	}
	send(bridge.IntentCommitScan, nil)
	if got := len(app.store.Inventory()); got != 10 {
		t.Fatalf("expected 10 items after commit, got %d", got)
	}
}

func newTestApp(t *testing.T, projectDir string, store prefs.Store, opts ...AppOption) *App {
	t.Helper()
	if err := config.InitDataDir(projectDir); err != nil {
		t.Fatalf("init data dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	base := []AppOption{
		WithClock(timefmt.FixedClock(pinnedNow)),
		WithPrefsStore(store),
		WithCameraSource(nil),
	}
	app, err := NewApp(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})
	return app
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys through Update, draining any commands they return.
func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, cmd := app.Update(keyMsg(k))
		app = runCommands(t, model, cmd)
	}
	return app
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 64 {
			t.Fatalf("command queue did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			return app
		default:
			nextModel, nextCmd := app.Update(msg)
			app, ok = nextModel.(*App)
			if !ok {
				t.Fatalf("unexpected model type: %T", nextModel)
			}
			queue = append(queue, nextCmd)
		}
	}
	return app
}
