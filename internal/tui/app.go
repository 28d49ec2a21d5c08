// internal/tui/app.go
//
// This is the main TUI for WasteLess. It uses bubbletea, which follows The
// Elm Architecture:
//
// 1. Model: the App, which holds the store, the navigator and widget state
// 2. Update: turns key presses and bridge intents into store/nav operations
// 3. View: renders the phone frame for the current screen and modal
//
// The App never edits the collections itself; every change goes through the
// store so the id, binding and cascade rules live in one place.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/wasteless/internal/bridge"
	"github.com/kingrea/wasteless/internal/camera"
	"github.com/kingrea/wasteless/internal/catalog"
	"github.com/kingrea/wasteless/internal/config"
	"github.com/kingrea/wasteless/internal/logbook"
	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/prefs"
	"github.com/kingrea/wasteless/internal/store"
	"github.com/kingrea/wasteless/internal/timefmt"
)

const (
	frameWidth  = 46
	frameHeight = 18
	logLines    = 4
)

// Logger receives diagnostics that do not belong in the activity log.
type Logger interface {
	Printf(format string, args ...any)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock pins the time source used for expiry math.
func WithClock(clock timefmt.Clock) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithCameraSource overrides the V4L device source.
func WithCameraSource(src camera.Source) AppOption {
	return func(a *App) {
		a.cameraSource = src
	}
}

// WithPrefsStore overrides the preference backend chosen by config.
func WithPrefsStore(s prefs.Store) AppOption {
	return func(a *App) {
		if s != nil {
			a.prefsStore = s
		}
	}
}

// WithProfile overrides the catalog loaded from config.
func WithProfile(p *catalog.Profile) AppOption {
	return func(a *App) {
		if p != nil {
			a.profile = p
		}
	}
}

// WithDiagnostics routes preference failures to logger.
func WithDiagnostics(logger Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.diag = logger
		}
	}
}

// IntentMsg carries an action posted to the bridge into the update loop.
type IntentMsg struct {
	Intent bridge.Intent
}

type cameraMsg struct {
	session *camera.Session
	state   camera.State
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	logbook *logbook.Logbook
	diag    Logger
	clock   timefmt.Clock
	ctx     context.Context

	profile      *catalog.Profile
	store        *store.Store
	nav          *nav.Navigator
	prefsStore   prefs.Store
	tabs         *prefs.TabMemory
	cameraSource camera.Source
	camera       *camera.Session

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	recipes list.Model
	form    *modalForm

	pageSize         int
	homeVisible      int
	remindersVisible int
	homeCursor       int
	reminderCursor   int
	scanCursor       int

	statusMsg string
	width     int
	height    int
}

// pantryChips is how many ingredients a recipe row previews.
const pantryChips = 4

// recipeItem implements list.Item for the recipes screen.
type recipeItem struct {
	recipe catalog.Recipe
	pantry []catalog.IngredientStatus
}

func (i recipeItem) Title() string { return i.recipe.Name }
func (i recipeItem) Description() string {
	times := fmt.Sprintf("%d cal · Prep %d min · Cook %d min", i.recipe.Calories, i.recipe.PrepTimeMinutes, i.recipe.CookTimeMinutes)
	chips := make([]string, 0, pantryChips)
	for _, st := range i.pantry[:min(pantryChips, len(i.pantry))] {
		mark := "✗"
		if st.InPantry {
			mark = "✓"
		}
		chips = append(chips, mark+" "+st.Name)
	}
	return times + "\n" + strings.Join(chips, " · ")
}
func (i recipeItem) FilterValue() string { return i.recipe.Name }

// NewApp wires the catalog, store, navigator and preference backend for the
// project described by cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		lb = nil
	}
	app := &App{
		config:       cfg,
		logbook:      lb,
		ctx:          context.Background(),
		cameraSource: camera.NewDeviceSource(),
		keys:         defaultKeyMap(),
		help:         help.New(),
		pageSize:     max(1, cfg.PageSize()),
	}
	app.diag = app.logbook
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.clock == nil {
		clock, err := cfg.Clock()
		if err != nil {
			return nil, err
		}
		app.clock = clock
	}
	if app.profile == nil {
		profile, err := loadProfile(cfg)
		if err != nil {
			return nil, err
		}
		app.profile = profile
	}
	if app.prefsStore == nil {
		ps, err := prefs.Open(app.ctx, cfg.Prefs())
		if err != nil {
			app.logWarn("Preferences unavailable (%v); using memory", err)
			app.diag.Printf("prefs: open %s backend: %v", cfg.Prefs().Backend, err)
			ps = prefs.NewMemoryStore()
		}
		app.prefsStore = ps
	}
	app.tabs = prefs.NewTabMemory(app.prefsStore, app.diag)

	initialTab := nav.TabHome
	if cfg.RememberTab() {
		initialTab = app.tabs.Load(app.ctx)
	}
	app.nav = nav.New(nav.WithInitialTab(initialTab), nav.WithTabObserver(app.onTabChange))

	inventory := app.profile.InitialInventory()
	app.store = store.New(app.nav, app.profile, store.Seed{
		Inventory: inventory,
		Reminders: catalog.InitialReminders(inventory, app.clock.Now()),
	}, store.WithClock(app.clock), store.WithLogger(app.logbook))

	app.homeVisible = app.pageSize
	app.remindersVisible = app.pageSize
	app.recipes = newRecipeList(app.recipeItems())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	app.spinner = sp

	app.logInfo("Session opened · %d items, %d reminders, tab %s",
		len(inventory), len(app.store.Reminders()), initialTab)
	return app, nil
}

func loadProfile(cfg *config.Config) (*catalog.Profile, error) {
	if path := cfg.CatalogPath(); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Default()
}

func newRecipeList(items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(3)
	l := list.New(items, delegate, frameWidth-4, frameHeight-4)
	l.Title = "Suggested recipes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// recipeItems pairs each recipe with its pantry status against the current
// inventory.
func (a *App) recipeItems() []list.Item {
	inventory := a.store.Inventory()
	items := make([]list.Item, len(a.profile.Recipes))
	for i, r := range a.profile.Recipes {
		items[i] = recipeItem{recipe: r, pantry: catalog.PantryStatus(r, inventory)}
	}
	return items
}

// Store exposes the domain store, for the bridge processor and tests.
func (a *App) Store() *store.Store { return a.store }

// Navigator exposes the navigation state machine.
func (a *App) Navigator() *nav.Navigator { return a.nav }

// Close releases the camera and the preference backend.
func (a *App) Close() error {
	a.releaseCamera()
	if a.prefsStore != nil {
		return a.prefsStore.Close()
	}
	return nil
}

func (a *App) onTabChange(tab nav.Tab) {
	a.homeCursor, a.reminderCursor = 0, 0
	if a.config != nil && a.config.RememberTab() {
		a.tabs.Save(a.ctx, tab)
	}
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if _, ok := a.nav.Screen().(nav.AddItemsScan); ok {
		return a.startCamera()
	}
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = frameWidth
		return a, nil

	case cameraMsg:
		if msg.session != a.camera {
			return a, nil
		}
		a.logInfo("Camera %s", msg.state)
		return a, nil

	case spinner.TickMsg:
		if a.camera == nil || a.camera.State() != camera.StateLoading {
			return a, nil
		}
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case IntentMsg:
		cmd = a.handleIntent(msg.Intent)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) && !(msg.String() == "q" && a.form != nil && a.form.textFocused()) {
			a.releaseCamera()
			a.logInfo("Session closed")
			return a, tea.Quit
		}
		if a.nav.HasModal() {
			cmd = a.updateModal(msg)
		} else {
			cmd = a.updateScreen(msg)
		}

	default:
		if _, ok := a.nav.Screen().(nav.Recipes); ok {
			a.recipes, cmd = a.recipes.Update(msg)
		}
	}
	a.syncForm()
	a.clampCursors()
	if _, ok := a.nav.Screen().(nav.Recipes); ok {
		a.recipes.SetItems(a.recipeItems())
	}
	return a, cmd
}

// syncForm rebuilds the modal form whenever the open modal changes.
func (a *App) syncForm() {
	current := a.nav.Modal()
	if _, none := current.(nav.NoModal); none {
		a.form = nil
		return
	}
	if a.form != nil && a.form.modal == current {
		return
	}
	a.form = buildForm(current, a.store)
}

func (a *App) clampCursors() {
	a.homeCursor = clampIndex(a.homeCursor, min(a.homeVisible, len(a.store.Inventory())))
	a.reminderCursor = clampIndex(a.reminderCursor, min(a.remindersVisible, len(a.store.Reminders())))
	a.scanCursor = clampIndex(a.scanCursor, len(a.store.ScanDraft()))
}

func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (a *App) updateScreen(msg tea.KeyMsg) tea.Cmd {
	if a.nav.ShowBottomNav() {
		switch {
		case key.Matches(msg, a.keys.Recipes):
			a.nav.GoToTab(nav.TabRecipes)
			return nil
		case key.Matches(msg, a.keys.Home):
			a.nav.GoToTab(nav.TabHome)
			return nil
		case key.Matches(msg, a.keys.Reminders):
			a.nav.GoToTab(nav.TabReminders)
			return nil
		case key.Matches(msg, a.keys.RememberTab):
			return a.toggleRememberTab()
		}
	}
	switch a.nav.Screen().(type) {
	case nav.Home:
		return a.updateHome(msg)
	case nav.Recipes:
		if key.Matches(msg, a.keys.Open) {
			if item, ok := a.recipes.SelectedItem().(recipeItem); ok {
				a.nav.OpenRecipe(item.recipe.ID)
			}
			return nil
		}
		var cmd tea.Cmd
		a.recipes, cmd = a.recipes.Update(msg)
		return cmd
	case nav.RecipeDetail:
		if key.Matches(msg, a.keys.Back) {
			a.nav.BackToRecipes()
		}
	case nav.Reminders:
		return a.updateReminders(msg)
	case nav.AddItemsScan:
		switch {
		case key.Matches(msg, a.keys.Back):
			a.releaseCamera()
			a.nav.ScanBack()
		case key.Matches(msg, a.keys.Done):
			a.releaseCamera()
			a.scanCursor = 0
			a.store.StartScanBatch()
		}
	case nav.AddItemsConfirm:
		return a.updateConfirm(msg)
	}
	return nil
}

func (a *App) updateHome(msg tea.KeyMsg) tea.Cmd {
	items := a.visibleInventory()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.homeCursor--
	case key.Matches(msg, a.keys.Down):
		a.homeCursor++
	case key.Matches(msg, a.keys.LoadMore):
		if len(a.store.Inventory()) > a.homeVisible {
			a.homeVisible += a.pageSize
		}
	case key.Matches(msg, a.keys.SetReminder):
		if len(items) > 0 {
			a.nav.Open(nav.HomeSetReminder{InventoryItemID: items[clampIndex(a.homeCursor, len(items))].ID})
		}
	case key.Matches(msg, a.keys.Remove):
		if len(items) > 0 {
			a.nav.Open(nav.HomeRemoveItem{InventoryItemID: items[clampIndex(a.homeCursor, len(items))].ID})
		}
	case key.Matches(msg, a.keys.AddItems):
		if a.nav.OpenAddItems() {
			return a.startCamera()
		}
	}
	return nil
}

func (a *App) updateReminders(msg tea.KeyMsg) tea.Cmd {
	reminders := a.visibleReminders()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.reminderCursor--
	case key.Matches(msg, a.keys.Down):
		a.reminderCursor++
	case key.Matches(msg, a.keys.LoadMore):
		if len(a.store.Reminders()) > a.remindersVisible {
			a.remindersVisible += a.pageSize
		}
	case key.Matches(msg, a.keys.NewReminder):
		a.nav.Open(nav.NewReminderEditor())
	case key.Matches(msg, a.keys.Edit):
		if len(reminders) > 0 {
			a.nav.Open(nav.EditReminder(reminders[clampIndex(a.reminderCursor, len(reminders))].ID))
		}
	case key.Matches(msg, a.keys.Remove):
		if len(reminders) > 0 {
			a.nav.Open(nav.ReminderCancel{ReminderID: reminders[clampIndex(a.reminderCursor, len(reminders))].ID})
		}
	}
	return nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	draft := a.store.ScanDraft()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.scanCursor--
	case key.Matches(msg, a.keys.Down):
		a.scanCursor++
	case key.Matches(msg, a.keys.Edit):
		if len(draft) > 0 {
			a.nav.Open(nav.ScanEditItem{ScanItemID: draft[clampIndex(a.scanCursor, len(draft))].ID})
		}
	case key.Matches(msg, a.keys.Remove):
		if len(draft) > 0 {
			a.nav.Open(nav.ScanRemoveItem{ScanItemID: draft[clampIndex(a.scanCursor, len(draft))].ID})
		}
	case key.Matches(msg, a.keys.Back):
		if a.nav.ConfirmBack() {
			return a.startCamera()
		}
	case key.Matches(msg, a.keys.Confirm):
		if len(draft) == 0 {
			a.statusMsg = "Nothing to add. Go back to scan and try again."
			return nil
		}
		a.store.CommitScanBatch()
		a.homeCursor = 0
		a.statusMsg = fmt.Sprintf("Added %d item(s) to inventory", len(draft))
	}
	return nil
}

func (a *App) updateModal(msg tea.KeyMsg) tea.Cmd {
	a.syncForm()
	f := a.form
	if f == nil {
		a.nav.Close()
		return nil
	}
	if f.textFocused() {
		switch msg.Type {
		case tea.KeyEsc:
			a.nav.Close()
			return nil
		case tea.KeyEnter:
			a.submitForm()
			return nil
		case tea.KeyTab:
			f.nextField()
			return nil
		}
		var cmd tea.Cmd
		f.name, cmd = f.name.Update(msg)
		return cmd
	}
	switch f.kind {
	case formInfo:
		if key.Matches(msg, a.keys.Open) || key.Matches(msg, a.keys.Back) {
			a.nav.Close()
		}
	case formConfirm:
		switch {
		case key.Matches(msg, a.keys.Yes):
			a.submitForm()
		case key.Matches(msg, a.keys.No), key.Matches(msg, a.keys.Back):
			a.nav.Close()
		}
	case formFields:
		switch {
		case key.Matches(msg, a.keys.Open):
			a.submitForm()
		case key.Matches(msg, a.keys.Back):
			a.nav.Close()
		case key.Matches(msg, a.keys.NextField):
			f.nextField()
		case key.Matches(msg, a.keys.Prev):
			if field := f.focused(); field != nil {
				field.cycle(-1)
			}
		case key.Matches(msg, a.keys.Next):
			if field := f.focused(); field != nil {
				field.cycle(1)
			}
		case key.Matches(msg, a.keys.Up):
			f.focus = clampIndex(f.focus-1, len(f.fields))
		case key.Matches(msg, a.keys.Down):
			f.focus = clampIndex(f.focus+1, len(f.fields))
		}
	}
	return nil
}

// submitForm applies the action the open modal was invoked to confirm.
func (a *App) submitForm() {
	f := a.form
	switch f.modal.(type) {
	case nav.HomeSetReminder:
		a.store.SetOrUpdateReminder(f.itemID, f.field("Remind me in").current().value, f.field("At").current().text)
	case nav.HomeRemoveItem:
		a.store.RemoveInventoryItem(f.itemID)
	case nav.ScanEditItem:
		a.store.EditScanDraftItem(f.scanID, f.scanEdit())
	case nav.ScanRemoveItem:
		a.store.RemoveScanDraftItem(f.scanID)
	case nav.ReminderEditor:
		a.store.SaveReminder(f.editID, f.field("For").current().value, f.field("Remind me in").current().value, f.field("At").current().text)
	case nav.ReminderCancel:
		a.store.CancelReminder(f.reminder)
	default:
		a.nav.Close()
	}
}

func (a *App) toggleRememberTab() tea.Cmd {
	enabled := !a.config.RememberTab()
	if err := a.config.SetRememberTab(enabled); err != nil {
		a.statusMsg = fmt.Sprintf("Could not save setting: %v", err)
		a.logWarn("Remember tab toggle failed: %v", err)
		return nil
	}
	if enabled {
		a.tabs.Save(a.ctx, a.nav.ActiveTab())
		a.statusMsg = "Active tab will be remembered"
	} else {
		a.statusMsg = "Active tab will not be remembered"
	}
	a.logInfo("Settings · remember tab %t", enabled)
	return nil
}

// startCamera opens a fresh capture session for the scan screen. It runs
// off the update loop and reports back through cameraMsg.
func (a *App) startCamera() tea.Cmd {
	a.releaseCamera()
	session := camera.NewSession(a.cameraSource)
	a.camera = session
	ctx := a.ctx
	start := func() tea.Msg {
		return cameraMsg{session: session, state: session.Start(ctx)}
	}
	return tea.Batch(start, a.spinner.Tick)
}

func (a *App) releaseCamera() {
	if a.camera == nil {
		return
	}
	if err := a.camera.Release(); err != nil {
		a.diag.Printf("camera: release: %v", err)
	}
}

// handleIntent replays a bridge intent through the same operations the
// keys use.
func (a *App) handleIntent(in bridge.Intent) tea.Cmd {
	var outcome string
	switch in.Type {
	case bridge.IntentSetReminder:
		p, err := in.SetReminder()
		if err != nil {
			outcome = err.Error()
			break
		}
		outcome = a.store.SetOrUpdateReminder(p.ItemID, p.Days, p.Time).String()
	case bridge.IntentRemoveItem:
		p, err := in.Item()
		if err != nil {
			outcome = err.Error()
			break
		}
		outcome = a.store.RemoveInventoryItem(p.ItemID).String()
	case bridge.IntentCancelReminder:
		p, err := in.Reminder()
		if err != nil {
			outcome = err.Error()
			break
		}
		outcome = a.store.CancelReminder(p.ReminderID).String()
	case bridge.IntentGoToTab:
		p, err := in.Tab()
		if err != nil {
			outcome = err.Error()
			break
		}
		tab, _ := nav.ParseTab(p.Tab)
		outcome = legality(a.nav.GoToTab(tab))
	case bridge.IntentStartScan:
		if _, home := a.nav.Screen().(nav.Home); home {
			a.nav.OpenAddItems()
		}
		a.releaseCamera()
		a.scanCursor = 0
		outcome = a.store.StartScanBatch().String()
	case bridge.IntentCommitScan:
		if len(a.store.ScanDraft()) == 0 {
			outcome = store.Rejected.String()
			break
		}
		outcome = a.store.CommitScanBatch().String()
	default:
		outcome = "unsupported"
	}
	a.logInfo("Bridge · %s %s → %s", in.Type, in.IntentID, outcome)
	return nil
}

func legality(ok bool) string {
	if ok {
		return store.Applied.String()
	}
	return store.Rejected.String()
}

func (a *App) visibleInventory() []store.InventoryItem {
	items := a.store.Inventory()
	return items[:min(a.homeVisible, len(items))]
}

func (a *App) visibleReminders() []store.Reminder {
	reminders := a.store.Reminders()
	return reminders[:min(a.remindersVisible, len(reminders))]
}

func (a *App) now() string {
	return strings.TrimSpace(a.clock.Now().Format("Mon 2 Jan"))
}
