package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/wasteless/internal/camera"
	"github.com/kingrea/wasteless/internal/catalog"
	"github.com/kingrea/wasteless/internal/nav"
	"github.com/kingrea/wasteless/internal/timefmt"
)

var (
	accent    = lipgloss.Color("#3FA66B")
	danger    = lipgloss.Color("#FF6B6B")
	muted     = lipgloss.Color("#888888")
	subtle    = lipgloss.Color("#444444")
	highlight = lipgloss.Color("#5B8DEF")

	brandStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	overlineStyle = lipgloss.NewStyle().Foreground(muted)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(muted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	badgeStyle    = lipgloss.NewStyle().Width(9).Foreground(accent)
	dangerStyle   = lipgloss.NewStyle().Foreground(danger)
	inStockStyle  = lipgloss.NewStyle().Foreground(accent)
	frameStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1).
			Width(frameWidth)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1).
			Width(frameWidth - 6)
)

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		brandStyle.Render("WasteLess"),
		metaStyle.Render("  "+a.now()),
	)
	sections := []string{header, "", a.renderScreen()}
	if a.form != nil {
		sections = append(sections, "", a.renderModal(a.form))
	}
	if a.nav.ShowBottomNav() {
		sections = append(sections, "", a.renderBottomNav())
	}
	frame := frameStyle.Render(strings.Join(sections, "\n"))

	out := []string{frame}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		out = append(out, logPanel)
	}
	out = append(out, a.renderHelp())
	if a.statusMsg != "" {
		out = append(out, metaStyle.Render(a.statusMsg))
	}
	return strings.Join(out, "\n")
}

func screenHeader(overline, title string) string {
	return overlineStyle.Render(overline) + "\n" + titleStyle.Render(title)
}

func (a *App) renderScreen() string {
	switch s := a.nav.Screen().(type) {
	case nav.Home:
		return a.renderHome()
	case nav.Recipes:
		return a.recipes.View()
	case nav.RecipeDetail:
		return a.renderRecipeDetail(s.RecipeID)
	case nav.Reminders:
		return a.renderReminders()
	case nav.AddItemsScan:
		return a.renderScan()
	case nav.AddItemsConfirm:
		return a.renderConfirm()
	}
	return ""
}

func (a *App) renderHome() string {
	lines := []string{screenHeader("Inventory", "Expiring soon"), ""}
	now := a.clock.Now()
	items := a.visibleInventory()
	if len(items) == 0 {
		lines = append(lines, metaStyle.Render("Nothing in the pantry. Press a to add items."))
	}
	for i, item := range items {
		count, unit := timefmt.ExpiryParts(timefmt.ExpiryLabel(item.ExpirationDate, now))
		status := "not set"
		if r, ok := a.store.ReminderFor(item.ID); ok {
			status = timefmt.ReminderStatus(r.RemindInDays)
		}
		row := fmt.Sprintf("%s %-16s 🔔 %s",
			badgeStyle.Render(count+" "+unit),
			truncate(item.Name, 16),
			status,
		)
		meta := fmt.Sprintf("          x%d | %s", item.Quantity, item.Category)
		lines = append(lines, cursorRow(row, i == a.homeCursor), metaStyle.Render(meta))
	}
	more := "load more"
	if len(a.store.Inventory()) <= a.homeVisible {
		more = metaStyle.Render(more)
	}
	lines = append(lines, "", fmt.Sprintf("[l] %s   [a] + add items", more))
	return strings.Join(lines, "\n")
}

func (a *App) renderRecipeDetail(id int) string {
	recipe, ok := a.profile.RecipeByID(id)
	if !ok {
		return "← back to recipes\n\n" + metaStyle.Render("Recipe not found.")
	}
	lines := []string{
		"← back to recipes",
		metaStyle.Render("[" + catalog.ImageFor(recipe.Name) + "]"),
		"",
		titleStyle.Render(recipe.Name),
		metaStyle.Render(recipe.Description),
		"",
		fmt.Sprintf("Calories %d · Prep %d min · Cook %d min", recipe.Calories, recipe.PrepTimeMinutes, recipe.CookTimeMinutes),
		"",
		titleStyle.Render("Ingredients"),
	}
	for _, st := range catalog.PantryStatus(recipe, a.store.Inventory()) {
		pill := dangerStyle.Render("missing")
		if st.InPantry {
			pill = inStockStyle.Render("in pantry")
		}
		lines = append(lines, fmt.Sprintf("• %-22s %s", st.Name, pill))
	}
	lines = append(lines, "", titleStyle.Render("Instructions"))
	for i, step := range recipe.Instructions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	return lipgloss.NewStyle().Width(frameWidth - 4).Render(strings.Join(lines, "\n"))
}

func (a *App) renderReminders() string {
	lines := []string{screenHeader("Planner", "Current reminders"), "", "[n] + set new", ""}
	reminders := a.visibleReminders()
	if len(reminders) == 0 {
		lines = append(lines, metaStyle.Render("No reminders yet. Set one now to get ahead of expiration dates."))
	}
	for i, r := range reminders {
		row := fmt.Sprintf("%-24s [e] ✎  [x] ✕", truncate(r.ItemName, 24))
		meta := fmt.Sprintf("in %s at %s", timefmt.DaysPhrase(r.RemindInDays), timefmt.ToMeridiem(r.Time))
		lines = append(lines, cursorRow(row, i == a.reminderCursor), metaStyle.Render("  "+meta))
	}
	more := "load more"
	if len(a.store.Reminders()) <= a.remindersVisible {
		more = metaStyle.Render(more)
	}
	lines = append(lines, "", "[l] "+more)
	return strings.Join(lines, "\n")
}

func (a *App) renderScan() string {
	lines := []string{
		screenHeader("Add Items", "Capture barcode(s)"),
		metaStyle.Render("Demo mode is active. Press done to continue with mock scanned items."),
		"",
	}
	var preview string
	state := camera.StateLoading
	if a.camera != nil {
		state = a.camera.State()
	}
	switch state {
	case camera.StateLoading:
		preview = a.spinner.View() + " Starting camera..."
	case camera.StateReady:
		preview = "● Live: " + a.camera.Label()
	case camera.StateUnsupported:
		preview = "Camera preview is not supported on this device."
	case camera.StateDenied:
		preview = "Camera access was denied. You can still continue in demo mode."
	case camera.StateError:
		preview = "Camera failed to start. Continue with demo mode."
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(subtle).
		Width(frameWidth-6).
		Height(5).
		Align(lipgloss.Center, lipgloss.Center).
		Render(preview)
	lines = append(lines, box, "", "[b] back   [d] done")
	return lipgloss.NewStyle().Width(frameWidth - 4).Render(strings.Join(lines, "\n"))
}

func (a *App) renderConfirm() string {
	lines := []string{
		screenHeader("Add Items", "Scanned items"),
		metaStyle.Render("Confirm details before adding to inventory."),
		"",
	}
	draft := a.store.ScanDraft()
	if len(draft) == 0 {
		lines = append(lines, metaStyle.Render("No items left in this scan. Go back to scan and try again."))
	}
	for i, item := range draft {
		row := fmt.Sprintf("x%-3d %-9s %-18s", item.Quantity, timefmt.ExpiryLabelFromDays(item.ExpirationInDays), truncate(item.Name, 18))
		meta := fmt.Sprintf("     %s • %g cal / unit", item.Category, item.CaloriesPerUnit)
		lines = append(lines, cursorRow(row, i == a.scanCursor), metaStyle.Render(meta))
	}
	confirm := "confirm"
	if len(draft) == 0 {
		confirm = metaStyle.Render(confirm)
	}
	lines = append(lines, "", "[b] back   [c] "+confirm)
	return strings.Join(lines, "\n")
}

func (a *App) renderModal(f *modalForm) string {
	lines := []string{titleStyle.Render(f.title)}
	for i, line := range f.lines {
		if i == 0 {
			lines = append(lines, selectedStyle.Render(line))
			continue
		}
		lines = append(lines, metaStyle.Render(line))
	}
	if len(f.fields) > 0 {
		lines = append(lines, "")
	}
	for i, field := range f.fields {
		value := field.display()
		if field.kind == fieldText {
			value = f.name.View()
		}
		row := fmt.Sprintf("%s: %s", field.label, value)
		if i == f.focus {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	lines = append(lines, "")
	switch f.kind {
	case formConfirm:
		lines = append(lines, dangerStyle.Render("[y] "+f.action)+"   [n] no, back")
	default:
		lines = append(lines, "[enter] "+f.action)
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderBottomNav() string {
	active := a.nav.ActiveTab()
	parts := make([]string, 0, len(nav.Tabs))
	for i, tab := range nav.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Title())
		if tab == active {
			parts = append(parts, selectedStyle.Render("["+label+"]"))
			continue
		}
		parts = append(parts, metaStyle.Render(" "+label+" "))
	}
	return lipgloss.NewStyle().
		Width(frameWidth - 4).
		Align(lipgloss.Center).
		Render(strings.Join(parts, "  "))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(highlight).
		Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := metaStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func (a *App) renderHelp() string {
	if a.form != nil {
		return a.help.ShortHelpView(a.keys.modalHelp(a.form.modal, a.form.kind))
	}
	bindings := a.keys.screenHelp(a.nav.Screen())
	if a.nav.ShowBottomNav() {
		bindings = append(bindings, a.keys.RememberTab)
	}
	return a.help.ShortHelpView(bindings)
}

func cursorRow(row string, selected bool) string {
	if selected {
		return selectedStyle.Render("› " + row)
	}
	return "  " + row
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
