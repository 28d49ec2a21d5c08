// Package nav holds the screen-routing and modal-overlay state machines.
//
// Screen and Modal are closed sums: every variant is a struct in this
// package and the unexported marker methods keep other packages from adding
// more, so a type switch over the variants listed here is exhaustive.
package nav

import "strings"

// Tab is one of the three top-level destinations of the bottom bar.
type Tab string

const (
	TabHome      Tab = "home"
	TabRecipes   Tab = "recipes"
	TabReminders Tab = "reminders"
)

// Tabs lists the tabs in bottom-bar order.
var Tabs = []Tab{TabRecipes, TabHome, TabReminders}

// ParseTab reads a persisted tab name. Unknown or empty values fall back to
// TabHome with ok=false.
func ParseTab(value string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(value))) {
	case TabHome:
		return TabHome, true
	case TabRecipes:
		return TabRecipes, true
	case TabReminders:
		return TabReminders, true
	}
	return TabHome, false
}

// Title is the label shown on the bottom bar.
func (t Tab) Title() string {
	switch t {
	case TabRecipes:
		return "Recipes"
	case TabReminders:
		return "Reminders"
	}
	return "Home"
}

// ScreenID names a screen variant.
type ScreenID string

const (
	ScreenHome            ScreenID = "home"
	ScreenRecipes         ScreenID = "recipes"
	ScreenRecipeDetail    ScreenID = "recipeDetail"
	ScreenReminders       ScreenID = "reminders"
	ScreenAddItemsScan    ScreenID = "addItemsScan"
	ScreenAddItemsConfirm ScreenID = "addItemsConfirm"
)

// Screen is the single full-page view currently shown.
type Screen interface {
	ID() ScreenID
	isScreen()
}

type (
	// Home lists inventory ordered by expiration.
	Home struct{}
	// Recipes lists catalog recipes.
	Recipes struct{}
	// RecipeDetail shows one recipe. RecipeID may not exist in the catalog;
	// the detail view renders a not-found state for it.
	RecipeDetail struct{ RecipeID int }
	// Reminders lists stored reminders.
	Reminders struct{}
	// AddItemsScan is the camera step of the add-items flow.
	AddItemsScan struct{}
	// AddItemsConfirm reviews the scan draft before committing it.
	AddItemsConfirm struct{}
)

func (Home) ID() ScreenID            { return ScreenHome }
func (Recipes) ID() ScreenID         { return ScreenRecipes }
func (RecipeDetail) ID() ScreenID    { return ScreenRecipeDetail }
func (Reminders) ID() ScreenID       { return ScreenReminders }
func (AddItemsScan) ID() ScreenID    { return ScreenAddItemsScan }
func (AddItemsConfirm) ID() ScreenID { return ScreenAddItemsConfirm }

func (Home) isScreen()            {}
func (Recipes) isScreen()         {}
func (RecipeDetail) isScreen()    {}
func (Reminders) isScreen()       {}
func (AddItemsScan) isScreen()    {}
func (AddItemsConfirm) isScreen() {}

// ScreenForTab returns the landing screen of a tab.
func ScreenForTab(t Tab) Screen {
	switch t {
	case TabRecipes:
		return Recipes{}
	case TabReminders:
		return Reminders{}
	}
	return Home{}
}

// TabOf reports which tab is highlighted while s is shown. The add-items
// flow belongs to Home.
func TabOf(s Screen) Tab {
	switch s.(type) {
	case Recipes, RecipeDetail:
		return TabRecipes
	case Reminders:
		return TabReminders
	}
	return TabHome
}

// InScanFlow reports whether s is one of the add-items sub-flow screens,
// which hide the bottom bar.
func InScanFlow(s Screen) bool {
	switch s.(type) {
	case AddItemsScan, AddItemsConfirm:
		return true
	}
	return false
}
