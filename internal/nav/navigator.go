package nav

// Navigator owns the active Screen and Modal. Transitions are driven only by
// user intents; each method reports whether the intent was legal from the
// current screen, and illegal intents leave the state untouched.
type Navigator struct {
	screen Screen
	modal  Modal
	onTab  func(Tab)
}

// Option customizes Navigator construction.
type Option func(*Navigator)

// WithInitialTab starts on the landing screen of t instead of Home.
func WithInitialTab(t Tab) Option {
	return func(n *Navigator) {
		n.screen = ScreenForTab(t)
	}
}

// WithTabObserver registers fn to be called whenever the highlighted tab
// changes.
func WithTabObserver(fn func(Tab)) Option {
	return func(n *Navigator) {
		n.onTab = fn
	}
}

// New returns a navigator on the Home screen with no modal.
func New(opts ...Option) *Navigator {
	n := &Navigator{screen: Home{}, modal: NoModal{}}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Screen returns the active screen.
func (n *Navigator) Screen() Screen { return n.screen }

// Modal returns the active modal; NoModal when nothing is layered.
func (n *Navigator) Modal() Modal { return n.modal }

// HasModal reports whether an overlay is open.
func (n *Navigator) HasModal() bool {
	_, none := n.modal.(NoModal)
	return !none
}

// ActiveTab is the tab highlighted for the current screen.
func (n *Navigator) ActiveTab() Tab { return TabOf(n.screen) }

// ShowBottomNav is false while the add-items flow is active.
func (n *Navigator) ShowBottomNav() bool { return !InScanFlow(n.screen) }

// GoToTab switches to a tab's landing screen. It is ignored inside the
// add-items flow, where the bottom bar is hidden.
func (n *Navigator) GoToTab(t Tab) bool {
	if InScanFlow(n.screen) {
		return false
	}
	if _, ok := ParseTab(string(t)); !ok {
		return false
	}
	n.setScreen(ScreenForTab(t))
	return true
}

// OpenRecipe shows the detail of a recipe from the recipe list. The id is
// not checked against the catalog.
func (n *Navigator) OpenRecipe(recipeID int) bool {
	if _, ok := n.screen.(Recipes); !ok {
		return false
	}
	n.setScreen(RecipeDetail{RecipeID: recipeID})
	return true
}

// BackToRecipes leaves a recipe detail.
func (n *Navigator) BackToRecipes() bool {
	if _, ok := n.screen.(RecipeDetail); !ok {
		return false
	}
	n.setScreen(Recipes{})
	return true
}

// OpenAddItems enters the add-items flow from Home and dismisses any modal.
func (n *Navigator) OpenAddItems() bool {
	if _, ok := n.screen.(Home); !ok {
		return false
	}
	n.setScreen(AddItemsScan{})
	n.modal = NoModal{}
	return true
}

// ScanBack abandons the scan step and returns Home.
func (n *Navigator) ScanBack() bool {
	if _, ok := n.screen.(AddItemsScan); !ok {
		return false
	}
	n.setScreen(Home{})
	return true
}

// ScanDone advances from the scan step to the confirm step.
func (n *Navigator) ScanDone() bool {
	if _, ok := n.screen.(AddItemsScan); !ok {
		return false
	}
	n.setScreen(AddItemsConfirm{})
	return true
}

// ConfirmBack returns from the confirm step to the scan step.
func (n *Navigator) ConfirmBack() bool {
	if _, ok := n.screen.(AddItemsConfirm); !ok {
		return false
	}
	n.setScreen(AddItemsScan{})
	return true
}

// ConfirmDone leaves the confirm step for Home once the batch is committed.
func (n *Navigator) ConfirmDone() bool {
	if _, ok := n.screen.(AddItemsConfirm); !ok {
		return false
	}
	n.setScreen(Home{})
	return true
}

// Open replaces whatever modal is showing; modals never stack.
func (n *Navigator) Open(m Modal) {
	if m == nil {
		m = NoModal{}
	}
	n.modal = m
}

// Close dismisses the modal. It never touches domain state.
func (n *Navigator) Close() {
	n.modal = NoModal{}
}

func (n *Navigator) setScreen(s Screen) {
	before := TabOf(n.screen)
	n.screen = s
	if after := TabOf(s); after != before && n.onTab != nil {
		n.onTab(after)
	}
}
