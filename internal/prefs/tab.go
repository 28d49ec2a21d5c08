package prefs

import (
	"context"
	"errors"

	"github.com/kingrea/wasteless/internal/nav"
)

// ActiveTabKey is where the last active tab is remembered.
const ActiveTabKey = "wasteless.activeTab"

// Logger receives load and save failures; they are never fatal.
type Logger interface {
	Printf(format string, args ...any)
}

// TabMemory remembers the last active top-level tab.
type TabMemory struct {
	store  Store
	logger Logger
}

// NewTabMemory wraps store. A nil logger discards failures.
func NewTabMemory(store Store, logger Logger) *TabMemory {
	return &TabMemory{store: store, logger: logger}
}

// Load returns the remembered tab, or Home when nothing valid is stored.
func (t *TabMemory) Load(ctx context.Context) nav.Tab {
	if t == nil || t.store == nil {
		return nav.TabHome
	}
	raw, err := t.store.Get(ctx, ActiveTabKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.logf("prefs: load active tab: %v", err)
		}
		return nav.TabHome
	}
	tab, ok := nav.ParseTab(raw)
	if !ok {
		t.logf("prefs: ignoring stored tab %q", raw)
	}
	return tab
}

// Save records tab. Failures are logged and otherwise ignored.
func (t *TabMemory) Save(ctx context.Context, tab nav.Tab) {
	if t == nil || t.store == nil {
		return
	}
	if err := t.store.Set(ctx, ActiveTabKey, string(tab)); err != nil {
		t.logf("prefs: save active tab: %v", err)
	}
}

func (t *TabMemory) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}
