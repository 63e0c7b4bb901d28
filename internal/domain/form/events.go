package form

import (
	"context"
	"sync"
)

// HookFunc runs against an opened form
type HookFunc func(ctx context.Context, frm *Form)

// Hooks groups the lifecycle callbacks one script registers for a doctype
type Hooks struct {
	// Refresh runs every time the document view is rendered
	Refresh HookFunc
}

// Events is the registry of form scripts keyed by doctype
type Events struct {
	mu    sync.RWMutex
	hooks map[string][]Hooks
}

// NewEvents creates an empty registry
func NewEvents() *Events {
	return &Events{
		hooks: make(map[string][]Hooks),
	}
}

// On registers hooks for doctype. Multiple scripts may bind the same
// doctype; they run in registration order.
func (e *Events) On(doctype string, hooks Hooks) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.hooks[doctype] = append(e.hooks[doctype], hooks)
}

// Has reports whether any script is bound to doctype
func (e *Events) Has(doctype string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.hooks[doctype]) > 0
}

// Refresh re-renders frm: custom buttons are cleared, then every refresh
// hook bound to the form's doctype runs against the current document.
func (e *Events) Refresh(ctx context.Context, frm *Form) {
	if frm == nil || frm.Doc == nil {
		return
	}

	e.mu.RLock()
	bound := append([]Hooks(nil), e.hooks[frm.Doc.Doctype]...)
	e.mu.RUnlock()

	frm.ClearCustomButtons()
	for _, h := range bound {
		if h.Refresh != nil {
			h.Refresh(ctx, frm)
		}
	}
}
