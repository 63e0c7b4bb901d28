// Package form hosts the view-model of a single document view and the
// per-doctype lifecycle hooks that decorate it with user actions.
package form

import (
	"github.com/teciza/desk/internal/domain/entity"
)

// Navigator moves the user agent to a new location. Navigation is fire and
// forget: nothing is reported back once it has been requested.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(url string)

// Navigate calls f(url)
func (f NavigatorFunc) Navigate(url string) {
	f(url)
}

// Translator localizes a source string
type Translator interface {
	Translate(msg string) string
}

// Action runs when a button is activated
type Action func(nav Navigator)

// Button is a custom user action shown on the document view
type Button struct {
	Label  string
	action Action
}

// Click runs the button's action against nav
func (b *Button) Click(nav Navigator) {
	if b == nil || b.action == nil || nav == nil {
		return
	}
	b.action(nav)
}

// Form is the view-model of one opened document
type Form struct {
	Doc *entity.Document

	translator Translator
	buttons    []*Button
	byLabel    map[string]*Button
}

// New creates a form over doc. A nil translator leaves labels untouched.
func New(doc *entity.Document, translator Translator) *Form {
	return &Form{
		Doc:        doc,
		translator: translator,
		byLabel:    make(map[string]*Button),
	}
}

// Translate localizes msg with the form's translator
func (f *Form) Translate(msg string) string {
	if f.translator == nil {
		return msg
	}
	return f.translator.Translate(msg)
}

// AddCustomButton registers a button. A button with the same label is
// replaced in place, so repeated refreshes never stack duplicates.
func (f *Form) AddCustomButton(label string, action Action) *Button {
	if existing, ok := f.byLabel[label]; ok {
		existing.action = action
		return existing
	}

	b := &Button{Label: label, action: action}
	f.buttons = append(f.buttons, b)
	f.byLabel[label] = b
	return b
}

// Button returns the button registered under label
func (f *Form) Button(label string) (*Button, bool) {
	b, ok := f.byLabel[label]
	return b, ok
}

// Buttons returns the registered buttons in registration order
func (f *Form) Buttons() []*Button {
	out := make([]*Button, len(f.buttons))
	copy(out, f.buttons)
	return out
}

// ClearCustomButtons drops every registered button
func (f *Form) ClearCustomButtons() {
	f.buttons = nil
	f.byLabel = make(map[string]*Button)
}
