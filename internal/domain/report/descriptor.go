// Package report declares the filter panels of query reports. A report's
// filters are plain descriptors; rendering the controls and running the
// report belong to whoever consumes them.
package report

import (
	"errors"
	"fmt"
	"time"
)

// FieldType is the control type of a filter
type FieldType string

const (
	FieldTypeLink   FieldType = "Link"
	FieldTypeDate   FieldType = "Date"
	FieldTypeFloat  FieldType = "Float"
	FieldTypeInt    FieldType = "Int"
	FieldTypeData   FieldType = "Data"
	FieldTypeCheck  FieldType = "Check"
	FieldTypeSelect FieldType = "Select"
)

// IsValid reports whether t is a known field type
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeLink, FieldTypeDate, FieldTypeFloat, FieldTypeInt,
		FieldTypeData, FieldTypeCheck, FieldTypeSelect:
		return true
	}
	return false
}

// FilterDescriptor describes one input of a report's filter panel.
// A nil Default means the control starts empty.
type FilterDescriptor struct {
	Fieldname string    `json:"fieldname"`
	Label     string    `json:"label"`
	Fieldtype FieldType `json:"fieldtype"`
	Options   string    `json:"options,omitempty"`
	Default   any       `json:"default,omitempty"`
	Reqd      bool      `json:"reqd,omitempty"`
}

var (
	ErrEmptyFieldname     = errors.New("filter fieldname is empty")
	ErrDuplicateFieldname = errors.New("duplicate filter fieldname")
	ErrInvalidFieldType   = errors.New("invalid filter fieldtype")
	ErrMissingOptions     = errors.New("link filter has no target doctype")
)

// Validate checks a descriptor list for unique, well-formed fields
func Validate(filters []FilterDescriptor) error {
	seen := make(map[string]bool, len(filters))
	for i, f := range filters {
		if f.Fieldname == "" {
			return fmt.Errorf("%w: position %d", ErrEmptyFieldname, i)
		}
		if seen[f.Fieldname] {
			return fmt.Errorf("%w: %s", ErrDuplicateFieldname, f.Fieldname)
		}
		seen[f.Fieldname] = true

		if !f.Fieldtype.IsValid() {
			return fmt.Errorf("%w: %s has %q", ErrInvalidFieldType, f.Fieldname, f.Fieldtype)
		}
		if f.Fieldtype == FieldTypeLink && f.Options == "" {
			return fmt.Errorf("%w: %s", ErrMissingOptions, f.Fieldname)
		}
	}
	return nil
}

// Fieldnames returns the fieldnames in panel order
func Fieldnames(filters []FilterDescriptor) []string {
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.Fieldname
	}
	return names
}

// Clock reads the current date
type Clock interface {
	Today() time.Time
}

// UserDefaults resolves the session user's configured defaults.
// Get returns "" when no default is set.
type UserDefaults interface {
	Get(key string) string
}

// Translator localizes a source string
type Translator interface {
	Translate(msg string) string
}

// Env is the ambient state a filter declaration reads while the panel is
// being built
type Env struct {
	Clock      Clock
	Defaults   UserDefaults
	Translator Translator
}

// Today returns the clock's date, or the zero time without a clock
func (e Env) Today() time.Time {
	if e.Clock == nil {
		return time.Time{}
	}
	return e.Clock.Today()
}

// UserDefault returns the user's default for key, nil when unset
func (e Env) UserDefault(key string) any {
	if e.Defaults == nil {
		return nil
	}
	if v := e.Defaults.Get(key); v != "" {
		return v
	}
	return nil
}

// T localizes msg
func (e Env) T(msg string) string {
	if e.Translator == nil {
		return msg
	}
	return e.Translator.Translate(msg)
}

// MapDefaults is a UserDefaults backed by a map
type MapDefaults map[string]string

// Get returns the value stored under key
func (m MapDefaults) Get(key string) string {
	return m[key]
}
