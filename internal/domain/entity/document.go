package entity

import (
	"fmt"
	"time"
)

// DocStatus is the lifecycle stage of a document
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// IsValid reports whether the status is one of the known lifecycle stages
func (s DocStatus) IsValid() bool {
	switch s {
	case DocStatusDraft, DocStatusSubmitted, DocStatusCancelled:
		return true
	}
	return false
}

// String returns the display name of the status
func (s DocStatus) String() string {
	switch s {
	case DocStatusDraft:
		return "Draft"
	case DocStatusSubmitted:
		return "Submitted"
	case DocStatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("DocStatus(%d)", int(s))
}

// Document is a persisted record owned by the host. Only the fields the
// desk bindings read are carried.
type Document struct {
	Doctype   string    `json:"doctype"`
	Name      string    `json:"name"`
	DocStatus DocStatus `json:"docstatus"`
	Modified  time.Time `json:"modified"`
}

// IsSubmitted reports whether the document is in the Submitted stage
func (d *Document) IsSubmitted() bool {
	return d != nil && d.DocStatus == DocStatusSubmitted
}
