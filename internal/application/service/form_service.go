package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/internal/domain/form"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDoctypeNotBound  = errors.New("no form script bound to doctype")
	ErrActionNotFound   = errors.New("form action not found")
	ErrNoNavigation     = errors.New("form action did not navigate")
)

// Session identifies who is looking at a view and in which language
type Session struct {
	User     string
	Language string
}

// FormView is a rendered document view
type FormView struct {
	Document *entity.Document
	Buttons  []string
}

// FormService renders document views and runs their actions
type FormService interface {
	Render(ctx context.Context, session Session, doctype, name string) (*FormView, error)
	Activate(ctx context.Context, session Session, doctype, name, label string) (string, error)
}

type formServiceImpl struct {
	docRepo      port.DocumentRepository
	events       *form.Events
	translations port.Translations
	logger       Logger
}

// NewFormService creates a new FormService
func NewFormService(
	docRepo port.DocumentRepository,
	events *form.Events,
	translations port.Translations,
	logger Logger,
) FormService {
	return &formServiceImpl{
		docRepo:      docRepo,
		events:       events,
		translations: translations,
		logger:       logger,
	}
}

// Render loads the current state of the document and runs its form
// scripts. The docstatus is read fresh on every call.
func (s *formServiceImpl) Render(ctx context.Context, session Session, doctype, name string) (*FormView, error) {
	frm, err := s.open(ctx, session, doctype, name)
	if err != nil {
		return nil, err
	}

	buttons := frm.Buttons()
	labels := make([]string, 0, len(buttons))
	for _, b := range buttons {
		labels = append(labels, b.Label)
	}

	return &FormView{
		Document: frm.Doc,
		Buttons:  labels,
	}, nil
}

// Activate re-renders the document and clicks the button labeled label,
// returning the location the action navigated to.
func (s *formServiceImpl) Activate(ctx context.Context, session Session, doctype, name, label string) (string, error) {
	frm, err := s.open(ctx, session, doctype, name)
	if err != nil {
		return "", err
	}

	button, ok := frm.Button(label)
	if !ok {
		s.logger.Info("Form action not available",
			"doctype", doctype, "name", name, "label", label, "docstatus", frm.Doc.DocStatus.String())
		return "", fmt.Errorf("%w: %s on %s %s", ErrActionNotFound, label, doctype, name)
	}

	var location string
	button.Click(form.NavigatorFunc(func(url string) {
		location = url
	}))
	if location == "" {
		return "", fmt.Errorf("%w: %s", ErrNoNavigation, label)
	}

	s.logger.Info("Form action activated",
		"doctype", doctype, "name", name, "label", label, "user", session.User, "location", location)
	return location, nil
}

func (s *formServiceImpl) open(ctx context.Context, session Session, doctype, name string) (*form.Form, error) {
	if !s.events.Has(doctype) {
		return nil, fmt.Errorf("%w: %s", ErrDoctypeNotBound, doctype)
	}

	doc, err := s.docRepo.GetByName(ctx, doctype, name)
	if err != nil {
		s.logger.Error("Failed to load document", "error", err, "doctype", doctype, "name", name)
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrDocumentNotFound, doctype, name)
	}

	var translator form.Translator
	if s.translations != nil {
		translator = s.translations.For(session.Language)
	}

	frm := form.New(doc, translator)
	s.events.Refresh(ctx, frm)
	return frm, nil
}
