// Package clipboard implements yank, cut and put between a document and a
// register, optionally mirrored to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/bethropolis/tide/internal/core/selection"
	"github.com/bethropolis/tide/internal/logger"
)

// ErrEmpty is returned by Put when there is nothing to paste.
var ErrEmpty = errors.New("clipboard is empty")

// Document is what the manager needs from an editable document.
type Document interface {
	TextRange(startLine, startCol, endLine, endCol int) (string, error)
	Delete(startLine, startCol, endLine, endCol int) error
	TypeText(text string) error
	BeginBatchEdit() bool
	EndBatchEdit() bool
}

// Manager holds the yank register.
type Manager struct {
	register string
	system   bool
}

// NewManager creates a manager. With system set, yanks are also written to
// the system clipboard and Put reads from it, falling back to the register
// when the platform has no clipboard.
func NewManager(system bool) *Manager {
	if system && clipboard.Unsupported {
		logger.Warnf("clipboard: system clipboard unsupported on this platform, using internal register")
		system = false
	}
	return &Manager{system: system}
}

// Yank copies the range into the register.
func (m *Manager) Yank(doc Document, startLine, startCol, endLine, endCol int) error {
	text, err := doc.TextRange(startLine, startCol, endLine, endCol)
	if err != nil {
		return fmt.Errorf("yank: %w", err)
	}
	m.Set(text)
	logger.Debugf("clipboard: yanked %d bytes", len(text))
	return nil
}

// Cut yanks the range and deletes it as one undo step.
func (m *Manager) Cut(doc Document, startLine, startCol, endLine, endCol int) error {
	if err := m.Yank(doc, startLine, startCol, endLine, endCol); err != nil {
		return err
	}
	return doc.Delete(startLine, startCol, endLine, endCol)
}

// Put inserts the clipboard contents at the document's caret.
func (m *Manager) Put(doc Document) error {
	text := m.Contents()
	if text == "" {
		return ErrEmpty
	}
	doc.BeginBatchEdit()
	defer doc.EndBatchEdit()
	if err := doc.TypeText(text); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	logger.Debugf("clipboard: put %d bytes", len(text))
	return nil
}

// Set replaces the register contents.
func (m *Manager) Set(text string) {
	m.register = text
	if m.system {
		if err := clipboard.WriteAll(text); err != nil {
			logger.Warnf("clipboard: write system clipboard: %v", err)
		}
	}
}

// Contents returns what Put would insert.
func (m *Manager) Contents() string {
	if m.system {
		text, err := clipboard.ReadAll()
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			logger.Warnf("clipboard: read system clipboard: %v", err)
		}
	}
	return m.register
}

// SelectionDocument is a document with a selection.
type SelectionDocument interface {
	Document
	Selection() *selection.Manager
}

// YankSelection copies the selected text and clears the selection. It
// reports whether anything was selected.
func (m *Manager) YankSelection(doc SelectionDocument) (bool, error) {
	start, end, ok := doc.Selection().GetSelection()
	if !ok {
		return false, nil
	}
	if err := m.Yank(doc, start.Line, start.Col, end.Line, end.Col); err != nil {
		return false, err
	}
	doc.Selection().ClearSelection()
	return true, nil
}

// CutSelection yanks the selected text and deletes it.
func (m *Manager) CutSelection(doc SelectionDocument) (bool, error) {
	start, end, ok := doc.Selection().GetSelection()
	if !ok {
		return false, nil
	}
	doc.Selection().ClearSelection()
	if err := m.Cut(doc, start.Line, start.Col, end.Line, end.Col); err != nil {
		return false, err
	}
	return true, nil
}
