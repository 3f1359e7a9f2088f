package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// ErrNoEvents is returned when a host is created for a document without an
// event manager.
var ErrNoEvents = errors.New("plugin: document has no event manager")

// Host implements EditorAPI for one document.
type Host struct {
	doc     *core.Document
	manager *Manager

	mu     sync.Mutex
	status string
}

var _ EditorAPI = (*Host)(nil)

// NewHost binds manager's plugins to doc. doc must publish events.
func NewHost(doc *core.Document, manager *Manager) (*Host, error) {
	if doc.Events() == nil {
		return nil, ErrNoEvents
	}
	return &Host{doc: doc, manager: manager}, nil
}

// Start initializes the plugins and announces them with TypePluginsReady.
func (h *Host) Start() error {
	err := h.manager.InitializePlugins(h)
	h.DispatchEvent(event.TypePluginsReady, nil)
	return err
}

// Close announces TypeShutdown and shuts the plugins down.
func (h *Host) Close() error {
	h.DispatchEvent(event.TypeShutdown, nil)
	return h.manager.ShutdownPlugins()
}

// Execute runs a command registered by a plugin.
func (h *Host) Execute(name string, args []string) error {
	return h.manager.ExecuteCommand(name, args)
}

// StatusMessage returns the last message set by a plugin.
func (h *Host) StatusMessage() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Host) LineCount() int                    { return h.doc.LineCount() }
func (h *Host) LineText(line int) (string, error) { return h.doc.LineText(line) }
func (h *Host) Text() string                      { return h.doc.Text() }
func (h *Host) Snapshot() *buffer.Snapshot        { return h.doc.Snapshot() }

func (h *Host) Insert(line, col int, text string) error {
	return h.doc.Insert(line, col, text)
}

func (h *Host) Delete(startLine, startCol, endLine, endCol int) error {
	return h.doc.Delete(startLine, startCol, endLine, endCol)
}

func (h *Host) Replace(startLine, startCol, endLine, endCol int, text string) error {
	return h.doc.Replace(startLine, startCol, endLine, endCol, text)
}

func (h *Host) Cursor() types.Position { return h.doc.Cursor().Position() }

func (h *Host) SetCursor(line, col int) { h.doc.Cursor().SetPosition(line, col) }

func (h *Host) DispatchEvent(eventType event.Type, data interface{}) {
	h.doc.Events().Dispatch(eventType, data)
}

func (h *Host) SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID {
	return h.doc.Events().Subscribe(eventType, handler)
}

func (h *Host) UnsubscribeEvent(id event.SubscriptionID) {
	h.doc.Events().Unsubscribe(id)
}

func (h *Host) RegisterCommand(name string, fn CommandFunc) error {
	return h.manager.RegisterCommand(name, fn)
}

func (h *Host) SetStatusMessage(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	h.mu.Lock()
	h.status = msg
	h.mu.Unlock()
	logger.Infof("%s", msg)
}
