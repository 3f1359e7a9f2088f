package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bethropolis/tide/internal/logger"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrDuplicate      = errors.New("already registered")
)

// Manager handles plugin registration and lifecycle, and owns the command
// registry plugins add to.
type Manager struct {
	mu       sync.RWMutex
	plugins  []Plugin
	byName   map[string]Plugin
	commands map[string]CommandFunc
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		byName:   make(map[string]Plugin),
		commands: make(map[string]CommandFunc),
	}
}

// Register adds a plugin. Call it before InitializePlugins.
func (m *Manager) Register(p Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("register plugin: name cannot be empty")
	}
	if _, exists := m.byName[name]; exists {
		return fmt.Errorf("register plugin %q: %w", name, ErrDuplicate)
	}
	m.plugins = append(m.plugins, p)
	m.byName[name] = p
	logger.DebugTagf("plugin", "registered plugin %q", name)
	return nil
}

// InitializePlugins initializes plugins in registration order. A failing
// plugin is logged and skipped; the errors are returned joined.
func (m *Manager) InitializePlugins(api EditorAPI) error {
	m.mu.RLock()
	plugins := append([]Plugin(nil), m.plugins...)
	m.mu.RUnlock()

	var errs []error
	for _, p := range plugins {
		if err := p.Initialize(api); err != nil {
			logger.Errorf("plugin: initializing %q: %v", p.Name(), err)
			errs = append(errs, fmt.Errorf("initialize %q: %w", p.Name(), err))
			continue
		}
		logger.DebugTagf("plugin", "initialized plugin %q", p.Name())
	}
	return errors.Join(errs...)
}

// ShutdownPlugins shuts plugins down in reverse registration order.
func (m *Manager) ShutdownPlugins() error {
	m.mu.RLock()
	plugins := append([]Plugin(nil), m.plugins...)
	m.mu.RUnlock()

	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		if err := plugins[i].Shutdown(); err != nil {
			logger.Errorf("plugin: shutting down %q: %v", plugins[i].Name(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetPlugin returns a registered plugin by name.
func (m *Manager) GetPlugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byName[name]
	return p, ok
}

// RegisterCommand adds a command. Names are unique.
func (m *Manager) RegisterCommand(name string, fn CommandFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("register command %q: name and function are required", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.commands[name]; exists {
		return fmt.Errorf("register command %q: %w", name, ErrDuplicate)
	}
	m.commands[name] = fn
	logger.DebugTagf("plugin", "registered command %q", name)
	return nil
}

// ExecuteCommand runs a registered command.
func (m *Manager) ExecuteCommand(name string, args []string) error {
	m.mu.RLock()
	fn, ok := m.commands[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return fn(args)
}

// Commands returns the registered command names, sorted.
func (m *Manager) Commands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
