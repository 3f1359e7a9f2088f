package lang

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"

	"github.com/bethropolis/tide/internal/logger"
)

// Registry looks languages up by extension and by name.
type Registry struct {
	mu        sync.RWMutex
	languages []*Language
	byExt     map[string]*Language
	byName    map[string]*Language
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]*Language),
		byName: make(map[string]*Language),
	}
}

// Register adds a language. A later registration of the same extension wins.
func (r *Registry) Register(l *Language) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.languages = append(r.languages, l)
	r.byName[strings.ToLower(l.Name)] = l
	for _, ext := range l.Extensions {
		ext = strings.ToLower(ext)
		if existing, ok := r.byExt[ext]; ok {
			logger.Warnf("lang: extension %s already registered to %s, overriding with %s", ext, existing.Name, l.Name)
		}
		r.byExt[ext] = l
	}
	logger.DebugTagf("analysis", "registered language %s %v", l.Name, l.Extensions)
}

// ForFile returns the language registered for path's extension, or nil.
func (r *Registry) ForFile(path string) *Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

// ForName returns the language with the given name, ignoring case, or nil.
func (r *Registry) ForName(name string) *Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[strings.ToLower(name)]
}

// Detect picks a language for a file: by extension first, then by asking
// go-enry about the file name and content. It returns nil for plain text.
func (r *Registry) Detect(path string, content []byte) *Language {
	if l := r.ForFile(path); l != nil {
		return l
	}
	name := enry.GetLanguage(filepath.Base(path), content)
	if name == "" {
		if guess, safe := enry.GetLanguageByShebang(content); safe {
			name = guess
		}
	}
	if name == "" {
		return nil
	}
	l := r.ForName(name)
	logger.DebugTagf("analysis", "detected %q for %s: %s", name, path, l)
	return l
}

// All returns the registered languages in registration order.
func (r *Registry) All() []*Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Language, len(r.languages))
	copy(out, r.languages)
	return out
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the shared registry holding the built-in grammars.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
