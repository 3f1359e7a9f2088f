package lang

import (
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

func registerBuiltins(r *Registry) {
	r.Register(&Language{
		Name:       "Go",
		Grammar:    golang.GetLanguage(),
		Extensions: []string{".go"},
	})
	r.Register(&Language{
		Name:       "Python",
		Grammar:    python.GetLanguage(),
		Extensions: []string{".py", ".pyw"},
	})
	r.Register(&Language{
		Name:       "JavaScript",
		Grammar:    javascript.GetLanguage(),
		Extensions: []string{".js", ".mjs", ".cjs"},
	})
	// JSON is a subset of JavaScript expressions; the JS grammar handles it.
	r.Register(&Language{
		Name:       "JSON",
		Grammar:    javascript.GetLanguage(),
		Extensions: []string{".json"},
	})
	r.Register(&Language{
		Name:       "Rust",
		Grammar:    rust.GetLanguage(),
		Extensions: []string{".rs"},
	})
}
