// Package lang maps files to the tree-sitter grammars the analyzer can parse.
package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Language is a grammar the analyzer can tokenize with.
type Language struct {
	// Name is the display name, matching go-enry's naming ("Go", "Python").
	Name string

	// Grammar is the tree-sitter language.
	Grammar *sitter.Language

	// Extensions lists the file extensions, with the leading dot.
	Extensions []string
}

func (l *Language) String() string {
	if l == nil {
		return "plain text"
	}
	return l.Name
}
