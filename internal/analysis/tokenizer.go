// Package analysis tokenizes documents in the background. It reads the buffer
// only through snapshots taken on the edit goroutine and never writes to it.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/tide/internal/analysis/lang"
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/logger"
)

// DefaultCheckpointInterval is the number of syntax nodes visited between
// restart checks.
const DefaultCheckpointInterval = 256

// ErrRestart is returned when a checkpoint asked the tokenizer to give up
// because the text changed underneath it.
var ErrRestart = errors.New("analysis: restart requested")

// Token kinds.
const (
	KindComment     = "comment"
	KindString      = "string"
	KindNumber      = "number"
	KindKeyword     = "keyword"
	KindIdentifier  = "identifier"
	KindType        = "type"
	KindPunctuation = "punctuation"
	KindError       = "error"
)

// Token is a classified span on one line, in character columns.
type Token struct {
	Line     int
	StartCol int
	EndCol   int
	Kind     string
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d-%d %s", t.Line, t.StartCol, t.EndCol, t.Kind)
}

// Tokenizer turns snapshots into tokens. It owns a tree-sitter parser and must
// only be used by one goroutine at a time.
type Tokenizer struct {
	parser   *sitter.Parser
	interval int
}

// NewTokenizer creates a tokenizer that checks for restarts every interval
// nodes. A non-positive interval means DefaultCheckpointInterval.
func NewTokenizer(interval int) *Tokenizer {
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	return &Tokenizer{parser: sitter.NewParser(), interval: interval}
}

// Tokenize parses snap and returns its tokens along with the new syntax tree,
// which the caller owns. oldTree, if not nil, must already have every edit
// since it was produced applied with Tree.Edit; it lets the parser reuse
// unchanged subtrees. checkpoint may be nil; when it returns true the
// tokenizer stops and returns ErrRestart.
func (t *Tokenizer) Tokenize(ctx context.Context, snap *buffer.Snapshot, l *lang.Language, oldTree *sitter.Tree, checkpoint func() bool) ([]Token, *sitter.Tree, error) {
	if l == nil || l.Grammar == nil {
		return nil, nil, fmt.Errorf("tokenize: no grammar for %s", l)
	}
	if checkpoint == nil {
		checkpoint = func() bool { return false }
	}
	if checkpoint() {
		return nil, nil, ErrRestart
	}

	t.parser.SetLanguage(l.Grammar)
	tree, err := t.parser.ParseCtx(ctx, oldTree, snap.Bytes())
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ErrRestart
		}
		return nil, nil, fmt.Errorf("tokenize %s: %w", l.Name, err)
	}

	tokens, err := t.walk(snap, tree.RootNode(), checkpoint)
	if err != nil {
		tree.Close()
		return nil, nil, err
	}
	logger.DebugTagf("analysis", "tokenized version %d as %s: %d tokens", snap.Version(), l.Name, len(tokens))
	return tokens, tree, nil
}

// walk visits the tree depth first, emitting one token per leaf. Comments and
// string literals are emitted whole.
func (t *Tokenizer) walk(snap *buffer.Snapshot, root *sitter.Node, checkpoint func() bool) ([]Token, error) {
	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	var tokens []Token
	visited := 0
	for {
		visited++
		if visited%t.interval == 0 && checkpoint() {
			return nil, ErrRestart
		}

		node := cursor.CurrentNode()
		kind, atomic := classify(node)
		if (atomic || node.ChildCount() == 0) && kind != "" {
			tokens = appendSpan(tokens, snap, node, kind)
		}
		if !atomic && cursor.GoToFirstChild() {
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return tokens, nil
			}
		}
	}
}

// classify returns a token kind for node, or "" to emit nothing. atomic nodes
// are not descended into.
func classify(node *sitter.Node) (kind string, atomic bool) {
	typ := node.Type()
	switch {
	case node.IsMissing():
		return "", false
	case typ == "ERROR":
		return KindError, false
	case strings.Contains(typ, "comment"):
		return KindComment, true
	case strings.Contains(typ, "string") && node.IsNamed():
		return KindString, true
	case strings.Contains(typ, "char") && strings.Contains(typ, "literal"):
		return KindString, true
	case typ == "int_literal" || typ == "float_literal" || typ == "imaginary_literal" ||
		typ == "integer" || typ == "float" || typ == "number" ||
		typ == "integer_literal":
		return KindNumber, true
	case strings.Contains(typ, "type_identifier") || typ == "primitive_type":
		return KindType, false
	case strings.HasSuffix(typ, "identifier"):
		return KindIdentifier, false
	case !node.IsNamed() && isWord(typ):
		return KindKeyword, false
	case !node.IsNamed():
		return KindPunctuation, false
	}
	return typ, false
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}
	return true
}

// appendSpan converts the node's byte range into per-line character spans.
func appendSpan(tokens []Token, snap *buffer.Snapshot, node *sitter.Node, kind string) []Token {
	start, end := node.StartPoint(), node.EndPoint()
	startLine, endLine := int(start.Row), int(end.Row)
	if endLine >= snap.LineCount() {
		endLine = snap.LineCount() - 1
	}
	for line := startLine; line <= endLine; line++ {
		from, to := 0, snap.ColumnCount(line)
		if line == startLine {
			from = snap.ColumnAtByte(line, int(start.Column))
		}
		if line == int(end.Row) {
			to = snap.ColumnAtByte(line, int(end.Column))
		}
		if to > from {
			tokens = append(tokens, Token{Line: line, StartCol: from, EndCol: to, Kind: kind})
		}
	}
	return tokens
}
