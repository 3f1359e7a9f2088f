// Package find searches a document with regular expressions and performs
// substitutions as single undo steps.
package find

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// ErrEmptyPattern is returned for an empty search pattern.
var ErrEmptyPattern = errors.New("search pattern cannot be empty")

// Document is what the finder needs from a document.
type Document interface {
	Text() string
	PositionOf(index int) (types.Position, error)
	BeginStreamCharGetting(initialIndex int) error
	EndStreamCharGetting()
	Streaming() bool
	Replace(startLine, startCol, endLine, endCol int, text string) error
	BeginBatchEdit() bool
	EndBatchEdit() bool
}

// Match is one occurrence of a pattern.
type Match struct {
	Start types.Position
	End   types.Position
	// Text is the matched text after replacement templates were expanded,
	// or the matched text itself when searching.
	Text string
}

// Manager finds and replaces in one document, remembering the last pattern.
type Manager struct {
	doc     Document
	term    string
	re      *regexp.Regexp
	lastPos *types.Position
}

// NewManager creates a finder for doc.
func NewManager(doc Document) *Manager {
	return &Manager{doc: doc}
}

// SetPattern compiles term as the current search pattern.
func (m *Manager) SetPattern(term string) error {
	if term == "" {
		m.term, m.re, m.lastPos = "", nil, nil
		return ErrEmptyPattern
	}
	re, err := regexp.Compile(term)
	if err != nil {
		logger.Warnf("find: invalid regex %q: %v", term, err)
		return fmt.Errorf("invalid search pattern: %w", err)
	}
	m.term, m.re, m.lastPos = term, re, nil
	return nil
}

// Pattern returns the current search pattern.
func (m *Manager) Pattern() string {
	return m.term
}

// FindAll returns every match of the current pattern in document order.
// Matches may span lines.
func (m *Manager) FindAll() ([]Match, error) {
	if m.re == nil {
		return nil, ErrEmptyPattern
	}
	return m.matches(m.re, "", false)
}

// FindNext returns the first match starting after from (forward) or the
// last one starting before it (backward), wrapping around the document.
// Repeated calls continue from the previous match.
func (m *Manager) FindNext(from types.Position, forward bool) (Match, bool) {
	if m.re == nil {
		return Match{}, false
	}
	if m.lastPos != nil {
		from = *m.lastPos
	}
	all, err := m.matches(m.re, "", false)
	if err != nil || len(all) == 0 {
		return Match{}, false
	}

	pick := -1
	if forward {
		for i, match := range all {
			if from.Before(match.Start) {
				pick = i
				break
			}
		}
		if pick < 0 {
			pick = 0
		}
	} else {
		for i := len(all) - 1; i >= 0; i-- {
			if all[i].Start.Before(from) {
				pick = i
				break
			}
		}
		if pick < 0 {
			pick = len(all) - 1
		}
	}
	found := all[pick]
	m.lastPos = &found.Start
	return found, true
}

// ParseSubstituteCommand parses "/pattern/replacement/[g]".
func ParseSubstituteCommand(cmd string) (pattern, replacement string, global bool, err error) {
	parts := strings.SplitN(cmd, "/", 4)
	if len(parts) < 3 || parts[0] != "" {
		return "", "", false, fmt.Errorf("invalid format: use /pattern/replacement/[g]")
	}
	pattern, replacement = parts[1], parts[2]
	if pattern == "" {
		return "", "", false, ErrEmptyPattern
	}
	global = len(parts) > 3 && strings.Contains(parts[3], "g")
	return pattern, replacement, global, nil
}

// Replace substitutes matches of pattern, expanding $1-style templates in
// replacement. With line >= 0 only matches starting on that line are
// considered, otherwise the whole document. Without global only the first of
// those matches is replaced. All replacements form one undo step. It returns
// the number of replacements.
func (m *Manager) Replace(pattern, replacement string, line int, global bool) (int, error) {
	if pattern == "" {
		return 0, ErrEmptyPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid search pattern: %w", err)
	}

	all, err := m.matches(re, replacement, true)
	if err != nil {
		return 0, err
	}
	var targets []Match
	for _, match := range all {
		if line >= 0 && match.Start.Line != line {
			continue
		}
		targets = append(targets, match)
		if !global {
			break
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	m.doc.BeginBatchEdit()
	defer m.doc.EndBatchEdit()
	// Back to front, so earlier positions stay valid.
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if err := m.doc.Replace(t.Start.Line, t.Start.Col, t.End.Line, t.End.Col, t.Text); err != nil {
			return len(targets) - 1 - i, fmt.Errorf("replace at %v: %w", t.Start, err)
		}
	}
	logger.DebugTagf("core", "replaced %d occurrences of %q", len(targets), pattern)
	return len(targets), nil
}

// Substitute runs a "/pattern/replacement/[g]" command on line, or on every
// line when line is negative.
func (m *Manager) Substitute(cmd string, line int) (int, error) {
	pattern, replacement, global, err := ParseSubstituteCommand(cmd)
	if err != nil {
		return 0, err
	}
	if line < 0 {
		global = true
	}
	return m.Replace(pattern, replacement, line, global)
}

// matches locates every match of re. Byte offsets are turned into character
// indices in one pass and resolved with the streaming indexer, since they
// only ever increase.
func (m *Manager) matches(re *regexp.Regexp, template string, expand bool) ([]Match, error) {
	text := m.doc.Text()
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	// A session the caller opened stays open.
	if !m.doc.Streaming() {
		if err := m.doc.BeginStreamCharGetting(0); err != nil {
			return nil, err
		}
		defer m.doc.EndStreamCharGetting()
	}

	out := make([]Match, 0, len(locs))
	byteAt, charAt := 0, 0
	toChar := func(b int) int {
		charAt += utf8.RuneCountInString(text[byteAt:b])
		byteAt = b
		return charAt
	}
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		start, err := m.doc.PositionOf(toChar(loc[0]))
		if err != nil {
			return nil, err
		}
		end, err := m.doc.PositionOf(toChar(loc[1]))
		if err != nil {
			return nil, err
		}
		matched := text[loc[0]:loc[1]]
		if expand {
			matched = string(re.ExpandString(nil, template, text, loc))
		}
		out = append(out, Match{Start: start, End: end, Text: matched})
	}
	return out, nil
}
