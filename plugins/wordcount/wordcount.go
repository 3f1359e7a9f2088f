// Package wordcount keeps live line, word and character counts for a
// document and exposes them through the wc command.
package wordcount

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/plugin"
)

var _ plugin.Plugin = (*WordCount)(nil)

// Stats are the counts for the whole document.
type Stats struct {
	Lines int
	Words int
	Chars int
}

func (s Stats) String() string {
	return fmt.Sprintf("Lines: %d, Words: %d, Chars: %d", s.Lines, s.Words, s.Chars)
}

// WordCount tracks Stats from text change events. Line and character counts
// are updated from each edit; words are recounted lazily.
type WordCount struct {
	api plugin.EditorAPI

	mu         sync.Mutex
	stats      Stats
	wordsStale bool
	subs       []event.SubscriptionID
}

// New creates the plugin.
func New() plugin.Plugin {
	return &WordCount{}
}

func (p *WordCount) Name() string {
	return "wordcount"
}

// Initialize counts the current text, subscribes to changes and registers wc.
func (p *WordCount) Initialize(api plugin.EditorAPI) error {
	p.api = api

	text := api.Text()
	p.mu.Lock()
	p.stats = Stats{
		Lines: api.LineCount(),
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
	}
	p.mu.Unlock()

	p.subs = append(p.subs,
		api.SubscribeEvent(event.TypeTextInserted, p.onChange(1)),
		api.SubscribeEvent(event.TypeTextDeleted, p.onChange(-1)),
	)
	if err := api.RegisterCommand("wc", p.executeWordCount); err != nil {
		return fmt.Errorf("register wc: %w", err)
	}
	return nil
}

// Shutdown unsubscribes from the document.
func (p *WordCount) Shutdown() error {
	for _, id := range p.subs {
		p.api.UnsubscribeEvent(id)
	}
	p.subs = nil
	return nil
}

// Stats returns the current counts.
func (p *WordCount) Stats() Stats {
	p.mu.Lock()
	stale := p.wordsStale
	p.mu.Unlock()

	if stale {
		words := len(strings.Fields(p.api.Snapshot().Text()))
		p.mu.Lock()
		p.stats.Words = words
		p.wordsStale = false
		p.mu.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *WordCount) onChange(sign int) event.Handler {
	return func(e event.Event) bool {
		data, ok := e.Data.(event.TextChangedData)
		if !ok {
			return false
		}
		p.mu.Lock()
		p.stats.Chars += sign * utf8.RuneCountInString(data.Edit.Text)
		p.stats.Lines += sign * (data.Edit.EndLine - data.Edit.StartLine)
		p.wordsStale = true
		p.mu.Unlock()
		return false
	}
}

func (p *WordCount) executeWordCount(args []string) error {
	if p.api == nil {
		return fmt.Errorf("wordcount plugin not initialized")
	}
	p.api.SetStatusMessage("%s", p.Stats())
	return nil
}
