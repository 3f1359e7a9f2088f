package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/bethropolis/tide/internal/analysis/lang"
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
	"github.com/bethropolis/tide/internal/utils"
)

// DefaultDebounce is how long the scheduler waits after the last edit before
// it wakes the worker.
const DefaultDebounce = 65 * time.Millisecond

var (
	ErrNoLanguage = errors.New("analysis: no language")
	ErrStarted    = errors.New("analysis: scheduler already started")
)

// Document is the part of a document the scheduler needs.
type Document interface {
	ID() uuid.UUID
	Snapshot() *buffer.Snapshot
	AddListener(l buffer.ChangeListener) error
	RemoveListener(l buffer.ChangeListener)
	Events() *event.Manager
}

// Result is a complete token set for one version of a document.
type Result struct {
	DocumentID uuid.UUID
	Version    uint64
	Language   string
	Tokens     []Token
}

// Options configures a Scheduler.
type Options struct {
	Language           *lang.Language
	Debounce           time.Duration
	CheckpointInterval int
}

// Scheduler keeps a document's tokens up to date on a worker goroutine.
//
// It listens to the document on the edit goroutine: every completed edit takes
// a fresh snapshot, records the edit for incremental reparsing, raises the
// restart flag and (after the debounce) wakes the worker. The worker polls the
// flag at checkpoints, drops its work when it is raised and starts over on
// the newest snapshot. Only runs that finish on the newest snapshot are
// published.
type Scheduler struct {
	doc       Document
	lang      *lang.Language
	tokenizer *Tokenizer
	debounce  time.Duration
	debouncer utils.Debouncer

	restart  atomic.Bool
	restarts atomic.Int64
	wake     chan struct{}
	results  chan Result

	mu       sync.Mutex
	snap     *buffer.Snapshot
	pending  []types.EditInfo
	latest   *Result
	started  bool
	cancel   context.CancelFunc
	group    *errgroup.Group
	lastSnap *buffer.Snapshot // worker only
	tree     *sitter.Tree     // worker only

	// hook runs at every checkpoint; tests use it to pause the worker.
	hook func(ctx context.Context)
}

var _ buffer.ChangeListener = (*Scheduler)(nil)

// NewScheduler creates a scheduler for doc. It does nothing until Start.
func NewScheduler(doc Document, opts Options) (*Scheduler, error) {
	if opts.Language == nil || opts.Language.Grammar == nil {
		return nil, ErrNoLanguage
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Scheduler{
		doc:       doc,
		lang:      opts.Language,
		tokenizer: NewTokenizer(opts.CheckpointInterval),
		debounce:  opts.Debounce,
		wake:      make(chan struct{}, 1),
		results:   make(chan Result, 1),
	}, nil
}

// Start registers the scheduler with its document and starts the worker,
// which immediately analyzes the current text. Call it on the edit goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.snap = s.doc.Snapshot()
	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	s.mu.Unlock()

	if err := s.doc.AddListener(s); err != nil {
		s.cancel()
		return err
	}
	s.group.Go(func() error { return s.loop(ctx) })
	s.signal()
	logger.DebugTagf("analysis", "scheduler started for %s (%s)", s.doc.ID(), s.lang)
	return nil
}

// Close stops the worker at its next checkpoint and waits for it. No result
// is published after Close returns, and the Results channel is closed. Call
// it on the edit goroutine.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if !s.started || s.cancel == nil {
		s.mu.Unlock()
		return nil
	}
	cancel, group := s.cancel, s.group
	s.cancel = nil
	s.mu.Unlock()

	s.doc.RemoveListener(s)
	s.debouncer.Stop()
	cancel()
	err := group.Wait()
	close(s.results)
	if s.tree != nil {
		s.tree.Close()
		s.tree = nil
	}
	logger.DebugTagf("analysis", "scheduler for %s closed after %d restarts", s.doc.ID(), s.restarts.Load())
	return err
}

// Results delivers published results. Only the newest undelivered result is
// kept; a slow reader skips intermediate versions.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Latest returns the most recently published result.
func (s *Scheduler) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// Restarts reports how many runs were abandoned because the text changed.
func (s *Scheduler) Restarts() int64 {
	return s.restarts.Load()
}

// --- buffer.ChangeListener, on the edit goroutine ---

func (s *Scheduler) BeforeReplace(*buffer.Buffer) {}

func (s *Scheduler) AfterInsert(b *buffer.Buffer, e buffer.Edit) {
	start, startCol := byteStart(b, e)
	end := endPoint(e, startCol)
	s.record(b, types.EditInfo{
		StartIndex:     start,
		OldEndIndex:    start,
		NewEndIndex:    start + uint32(len(e.Text)),
		StartPosition:  sitter.Point{Row: uint32(e.StartLine), Column: startCol},
		OldEndPosition: sitter.Point{Row: uint32(e.StartLine), Column: startCol},
		NewEndPosition: end,
	})
}

func (s *Scheduler) AfterDelete(b *buffer.Buffer, e buffer.Edit) {
	start, startCol := byteStart(b, e)
	end := endPoint(e, startCol)
	s.record(b, types.EditInfo{
		StartIndex:     start,
		OldEndIndex:    start + uint32(len(e.Text)),
		NewEndIndex:    start,
		StartPosition:  sitter.Point{Row: uint32(e.StartLine), Column: startCol},
		OldEndPosition: end,
		NewEndPosition: sitter.Point{Row: uint32(e.StartLine), Column: startCol},
	})
}

func (s *Scheduler) record(b *buffer.Buffer, info types.EditInfo) {
	s.mu.Lock()
	s.snap = b.Snapshot()
	s.pending = append(s.pending, info)
	s.mu.Unlock()
	s.restart.Store(true)
	s.debouncer.Debounce(s.debounce, s.signal)
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// byteStart returns the byte offset of the edit start in the document and
// within its line.
func byteStart(b *buffer.Buffer, e buffer.Edit) (uint32, uint32) {
	start, err := b.ByteOffset(e.StartLine, e.StartCol)
	if err != nil {
		logger.Warnf("analysis: edit start %d:%d: %v", e.StartLine, e.StartCol, err)
		return 0, 0
	}
	lineStart, _ := b.ByteOffset(e.StartLine, 0)
	return uint32(start), uint32(start - lineStart)
}

// endPoint is where the edited text ends, with a byte column.
func endPoint(e buffer.Edit, startCol uint32) sitter.Point {
	col := startCol + uint32(len(e.Text))
	if i := strings.LastIndexByte(e.Text, '\n'); i >= 0 {
		col = uint32(len(e.Text) - i - 1)
	}
	return sitter.Point{Row: uint32(e.EndLine), Column: col}
}

// --- worker ---

func (s *Scheduler) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
		s.analyze(ctx)
	}
}

func (s *Scheduler) analyze(ctx context.Context) {
	checkpoint := func() bool {
		if s.hook != nil {
			s.hook(ctx)
		}
		return s.restart.Load() || ctx.Err() != nil
	}

	for ctx.Err() == nil {
		s.restart.Store(false)
		s.mu.Lock()
		snap, edits := s.snap, s.pending
		s.pending = nil
		s.mu.Unlock()

		if snap == s.lastSnap {
			return
		}
		if s.tree != nil {
			for _, e := range edits {
				s.tree.Edit(e.Input())
			}
		}

		tokens, tree, err := s.tokenizer.Tokenize(ctx, snap, s.lang, s.tree, checkpoint)
		if errors.Is(err, ErrRestart) {
			s.restarts.Add(1)
			logger.DebugTagf("analysis", "abandoned version %d", snap.Version())
			continue
		}
		if err != nil {
			logger.Warnf("analysis: %v", err)
			return
		}
		if s.tree != nil {
			s.tree.Close()
		}
		s.tree = tree
		s.lastSnap = snap
		if s.restart.Load() || ctx.Err() != nil {
			continue
		}
		s.publish(Result{
			DocumentID: s.doc.ID(),
			Version:    snap.Version(),
			Language:   s.lang.Name,
			Tokens:     tokens,
		})
		return
	}
}

func (s *Scheduler) publish(r Result) {
	s.mu.Lock()
	s.latest = &r
	s.mu.Unlock()

	select {
	case <-s.results:
	default:
	}
	s.results <- r

	if events := s.doc.Events(); events != nil {
		events.Dispatch(event.TypeAnalysisReady, event.AnalysisReadyData{
			DocumentID: r.DocumentID,
			Version:    r.Version,
			Language:   r.Language,
			Tokens:     len(r.Tokens),
		})
	}
	logger.DebugTagf("analysis", "published version %d: %d tokens", r.Version, len(r.Tokens))
}
