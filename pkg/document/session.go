package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/stylebind/pkg/host"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Notification is a transient message shown to the user.
type Notification struct {
	Message string
	Error   bool
	Time    time.Time
}

// Session serves one open document as a host.Host.
//
// Thread-safe: all tree reads and writes go through mu. Selection-change
// subscribers run synchronously after the lock is released.
type Session struct {
	path   string
	logger *slog.Logger

	mu            sync.RWMutex
	doc           *Document
	byID          map[string]*NodeData
	paths         map[string]string // node id -> "Page/Frame/Layer"
	order         []string          // node ids, document pre-order
	dirty         bool
	notifications []Notification

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
	onNote  func(Notification)
	onLoad  func()

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession serves doc. path may be empty when the document is not file-backed;
// Reload and SaveFile then fail.
func NewSession(doc *Document, path string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		path:   path,
		logger: logger,
		subs:   make(map[int]func()),
		done:   make(chan struct{}),
	}
	s.setDocument(doc)
	return s
}

// Open loads the document at path and serves it.
func Open(path string, logger *slog.Logger) (*Session, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSession(doc, path, logger), nil
}

// setDocument swaps the served document and rebuilds the indexes. Callers hold mu
// or have exclusive access.
func (s *Session) setDocument(doc *Document) {
	s.doc = doc
	s.byID = make(map[string]*NodeData)
	s.paths = make(map[string]string)
	s.order = s.order[:0]

	var visit func(n *NodeData, prefix string)
	visit = func(n *NodeData, prefix string) {
		if n == nil {
			return
		}
		p := n.Name
		if prefix != "" {
			p = prefix + "/" + n.Name
		}
		s.byID[n.ID] = n
		s.paths[n.ID] = p
		s.order = append(s.order, n.ID)
		for _, c := range n.Children {
			visit(c, p)
		}
	}
	for _, page := range doc.Pages {
		visit(page, "")
	}
	s.dirty = false
}

// Path returns the backing file path ("" when not file-backed).
func (s *Session) Path() string { return s.path }

// StyleByID implements host.StyleResolver. Unknown ids return (nil, nil).
func (s *Session) StyleByID(ctx context.Context, id string) (*host.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.doc.Styles {
		if s.doc.Styles[i].ID == id {
			st := s.doc.Styles[i]
			return &st, nil
		}
	}
	return nil, nil
}

// LocalVariables implements host.VariableSource.
func (s *Session) LocalVariables(ctx context.Context) ([]*host.Variable, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*host.Variable, len(s.doc.Variables))
	for i := range s.doc.Variables {
		v := s.doc.Variables[i]
		out[i] = &v
	}
	return out, nil
}

// Selection implements host.Host.
func (s *Session) Selection(ctx context.Context) ([]host.Node, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]host.Node, 0, len(s.doc.Selection))
	for _, id := range s.doc.Selection {
		if d, ok := s.byID[id]; ok {
			out = append(out, s.wrap(d))
		}
	}
	return out, nil
}

// SelectionIDs returns a copy of the selected node ids.
func (s *Session) SelectionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.doc.Selection...)
}

// Node returns the node with the given id.
func (s *Session) Node(id string) (host.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return s.wrap(d), nil
}

// Select replaces the selection with ids and notifies subscribers.
func (s *Session) Select(ids []string) error {
	s.mu.Lock()
	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("select: %w: %q", ErrNodeNotFound, id)
		}
	}
	s.doc.Selection = append([]string(nil), ids...)
	s.mu.Unlock()

	s.logger.Debug("selection changed", "count", len(ids))
	s.fireSelectionChange()
	return nil
}

// SelectPattern selects every node whose name path matches pattern, e.g.
// "Page 1/**/Button*". Paths join node names with "/" starting at the page.
// Only the topmost match of a subtree is kept so no node is selected twice.
// Returns the number of selected nodes.
func (s *Session) SelectPattern(pattern string) (int, error) {
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("select: invalid pattern %q", pattern)
	}

	s.mu.RLock()
	var ids []string
	var kept []string // paths of kept matches, for descendant pruning
	for _, id := range s.order {
		p := s.paths[id]
		if underAny(p, kept) {
			continue
		}
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			s.mu.RUnlock()
			return 0, fmt.Errorf("select: match %q: %w", pattern, err)
		}
		if ok {
			ids = append(ids, id)
			kept = append(kept, p)
		}
	}
	s.mu.RUnlock()

	if err := s.Select(ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func underAny(p string, parents []string) bool {
	for _, parent := range parents {
		if strings.HasPrefix(p, parent+"/") {
			return true
		}
	}
	return false
}

// OnSelectionChange implements host.Host.
func (s *Session) OnSelectionChange(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) fireSelectionChange() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnReload registers fn to run after every successful Reload, before
// selection subscribers fire (replacing any previous one). Caches layered
// over the session drop their entries here.
func (s *Session) OnReload(fn func()) {
	s.subMu.Lock()
	s.onLoad = fn
	s.subMu.Unlock()
}

// OnNotify registers fn to receive every notification (replacing any previous one).
func (s *Session) OnNotify(fn func(Notification)) {
	s.subMu.Lock()
	s.onNote = fn
	s.subMu.Unlock()
}

// Notify implements host.Host. Notifications are logged and kept in memory.
func (s *Session) Notify(ctx context.Context, message string, opts host.NotifyOptions) {
	n := Notification{Message: message, Error: opts.Error, Time: time.Now()}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()

	if opts.Error {
		s.logger.Warn("notify", "message", message)
	} else {
		s.logger.Info("notify", "message", message)
	}

	s.subMu.Lock()
	fn := s.onNote
	s.subMu.Unlock()
	if fn != nil {
		fn(n)
	}
}

// Notifications returns every notification shown so far.
func (s *Session) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// Close implements host.Host. It is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.logger.Debug("session closed", "path", s.path)
	})
	return nil
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Dirty reports whether paints changed since the document was loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Reload re-reads the backing file. Selected ids that still exist stay selected.
// Subscribers are notified afterwards.
func (s *Session) Reload() error {
	if s.path == "" {
		return errors.New("reload: session is not file-backed")
	}
	doc, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	s.mu.Lock()
	prev := s.doc.Selection
	s.setDocument(doc)
	if len(doc.Selection) == 0 {
		for _, id := range prev {
			if _, ok := s.byID[id]; ok {
				doc.Selection = append(doc.Selection, id)
			}
		}
	}
	s.mu.Unlock()

	s.logger.Info("document reloaded", "path", s.path, "nodes", len(s.order))

	s.subMu.Lock()
	onLoad := s.onLoad
	s.subMu.Unlock()
	if onLoad != nil {
		onLoad()
	}
	s.fireSelectionChange()
	return nil
}

// SaveFile writes the document to path, or to the backing file when path is "".
func (s *Session) SaveFile(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return errors.New("save: no output path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := Save(s.doc, path); err != nil {
		return err
	}
	if path == s.path {
		s.dirty = false
	}
	return nil
}

var _ host.Host = (*Session)(nil)
