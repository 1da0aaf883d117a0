// Package bridge relays UI requests to the converter and posts results back.
//
// Messages are handled one at a time, each to completion. Run drains a FIFO
// queue fed by Enqueue and by host selection-change events, so a selection
// change never interleaves with a running conversion.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gnana997/stylebind/pkg/convert"
	"github.com/gnana997/stylebind/pkg/host"
)

// EmptySelectionMessage is posted when convert runs with nothing selected.
const EmptySelectionMessage = "Please select at least one layer"

var (
	// ErrClosed is returned by Run after a close request.
	ErrClosed = errors.New("bridge: session closed")

	// ErrUnknownMessage is returned for unrecognized message types.
	ErrUnknownMessage = errors.New("bridge: unknown message type")
)

// Engine counts and converts bindings under a selection.
type Engine interface {
	Count(ctx context.Context, nodes []host.Node) (int, error)
	Convert(ctx context.Context, nodes []host.Node, opts convert.Options) (*convert.Result, error)
}

// Options tunes the bridge.
type Options struct {
	// Convert is passed to every conversion run.
	Convert convert.Options
}

// Bridge connects a host session, a conversion engine and a UI poster.
type Bridge struct {
	host   host.Host
	engine Engine
	post   Poster
	opts   Options
	logger *slog.Logger

	// handleMu serializes message handling.
	handleMu sync.Mutex

	queueMu sync.Mutex
	queue   []Message
	signal  chan struct{}
}

// New creates a bridge. A nil logger uses slog.Default().
func New(h host.Host, engine Engine, post Poster, opts Options, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		host:   h,
		engine: engine,
		post:   post,
		opts:   opts,
		logger: logger,
		signal: make(chan struct{}, 1),
	}
}

// Handle processes msg and posts replies to the bridge's poster.
func (b *Bridge) Handle(ctx context.Context, msg Message) error {
	return b.HandleWith(ctx, msg, b.post)
}

// HandleJSON decodes a raw inbound message and handles it.
func (b *Bridge) HandleJSON(ctx context.Context, raw []byte) error {
	msg, err := DecodeMessage(raw)
	if err != nil {
		return err
	}
	return b.Handle(ctx, msg)
}

// HandleWith processes msg and posts replies to p.
// Host failures are returned; nothing is posted for them.
func (b *Bridge) HandleWith(ctx context.Context, msg Message, p Poster) error {
	return b.HandleThen(ctx, msg, p, nil)
}

// HandleThen processes msg like HandleWith and, when that succeeds, runs then
// before any other message or Exclusive call can start. Saving right after a
// conversion goes through here so a reload cannot land in between.
func (b *Bridge) HandleThen(ctx context.Context, msg Message, p Poster, then func() error) error {
	b.handleMu.Lock()
	defer b.handleMu.Unlock()

	if err := b.handle(ctx, msg, p); err != nil {
		return err
	}
	if then != nil {
		return then()
	}
	return nil
}

// Exclusive runs fn while no message is being handled. Document reloads use
// it so a conversion never writes into a tree that was swapped out under it.
// fn must not call back into the bridge's handlers.
func (b *Bridge) Exclusive(fn func() error) error {
	b.handleMu.Lock()
	defer b.handleMu.Unlock()
	return fn()
}

func (b *Bridge) handle(ctx context.Context, msg Message, p Poster) error {
	b.logger.Debug("handling message", "type", msg.Type)

	switch msg.Type {
	case TypeCheckSelection:
		return b.checkSelection(ctx, p)
	case TypeConvert:
		return b.convert(ctx, p)
	case TypeClose:
		return b.host.Close(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

func (b *Bridge) checkSelection(ctx context.Context, p Poster) error {
	nodes, err := b.host.Selection(ctx)
	if err != nil {
		return fmt.Errorf("bridge: read selection: %w", err)
	}
	count, err := b.engine.Count(ctx, nodes)
	if err != nil {
		return fmt.Errorf("bridge: count selection: %w", err)
	}
	return p.Post(ctx, SelectionUpdate{
		Type:         TypeSelectionUpdate,
		Count:        count,
		HasSelection: len(nodes) > 0,
	})
}

func (b *Bridge) convert(ctx context.Context, p Poster) error {
	nodes, err := b.host.Selection(ctx)
	if err != nil {
		return fmt.Errorf("bridge: read selection: %w", err)
	}
	if len(nodes) == 0 {
		return p.Post(ctx, ErrorMessage{Type: TypeError, Message: EmptySelectionMessage})
	}

	res, err := b.engine.Convert(ctx, nodes, b.opts.Convert)
	if err != nil {
		return fmt.Errorf("bridge: convert selection: %w", err)
	}

	if err := p.Post(ctx, ConversionComplete{
		Type:      TypeConversionComplete,
		Converted: res.Converted,
		Failed:    res.Failed,
		Errors:    res.Errors,
	}); err != nil {
		return err
	}

	if res.Failed == 0 {
		b.host.Notify(ctx, fmt.Sprintf("Converted %d style(s) to variables", res.Converted), host.NotifyOptions{})
	} else {
		b.host.Notify(ctx,
			fmt.Sprintf("Converted %d, failed %d. Check the plugin for details.", res.Converted, res.Failed),
			host.NotifyOptions{Error: true})
	}
	return nil
}

// Enqueue adds msg to the queue drained by Run.
func (b *Bridge) Enqueue(msg Message) {
	b.queueMu.Lock()
	b.queue = append(b.queue, msg)
	b.queueMu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *Bridge) dequeue() (Message, bool) {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	if len(b.queue) == 0 {
		return Message{}, false
	}
	msg := b.queue[0]
	b.queue = b.queue[1:]
	return msg, true
}

// Run subscribes to selection changes and handles queued messages in order
// until ctx is done or a close message is handled. Handler failures are
// logged and reported to the UI as error messages; they do not stop Run.
func (b *Bridge) Run(ctx context.Context) error {
	unsubscribe := b.host.OnSelectionChange(func() {
		b.Enqueue(Message{Type: TypeCheckSelection})
	})
	defer unsubscribe()

	for {
		for {
			msg, ok := b.dequeue()
			if !ok {
				break
			}
			if err := b.Handle(ctx, msg); err != nil {
				b.logger.Error("message failed", "type", msg.Type, "error", err)
				if postErr := b.post.Post(ctx, ErrorMessage{Type: TypeError, Message: err.Error()}); postErr != nil {
					b.logger.Warn("failed to post error", "error", postErr)
				}
			}
			if msg.Type == TypeClose {
				return ErrClosed
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.signal:
		}
	}
}
