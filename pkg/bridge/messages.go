package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Inbound message types.
const (
	TypeCheckSelection = "check-selection"
	TypeConvert        = "convert"
	TypeClose          = "close"
)

// Outbound message types.
const (
	TypeSelectionUpdate    = "selection-update"
	TypeError              = "error"
	TypeConversionComplete = "conversion-complete"
)

// Message is an inbound request from the UI.
type Message struct {
	Type string `json:"type"`
}

// DecodeMessage parses one inbound message. A message without a type is an error.
func DecodeMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("bridge: decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, errors.New("bridge: message has no type")
	}
	return msg, nil
}

// SelectionUpdate reports how many convertible bindings the selection holds.
type SelectionUpdate struct {
	Type         string `json:"type"`
	Count        int    `json:"count"`
	HasSelection bool   `json:"hasSelection"`
}

// ErrorMessage reports a request that could not run.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ConversionComplete carries a conversion summary.
type ConversionComplete struct {
	Type      string   `json:"type"`
	Converted int      `json:"converted"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// Poster delivers outbound messages to the UI.
type Poster interface {
	Post(ctx context.Context, msg any) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, msg any) error

// Post implements Poster.
func (f PosterFunc) Post(ctx context.Context, msg any) error { return f(ctx, msg) }

// JSONPoster writes one JSON object per line. Safe for concurrent use.
type JSONPoster struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONPoster creates a poster writing to w.
func NewJSONPoster(w io.Writer) *JSONPoster {
	return &JSONPoster{enc: json.NewEncoder(w)}
}

// Post implements Poster.
func (p *JSONPoster) Post(ctx context.Context, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(msg)
}

// Recorder keeps every posted message in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []any
}

// Post implements Poster.
func (r *Recorder) Post(ctx context.Context, msg any) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	return nil
}

// Messages returns the messages posted so far.
func (r *Recorder) Messages() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.msgs...)
}

// Last returns the most recent message, or nil.
func (r *Recorder) Last() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}
