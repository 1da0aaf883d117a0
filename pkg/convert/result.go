package convert

// Binding records one paint that was (or, in a dry run, would be) rebound.
type Binding struct {
	NodeID   string  `json:"node_id"`
	NodeName string  `json:"node_name"`
	Channel  Channel `json:"channel"`
	Style    string  `json:"style"`
	Variable string  `json:"variable"`
}

// Result summarizes one conversion run.
// Errors holds distinct messages in first-seen order.
type Result struct {
	Converted int       `json:"converted"`
	Failed    int       `json:"failed"`
	Errors    []string  `json:"errors"`
	Bindings  []Binding `json:"bindings,omitempty"`

	seen map[string]struct{}
}

// NewResult returns an empty result whose Errors marshals as [].
func NewResult() *Result {
	return &Result{Errors: []string{}, seen: make(map[string]struct{})}
}

func (r *Result) fail(msg string) {
	r.Failed++
	if _, dup := r.seen[msg]; dup {
		return
	}
	r.seen[msg] = struct{}{}
	r.Errors = append(r.Errors, msg)
}

func (r *Result) convert(b Binding) {
	r.Converted++
	r.Bindings = append(r.Bindings, b)
}
