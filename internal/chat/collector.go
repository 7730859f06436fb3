// Package chat implements the guided conversation that collects property
// preferences one question at a time while the remote agent scores every turn.
package chat

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/events"
	"fullhouse_client/platform/logger"

	"golang.org/x/time/rate"
)

// ErrClosed is returned by operations on a closed collector.
var ErrClosed = errors.New("chat: collector closed")

// Analyzer scores one message. *client.Client satisfies it.
type Analyzer interface {
	Chatbot(ctx context.Context, req transport.ChatbotRequest) (transport.ChatbotResponse, error)
}

// Publisher receives collector events. *events.InMemoryBus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Ordering decides what happens to responses that arrive out of order.
type Ordering string

const (
	// OrderingLatest drops any response older than the newest applied one.
	OrderingLatest Ordering = "latest"
	// OrderingArrival applies responses in whatever order they arrive.
	OrderingArrival Ordering = "arrival"
)

// State is the collector's position in the flow.
type State string

const (
	StateAwaitingStep State = "AWAITING_STEP"
	StateComplete     State = "COMPLETE"
)

// Speaker identifies who authored a transcript message.
type Speaker string

const (
	SpeakerBot  Speaker = "bot"
	SpeakerUser Speaker = "user"
)

// Message is one transcript entry.
type Message struct {
	From Speaker `json:"from"`
	Text string  `json:"text"`
}

// PropertyContext is an external listing the session is anchored to.
type PropertyContext struct {
	ID           int64
	Title        string
	Location     *string
	PropertyType *string
	Price        *float64
}

// PropertyFromTransport adapts an API property.
func PropertyFromTransport(p transport.Property) PropertyContext {
	price := p.Price
	return PropertyContext{
		ID:           p.ID,
		Title:        p.Title,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		Price:        &price,
	}
}

// Options configures a Collector. Zero values select the defaults.
type Options struct {
	SessionID  string
	ContactKey string
	Script     *Script
	Ordering   Ordering
	Matcher    BoolMatcher
	// Timeout bounds each analyzer call. Zero means only the caller's ctx applies.
	Timeout time.Duration
	// MinSubmitInterval flags submissions closer together than this.
	MinSubmitInterval time.Duration
	Publisher         Publisher
	Log               *logger.Logger
}

// TurnResult reports what one submission did.
type TurnResult struct {
	Seq uint64 `json:"seq"`
	// Ignored is set for blank input; nothing else happened.
	Ignored bool `json:"ignored,omitempty"`
	// Rapid flags a submission made too soon after the previous one or while
	// another call was still in flight. It is informational only.
	Rapid     bool   `json:"rapid,omitempty"`
	Applied   bool   `json:"applied"`
	Stale     bool   `json:"stale,omitempty"`
	Advanced  bool   `json:"advanced,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Snapshot is a consistent copy of the collector's visible state.
type Snapshot struct {
	SessionID   string                         `json:"sessionId"`
	State       State                          `json:"state"`
	StepIndex   int                            `json:"stepIndex"`
	StepCount   int                            `json:"stepCount"`
	Prompt      string                         `json:"prompt,omitempty"`
	Preferences Preferences                    `json:"preferences"`
	Messages    []Message                      `json:"messages"`
	Analysis    *transport.LeadAnalyzeResponse `json:"analysis,omitempty"`
	Saving      bool                           `json:"saving"`
	LastError   string                         `json:"lastError,omitempty"`
	Prefilled   bool                           `json:"prefilled"`
	Closed      bool                           `json:"closed"`
}

// Collector is safe for concurrent use. Submissions never block each other;
// each one gets a sequence number and its own analyzer call.
type Collector struct {
	analyzer Analyzer
	script   *Script
	ordering Ordering
	matcher  BoolMatcher
	timeout  time.Duration
	pub      Publisher
	log      *logger.Logger
	limiter  *rate.Limiter

	sessionID  string
	contactKey string

	// closeCtx is cancelled by Close; in-flight calls derive from it.
	closeCtx context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	step        int
	complete    bool
	prefs       Preferences
	messages    []Message
	analysis    *transport.LeadAnalyzeResponse
	lastErr     string
	nextSeq     uint64
	lastApplied uint64
	inFlight    int
	prefilled   bool
	propertyID  *int64
	closed      bool
}

// NewCollector starts a session seeded with the greeting and the first prompt.
func NewCollector(analyzer Analyzer, opts Options) *Collector {
	script := opts.Script
	if script == nil || script.Validate() != nil {
		script = DefaultScript()
	}
	ordering := opts.Ordering
	if ordering != OrderingArrival {
		ordering = OrderingLatest
	}
	matcher := opts.Matcher
	if matcher == nil {
		matcher = NewPrefixMatcher()
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}

	limit := rate.Inf
	if opts.MinSubmitInterval > 0 {
		limit = rate.Every(opts.MinSubmitInterval)
	}

	closeCtx, cancel := context.WithCancel(context.Background())

	c := &Collector{
		analyzer:   analyzer,
		script:     script,
		ordering:   ordering,
		matcher:    matcher,
		timeout:    opts.Timeout,
		pub:        opts.Publisher,
		log:        log.WithSessionID(opts.SessionID),
		limiter:    rate.NewLimiter(limit, 1),
		sessionID:  opts.SessionID,
		contactKey: strings.TrimSpace(opts.ContactKey),
		closeCtx:   closeCtx,
		cancel:     cancel,
		prefs:      Preferences{},
	}
	c.messages = []Message{
		{From: SpeakerBot, Text: script.Greeting},
		{From: SpeakerBot, Text: script.Steps[0].Prompt},
	}
	return c
}

// SessionID returns the identifier the collector was created with.
func (c *Collector) SessionID() string {
	return c.sessionID
}

func (c *Collector) ContactKey() string {
	return c.contactKey
}

// Submit processes one user message. The user text is recorded and the
// current step's answer extracted before the analyzer is called; the step
// only advances if the call succeeds. Analyzer failures are reported in the
// result and in the snapshot, never as an error. The only error is ErrClosed,
// also returned when the collector is closed while the call is in flight.
func (c *Collector) Submit(ctx context.Context, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return TurnResult{}, ErrClosed
	}
	if text == "" {
		c.mu.Unlock()
		return TurnResult{Ignored: true}, nil
	}

	c.nextSeq++
	seq := c.nextSeq
	rapid := !c.limiter.Allow() || c.inFlight > 0

	c.messages = append(c.messages, Message{From: SpeakerUser, Text: text})
	c.lastErr = ""

	askedStep := -1
	if !c.complete {
		askedStep = c.step
		step := c.script.Steps[c.step]
		if v, ok := extract(step, text, c.matcher); ok {
			c.prefs[step.Key] = v
		}
	}
	c.inFlight++
	c.mu.Unlock()

	req := transport.ChatbotRequest{Message: text}
	if c.contactKey != "" {
		contact := c.contactKey
		req.ContactKey = &contact
	}

	resp, err := c.analyze(ctx, req)

	var pending []events.Event
	result := TurnResult{Seq: seq, Rapid: rapid}

	c.mu.Lock()
	c.inFlight--
	if c.closed {
		c.mu.Unlock()
		return result, ErrClosed
	}
	switch {
	case c.ordering == OrderingLatest && seq < c.lastApplied:
		result.Stale = true
		c.log.ChatTurn(seq, c.stepKey(askedStep), "stale")
	case err != nil:
		msg := apperr.UserMessage(err, c.script.FallbackError)
		c.lastErr = msg
		result.Error = msg
		pending = append(pending, TurnFailed{
			BaseEvent: events.NewBaseEvent(),
			SessionID: c.sessionID,
			StepIndex: askedStep,
			Seq:       seq,
			Message:   msg,
		})
		c.log.ChatTurn(seq, c.stepKey(askedStep), "failed")
	default:
		pending = c.applyLocked(seq, askedStep, text, resp, &result)
	}
	c.mu.Unlock()

	c.publish(ctx, pending)
	return result, nil
}

// applyLocked merges a successful response. The step advances only if the
// answer was given to the step that is still current, so concurrent answers
// to one question can never skip the next.
func (c *Collector) applyLocked(seq uint64, askedStep int, text string, resp transport.ChatbotResponse, result *TurnResult) []events.Event {
	if seq > c.lastApplied {
		c.lastApplied = seq
	}
	analysis := resp.LeadAnalysis
	c.analysis = &analysis
	c.lastErr = ""
	c.messages = append(c.messages, Message{From: SpeakerBot, Text: resp.Reply})

	result.Applied = true
	result.Reply = resp.Reply

	if askedStep < 0 || c.complete || askedStep != c.step {
		c.log.ChatTurn(seq, c.stepKey(askedStep), "applied")
		return nil
	}

	step := c.script.Steps[c.step]
	pending := []events.Event{StepAdvanced{
		BaseEvent: events.NewBaseEvent(),
		SessionID: c.sessionID,
		StepIndex: c.step,
		StepKey:   step.Key,
		Seq:       seq,
	}}
	result.Advanced = true

	if c.step == len(c.script.Steps)-1 {
		c.complete = true
		c.messages = append(c.messages, Message{From: SpeakerBot, Text: c.script.Closing})
		result.Completed = true
		pending = append(pending, ConversationCompleted{
			BaseEvent:   events.NewBaseEvent(),
			SessionID:   c.sessionID,
			ContactKey:  c.contactKey,
			PropertyID:  c.propertyID,
			Preferences: c.prefs.Clone(),
			LastMessage: text,
		})
		c.log.ChatTurn(seq, step.Key, "completed")
		return pending
	}

	c.step++
	c.messages = append(c.messages, Message{From: SpeakerBot, Text: c.script.Steps[c.step].Prompt})
	c.log.ChatTurn(seq, step.Key, "advanced")
	return pending
}

func (c *Collector) analyze(ctx context.Context, req transport.ChatbotRequest) (transport.ChatbotResponse, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.closeCtx, cancel)
	defer stop()

	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, c.timeout)
		defer cancelTimeout()
	}

	resp, err := c.analyzer.Chatbot(callCtx, req)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !apperr.Is(err, apperr.KindTimeout) {
		err = apperr.Timeout(err)
	}
	return resp, err
}

// Prefill seeds property type, zone and budget from p for any of those keys
// not yet answered, and appends one informational message. Only the first
// call per session has any effect; it reports whether it applied.
func (c *Collector) Prefill(ctx context.Context, p PropertyContext) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.prefilled {
		c.mu.Unlock()
		return false, nil
	}
	c.prefilled = true
	id := p.ID
	c.propertyID = &id

	var seeded []string
	if p.PropertyType != nil && strings.TrimSpace(*p.PropertyType) != "" && !c.prefs.Has(KeyPropertyType) {
		c.prefs[KeyPropertyType] = strings.TrimSpace(*p.PropertyType)
		seeded = append(seeded, KeyPropertyType)
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) != "" && !c.prefs.Has(KeyZone) {
		c.prefs[KeyZone] = strings.TrimSpace(*p.Location)
		seeded = append(seeded, KeyZone)
	}
	if p.Price != nil && *p.Price > 0 && !c.prefs.Has(KeyBudget) {
		c.prefs[KeyBudget] = int64(math.Round(*p.Price))
		seeded = append(seeded, KeyBudget)
	}

	c.messages = append(c.messages, Message{From: SpeakerBot, Text: c.script.prefillMessage(p.Title, p.Location)})
	c.mu.Unlock()

	c.publish(ctx, []events.Event{PropertyPrefilled{
		BaseEvent:  events.NewBaseEvent(),
		SessionID:  c.sessionID,
		PropertyID: p.ID,
		SeededKeys: seeded,
	}})
	return true, nil
}

// Snapshot returns a copy of the visible state.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SessionID:   c.sessionID,
		State:       StateAwaitingStep,
		StepIndex:   c.step,
		StepCount:   len(c.script.Steps),
		Preferences: c.prefs.Clone(),
		Messages:    append([]Message(nil), c.messages...),
		Saving:      c.inFlight > 0,
		LastError:   c.lastErr,
		Prefilled:   c.prefilled,
		Closed:      c.closed,
	}
	if c.complete {
		snap.State = StateComplete
	} else {
		snap.Prompt = c.script.Steps[c.step].Prompt
	}
	if c.analysis != nil {
		a := *c.analysis
		snap.Analysis = &a
	}
	return snap
}

// Saving reports whether any analyzer call is in flight.
func (c *Collector) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Close cancels in-flight calls and freezes the state. It is idempotent.
func (c *Collector) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Collector) stepKey(i int) string {
	if i < 0 || i >= len(c.script.Steps) {
		return "complete"
	}
	return c.script.Steps[i].Key
}

func (c *Collector) publish(ctx context.Context, evts []events.Event) {
	if c.pub == nil {
		return
	}
	for _, e := range evts {
		c.pub.Publish(ctx, e)
	}
}
