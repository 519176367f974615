package swipe

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/deck"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/gesture"
	"github.com/roach88/swipedeck/internal/record"
)

// Controller is the swipe state machine. See the package doc for the
// threading contract.
type Controller struct {
	src    bridge.Source
	sched  Scheduler
	opts   Options
	log    zerolog.Logger
	ids    decision.IDGenerator
	now    func() time.Time
	detach func(task func())

	deck      *deck.Deck
	decisions decision.Log

	phase      Phase
	offset     gesture.Vector
	transition Transition
	likeCount  int
	version    uint64
	closed     bool

	// loadGen identifies the live subscription; results tagged with an
	// older generation are dropped.
	loadGen    uint64
	cancelLoad context.CancelFunc

	// commitGen identifies the live exit timer.
	commitGen uint64
	advance   *pendingAdvance

	subs    []snapshotSub
	errSubs []errorSub
	nextSub int
}

type pendingAdvance struct {
	gen      uint64
	recordID string
	timer    Timer
}

type snapshotSub struct {
	id int
	fn func(Snapshot)
}

type errorSub struct {
	id int
	fn func(error)
}

// New creates a controller over src. The deck starts empty; call Load.
func New(src bridge.Source, sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		src:    src,
		sched:  sched,
		opts:   DefaultOptions(),
		log:    zerolog.Nop(),
		ids:    decision.UUIDv7Generator{},
		now:    time.Now,
		detach: func(task func()) { go task() },
		deck:   deck.New(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Visible:    c.deck.VisibleWindow(c.opts.Window),
		TopOffset:  c.offset,
		Rotation:   gesture.Rotation(c.offset, c.opts.Rotation),
		Transition: c.transition,
		Phase:      c.phase,
		Cursor:     c.deck.Cursor(),
		Len:        c.deck.Len(),
		LikeCount:  c.likeCount,
		Exhausted:  c.deck.Exhausted(),
		CanUndo:    c.canUndo(),
		Version:    c.version,
	}
}

// Subscribe registers fn for every snapshot and immediately delivers the
// current one. The returned func unregisters it.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, snapshotSub{id: id, fn: fn})
	fn(c.Snapshot())
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeErrors registers fn for reported errors. Every error is a
// *bridge.Error.
func (c *Controller) SubscribeErrors(fn func(error)) (cancel func()) {
	c.nextSub++
	id := c.nextSub
	c.errSubs = append(c.errSubs, errorSub{id: id, fn: fn})
	return func() {
		for i, s := range c.errSubs {
			if s.id == id {
				c.errSubs = append(c.errSubs[:i:i], c.errSubs[i+1:]...)
				return
			}
		}
	}
}

// Load cancels any running subscription and starts a new one: fetch the
// initial deck, then apply every batch the source delivers.
func (c *Controller) Load() {
	if c.closed {
		return
	}
	c.stopLoad()

	c.loadGen++
	gen := c.loadGen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelLoad = cancel

	c.log.Debug().Uint64("generation", gen).Msg("load started")
	go c.runLoad(ctx, gen)
}

func (c *Controller) runLoad(ctx context.Context, gen uint64) {
	records, err := c.src.FetchInitial(ctx)
	if ctx.Err() != nil {
		return
	}
	c.sched.Post(func() { c.applyFetch(gen, records, err) })

	for b := range c.src.Observe(ctx) {
		b := b
		c.sched.Post(func() { c.applyBatch(gen, b) })
	}
}

func (c *Controller) applyFetch(gen uint64, records []record.Record, err error) {
	if c.closed || gen != c.loadGen {
		c.log.Debug().Uint64("generation", gen).Msg("dropping superseded fetch")
		return
	}
	if err != nil {
		c.report(bridge.AsFetch(err))
		return
	}
	c.replace(records)
}

func (c *Controller) applyBatch(gen uint64, b bridge.Batch) {
	if c.closed || gen != c.loadGen {
		c.log.Debug().Uint64("generation", gen).Msg("dropping superseded batch")
		return
	}
	if b.Err != nil {
		c.report(bridge.AsStream(b.Err))
		return
	}
	c.replace(b.Records)
}

func (c *Controller) replace(records []record.Record) {
	clean, dropped := record.Sanitize(records)
	if dropped > 0 {
		c.log.Warn().Int("dropped", dropped).Msg("invalid or duplicate records dropped from batch")
	}
	before, hadCurrent := c.deck.Current()
	c.deck.ReplaceAll(clean)
	cur, ok := c.deck.Current()

	switch {
	case c.advance != nil && (!ok || cur.ID != c.advance.recordID):
		// The decided card is gone or passed: the exit offset must not
		// land on whatever card is on top now.
		c.foldAdvance()
	case c.phase == PhaseDragging && (!ok || !hadCurrent || cur.ID != before.ID):
		c.rest(TransitionNone)
	}
	c.log.Debug().Int("records", c.deck.Len()).Int("cursor", c.deck.Cursor()).Msg("deck replaced")
	c.notify()
}

// DragChanged moves the top card with the finger. A pending commit is
// completed first so the drag applies to the new top card.
func (c *Controller) DragChanged(translation gesture.Vector) {
	if c.closed {
		return
	}
	folded := c.foldAdvance()
	if _, ok := c.deck.Current(); !ok {
		if folded {
			c.notify()
		}
		return
	}
	c.phase = PhaseDragging
	c.offset = gesture.Damp(translation, c.opts.DampingFactor)
	c.transition = TransitionInteractive
	c.notify()
}

// DragEnded classifies the release and either commits or springs back.
func (c *Controller) DragEnded(s gesture.Sample) {
	if c.closed {
		return
	}
	c.foldAdvance()

	g := gesture.Classify(s, c.opts.Thresholds)
	kind, ok := decision.KindOf(g)
	if !ok {
		c.rest(TransitionSpringBack)
		c.notify()
		return
	}
	c.commit(kind, gesture.ExitOffset(g, s.PredictedEnd, c.opts.FlyDistance))
}

// Decide commits kind on the top card without a drag. KindRewind is Undo.
func (c *Controller) Decide(kind decision.Kind) {
	if c.closed {
		return
	}
	var g gesture.Decision
	switch kind {
	case decision.KindAccept:
		g = gesture.Accept
	case decision.KindReject:
		g = gesture.Reject
	case decision.KindRewind:
		c.Undo()
		return
	default:
		c.report(bridge.NewInvariantViolation("decide", "unknown decision kind "+string(kind)))
		return
	}
	c.foldAdvance()
	c.commit(kind, gesture.ExitOffset(g, gesture.Zero, c.opts.FlyDistance))
}

func (c *Controller) commit(kind decision.Kind, exit gesture.Vector) {
	rec, ok := c.deck.Current()
	if !ok {
		c.report(bridge.NewInvariantViolation("commit", "no current record"))
		c.rest(TransitionNone)
		c.notify()
		return
	}

	d := decision.Decision{
		ID:        c.ids.Generate(),
		RecordID:  rec.ID,
		Kind:      kind,
		Timestamp: c.now(),
	}
	c.decisions.Record(decision.Pending{
		Record:      rec,
		PriorCursor: c.deck.Cursor(),
		Kind:        kind,
		ExitOffset:  exit,
		DecisionID:  d.ID,
	})
	if kind == decision.KindAccept {
		c.likeCount++
	}

	c.phase = PhaseCommitting
	c.offset = exit
	c.transition = TransitionExit

	c.commitGen++
	gen := c.commitGen
	c.advance = &pendingAdvance{gen: gen, recordID: rec.ID}
	c.advance.timer = c.sched.AfterFunc(c.opts.ExitDelay, func() { c.onExitTimer(gen) })

	c.log.Debug().Str("record", rec.ID).Str("kind", string(kind)).Msg("committed")
	c.send(d)
	c.notify()
}

func (c *Controller) onExitTimer(gen uint64) {
	if c.closed || c.advance == nil || c.advance.gen != gen {
		c.log.Debug().Uint64("generation", gen).Msg("ignoring stale exit timer")
		return
	}
	c.foldAdvance()
	c.notify()
}

// foldAdvance completes a pending commit now. The deck only moves if the
// decided record is still the current one; a batch may already have removed
// or passed it. Reports whether a commit was pending.
func (c *Controller) foldAdvance() bool {
	a := c.advance
	if a == nil {
		return false
	}
	c.advance = nil
	if a.timer != nil {
		a.timer.Stop()
	}
	if cur, ok := c.deck.Current(); ok && cur.ID == a.recordID {
		c.deck.Advance()
	}
	c.rest(TransitionNone)
	return true
}

// Undo reverts the most recent decision. Without one it does nothing.
func (c *Controller) Undo() {
	if c.closed {
		return
	}
	p, ok := c.decisions.TakeForUndo()
	if !ok {
		return
	}

	if c.advance != nil {
		if c.advance.timer != nil {
			c.advance.timer.Stop()
		}
		c.advance = nil
	}
	// Invalidate any exit timer that already fired and is queued.
	c.commitGen++

	if p.Kind == decision.KindAccept && c.likeCount > 0 {
		c.likeCount--
	}
	c.deck.Restore(p.Record, p.PriorCursor)

	from := p.ExitOffset
	if from.IsZero() {
		from = gesture.Vector{X: c.opts.FlyDistance}
	}
	c.phase = PhaseIdle
	c.offset = from
	c.transition = TransitionUndoReturn

	c.log.Debug().Str("record", p.Record.ID).Str("kind", string(p.Kind)).Msg("undone")
	c.send(decision.Decision{
		ID:        c.ids.Generate(),
		RecordID:  p.Record.ID,
		Kind:      decision.KindRewind,
		Timestamp: c.now(),
	})
	c.notify()
}

// Close stops the subscription and any pending advance. Further calls on
// the controller are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.stopLoad()
	if c.advance != nil {
		if c.advance.timer != nil {
			c.advance.timer.Stop()
		}
		c.advance = nil
	}
	c.decisions.Clear()
	c.log.Debug().Msg("closed")
}

func (c *Controller) stopLoad() {
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
}

// send delivers d off the loop. Failures come back as SEND_FAILED reports
// and are never rolled back.
func (c *Controller) send(d decision.Decision) {
	src, timeout := c.src, c.opts.SendTimeout
	c.detach(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := src.Send(ctx, d); err != nil {
			err = bridge.AsSend(d.RecordID, err)
			c.sched.Post(func() { c.report(err) })
		}
	})
}

func (c *Controller) rest(t Transition) {
	c.phase = PhaseIdle
	c.offset = gesture.Zero
	c.transition = t
}

func (c *Controller) canUndo() bool {
	_, ok := c.decisions.Peek()
	return ok
}

func (c *Controller) report(err error) {
	if c.closed {
		return
	}
	c.log.Warn().Err(err).Str("code", string(bridge.CodeOf(err))).Msg("swipe error")
	for _, s := range append([]errorSub(nil), c.errSubs...) {
		s.fn(err)
	}
}

func (c *Controller) notify() {
	c.version++
	snap := c.Snapshot()
	for _, s := range append([]snapshotSub(nil), c.subs...) {
		s.fn(snap)
	}
}
