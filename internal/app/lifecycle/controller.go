package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rideshare-app/rideshare-client/internal/app/route"
	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	clockport "github.com/rideshare-app/rideshare-client/internal/ports/out/clock"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/credstore"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
	notifierport "github.com/rideshare-app/rideshare-client/internal/ports/out/notifier"
)

// State is the screen-level state the presentation layer renders.
type State string

const (
	StateBootstrapping   State = "BOOTSTRAPPING"
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateComposing       State = "COMPOSING"
	StatePolling         State = "POLLING"
	StateMatched         State = "MATCHED"
)

// Snapshot is the controller's read-only view. LastError carries the most recent
// non-blocking, user-visible mutation failure.
type Snapshot struct {
	State      State
	TripStatus domain.TripStatus
	Draft      domain.TripDraft
	TripID     domain.TripID
	Matches    []domain.Match
	LastError  string
}

// RouteResolver is satisfied by route.Resolver.
type RouteResolver interface {
	Resolve(ctx context.Context, origin, destination domain.Coord) (route.Result, error)
}

type bootResult struct {
	active bool
	err    error
}

type pollResult struct {
	gen     int
	tripID  domain.TripID
	matches []domain.Match
	err     error
}

type routeResult struct {
	gen int
	res route.Result
	err error
}

// Controller is the trip lifecycle state machine. All mutable state is owned by
// the Run loop; commands, timer fires, push refreshes, and fetch completions are
// processed strictly one at a time, so no field needs a lock. Network calls run
// in short-lived goroutines whose completions re-enter the loop tagged with a
// generation and are discarded once superseded.
type Controller struct {
	gw       gateway.Client
	creds    credstore.Store
	routes   RouteResolver
	clk      clockport.Clock
	notifier notifierport.Notifier
	log      logger.Logger
	refresh  <-chan struct{}

	// BootstrapDelay is the splash-screen dwell applied to bootstrap outcomes;
	// PollInterval is the recurring match-fetch cadence. Set before Run.
	BootstrapDelay time.Duration
	PollInterval   time.Duration

	cmds       chan func()
	bootDone   chan bootResult
	pollDone   chan pollResult
	routeDone  chan routeResult
	submitDone chan error
	cancelDone chan error
	updated    chan struct{}

	// Loop-owned state. Never touched outside the Run goroutine.
	runCtx     context.Context
	state      State
	tripStatus domain.TripStatus
	draft      domain.TripDraft
	tripID     domain.TripID
	matches    []domain.Match
	lastError  string
	firstLoad  bool
	inFlight   bool
	queued     bool
	pollGen    int
	routeGen   int
	submitting bool
	cancelling bool
	bootTimer  clockport.Timer
	bootTarget State
	pollTimer  clockport.Timer

	mu   sync.RWMutex
	snap Snapshot
}

// Deps are the controller's collaborators. Refresh may be nil when push is
// unavailable; the controller then runs on the poll interval alone.
type Deps struct {
	Gateway  gateway.Client
	Creds    credstore.Store
	Routes   RouteResolver
	Clock    clockport.Clock
	Notifier notifierport.Notifier
	Refresh  <-chan struct{}
	Log      logger.Logger
}

func NewController(d Deps) *Controller {
	c := &Controller{
		gw:       d.Gateway,
		creds:    d.Creds,
		routes:   d.Routes,
		clk:      d.Clock,
		notifier: d.Notifier,
		log:      d.Log,
		refresh:  d.Refresh,

		BootstrapDelay: 1000 * time.Millisecond,
		PollInterval:   60000 * time.Millisecond,

		cmds:       make(chan func(), 64),
		bootDone:   make(chan bootResult, 1),
		pollDone:   make(chan pollResult, 4),
		routeDone:  make(chan routeResult, 16),
		submitDone: make(chan error, 1),
		cancelDone: make(chan error, 1),
		updated:    make(chan struct{}, 1),

		state:      StateBootstrapping,
		tripStatus: domain.TripStatusNone,
	}
	c.snap = Snapshot{State: StateBootstrapping, TripStatus: domain.TripStatusNone}
	return c
}

// Snapshot returns a copy of the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Updated signals (conflated) whenever the snapshot changes.
func (c *Controller) Updated() <-chan struct{} { return c.updated }

// Run bootstraps the session and then processes events until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	c.runCtx = ctx
	c.bootstrap(ctx)

	for {
		var bootC, pollC <-chan time.Time
		if c.bootTimer != nil {
			bootC = c.bootTimer.C()
		}
		if c.pollTimer != nil {
			pollC = c.pollTimer.C()
		}

		select {
		case <-ctx.Done():
			c.stopBootTimer()
			c.stopPolling()
			return

		case cmd := <-c.cmds:
			cmd()

		case r := <-c.bootDone:
			c.handleBootStatus(r)

		case <-bootC:
			c.bootTimer = nil
			c.applyBootTarget()

		case <-pollC:
			c.pollTimer = nil
			if c.state == StatePolling {
				c.pollTimer = c.clk.NewTimer(c.PollInterval)
				c.triggerFetch()
			}

		case <-c.refresh:
			if c.state == StatePolling {
				c.triggerFetch()
			}

		case r := <-c.pollDone:
			c.handlePollDone(r)

		case r := <-c.routeDone:
			c.handleRouteDone(r)

		case err := <-c.submitDone:
			c.handleSubmitDone(err)

		case err := <-c.cancelDone:
			c.handleCancelDone(err)
		}
	}
}

func (c *Controller) bootstrap(ctx context.Context) {
	tok, err := c.creds.Get(ctx)
	if err != nil {
		c.log.Warn("credential read failed at bootstrap", logger.Error(err))
		tok = ""
	}

	if tok == "" {
		// No session: dwell on the splash state, then hand off to auth.
		c.bootTarget = StateUnauthenticated
		c.bootTimer = c.clk.NewTimer(c.BootstrapDelay)
		return
	}

	go func() {
		active, err := c.gw.TripStatus(ctx)
		select {
		case c.bootDone <- bootResult{active: active, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) handleBootStatus(r bootResult) {
	if c.state != StateBootstrapping {
		return
	}
	if r.err != nil {
		// Fail open: a transient error must never strand the user on the
		// splash state. No dwell on this path.
		if !gateway.IsNotFound(r.err) {
			c.log.Warn("trip status check failed, falling back to composing", logger.Error(r.err))
		}
		c.enterComposing(true)
		return
	}
	if r.active {
		c.bootTarget = StatePolling
	} else {
		c.bootTarget = StateComposing
	}
	c.bootTimer = c.clk.NewTimer(c.BootstrapDelay)
}

func (c *Controller) applyBootTarget() {
	switch c.bootTarget {
	case StateUnauthenticated:
		c.state = StateUnauthenticated
		c.publish()
	case StatePolling:
		c.enterPolling()
	case StateComposing:
		c.enterComposing(true)
	}
}

func (c *Controller) enterPolling() {
	c.state = StatePolling
	c.tripStatus = domain.TripStatusPending
	c.firstLoad = true
	c.matches = nil
	c.publish()
	c.pollTimer = c.clk.NewTimer(c.PollInterval)
	c.triggerFetch()
}

func (c *Controller) enterComposing(freshDraft bool) {
	c.stopPolling()
	c.state = StateComposing
	if freshDraft {
		c.draft = domain.TripDraft{}
		c.routeGen++
		c.tripID = 0
		c.matches = nil
		c.tripStatus = domain.TripStatusNone
	}
	c.publish()
}

// stopPolling cancels the interval timer and supersedes any in-flight fetch.
func (c *Controller) stopPolling() {
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
	c.pollGen++
	c.inFlight = false
	c.queued = false
}

func (c *Controller) stopBootTimer() {
	if c.bootTimer != nil {
		c.bootTimer.Stop()
		c.bootTimer = nil
	}
}

// triggerFetch starts a trip/matches fetch unless one is already in flight, in
// which case a single follow-up is queued. Never runs two fetches concurrently.
func (c *Controller) triggerFetch() {
	if c.inFlight {
		c.queued = true
		return
	}
	c.inFlight = true
	gen := c.pollGen
	ctx := c.runCtx
	go func() {
		id, err := c.gw.FetchTrip(ctx)
		if err != nil {
			c.sendPollDone(pollResult{gen: gen, err: err})
			return
		}
		matches, err := c.gw.Matches(ctx, id)
		c.sendPollDone(pollResult{gen: gen, tripID: id, matches: matches, err: err})
	}()
}

func (c *Controller) sendPollDone(r pollResult) {
	select {
	case c.pollDone <- r:
	case <-c.runCtx.Done():
	}
}

func (c *Controller) handlePollDone(r pollResult) {
	if r.gen != c.pollGen || c.state != StatePolling {
		return // superseded; the controller has moved on
	}
	c.inFlight = false
	followUp := c.queued
	c.queued = false

	if r.err != nil {
		if gateway.IsNotFound(r.err) {
			// The trip vanished server-side (expired or consumed by a match);
			// both outcomes return to composing.
			c.log.Info("active trip gone server-side, returning to composing")
			c.enterComposing(true)
			return
		}
		// Transport failures during polling are absorbed; the next tick retries.
		c.log.Warn("poll fetch failed", logger.Error(r.err))
	} else {
		c.tripID = r.tripID
		changed := !matchesEqual(c.matches, r.matches)
		c.matches = r.matches
		if c.firstLoad {
			c.firstLoad = false
		} else if changed {
			c.notifier.Notify("New matching trips", "Your pending trip has updated candidate matches.")
		}
		c.publish()
	}

	if followUp {
		c.triggerFetch()
	}
}

func (c *Controller) handleRouteDone(r routeResult) {
	if r.gen != c.routeGen || c.state != StateComposing {
		return
	}
	if r.err != nil {
		c.log.Warn("route fetch failed", logger.Error(r.err))
		return
	}
	c.draft.RouteCoordinates = r.res.Coordinates
	c.draft.DurationText = r.res.DurationText
	c.publish()
}

func (c *Controller) handleSubmitDone(err error) {
	c.submitting = false
	if err != nil {
		// Draft preserved for retry.
		c.log.Warn("trip submission failed", logger.Error(err))
		c.setError("Failed to send trip info.")
		return
	}
	c.draft = domain.TripDraft{}
	c.lastError = ""
	c.matches = nil // invalidate cached match results
	c.enterPolling()
}

func (c *Controller) handleCancelDone(err error) {
	c.cancelling = false
	if err != nil {
		c.log.Warn("trip cancellation failed", logger.Error(err))
		c.setError("Failed to cancel trip.")
		return
	}
	// Optimistic: don't wait for server-side propagation. The credential is
	// untouched by cancellation.
	c.lastError = ""
	c.enterComposing(true)
	c.tripStatus = domain.TripStatusCancelled
	c.publish()
}

// SelectOrigin applies a chosen suggestion to the draft's origin and, once both
// endpoints are present, kicks off route resolution.
func (c *Controller) SelectOrigin(name string, coord domain.Coord) {
	c.do(func() {
		if c.state != StateComposing {
			return
		}
		cc := coord
		c.draft.OriginName = name
		c.draft.Origin = &cc
		c.maybeResolveRoute()
		c.publish()
	})
}

// SelectDestination is the destination counterpart of SelectOrigin.
func (c *Controller) SelectDestination(name string, coord domain.Coord) {
	c.do(func() {
		if c.state != StateComposing {
			return
		}
		cc := coord
		c.draft.DestinationName = name
		c.draft.Destination = &cc
		c.maybeResolveRoute()
		c.publish()
	})
}

func (c *Controller) maybeResolveRoute() {
	if !c.draft.Complete() {
		return
	}
	c.routeGen++
	gen := c.routeGen
	origin, destination := *c.draft.Origin, *c.draft.Destination
	ctx := c.runCtx
	go func() {
		res, err := c.routes.Resolve(ctx, origin, destination)
		select {
		case c.routeDone <- routeResult{gen: gen, res: res, err: err}:
		case <-ctx.Done():
		}
	}()
}

// SubmitTrip turns the draft into a trip request scheduled at the given time.
// On success the draft is cleared and polling begins; on failure the draft is
// preserved and a non-blocking error surfaces in the snapshot.
func (c *Controller) SubmitTrip(when time.Time) {
	c.do(func() {
		if c.state != StateComposing || c.submitting {
			return
		}
		if !c.draft.Complete() {
			c.setError("Select both origin and destination.")
			return
		}
		c.submitting = true
		w := when
		c.draft.ScheduledTime = &w
		draft := c.draft
		ctx := c.runCtx
		go func() {
			tok, err := c.creds.Get(ctx)
			if err == nil {
				req := domain.TripRequest{
					OriginName:       draft.OriginName,
					TargetName:       draft.DestinationName,
					Time:             w,
					RouteCoordinates: draft.RouteCoordinates,
					AccessToken:      tok,
				}
				err = c.gw.PostTrip(ctx, req)
			}
			select {
			case c.submitDone <- err:
			case <-ctx.Done():
			}
		}()
	})
}

// CancelTrip asks the backend to cancel the active trip and transitions
// optimistically to composing on success.
func (c *Controller) CancelTrip() {
	c.do(func() {
		if c.state != StatePolling || c.cancelling {
			return
		}
		c.cancelling = true
		ctx := c.runCtx
		go func() {
			err := c.gw.CancelTrip(ctx)
			select {
			case c.cancelDone <- err:
			case <-ctx.Done():
			}
		}()
	})
}

// JoinTrip marks the session as matched.
//
// TODO: joining has no backend confirmation yet (add the rider to the trip
// group, create the chat); until that endpoint exists this only advances local
// state, mirroring the original client's navigation.
func (c *Controller) JoinTrip() {
	c.do(func() {
		if c.state != StatePolling {
			return
		}
		c.stopPolling()
		c.state = StateMatched
		c.tripStatus = domain.TripStatusMatched
		c.publish()
	})
}

// NewDraft starts a fresh draft after a matched or cancelled trip.
func (c *Controller) NewDraft() {
	c.do(func() {
		if c.state != StateMatched && c.state != StateComposing {
			return
		}
		c.enterComposing(true)
	})
}

// Authenticated moves the controller out of the auth screen after a successful
// login. A fresh login has no active trip, so composing is the target.
func (c *Controller) Authenticated() {
	c.do(func() {
		if c.state != StateUnauthenticated && c.state != StateBootstrapping {
			return
		}
		c.stopBootTimer()
		c.enterComposing(true)
	})
}

// Deauthenticated reacts to an explicit logout.
func (c *Controller) Deauthenticated() {
	c.do(func() {
		c.stopBootTimer()
		c.stopPolling()
		c.state = StateUnauthenticated
		c.draft = domain.TripDraft{}
		c.tripID = 0
		c.matches = nil
		c.tripStatus = domain.TripStatusNone
		c.publish()
	})
}

func (c *Controller) do(cmd func()) {
	c.cmds <- cmd
}

func (c *Controller) setError(msg string) {
	c.lastError = msg
	c.publish()
}

func (c *Controller) publish() {
	snap := Snapshot{
		State:      c.state,
		TripStatus: c.tripStatus,
		TripID:     c.tripID,
		LastError:  c.lastError,
	}
	snap.Draft = cloneDraft(c.draft)
	snap.Matches = append([]domain.Match(nil), c.matches...)

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	select {
	case c.updated <- struct{}{}:
	default:
	}
}

func cloneDraft(d domain.TripDraft) domain.TripDraft {
	cp := d
	if d.Origin != nil {
		o := *d.Origin
		cp.Origin = &o
	}
	if d.Destination != nil {
		t := *d.Destination
		cp.Destination = &t
	}
	cp.RouteCoordinates = append([]domain.Coord(nil), d.RouteCoordinates...)
	if d.ScheduledTime != nil {
		ts := *d.ScheduledTime
		cp.ScheduledTime = &ts
	}
	return cp
}

// matchesEqual compares match lists field by field. Timestamps compare as
// instants: each poll decodes matches freshly, and decoded times can carry
// distinct Location values for the same instant, so struct equality would
// report an unchanged list as changed.
func matchesEqual(a, b []domain.Match) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !matchEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func matchEqual(a, b domain.Match) bool {
	return a.ID == b.ID &&
		a.Origin == b.Origin &&
		a.Destination == b.Destination &&
		a.Gender == b.Gender &&
		a.Time.Equal(b.Time)
}
