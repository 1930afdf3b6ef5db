// Package planner implements the Session Controller: it owns the active trip
// session and keeps it consistent with the local cache and the remote store
// while the user switches trips, sends messages, and promotes itineraries.
//
// The controller initializes from configuration via New, creating all
// subsystems internally. Functional options replace any subsystem for tests.
//
//	c, err := planner.New(&cfg)
//	defer c.Close()
//	err = c.SelectTrip(ctx, trip.ID, trip.Location)
//	c.SendUserMessage(ctx, "Add a day trip to Nara")
//	result := c.PromoteCurrentItinerary(ctx)
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/kvstore"
	"github.com/tailored-agentic-units/planner/local"
	"github.com/tailored-agentic-units/planner/observability"
	"github.com/tailored-agentic-units/planner/remote"
	"github.com/tailored-agentic-units/planner/session"
)

// Option configures a Controller. Subsystems set by an option are not
// created from configuration.
type Option func(*Controller)

// WithCompleter overrides the config-created completer.
func WithCompleter(c completion.Completer) Option {
	return func(ctl *Controller) { ctl.completer = c }
}

// WithRemote overrides the config-created remote store.
func WithRemote(s remote.Store) Option {
	return func(ctl *Controller) { ctl.remote = s }
}

// WithLocal overrides the config-created local cache.
func WithLocal(c *local.Cache) Option {
	return func(ctl *Controller) { ctl.local = c }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(ctl *Controller) { ctl.observer = o }
}

type saveJob struct {
	tripID string
	update remote.Update
	done   chan error
}

// Controller is the Session Controller. All methods are safe for concurrent
// use; collaborators are never called while the state mutex is held.
type Controller struct {
	completer  completion.Completer
	remote     remote.Store
	local      *local.Cache
	observer   observability.Observer
	sessionCfg session.Config
	backend    kvstore.Backend

	mu        sync.Mutex
	active    session.Session
	state     State
	source    Source
	loadToken uint64
	inFlight  map[string]bool
	notice    *Notice

	// persistMu orders log reads with the writes that carry them, so the
	// newest log is always written last.
	persistMu sync.Mutex

	queueMu sync.RWMutex
	closed  bool
	queue   chan saveJob
	pending sync.WaitGroup
	stopped chan struct{}
}

// New creates a Controller from configuration. Subsystems not supplied by
// an option are initialized from their config sections.
func New(cfg *Config, opts ...Option) (*Controller, error) {
	c := &Controller{
		sessionCfg: cfg.Session,
		inFlight:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		obs, err := newObserver(cfg.Observer)
		if err != nil {
			return nil, err
		}
		c.observer = obs
	}

	if c.completer == nil {
		comp, err := completion.New(&cfg.Completion)
		if err != nil {
			return nil, fmt.Errorf("failed to create completer: %w", err)
		}
		c.completer = comp
	}

	if c.local == nil {
		c.local = local.New(&cfg.Local, c.observer)
	}

	if c.remote == nil {
		if cfg.Remote.URL != "" {
			store, err := remote.NewHTTPStore(&cfg.Remote)
			if err != nil {
				return nil, fmt.Errorf("failed to create remote store: %w", err)
			}
			c.remote = store
		} else {
			backend, err := kvstore.New(context.Background(), &cfg.Store)
			if err != nil {
				return nil, fmt.Errorf("failed to create store backend: %w", err)
			}
			c.backend = backend
			c.remote = remote.NewBackendStore(backend)
		}
	}

	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	c.queue = make(chan saveJob, size)
	c.stopped = make(chan struct{})
	go c.worker()

	return c, nil
}

func newObserver(name string) (observability.Observer, error) {
	if name == "" || name == defaultObserver {
		return observability.NewSlogObserver(slog.Default()), nil
	}
	obs, err := observability.GetObserver(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}
	return obs, nil
}

// SelectTrip makes tripID the active trip. Stored state is loaded from the
// remote store, else the local cache, else a fresh log is started. Empty
// arguments are a no-op. A call overtaken by a later SelectTrip returns
// ErrSuperseded and changes nothing.
func (c *Controller) SelectTrip(ctx context.Context, tripID, location string) error {
	tripID = strings.TrimSpace(tripID)
	location = strings.TrimSpace(location)
	if tripID == "" || location == "" {
		return nil
	}

	c.mu.Lock()
	c.loadToken++
	token := c.loadToken
	c.active = nil
	c.state = StateLoading
	c.source = SourceNone
	c.mu.Unlock()

	c.emit(ctx, EventTripSelect, observability.LevelInfo, map[string]any{
		"trip_id":  tripID,
		"location": location,
	})

	sess, source, notice := c.load(ctx, tripID, location)

	c.mu.Lock()
	if token != c.loadToken {
		c.mu.Unlock()
		c.emit(ctx, EventTripSuperseded, observability.LevelVerbose, map[string]any{"trip_id": tripID})
		return ErrSuperseded
	}
	c.active = sess
	c.state = StateReady
	c.source = source
	if notice != nil {
		c.notice = notice
	}
	c.mu.Unlock()

	c.emit(ctx, EventTripLoaded, observability.LevelInfo, map[string]any{
		"trip_id":  tripID,
		"source":   string(source),
		"messages": sess.Len(),
	})
	return nil
}

// load runs the precedence protocol. Tiers are never merged and the losing
// tier is not rewritten.
func (c *Controller) load(ctx context.Context, tripID, location string) (session.Session, Source, *Notice) {
	var notice *Notice

	rec, err := c.remote.Get(ctx, tripID)
	switch {
	case err != nil:
		c.emit(ctx, EventRemoteFallback, observability.LevelWarning, map[string]any{
			"trip_id": tripID,
			"error":   err.Error(),
		})
		notice = newNotice(SeverityWarning, tripID, "Could not load the saved trip from the server; using this device's copy.")
	case len(rec.ChatHistory) > 0:
		var snap *protocol.Snapshot
		if rec.Itinerary != "" {
			snap = &protocol.Snapshot{TripID: tripID, Content: rec.Itinerary}
		}
		sess, err := session.Restore(tripID, location, rec.ChatHistory, snap)
		if err == nil {
			return sess, SourceRemote, nil
		}
		c.emit(ctx, EventRemoteFallback, observability.LevelWarning, map[string]any{
			"trip_id": tripID,
			"error":   err.Error(),
		})
	}

	if log, ok := c.local.Log(tripID); ok {
		var snap *protocol.Snapshot
		if s, ok := c.local.Snapshot(tripID); ok {
			snap = &s
		}
		if sess, err := session.Restore(tripID, location, log, snap); err == nil {
			return sess, SourceLocal, notice
		}
	}

	sess, _ := session.Fresh(&c.sessionCfg, tripID, location)
	return sess, SourceFresh, notice
}

// SendUserMessage appends text as a user message and asks the completer for
// a reply. It never fails to the caller: blank text, no ready trip, or a send
// already in flight for the trip make it a no-op, and a completer failure is
// recorded as a sentinel assistant message. A reply that arrives after the
// active session changed is discarded.
func (c *Controller) SendUserMessage(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		c.skipped(ctx, "", "empty message")
		return
	}

	c.mu.Lock()
	sess := c.active
	if sess == nil || c.state == StateLoading {
		c.mu.Unlock()
		c.skipped(ctx, "", "no active trip")
		return
	}
	tripID := sess.TripID()
	if c.inFlight[tripID] {
		c.mu.Unlock()
		c.skipped(ctx, tripID, "send in flight")
		return
	}
	if err := sess.AddMessage(protocol.NewMessage(protocol.RoleUser, text)); err != nil {
		c.mu.Unlock()
		c.skipped(ctx, tripID, err.Error())
		return
	}
	c.inFlight[tripID] = true
	c.state = StateSending
	messages := sess.Messages()
	c.mu.Unlock()

	c.emit(ctx, EventSendStart, observability.LevelVerbose, map[string]any{
		"trip_id":  tripID,
		"messages": len(messages),
	})

	reply, err := c.completer.Complete(ctx, messages)
	succeeded := true
	switch {
	case errors.Is(err, completion.ErrEmptyReply), err == nil && strings.TrimSpace(reply) == "":
		reply, succeeded = NoResponseNotice, false
	case err != nil:
		reply, succeeded = FailureNotice, false
	}

	c.mu.Lock()
	delete(c.inFlight, tripID)
	if c.active == nil || c.active.ID() != sess.ID() {
		c.mu.Unlock()
		c.emit(ctx, EventSendStale, observability.LevelInfo, map[string]any{"trip_id": tripID})
		return
	}
	if err := sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, reply)); err != nil {
		c.state = StateReady
		c.mu.Unlock()
		c.skipped(ctx, tripID, err.Error())
		return
	}
	c.state = StateReady
	c.mu.Unlock()

	data := map[string]any{
		"trip_id":   tripID,
		"succeeded": succeeded,
		"messages":  sess.Len(),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	level := observability.LevelInfo
	if !succeeded {
		level = observability.LevelWarning
	}
	c.emit(ctx, EventSendComplete, level, data)

	c.persistMu.Lock()
	log := sess.Messages()
	c.local.SetLog(tripID, log)
	if succeeded {
		c.enqueue(saveJob{tripID: tripID, update: remote.NewUpdate(reply, log)})
	}
	c.persistMu.Unlock()
}

// PromoteCurrentItinerary copies the latest assistant message into the
// itinerary snapshot and persists the snapshot and log to both tiers,
// waiting for the remote write. Calling it again with no new messages
// rewrites the same values.
func (c *Controller) PromoteCurrentItinerary(ctx context.Context) Result {
	c.mu.Lock()
	sess := c.active
	if sess == nil {
		c.mu.Unlock()
		return Result{Status: StatusSkipped}
	}
	latest, ok := protocol.LatestAssistant(sess.Messages())
	if !ok {
		c.mu.Unlock()
		return Result{Status: StatusSkipped}
	}
	snap := sess.SetSnapshot(latest.Content)
	c.mu.Unlock()

	tripID := sess.TripID()

	c.persistMu.Lock()
	log := sess.Messages()
	c.local.SetSnapshot(snap)
	c.local.SetLog(tripID, log)
	done := make(chan error, 1)
	c.enqueue(saveJob{tripID: tripID, update: remote.NewUpdate(snap.Content, log), done: done})
	c.persistMu.Unlock()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	c.mu.Lock()
	stale := c.active == nil || c.active.ID() != sess.ID()
	switch {
	case stale:
	case err != nil:
		c.notice = newNotice(SeverityError, tripID, "Could not save the itinerary to the server.")
	default:
		c.notice = newNotice(SeverityInfo, tripID, "Itinerary saved.")
	}
	c.mu.Unlock()

	result := Result{Status: StatusSaved, Snapshot: snap, Err: err}
	switch {
	case stale:
		result.Status = StatusStale
	case err != nil:
		result.Status = StatusFailed
	}

	c.emit(ctx, EventPromoteComplete, observability.LevelInfo, map[string]any{
		"trip_id": tripID,
		"status":  result.Status.String(),
		"length":  len(snap.Content),
	})
	return result
}

// Draft sends the day-by-day itinerary request for trip, which must be the
// active trip, as a user message. Failures record the same notices as any
// other send.
func (c *Controller) Draft(ctx context.Context, trip protocol.Trip, notes string) error {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active == nil || active.TripID() != trip.ID {
		return ErrNoActiveTrip
	}

	c.SendUserMessage(ctx, completion.DraftPrompt(completion.DraftRequestFor(trip, notes)))
	return nil
}

// Current returns a copy of the active session.
func (c *Controller) Current() (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return View{State: c.state}, false
	}

	snap, hasSnap := c.active.Snapshot()
	return View{
		SessionID:   c.active.ID(),
		TripID:      c.active.TripID(),
		Location:    c.active.Location(),
		Messages:    c.active.Messages(),
		Snapshot:    snap,
		HasSnapshot: hasSnap,
		State:       c.state,
		Source:      c.source,
	}, true
}

// Status returns the current transient notice.
func (c *Controller) Status() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

// DismissStatus clears the transient notice.
func (c *Controller) DismissStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}

// Wait blocks until every queued remote write has finished.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Close drains queued remote writes, stops the writer, and releases a
// config-created store backend. Close is idempotent.
func (c *Controller) Close() error {
	c.queueMu.Lock()
	if c.closed {
		c.queueMu.Unlock()
		return nil
	}
	c.closed = true
	close(c.queue)
	c.queueMu.Unlock()

	<-c.stopped

	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}

// enqueue submits a remote write. Writes run in submission order on a single
// worker. After Close the job fails immediately with ErrClosed.
func (c *Controller) enqueue(job saveJob) {
	c.queueMu.RLock()
	defer c.queueMu.RUnlock()

	if c.closed {
		c.persistFailed(job.tripID, ErrClosed)
		if job.done != nil {
			job.done <- ErrClosed
		}
		return
	}

	c.pending.Add(1)
	c.queue <- job
}

func (c *Controller) worker() {
	defer close(c.stopped)

	for job := range c.queue {
		err := c.remote.Set(context.Background(), job.tripID, job.update)
		if err != nil {
			c.persistFailed(job.tripID, err)
			if job.done == nil {
				c.mu.Lock()
				if c.active != nil && c.active.TripID() == job.tripID {
					c.notice = newNotice(SeverityWarning, job.tripID, "Autosave to the server failed; changes are kept on this device.")
				}
				c.mu.Unlock()
			}
		}
		if job.done != nil {
			job.done <- err
		}
		c.pending.Done()
	}
}

func (c *Controller) persistFailed(tripID string, err error) {
	c.emit(context.Background(), EventPersistFailed, observability.LevelWarning, map[string]any{
		"trip_id": tripID,
		"error":   err.Error(),
	})
}

func (c *Controller) skipped(ctx context.Context, tripID, reason string) {
	data := map[string]any{"reason": reason}
	if tripID != "" {
		data["trip_id"] = tripID
	}
	c.emit(ctx, EventSendSkipped, observability.LevelVerbose, data)
}

func (c *Controller) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "planner.Controller",
		Data:      data,
	})
}

func newNotice(severity Severity, tripID, message string) *Notice {
	return &Notice{
		Severity: severity,
		TripID:   tripID,
		Message:  message,
		Time:     time.Now(),
	}
}
