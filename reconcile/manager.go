package reconcile

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/histsync/credential"
	"github.com/jonwraymond/histsync/observe"
	"github.com/jonwraymond/histsync/store"
)

// Snapshot is the externally visible state of one observation cycle.
type Snapshot struct {
	// Records is the effective record set: live data when the most
	// recent fetch returned anything, the cached snapshot otherwise.
	Records []store.Record

	// IsCached is true exactly when Records comes from the cache.
	IsCached bool

	// Total is the externally supplied aggregate.
	Total float64

	// Percentage is sum(Records.Value)/Total*100, or 0 when Total <= 0.
	Percentage float64

	// Loading is true while any remote operation is in flight.
	Loading bool

	// Err is the combined error signal: records fetch, then total
	// fetch, then mutation, first non-nil wins.
	Err error
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutoFetch enables or disables the automatic fetch on empty record
// sets. Enabled by default.
func WithAutoFetch(enabled bool) Option {
	return func(m *Manager) {
		m.autoFetch = enabled
	}
}

// WithLogger sets the logger for manager-internal events.
func WithLogger(logger observe.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMiddleware instruments every remote call with tracing, metrics,
// and logging.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(m *Manager) {
		m.mw = mw
	}
}

// WithGuardStateChange registers a hook invoked on auto-fetch guard
// transitions.
func WithGuardStateChange(fn func(from, to GuardState)) Option {
	return func(m *Manager) {
		m.guardHook = fn
	}
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Manager reconciles live fetch results and confirmed mutations into
// the history cache and publishes snapshots to subscribers.
//
// Contract:
// - Concurrency: safe for concurrent use. Cache effects of a mutation
//   are applied strictly after the remote confirmation and strictly
//   before the mutating method returns.
// - Errors: remote errors are surfaced through Snapshot.Err and never
//   block cache reads.
type Manager struct {
	store     store.Store
	records   RecordSource
	totals    TotalSource
	mutator   Mutator
	logger    observe.Logger
	mw        *observe.Middleware
	guard     *Guard
	guardHook func(from, to GuardState)
	autoFetch bool
	group     singleflight.Group

	mu      sync.Mutex
	userID  string
	cred    credential.Token
	live    []store.Record
	total   float64
	ops     [opCount]opState
	subs    []subscriber
	nextSub int
}

// NewManager creates a manager bound to the given store and sources.
// A nil store gets a fresh MemoryStore; sessions that should share a
// cache must be handed the same store instance explicitly.
func NewManager(st store.Store, records RecordSource, totals TotalSource, mutator Mutator, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		records:   records,
		totals:    totals,
		mutator:   mutator,
		autoFetch: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = store.NewMemoryStore()
	}
	if m.logger == nil {
		m.logger = observe.NopLogger()
	}
	m.guard = NewGuard(GuardConfig{OnStateChange: m.guardHook})
	return m
}

// Store returns the cache store the manager reconciles into.
func (m *Manager) Store() store.Store {
	return m.store
}

// GuardState returns the current auto-fetch guard state.
func (m *Manager) GuardState() GuardState {
	return m.guard.State()
}

// Subscribe registers an observer invoked with a fresh snapshot whenever
// any input changes. The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current observable state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// SetUser switches the manager to userID. Live records belong to the
// previous user's fetch generation and are discarded; the cache entry
// for the new user, if any, becomes the fallback.
func (m *Manager) SetUser(ctx context.Context, userID string) {
	m.mu.Lock()
	if m.userID == userID {
		m.mu.Unlock()
		return
	}
	m.userID = userID
	m.live = nil
	m.ops[opFetchRecords] = opState{}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	m.maybeAutoFetch(ctx)
}

// SetCredential switches the manager to cred. A change of value resets
// the auto-fetch guard to idle and invalidates the in-flight fetch
// generation.
func (m *Manager) SetCredential(ctx context.Context, cred credential.Token) {
	m.mu.Lock()
	if m.cred.Equal(cred) {
		m.mu.Unlock()
		return
	}
	m.cred = cred
	m.live = nil
	m.ops[opFetchRecords] = opState{}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.guard.Track(cred)
	m.notify(snap)
	m.maybeAutoFetch(ctx)
}

// SetSession installs cred and derives the user identifier from the
// credential's subject claim, for callers whose tokens are JWT-shaped.
// Returns ErrNoSubject, changing nothing, when no subject is
// extractable; use SetUser and SetCredential separately for opaque
// credentials.
func (m *Manager) SetSession(ctx context.Context, cred credential.Token) error {
	sub, ok := cred.Subject()
	if !ok {
		return ErrNoSubject
	}
	m.SetUser(ctx, sub)
	m.SetCredential(ctx, cred)
	return nil
}

// Refresh re-issues the record and total fetches for the current user.
// It bypasses the auto-fetch guard entirely: it neither consumes nor
// resets guard state.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	userID, cred := m.userID, m.cred
	m.mu.Unlock()

	if userID == "" {
		return ErrNoUser
	}

	if err := m.fetch(ctx, userID, cred); err != nil {
		// The total fetch still runs so the aggregate stays current.
		_ = m.fetchTotal(ctx, cred)
		return err
	}
	return m.fetchTotal(ctx, cred)
}

// Create issues the remote create and, on confirmed success, appends the
// remote's canonical record to the cache.
func (m *Manager) Create(ctx context.Context, rec store.Record) (store.Record, error) {
	var stored store.Record
	err := m.mutate(ctx, opMutation.String()+".create", func(ctx context.Context, userID string, cred credential.Token) error {
		var ierr error
		stored, ierr = m.mutator.CreateRecord(ctx, userID, cred, rec)
		return ierr
	}, func(userID string) {
		m.store.AddHistory(userID, stored)
	})
	return stored, err
}

// Update issues the remote update and, on confirmed success, replaces
// the matching cached record with the remote's canonical record.
func (m *Manager) Update(ctx context.Context, id string, rec store.Record) (store.Record, error) {
	var stored store.Record
	err := m.mutate(ctx, opMutation.String()+".update", func(ctx context.Context, userID string, cred credential.Token) error {
		var ierr error
		stored, ierr = m.mutator.UpdateRecord(ctx, userID, cred, id, rec)
		return ierr
	}, func(userID string) {
		if !m.store.UpdateHistory(userID, id, stored) {
			m.logger.Debug(context.Background(), "confirmed update had no cached record", observe.Field{Key: "record.id", Value: id})
		}
	})
	return stored, err
}

// Delete issues the remote delete and, on confirmed success, removes the
// matching cached record. The remote response carries no record body.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.mutate(ctx, opMutation.String()+".delete", func(ctx context.Context, userID string, cred credential.Token) error {
		return m.mutator.DeleteRecord(ctx, userID, cred, id)
	}, func(userID string) {
		if !m.store.RemoveHistory(userID, id) {
			m.logger.Debug(context.Background(), "confirmed delete had no cached record", observe.Field{Key: "record.id", Value: id})
		}
	})
}

// mutate runs the remote-first mutation sequence: issue the remote call,
// and only after it confirms apply the cache effect. The cache effect
// runs before control returns to the caller, so no later read observes a
// half-applied mutation. On failure the cache is left untouched.
func (m *Manager) mutate(ctx context.Context, opName string, call func(context.Context, string, credential.Token) error, apply func(userID string)) error {
	if m.mutator == nil {
		return ErrNoMutator
	}

	m.mu.Lock()
	userID, cred := m.userID, m.cred
	if userID == "" {
		m.mu.Unlock()
		return ErrNoUser
	}
	m.ops[opMutation] = opState{loading: true}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	err := m.instrumented(ctx, opName, userID, func(ctx context.Context) error {
		return call(ctx, userID, cred)
	})

	m.mu.Lock()
	m.ops[opMutation] = opState{err: err}
	if err == nil {
		if m.userID == userID && m.cred.Equal(cred) {
			apply(userID)
		} else {
			m.logger.Debug(ctx, "dropping stale mutation completion",
				observe.Field{Key: "op", Value: opName},
				observe.Field{Key: "user.id", Value: userID},
			)
		}
	}
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
	return err
}

// fetch runs the record fetch for the given generation. Concurrent
// fetches for the same user and credential coalesce into one remote
// call. The completion is applied only if the manager still points at
// the same user and credential.
func (m *Manager) fetch(ctx context.Context, userID string, cred credential.Token) error {
	if m.records == nil {
		return ErrNoRecordSource
	}

	m.mu.Lock()
	m.ops[opFetchRecords].loading = true
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	v, err, _ := m.group.Do(fetchKey(userID, cred), func() (any, error) {
		var recs []store.Record
		ferr := m.instrumented(ctx, opFetchRecords.String(), userID, func(ctx context.Context) error {
			var ierr error
			recs, ierr = m.records.FetchRecords(ctx, userID, cred)
			return ierr
		})
		return recs, ferr
	})

	m.mu.Lock()
	if m.userID != userID || !m.cred.Equal(cred) {
		m.mu.Unlock()
		m.logger.Debug(ctx, "dropping stale fetch completion",
			observe.Field{Key: "user.id", Value: userID},
		)
		return err
	}

	m.ops[opFetchRecords] = opState{err: err}
	if err == nil {
		recs, _ := v.([]store.Record)
		m.live = recs
		if len(recs) > 0 {
			// One-directional mirror: live data overwrites the cache,
			// never the other way around.
			m.store.SetHistories(userID, recs)
		}
	}
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	if err == nil && snap.IsCached && m.mw != nil {
		m.mw.Fallback(ctx, observe.SessionMeta{UserID: userID, Op: opFetchRecords.String()})
	}
	return err
}

// fetchTotal refreshes the aggregate total. The total is global, so only
// a credential change invalidates the completion.
func (m *Manager) fetchTotal(ctx context.Context, cred credential.Token) error {
	if m.totals == nil {
		return nil
	}

	m.mu.Lock()
	m.ops[opFetchTotal].loading = true
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	var total float64
	err := m.instrumented(ctx, opFetchTotal.String(), "", func(ctx context.Context) error {
		var ierr error
		total, ierr = m.totals.FetchTotal(ctx, cred)
		return ierr
	})

	m.mu.Lock()
	if !m.cred.Equal(cred) {
		m.ops[opFetchTotal].loading = false
		m.mu.Unlock()
		m.logger.Debug(ctx, "dropping stale total completion")
		return err
	}
	m.ops[opFetchTotal] = opState{err: err}
	if err == nil {
		m.total = total
	}
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
	return err
}

// maybeAutoFetch fires the single automatic fetch for the current
// credential when auto-fetch is enabled, a credential and user are
// present, and the effective record set is empty.
func (m *Manager) maybeAutoFetch(ctx context.Context) {
	m.mu.Lock()
	userID, cred := m.userID, m.cred
	enabled := m.autoFetch
	empty := len(m.effectiveLocked()) == 0
	m.mu.Unlock()

	if !enabled || !cred.Present() || userID == "" || !empty {
		return
	}
	if !m.guard.Acquire(cred) {
		return
	}

	m.logger.Debug(ctx, "auto-fetch triggered", observe.Field{Key: "user.id", Value: userID})
	_ = m.fetch(ctx, userID, cred)
	_ = m.fetchTotal(ctx, cred)
}

func (m *Manager) effectiveLocked() []store.Record {
	if len(m.live) > 0 {
		return m.live
	}
	if cached, ok := m.store.GetHistories(m.userID); ok {
		return cached
	}
	return nil
}

func (m *Manager) snapshotLocked() Snapshot {
	effective := m.effectiveLocked()
	isCached := len(m.live) == 0 && len(effective) > 0

	records := make([]store.Record, len(effective))
	copy(records, effective)

	return Snapshot{
		Records:    records,
		IsCached:   isCached,
		Total:      m.total,
		Percentage: percentage(records, m.total),
		Loading:    anyLoading(&m.ops),
		Err:        combinedError(&m.ops),
	}
}

func (m *Manager) notify(snap Snapshot) {
	m.mu.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}

func (m *Manager) instrumented(ctx context.Context, opName, userID string, fn func(context.Context) error) error {
	if m.mw == nil {
		return fn(ctx)
	}
	return m.mw.Run(ctx, observe.SessionMeta{UserID: userID, Op: opName}, fn)
}

// percentage derives the aggregate metric from the effective record set.
// A non-positive total yields 0 rather than a division error.
func percentage(records []store.Record, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Value
	}
	return sum / total * 100
}

func fetchKey(userID string, cred credential.Token) string {
	return userID + "\x00" + string(cred)
}
