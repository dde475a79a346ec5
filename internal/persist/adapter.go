package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/kv"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// #region adapter
// Adapter loads and saves Entities. Load, Save and Repair bookkeeping are
// meant to be called from the single state owner; SaveAnalytics may be called
// from any goroutine.
type Adapter struct {
	store     kv.Store
	namespace string
	account   string
	catalog   *scenario.Catalog
	log       *logging.Logger

	issue     *DataIssue
	corrupted map[Key]string
}

type Options struct {
	Namespace string
	Account   string
	Catalog   *scenario.Catalog
	Logger    *logging.Logger
}

func NewAdapter(store kv.Store, opts Options) *Adapter {
	if opts.Namespace == "" {
		opts.Namespace = "mindsense.v1"
	}
	if opts.Account == "" {
		opts.Account = "demo"
	}
	if opts.Catalog == nil {
		opts.Catalog = scenario.DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Adapter{
		store:     store,
		namespace: opts.Namespace,
		account:   opts.Account,
		catalog:   opts.Catalog,
		log:       opts.Logger,
		corrupted: make(map[Key]string),
	}
}

// StorageKey is the namespaced kv key for k.
func (a *Adapter) StorageKey(k Key) string {
	if k == KeyOnboarding {
		return a.namespace + "." + string(k) + "." + a.account
	}
	return a.namespace + "." + string(k)
}

// Issue is the first data issue of the last load cycle, or nil.
func (a *Adapter) Issue() *DataIssue {
	if a.issue == nil {
		return nil
	}
	cp := *a.issue
	return &cp
}

// Corrupted lists every key that failed to decode since the last ClearIssue.
func (a *Adapter) Corrupted() []Key {
	var out []Key
	for _, k := range EntityKeys {
		if _, ok := a.corrupted[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// ClearIssue forgets the current issue and corrupted keys.
func (a *Adapter) ClearIssue() {
	a.issue = nil
	a.corrupted = make(map[Key]string)
}

func (a *Adapter) fail(k Key, err error) {
	a.corrupted[k] = err.Error()
	a.log.Warn("persisted value replaced with fallback", "key", string(k), "error", err)
	if a.issue != nil {
		return
	}
	a.issue = &DataIssue{
		Key:     k,
		Message: fmt.Sprintf("Some saved data (%s) could not be read and was reset. Use repair to restore defaults.", k.Label()),
	}
}
// #endregion adapter

// #region load
// load reads k into out. It reports false when the key is absent or failed,
// in which case out is left untouched and the caller keeps its fallback.
func (a *Adapter) load(ctx context.Context, k Key, out any) bool {
	raw, err := a.store.Get(ctx, a.StorageKey(k))
	if errors.Is(err, kv.ErrNotFound) {
		return false
	}
	if err != nil {
		a.fail(k, fmt.Errorf("read: %w", err))
		return false
	}
	if _, err := decode(raw, out); err != nil {
		a.fail(k, err)
		return false
	}
	return true
}

// Load starts a new load cycle and returns every entity, substituting
// fallbacks for absent or undecodable keys.
func (a *Adapter) Load(ctx context.Context, now time.Time) Entities {
	a.ClearIssue()

	sc := DefaultScenario
	var storedScenario scenario.Scenario
	if a.load(ctx, KeyScenario, &storedScenario) {
		if storedScenario.Valid() {
			sc = storedScenario
		} else {
			a.fail(KeyScenario, fmt.Errorf("unknown scenario %q", storedScenario))
		}
	}
	profile := a.catalog.Profile(sc)
	e := Entities{Scenario: sc, Metrics: profile.Baseline.Clamped(), DemoDay: profile.DefaultDay}

	var m metric.Snapshot
	if a.load(ctx, KeyMetrics, &m) {
		e.Metrics = m.Clamped()
	}

	var day int
	if a.load(ctx, KeyDemoDay, &day) {
		if day >= 0 {
			e.DemoDay = day
		} else {
			a.fail(KeyDemoDay, fmt.Errorf("negative day %d", day))
		}
	}

	var sessions []session.Session
	if a.load(ctx, KeySessionHistory, &sessions) {
		e.Sessions = normalizeHistory(sessions)
	}

	var active session.Session
	if a.load(ctx, KeyActiveSession, &active) {
		active = active.Normalize()
		switch {
		case active.Active():
			e.Active = &active
		case active.State.Terminal():
			// a finished session left under the active key belongs in history
			e.Sessions = settleFinished(e.Sessions, active)
			if _, bad := a.corrupted[KeySessionHistory]; !bad {
				_ = a.Save(ctx, e, KeySessionHistory, KeyActiveSession)
			}
		}
	}

	e.Experiments = experiment.Defaults(profile)
	var exps []experiment.Experiment
	if a.load(ctx, KeyExperiments, &exps) {
		e.Experiments = normalizeExperiments(exps)
	}

	var events []history.Event
	if a.load(ctx, KeyEvents, &events) {
		if len(events) > history.MaxEvents {
			events = events[len(events)-history.MaxEvents:]
		}
		e.Events = events
	}

	var hp health.Profile
	if a.load(ctx, KeyHealth, &hp) {
		e.Health = hp
	} else {
		e.Health = health.Seed(health.Inputs{Scenario: sc, DemoDay: e.DemoDay, Metrics: e.Metrics, Now: now})
	}

	var insights []string
	if a.load(ctx, KeyInsights, &insights) {
		if len(insights) > MaxInsights {
			insights = insights[len(insights)-MaxInsights:]
		}
		e.Insights = insights
	}

	var step int
	if a.load(ctx, KeyGuidedPath, &step) {
		e.GuidedStep = min(max(step, 0), MaxGuidedStep)
	}

	var onboarding int
	if a.load(ctx, KeyOnboarding, &onboarding) {
		e.Onboarding = max(onboarding, 0)
	}

	var reviewed time.Time
	if a.load(ctx, KeyKPIReviewed, &reviewed) && !reviewed.IsZero() {
		e.KPIReviewedAt = &reviewed
	}

	var seen bool
	if a.load(ctx, KeyPaywallSeen, &seen) {
		e.PaywallSeen = seen
	}

	e.Analytics = a.loadAnalytics(ctx)
	return e
}

func (a *Adapter) loadAnalytics(ctx context.Context) []analytics.Event {
	raw, err := a.store.Get(ctx, a.StorageKey(KeyAnalytics))
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		a.fail(KeyAnalytics, fmt.Errorf("read: %w", err))
		return nil
	}
	if len(raw) > analytics.MaxBytes+envelopeOverhead {
		a.fail(KeyAnalytics, fmt.Errorf("payload of %d bytes exceeds limit", len(raw)))
		return nil
	}
	var events []analytics.Event
	if _, err := decode(raw, &events); err != nil {
		a.fail(KeyAnalytics, err)
		return nil
	}
	return analytics.Cap(events)
}

// envelopeOverhead is the room the version wrapper takes around the list.
const envelopeOverhead = 64

func normalizeHistory(list []session.Session) []session.Session {
	out := make([]session.Session, 0, len(list))
	for _, s := range list {
		s = s.Normalize()
		if !s.State.Terminal() {
			continue
		}
		out = append(out, s)
	}
	if len(out) > history.MaxSessions {
		out = out[len(out)-history.MaxSessions:]
	}
	return out
}

// settleFinished appends s to list unless a session with the same id is already there.
func settleFinished(list []session.Session, s session.Session) []session.Session {
	for _, x := range list {
		if x.ID == s.ID {
			return list
		}
	}
	return history.AppendCapped(list, s, history.MaxSessions)
}

// normalizeExperiments keeps only the first active experiment active.
func normalizeExperiments(list []experiment.Experiment) []experiment.Experiment {
	seenActive := false
	for i := range list {
		if list[i].Status != experiment.Active {
			continue
		}
		if seenActive {
			list[i].Status = experiment.Planned
			list[i].StartedAt = nil
			list[i].TargetEndDate = nil
			list[i].CheckInDaysCompleted = 0
			list[i].CheckInLog = nil
			continue
		}
		seenActive = true
	}
	return list
}
// #endregion load

// #region save
// Save writes the listed keys of e. Every key is attempted; failures are joined.
func (a *Adapter) Save(ctx context.Context, e Entities, keys ...Key) error {
	var errs []error
	for _, k := range keys {
		if err := a.saveKey(ctx, e, k); err != nil {
			a.log.Warn("persist write failed", "key", string(k), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Adapter) saveKey(ctx context.Context, e Entities, k Key) error {
	var v any
	switch k {
	case KeyScenario:
		v = e.Scenario
	case KeyMetrics:
		v = e.Metrics
	case KeyDemoDay:
		v = e.DemoDay
	case KeySessionHistory:
		v = nonNil(e.Sessions)
	case KeyActiveSession:
		if e.Active == nil {
			return a.delete(ctx, k)
		}
		v = e.Active
	case KeyExperiments:
		v = nonNil(e.Experiments)
	case KeyEvents:
		v = nonNil(e.Events)
	case KeyHealth:
		v = e.Health
	case KeyInsights:
		v = nonNil(e.Insights)
	case KeyGuidedPath:
		v = e.GuidedStep
	case KeyOnboarding:
		v = e.Onboarding
	case KeyKPIReviewed:
		if e.KPIReviewedAt == nil {
			return a.delete(ctx, k)
		}
		v = e.KPIReviewedAt
	case KeyPaywallSeen:
		v = e.PaywallSeen
	case KeyAnalytics:
		return a.SaveAnalytics(ctx, e.Analytics)
	default:
		return fmt.Errorf("save %s: unknown key", k)
	}
	return a.put(ctx, k, v)
}

// SaveAnalytics replaces the persisted analytics list with a capped copy of events.
func (a *Adapter) SaveAnalytics(ctx context.Context, events []analytics.Event) error {
	return a.put(ctx, KeyAnalytics, nonNil(analytics.Cap(events)))
}

func (a *Adapter) put(ctx context.Context, k Key, v any) error {
	b, err := encode(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", k, err)
	}
	if err := a.store.Set(ctx, a.StorageKey(k), b); err != nil {
		return fmt.Errorf("save %s: %w", k, err)
	}
	return nil
}

func (a *Adapter) delete(ctx context.Context, k Key) error {
	if err := a.store.Delete(ctx, a.StorageKey(k)); err != nil {
		return fmt.Errorf("delete %s: %w", k, err)
	}
	return nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
// #endregion save

// #region inspect
// Inspect reports size and decode status for every key under the namespace.
func (a *Adapter) Inspect(ctx context.Context) ([]KeyStatus, error) {
	keys, err := a.store.Keys(ctx, a.namespace+".")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	out := make([]KeyStatus, 0, len(keys))
	for _, key := range keys {
		raw, err := a.store.Get(ctx, key)
		if err != nil {
			out = append(out, KeyStatus{Key: strings.TrimPrefix(key, a.namespace+"."), Status: "corrupt", Error: err.Error()})
			continue
		}
		st := KeyStatus{Key: strings.TrimPrefix(key, a.namespace+"."), Bytes: len(raw), Status: "ok"}
		var probe any
		version, err := decode(raw, &probe)
		st.Version = version
		switch {
		case err != nil:
			st.Status = "corrupt"
			st.Error = err.Error()
		case version == 0:
			st.Status = "legacy"
		}
		out = append(out, st)
	}
	return out, nil
}
// #endregion inspect
