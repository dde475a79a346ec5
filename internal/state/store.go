// Package state owns every mutable engine entity. A Store is not safe for
// concurrent use; wrap it in a Loop to confine mutation to one goroutine.
package state

import (
	"context"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/recommend"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/signals"
)

// DefaultBannerDelay is how long a banner stays up without a configured delay.
const DefaultBannerDelay = 4 * time.Second

// #region store-struct
// Store is the application-state container.
type Store struct {
	adapter   *persist.Adapter
	catalog   *scenario.Catalog
	engine    *recommend.Engine
	producer  *signals.Producer
	clock     Clock
	scheduler Scheduler
	sink      analytics.Sink
	audit     Auditor
	log       *logging.Logger

	e       persist.Entities
	profile scenario.Profile
	loaded  bool
	upsell  bool

	banner      *Banner
	bannerTimer Timer
	bannerSeq   int
	bannerDelay time.Duration
	dispatch    func(func(*Store)) // set by NewLoop; nil means no owning goroutine
}

// Options are the injected collaborators. Only Adapter is required.
type Options struct {
	Adapter     *persist.Adapter
	Catalog     *scenario.Catalog
	Recommend   recommend.Config
	Signals     signals.ProducerConfig
	Clock       Clock
	Scheduler   Scheduler
	Sink        analytics.Sink
	Audit       Auditor
	Logger      *logging.Logger
	BannerDelay time.Duration
}
// #endregion store-struct

// #region constructor
// New builds an unloaded Store. Call Load before issuing intents.
func New(opts Options) *Store {
	if opts.Catalog == nil {
		opts.Catalog = scenario.DefaultCatalog()
	}
	if opts.Recommend.RewardWeight == 0 {
		opts.Recommend = recommend.DefaultConfig()
	}
	if opts.Signals.Window == 0 {
		opts.Signals = signals.DefaultProducerConfig()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler{}
	}
	if opts.Sink == nil {
		opts.Sink = analytics.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.BannerDelay <= 0 {
		opts.BannerDelay = DefaultBannerDelay
	}
	s := &Store{
		adapter:     opts.Adapter,
		catalog:     opts.Catalog,
		engine:      recommend.NewEngine(opts.Recommend),
		producer:    signals.NewProducer(opts.Signals),
		clock:       opts.Clock,
		scheduler:   opts.Scheduler,
		sink:        opts.Sink,
		audit:       opts.Audit,
		log:         opts.Logger,
		bannerDelay: opts.BannerDelay,
	}
	return s
}
// #endregion constructor

// #region load
// Load reads every entity through the adapter and refreshes derived health data.
func (s *Store) Load(ctx context.Context) {
	now := s.clock.Now()
	s.e = s.adapter.Load(ctx, now)
	s.profile = s.catalog.Profile(s.e.Scenario)
	s.loaded = true
	if issue := s.adapter.Issue(); issue != nil {
		s.log.Warn("loaded with data issue", "key", string(issue.Key))
	}
	s.refreshHealth(now)
	s.save(ctx, persist.KeyHealth)
}

// AnalyticsBacklog is the analytics list read at Load, for seeding an analytics.Log.
func (s *Store) AnalyticsBacklog() []analytics.Event {
	return append([]analytics.Event(nil), s.e.Analytics...)
}

// SetSink replaces the analytics sink, typically with a Log seeded from AnalyticsBacklog.
func (s *Store) SetSink(sink analytics.Sink) {
	if sink == nil {
		sink = analytics.Discard{}
	}
	s.sink = sink
}
// #endregion load

// #region queries
func (s *Store) Loaded() bool { return s.loaded }
func (s *Store) Scenario() scenario.Scenario { return s.e.Scenario }
func (s *Store) Profile() scenario.Profile { return s.profile }
func (s *Store) Catalog() *scenario.Catalog { return s.catalog }
func (s *Store) Metrics() metric.Snapshot { return s.e.Metrics }
func (s *Store) DemoDay() int { return s.e.DemoDay }
func (s *Store) GuidedStep() int { return s.e.GuidedStep }
func (s *Store) OnboardingStep() int { return s.e.Onboarding }
func (s *Store) UpsellPending() bool { return s.upsell }
func (s *Store) DataIssue() *persist.DataIssue { return s.adapter.Issue() }

// ActiveSession returns a copy of the active session, or nil.
func (s *Store) ActiveSession() *session.Session {
	if s.e.Active == nil {
		return nil
	}
	cp := *s.e.Active
	return &cp
}

// Sessions returns terminal sessions, oldest first.
func (s *Store) Sessions() []session.Session {
	return append([]session.Session(nil), s.e.Sessions...)
}

func (s *Store) Experiments() []experiment.Experiment {
	return append([]experiment.Experiment(nil), s.e.Experiments...)
}

// Events returns the event log, oldest first.
func (s *Store) Events() []history.Event {
	return append([]history.Event(nil), s.e.Events...)
}

func (s *Store) Insights() []string {
	return append([]string(nil), s.e.Insights...)
}

func (s *Store) Health() health.Profile { return s.e.Health }

func (s *Store) KPIReviewedAt() *time.Time {
	if s.e.KPIReviewedAt == nil {
		return nil
	}
	t := *s.e.KPIReviewedAt
	return &t
}

// Banner returns the visible banner, or nil.
func (s *Store) Banner() *Banner {
	if s.banner == nil || !s.clock.Now().Before(s.banner.ExpiresAt) {
		return nil
	}
	b := *s.banner
	return &b
}

// Signals counts stress, recovery and caffeine mentions in recent events.
func (s *Store) Signals() signals.Counts {
	return s.producer.Count(s.e.Events)
}

func (s *Store) recommendInput() recommend.Input {
	return recommend.Input{
		Profile:  s.profile,
		Metrics:  s.e.Metrics,
		Signals:  s.Signals(),
		Sessions: s.e.Sessions,
	}
}

// Recommendation is the primary next action.
func (s *Store) Recommendation() recommend.Recommendation {
	return s.engine.Recommend(s.recommendInput())
}

// RankedPresets orders the catalog for display.
func (s *Store) RankedPresets() []recommend.RankedPreset {
	return s.engine.Rank(s.recommendInput())
}

// Drivers re-scores the scenario drivers.
func (s *Store) Drivers() []recommend.DriverImpact {
	return s.engine.Drivers(s.recommendInput())
}

// WhatsWorking summarizes completed sessions by preset.
func (s *Store) WhatsWorking() recommend.WhatsWorking {
	return recommend.Summarize(s.e.Sessions)
}

// DeltaSinceCheckIn is current metrics minus the latest check-in snapshot.
func (s *Store) DeltaSinceCheckIn() (metric.Delta, bool) {
	return signals.DeltaSinceCheckIn(s.e.Events, s.e.Metrics)
}

// Entities returns a copy of every persisted value.
func (s *Store) Entities() persist.Entities {
	e := s.e
	e.Sessions = s.Sessions()
	e.Experiments = s.Experiments()
	e.Events = s.Events()
	e.Insights = s.Insights()
	e.Active = s.ActiveSession()
	e.Analytics = nil
	return e
}
// #endregion queries

// #region commit-helpers
func (s *Store) save(ctx context.Context, keys ...persist.Key) {
	if err := s.adapter.Save(ctx, s.e, keys...); err != nil {
		s.log.Warn("state save incomplete", "error", err)
	}
}

func (s *Store) record(ctx context.Context, intent string, d Decision) Decision {
	if d.Applied() {
		s.log.Debug("intent applied", "intent", intent, "reason", d.Reason, "metrics", s.e.Metrics.String())
	} else {
		s.log.Debug("intent ignored", "intent", intent, "reason", d.Reason)
	}
	if s.audit == nil {
		return d
	}
	entry := logging.TransitionEntry{
		Intent:    intent,
		Decision:  string(d.Action),
		Reason:    d.Reason,
		Metrics:   s.e.Metrics.String(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("audit write failed", "intent", intent, "error", err)
	}
	return d
}

func (s *Store) emit(name string, metadata map[string]string) {
	s.sink.Emit(name, metadata)
}

func (s *Store) appendEvent(now time.Time, kind history.Kind, title, detail string) {
	s.e.Events = history.Append(s.e.Events, history.NewEvent(now, kind, title, detail, s.e.Metrics, s.e.DemoDay))
}

func (s *Store) applyDelta(d metric.Delta) {
	s.e.Metrics = s.e.Metrics.Apply(d)
}

func (s *Store) healthInputs(now time.Time) health.Inputs {
	adherence := 0
	if i := experiment.ActiveIndex(s.e.Experiments); i >= 0 {
		adherence = s.e.Experiments[i].AdherencePercent(now)
	}
	completed := 0
	for _, ss := range s.e.Sessions {
		if ss.State == session.Completed {
			completed++
		}
	}
	return health.Inputs{
		Scenario:          s.e.Scenario,
		DemoDay:           s.e.DemoDay,
		Metrics:           s.e.Metrics,
		CompletedSessions: completed,
		Adherence:         adherence,
		Now:               now,
	}
}

func (s *Store) refreshHealth(now time.Time) {
	s.e.Health = health.Refresh(s.e.Health, s.healthInputs(now))
}
// #endregion commit-helpers
