package charging

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/logging"
)

// Texts supplies localized alert copy. *i18n.Dictionary satisfies it.
type Texts interface {
	Text(key string) string
	Format(key string, args ...any) string
}

// Store persists session snapshots. *repository.SessionRepo satisfies it.
type Store interface {
	Upsert(ctx context.Context, s repository.ChargingSession) error
}

// Simulator runs charging sessions concurrently. Alerts go to the manager
// found in the context passed to Run.
type Simulator struct {
	Sites       []Site
	Texts       Texts
	Store       Store
	FailureRate float64
	Seed        int64
	Step        time.Duration
	Log         *logging.Logger

	// OnUpdate, when set, receives every snapshot. It is called from
	// session goroutines.
	OnUpdate func(Session)
	// Planner overrides the seeded random plan for session i.
	Planner func(i int) Plan

	now func() time.Time
	mu  sync.Mutex
}

// Run starts n sessions and waits for all of them. A session that fails
// for a charging reason is not an error; store failures and context
// cancellation are.
func (s *Simulator) Run(ctx context.Context, n int) error {
	m, err := alert.FromContext(ctx)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		p := s.plan(i)
		g.Go(func() error {
			return s.run(gctx, m, p)
		})
	}
	return g.Wait()
}

func (s *Simulator) plan(i int) Plan {
	if s.Planner != nil {
		return s.Planner(i)
	}
	sites := s.Sites
	if len(sites) == 0 {
		sites = DefaultSites
	}
	r := rand.New(rand.NewSource(s.Seed + int64(i)))
	site := sites[r.Intn(len(sites))]
	p := Plan{
		Site:      site,
		Connector: 1 + r.Intn(max(site.Connectors, 1)),
		Steps:     3 + r.Intn(5),
		WhPerStep: int64(1500 + r.Intn(2500)),
	}
	if r.Float64() < s.FailureRate {
		p.Failure = failures[r.Intn(len(failures))]
		p.FailAt = r.Intn(p.Steps)
		p.RetryDeclined = r.Float64() < s.FailureRate
	}
	return p
}

func (s *Simulator) run(ctx context.Context, m *alert.Manager, p Plan) error {
	now := s.clock()
	sess := Session{
		ID:        uuid.NewString(),
		Site:      p.Site.Name,
		Connector: p.Connector,
		State:     StateIdle,
		StartedAt: now,
		UpdatedAt: now,
	}
	log := s.Log.With("charging")

	if err := s.transition(ctx, &sess, StateAuthorizing, FailureNone); err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	switch p.Failure {
	case FailureConnectorUnavailable:
		m.Alert(s.Texts.Text("charging.connector_unavailable.title"),
			s.Texts.Format("charging.connector_unavailable.message", sess.Label()))
		return s.transition(ctx, &sess, StateFailed, FailureConnectorUnavailable)
	case FailurePaymentDeclined:
		failure, err := s.authorizeWithRetry(ctx, m, sess, p)
		if err != nil {
			return err
		}
		if failure != FailureNone {
			log.Infof("%s authorization ended: %s", sess.Label(), failure)
			return s.transition(ctx, &sess, StateFailed, failure)
		}
	}

	if err := s.transition(ctx, &sess, StateCharging, FailureNone); err != nil {
		return err
	}
	for step := 0; step < p.Steps; step++ {
		if p.Failure == FailureNetworkDown && step == p.FailAt {
			m.Alert(s.Texts.Text("charging.network_down.title"), s.Texts.Text("charging.network_down.message"))
			return s.transition(ctx, &sess, StateFailed, FailureNetworkDown)
		}
		if err := s.wait(ctx); err != nil {
			return err
		}
		sess.EnergyWh += p.WhPerStep
		if err := s.transition(ctx, &sess, StateCharging, FailureNone); err != nil {
			return err
		}
	}

	m.Alert(s.Texts.Text("charging.completed.title"),
		s.Texts.Format("charging.completed.message", sess.KWh(), sess.Label()))
	return s.transition(ctx, &sess, StateCompleted, FailureNone)
}

// authorizeWithRetry raises the declined-payment alert and blocks until the
// user picks Retry or Cancel. A retry is attempted once.
//
// The message names the session: the queue drops an alert equal to one
// still waiting, and a dropped alert would never deliver the answer.
func (s *Simulator) authorizeWithRetry(ctx context.Context, m *alert.Manager, sess Session, p Plan) (Failure, error) {
	choice := make(chan bool, 1)
	declined := s.Texts.Format("charging.payment_declined.message", sess.Label(), sess.shortID())
	m.Alert(s.Texts.Text("charging.payment_declined.title"), declined,
		alert.Button{Text: s.Texts.Text("alert.cancel"), Style: alert.StyleCancel, OnPress: func() { choice <- false }},
		alert.Button{Text: s.Texts.Text("alert.retry"), OnPress: func() { choice <- true }},
	)

	var retry bool
	select {
	case retry = <-choice:
	case <-ctx.Done():
		return FailureNone, ctx.Err()
	}
	if !retry {
		return FailureCancelled, nil
	}
	if err := s.wait(ctx); err != nil {
		return FailureNone, err
	}
	if p.RetryDeclined {
		// second decline: inform only, no further retry
		m.Alert(s.Texts.Text("charging.payment_declined.title"), declined)
		return FailurePaymentDeclined, nil
	}
	return FailureNone, nil
}

func (s *Simulator) transition(ctx context.Context, sess *Session, to State, failure Failure) error {
	sess.State = to
	sess.Failure = failure
	sess.UpdatedAt = s.clock()
	if s.Store != nil {
		if err := s.Store.Upsert(ctx, sess.row()); err != nil {
			return fmt.Errorf("store session %s: %w", sess.ID, err)
		}
	}
	if s.OnUpdate != nil {
		s.OnUpdate(*sess)
	}
	return nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.Step <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Step)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulator) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now == nil {
		s.now = time.Now
	}
	return s.now().UTC()
}
