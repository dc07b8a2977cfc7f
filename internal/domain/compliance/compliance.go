// Package compliance reconciles the suspensions a player's card record should
// have triggered against the suspensions recorded as served.
package compliance

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/pkg/logger"
)

// Source is the read side of the event store the reconciler needs.
// Implementations must exclude two-yellow-ejection games from
// QualifyingYellows and restrict every result to the scope's division when
// the scope is divisional.
type Source interface {
	QualifyingYellows(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error)
	Reds(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error)
	ServedSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error)
	PrintableSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error)
}

// Report is the reconciliation outcome for one player under one scope.
type Report struct {
	Player              string          `json:"player"`
	Mode                model.Mode      `json:"mode"`
	Division            string          `json:"division,omitempty"`
	Policy              string          `json:"policy"`
	QualifyingYellows   int             `json:"qualifying_yellows"`
	RedCards            int             `json:"red_cards"`
	Status              rules.Status    `json:"status"`
	ExpectedYellowCount int             `json:"expected_yellow_count"`
	ExpectedRedCount    int             `json:"expected_red_count"`
	ExpectedCount       int             `json:"expected_count"`
	ServedCount         int             `json:"served_count"`
	PrintableCount      int             `json:"printable_count"`
	EffectiveServed     int             `json:"effective_served"`
	UnservedCount       int             `json:"unserved_count"`
	FullyCompliant      bool            `json:"fully_compliant"`
	Pending             bool            `json:"pending_note"` // triggered, not yet recorded as served
	Triggers            []rules.Trigger `json:"triggers"`
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithPolicy sets the reconciliation policy.
func WithPolicy(p Policy) Option {
	return func(r *Reconciler) {
		if p.Name != "" {
			r.policy = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

// Reconciler compares triggered suspensions with recorded service.
// It holds no mutable state and is safe for concurrent use.
type Reconciler struct {
	src    Source
	policy Policy
	log    logger.Logger
}

// NewReconciler builds a reconciler over src.
func NewReconciler(src Source, opts ...Option) *Reconciler {
	r := &Reconciler{
		src:    src,
		policy: DefaultPolicy,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the policy in effect.
func (r *Reconciler) Policy() Policy { return r.policy }

// Reconcile builds the compliance report for player. Unknown players yield a
// vacuously compliant report; only store failures are returned as errors.
func (r *Reconciler) Reconcile(ctx context.Context, player string, scope model.Scope) (Report, error) {
	if scope.Mode == "" {
		scope.Mode = model.Combined
	}
	if !scope.Mode.Valid() {
		return Report{}, errors.Wrapf(ErrInvalidMode, "%q", scope.Mode)
	}
	if !scope.Divisional() {
		scope = model.Scope{Mode: model.Combined}
	}

	yellows, err := r.src.QualifyingYellows(ctx, player, scope)
	if err != nil {
		return Report{}, errors.Wrap(err, "qualifying yellows")
	}
	reds, err := r.src.Reds(ctx, player, scope)
	if err != nil {
		return Report{}, errors.Wrap(err, "red cards")
	}
	served, err := r.src.ServedSuspensions(ctx, player, scope)
	if err != nil {
		return Report{}, errors.Wrap(err, "served suspensions")
	}
	printable, err := r.src.PrintableSuspensions(ctx, player, scope)
	if err != nil {
		return Report{}, errors.Wrap(err, "printable suspensions")
	}

	rep := r.build(rules.Evaluate(yellows, reds), len(served), len(printable))
	rep.Player = player
	rep.Mode = scope.Mode
	rep.Division = scope.Division
	rep.RedCards = len(reds)

	r.log.Debug(ctx, "reconciled player",
		logger.String("player", player),
		logger.String("mode", string(scope.Mode)),
		logger.Int("expected", rep.ExpectedCount),
		logger.Int("unserved", rep.UnservedCount),
	)
	return rep, nil
}

// build applies the policy to an evaluation and the recorded counts.
func (r *Reconciler) build(ev rules.Evaluation, served, printable int) Report {
	rep := Report{
		Policy:              r.policy.Name,
		QualifyingYellows:   ev.Qualifying,
		Status:              rules.ClassifyYellowCount(ev.Qualifying),
		ExpectedYellowCount: len(ev.YellowTriggers),
		ServedCount:         served,
		PrintableCount:      printable,
		EffectiveServed:     r.policy.effectiveServed(served, printable),
	}
	if r.policy.CountRedCards {
		rep.ExpectedRedCount = len(ev.RedTriggers)
		rep.Triggers = ev.Triggers()
	} else {
		rep.Triggers = append([]rules.Trigger{}, ev.YellowTriggers...)
	}
	rep.ExpectedCount = rep.ExpectedYellowCount + rep.ExpectedRedCount
	rep.UnservedCount = Unserved(rep.ExpectedCount, rep.EffectiveServed)
	rep.FullyCompliant = rep.UnservedCount == 0
	rep.Pending = rep.UnservedCount > 0
	return rep
}

// Unserved is max(0, expected-served). Over-recorded service is not a
// violation and clamps to zero.
func Unserved(expected, served int) int {
	return max(0, expected-served)
}
