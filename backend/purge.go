package backend

import (
	"context"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/entityrepo/entity/page"
)

// PurgeReport lists what PurgeEnvironment removed, per entity kind.
type PurgeReport struct {
	APIKeys       []string
	Subscriptions []string
	Plans         []string
	Events        []string
	Pages         []string
	Audits        []string
	// Media maps each removed page to the hashes of its attached media.
	Media map[string][]string
}

// Total is the number of removed entities.
func (r PurgeReport) Total() int {
	return len(r.APIKeys) + len(r.Subscriptions) + len(r.Plans) + len(r.Events) + len(r.Pages) + len(r.Audits)
}

// PurgeEnvironment removes everything belonging to the environment, dependents first.
// Pages are removed when they hang off the environment. Audit entries are removed when
// they were recorded in the environment or are about it.
// It stops at the first failure and returns what was removed until then.
func (s *Set) PurgeEnvironment(ctx context.Context, environmentID string) (PurgeReport, error) {
	ctx, span := s.tracer.Start(ctx, "PurgeEnvironment",
		trace.WithAttributes(attribute.String("environment_id", environmentID)))
	defer span.End()

	var (
		report PurgeReport
		err    error
	)
	log := s.log.WithContext(ctx).With("environment_id", environmentID)

	steps := []func() error{
		func() error {
			report.APIKeys, err = s.APIKeys.DeleteByEnvironmentID(ctx, environmentID)
			return err
		},
		func() error {
			report.Subscriptions, err = s.Subscriptions.DeleteByEnvironmentID(ctx, environmentID)
			return err
		},
		func() error {
			report.Plans, err = s.Plans.DeleteByEnvironmentID(ctx, environmentID)
			return err
		},
		func() error {
			report.Events, err = s.Events.DeleteByEnvironmentID(ctx, environmentID)
			return err
		},
		func() error {
			report.Media, err = s.Pages.DeleteByReference(ctx, page.ReferenceEnvironment, environmentID)
			report.Pages = lo.Keys(report.Media)
			slices.Sort(report.Pages)
			return err
		},
		func() error {
			report.Audits, err = s.Audits.DeleteByEnvironmentID(ctx, environmentID)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "purge interrupted")
			log.With("removed", report.Total()).Errorx(err)
			return report, err
		}
	}
	span.SetAttributes(attribute.Int("removed", report.Total()))

	log.With(
		"api_keys", len(report.APIKeys),
		"subscriptions", len(report.Subscriptions),
		"plans", len(report.Plans),
		"events", len(report.Events),
		"pages", len(report.Pages),
		"audits", len(report.Audits),
	).Info("environment purged")
	return report, nil
}

// ApplyAuditRetention removes the audit entries of the environment older than maxAge.
func (s *Set) ApplyAuditRetention(ctx context.Context, environmentID string, maxAge time.Duration) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "ApplyAuditRetention", trace.WithAttributes(
		attribute.String("environment_id", environmentID),
		attribute.String("max_age", maxAge.String()),
	))
	defer span.End()

	removed, err := s.Audits.DeleteByEnvironmentIDAndAge(ctx, environmentID, maxAge)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retention failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("removed", len(removed)))
	s.log.WithContext(ctx).With(
		"environment_id", environmentID,
		"max_age", maxAge.String(),
		"removed", len(removed),
	).Info("audit retention applied")
	return removed, nil
}
