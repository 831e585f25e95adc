// Package service implements the reconciliation orchestrator: given a
// company identifier it decides between the persisted record and fresh
// registry data, merges the two, and upserts a single canonical record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pankas/internal/contractor/freshness"
	"pankas/internal/contractor/metrics"
	"pankas/internal/contractor/models"
	"pankas/internal/contractor/normalize"
	"pankas/internal/contractor/registry"
	"pankas/internal/contractor/status"
	"pankas/internal/contractor/store"
	id "pankas/pkg/domain"
	dErrors "pankas/pkg/domain-errors"
	"pankas/pkg/platform/events"
	"pankas/pkg/platform/sentinel"
)

// Result is the outbound contract: the canonical record, how the
// reconciliation resolved, and an optional notice for the user.
type Result struct {
	Record  *models.ContractorRecord `json:"record"`
	Outcome models.Outcome           `json:"outcome"`
	Notice  string                   `json:"notice,omitempty"`
}

// Service is the reconciliation orchestrator.
type Service struct {
	store     store.ContractorStore
	source    registry.Source
	indicator *status.Engine
	freshness *freshness.Checker
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithPublisher installs an outcome-event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics installs reconciliation observability.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New wires the orchestrator. store, source and logger are required;
// indicator and freshness fall back to production defaults.
func New(st store.ContractorStore, source registry.Source, indicator *status.Engine,
	fresh *freshness.Checker, logger *slog.Logger, opts ...Option) *Service {
	if indicator == nil {
		indicator = status.NewEngine()
	}
	if fresh == nil {
		fresh = freshness.NewChecker(freshness.DefaultZone)
	}
	s := &Service{
		store:     st,
		source:    source,
		indicator: indicator,
		freshness: fresh,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile runs the state machine:
// Validate → CheckPersisted → FetchExternal → Normalize → Merge → Persist.
//
// Single-registry failures degrade to "no new data from that source"; the
// only hard failures are an invalid identifier and both registries down
// with nothing persisted to fall back on.
func (s *Service) Reconcile(ctx context.Context, rawID string, forceRefresh bool) (*Result, error) {
	start := s.now()
	defer s.metrics.ObserveReconcile(start)

	companyID, err := id.ParseCompanyID(rawID)
	if err != nil {
		s.metrics.RecordFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	existing, err := s.findExisting(ctx, companyID)
	if err != nil {
		s.metrics.RecordFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	now := s.now()
	if existing != nil && s.bothCategoriesFresh(existing, now, forceRefresh) {
		result := &Result{
			Record:  existing,
			Outcome: models.OutcomeLoadedExisting,
			Notice:  noticeFor(models.OutcomeLoadedExisting, existing),
		}
		s.metrics.RecordOutcome(string(result.Outcome))
		return result, nil
	}

	fetched, err := s.fetchExternal(ctx, companyID, existing, forceRefresh)
	if err != nil {
		s.metrics.RecordFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	// Neither registry contributed anything new but a persisted record
	// exists: hand it back untouched instead of failing the caller.
	if !fetched.statusRefreshed && !fetched.licensesRefreshed && existing != nil {
		notice := "no registry data found, returning persisted record"
		if fetched.companyFailed || fetched.licensesFailed {
			notice = "registries unavailable, returning persisted record"
		}
		result := &Result{
			Record:  existing,
			Outcome: models.OutcomeLoadedExisting,
			Notice:  notice,
		}
		s.metrics.RecordOutcome(string(result.Outcome))
		return result, nil
	}

	merged := merge(existing, companyID, fetched, now)
	if fetched.statusRefreshed {
		merged.Indicator = s.indicator.Evaluate(merged.Status, merged.CompanyType)
	}

	// A cancelled caller must not leave a half-merged record behind.
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reconciliation cancelled before persist")
	}

	stored, err := s.store.Upsert(ctx, merged)
	if err != nil {
		s.metrics.RecordFailure(string(dErrors.CodeInternal))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist contractor record")
	}

	outcome := models.OutcomeRefreshed
	if existing == nil {
		outcome = models.OutcomeCreated
	}
	s.metrics.RecordOutcome(string(outcome))
	s.publish(ctx, stored, outcome)
	s.logger.InfoContext(ctx, "contractor reconciled",
		"company_id", companyID.String(),
		"outcome", string(outcome),
		"indicator", string(stored.Indicator),
		"licenses", len(stored.Licenses))

	return &Result{
		Record:  stored,
		Outcome: outcome,
		Notice:  noticeFor(outcome, stored),
	}, nil
}

// Get returns the persisted record without touching the registries.
func (s *Service) Get(ctx context.Context, rawID string) (*models.ContractorRecord, error) {
	companyID, err := id.ParseCompanyID(rawID)
	if err != nil {
		return nil, err
	}
	record, err := s.store.FindByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no contractor record for identifier")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contractor record")
	}
	return record, nil
}

func (s *Service) findExisting(ctx context.Context, companyID id.CompanyID) (*models.ContractorRecord, error) {
	record, err := s.store.FindByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up persisted record")
	}
	return record, nil
}

func (s *Service) bothCategoriesFresh(record *models.ContractorRecord, now time.Time, forceRefresh bool) bool {
	statusFresh := s.freshness.Fresh(record.StatusUpdatedAt, now, !record.Status.Empty(), forceRefresh)
	licensesFresh := s.freshness.Fresh(record.LicensesUpdatedAt, now, len(record.Licenses) > 0, forceRefresh)
	return statusFresh && licensesFresh
}

// fetchResult carries what FetchExternal actually obtained. A category
// counts as refreshed only when its registry answered with rows; empty or
// failed responses leave the persisted data authoritative.
type fetchResult struct {
	company           normalize.CompanyFacts
	licenses          normalize.LicenseFacts
	statusRefreshed   bool
	licensesRefreshed bool
	companyFailed     bool
	licensesFailed    bool
}

func (s *Service) fetchExternal(ctx context.Context, companyID id.CompanyID,
	existing *models.ContractorRecord, forceRefresh bool) (fetchResult, error) {

	if forceRefresh {
		ctx = registry.BypassCache(ctx)
	}

	var (
		companyRows, licenseRows []registry.RawRecord
		companyErr, licenseErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		companyRows, companyErr = s.source.Companies(gctx, companyID.String())
		if companyErr != nil {
			s.logger.WarnContext(gctx, "companies registry unavailable",
				"company_id", companyID.String(), "error", companyErr)
		}
		return nil
	})
	g.Go(func() error {
		licenseRows, licenseErr = s.source.Licenses(gctx, companyID.String())
		if licenseErr != nil {
			s.logger.WarnContext(gctx, "contractors registry unavailable",
				"company_id", companyID.String(), "error", licenseErr)
		}
		return nil
	})
	// Branches never return errors; Wait only observes context cancellation.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return fetchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "registry fetch cancelled")
	}

	if companyErr != nil && licenseErr != nil && existing == nil {
		return fetchResult{}, dErrors.Wrap(
			errors.Join(companyErr, licenseErr),
			dErrors.CodeLookupFailed,
			"both registries unavailable and no persisted record exists")
	}

	result := fetchResult{
		companyFailed:  companyErr != nil,
		licensesFailed: licenseErr != nil,
	}
	if companyErr == nil {
		result.company = normalize.Company(companyRows, companyID)
		result.statusRefreshed = result.company.Found
	}
	if licenseErr == nil {
		result.licenses = normalize.Licenses(licenseRows)
		result.licensesRefreshed = result.licenses.Found
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, record *models.ContractorRecord, outcome models.Outcome) {
	if s.publisher == nil {
		return
	}
	action := events.ActionContractorRefreshed
	if outcome == models.OutcomeCreated {
		action = events.ActionContractorCreated
	}
	event := events.Event{
		Action:    action,
		CompanyID: record.CompanyID.String(),
		Outcome:   string(outcome),
		Indicator: string(record.Indicator),
		At:        s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordEventPublishError()
		s.logger.WarnContext(ctx, "outcome event publish failed",
			"company_id", record.CompanyID.String(), "error", err)
	}
}

func noticeFor(outcome models.Outcome, record *models.ContractorRecord) string {
	switch {
	case !record.Active:
		return "record is archived; save explicitly to reactivate"
	case outcome == models.OutcomeLoadedExisting:
		return "record already existed, loaded for editing"
	default:
		return ""
	}
}
