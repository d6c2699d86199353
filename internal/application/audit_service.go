// Package application wires the domain engine into use cases the inbound
// adapters (CLI, HTTP, MCP) call.
package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tagaudit/tagaudit/internal/domain"
	"github.com/tagaudit/tagaudit/internal/domain/detect"
	"github.com/tagaudit/tagaudit/internal/domain/extract"
	"github.com/tagaudit/tagaudit/internal/domain/report"
	"github.com/tagaudit/tagaudit/internal/domain/rules"
)

// AuditService turns a batch of captured requests into an audit report.
// Registry and catalogs are immutable after construction, so one service
// may serve concurrent audits as long as each call owns its batch.
type AuditService struct {
	vendors  []detect.Vendor
	detector *detect.Detector
	catalog  map[string][]rules.Rule
	cfg      domain.AuditConfig
	log      zerolog.Logger
}

// NewAuditService builds a service over the standard vendor registry,
// tuned by cfg.
func NewAuditService(cfg domain.AuditConfig, log zerolog.Logger) *AuditService {
	vendors := detect.Registry()
	return &AuditService{
		vendors:  vendors,
		detector: detect.NewDetector(vendors),
		catalog: rules.Catalog(rules.Options{
			DuplicateWindow: time.Duration(cfg.DuplicateWindowMS) * time.Millisecond,
		}),
		cfg: cfg,
		log: log,
	}
}

// Audit classifies, normalizes and validates the batch, producing one
// report covering every detected solution. Requests matching no vendor are
// silently dropped; a batch with no detected vendors scores 0 overall.
func (s *AuditService) Audit(requests []domain.CapturedRequest) *domain.AuditReport {
	rep := &domain.AuditReport{
		AuditID:      uuid.NewString(),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		RequestsSeen: len(requests),
		Solutions:    map[string]*domain.SolutionReport{},
	}

	batches := s.classify(requests)

	var scores []int
	for _, v := range s.vendors {
		batch, ok := batches[v.Key]
		if !ok {
			continue
		}
		sol := s.auditSolution(v, batch)
		rep.Solutions[v.Key] = sol
		rep.RequestsMapped += sol.EventsAudited
		scores = append(scores, sol.Score)

		s.log.Debug().
			Str("vendor", v.Key).
			Int("events", sol.EventsAudited).
			Int("score", sol.Score).
			Msg("solution audited")
	}

	rep.Overall = domain.OverallScore(scores)
	rep.OverallLabel = domain.ScoreLabel(rep.Overall)

	s.log.Info().
		Str("audit_id", rep.AuditID).
		Int("requests", rep.RequestsSeen).
		Int("mapped", rep.RequestsMapped).
		Int("solutions", len(rep.Solutions)).
		Int("overall", rep.Overall).
		Msg("audit complete")
	return rep
}

// classify splits the batch into per-vendor normalized events, preserving
// capture order. Event IDs are 1-based within each vendor's batch.
func (s *AuditService) classify(requests []domain.CapturedRequest) map[string][]*domain.NormalizedEvent {
	batches := make(map[string][]*domain.NormalizedEvent)
	for i := range requests {
		req := &requests[i]
		if s.cfg.DomainExcluded(req.Domain) {
			continue
		}
		key, ok := s.detector.Detect(req.Domain, req.URL, req.QueryString)
		if !ok || !s.cfg.VendorEnabled(key) {
			continue
		}

		params := extract.Extract(req.URL, req.QueryString, req.PostBody, key)
		batches[key] = append(batches[key], &domain.NormalizedEvent{
			EventID:   len(batches[key]) + 1,
			EventName: detect.EventName(key, params),
			VendorKey: key,
			Timestamp: req.Timestamp,
			URL:       req.URL,
			Method:    req.Method,
			Params:    params,
			Source:    req,
		})
	}
	return batches
}

func (s *AuditService) auditSolution(v detect.Vendor, batch []*domain.NormalizedEvent) *domain.SolutionReport {
	catalog := s.catalog[v.Key]

	results := make([]*domain.EventResult, 0, len(batch))
	for _, e := range batch {
		results = append(results, rules.ValidateEvent(e, batch, catalog))
	}

	return report.BuildSolution(v.Key, v.Name, solutionPixelID(v.Key, batch), results)
}

// solutionPixelID picks the first identifiable tracking ID in the batch.
func solutionPixelID(vendorKey string, batch []*domain.NormalizedEvent) string {
	for _, e := range batch {
		if id := detect.PixelID(vendorKey, e.Params); id != "N/A" {
			return id
		}
	}
	return "N/A"
}

// Vendors exposes the registry for listing adapters.
func (s *AuditService) Vendors() []detect.Vendor { return s.vendors }

// Rules exposes the catalog for one vendor, nil when the vendor carries no
// rule set.
func (s *AuditService) Rules(vendorKey string) []rules.Rule { return s.catalog[vendorKey] }
