package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paulgroup/leadbot/internal/crm"
	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/internal/observability/metrics"
	"github.com/paulgroup/leadbot/pkg/logging"
)

// CRMDispatcher delivers a booked lead to the downstream CRM.
type CRMDispatcher interface {
	Send(ctx context.Context, snap crm.Snapshot) error
}

// Service is the transport-facing entry point: it loads the lead, runs one
// engine step under a per-phone lock, persists the outcome and hands booked
// leads to the CRM.
type Service struct {
	repo       leads.Repository
	engine     *Engine
	crm        CRMDispatcher
	crmTimeout time.Duration
	locks      *keyedMutex
	logger     *logging.Logger
	metrics    *metrics.ConversationMetrics
}

// NewService builds a Service. crm may be nil when no CRM is configured;
// metrics may be nil to disable instrumentation.
func NewService(repo leads.Repository, engine *Engine, dispatcher CRMDispatcher, crmTimeout time.Duration, logger *logging.Logger, m *metrics.ConversationMetrics) *Service {
	if repo == nil {
		panic("conversation: repository required")
	}
	if engine == nil {
		panic("conversation: engine required")
	}
	if crmTimeout <= 0 {
		crmTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		engine:     engine,
		crm:        dispatcher,
		crmTimeout: crmTimeout,
		locks:      newKeyedMutex(),
		logger:     logger,
		metrics:    m,
	}
}

// Process handles one inbound SMS and returns the reply text. Turns for the
// same phone are serialized; turns for different phones run concurrently.
func (s *Service) Process(ctx context.Context, phone, body string) (string, error) {
	if phone == "" {
		return "", leads.ErrMissingPhone
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("conversation: empty message body")
	}

	start := time.Now()

	unlock := s.locks.Lock(phone)
	defer unlock()

	lead, err := s.repo.FindOrCreate(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("conversation: load lead: %w", err)
	}
	fromStage := lead.Stage

	res := s.engine.Step(ctx, lead, body)

	if res.Changed {
		if err := s.repo.Save(ctx, lead); err != nil {
			// The reply already reflects the new state; losing the write
			// is better than dead-ending the conversation.
			s.logger.Error("failed to persist lead", "error", err, "phone", phone, "stage", lead.Stage)
		}
	}

	if res.Booked {
		s.dispatchCRM(ctx, lead)
	}

	if fromStage != lead.Stage {
		s.metrics.ObserveStageTransition(string(fromStage), string(lead.Stage))
	}
	s.metrics.ObserveInbound(res.Source)
	s.metrics.ObserveProcessingLatency(res.Source, time.Since(start).Seconds())

	s.logger.Info("processed inbound message",
		"phone", phone,
		"from_stage", fromStage,
		"to_stage", lead.Stage,
		"source", res.Source,
		"booked", res.Booked,
	)
	return res.Reply, nil
}

func (s *Service) dispatchCRM(ctx context.Context, lead *leads.Lead) {
	if s.crm == nil {
		return
	}

	// Delivery must survive the webhook's own deadline but still give up
	// eventually.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.crmTimeout)
	defer cancel()

	if err := s.crm.Send(sendCtx, crm.SnapshotFromLead(lead)); err != nil {
		s.logger.Error("crm dispatch failed", "error", err, "phone", lead.Phone, "ticket", lead.Ticket)
		s.metrics.ObserveCRMDispatch("error")
		return
	}
	s.metrics.ObserveCRMDispatch("ok")
}
