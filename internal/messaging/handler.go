package messaging

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/pkg/logging"
)

var smsTracer = otel.Tracer("leadbot.internal.messaging.sms")

// Processor runs one conversational turn and returns the reply text.
type Processor interface {
	Process(ctx context.Context, phone, body string) (string, error)
}

const errorReply = "Sorry, something went wrong on our end. Please text again in a moment."

// Handler handles the SMS webhook and lead intake endpoints.
type Handler struct {
	webhookSecret string
	processor     Processor
	leads         leads.Repository
	logger        *logging.Logger
}

// NewHandler creates a new messaging handler.
func NewHandler(webhookSecret string, processor Processor, leadsRepo leads.Repository, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("messaging: processor cannot be nil")
	}
	if leadsRepo == nil {
		panic("messaging: leads repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		webhookSecret: webhookSecret,
		processor:     processor,
		leads:         leadsRepo,
		logger:        logger,
	}
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "leadbot"})
}

// SMSWebhook handles POST /sms-webhook requests from Twilio.
func (h *Handler) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := smsTracer.Start(r.Context(), "messaging.sms.webhook")
	defer span.End()

	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			span.RecordError(errors.New("invalid twilio signature"))
			return
		}
	}

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	from := NormalizeE164(webhook.From)
	span.SetAttributes(
		attribute.String("leadbot.twilio.message_sid", webhook.MessageSid),
		attribute.String("leadbot.twilio.from", from),
	)

	// Reject before touching storage so malformed posts never mint leads.
	if from == "" || strings.TrimSpace(webhook.Body) == "" {
		err := errors.New("missing required twilio fields")
		h.logger.Error("invalid twilio payload", "error", err)
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	reply, err := h.processor.Process(ctx, from, webhook.Body)
	if err != nil {
		h.logger.Error("failed to process inbound sms", "error", err, "from", from)
		span.RecordError(err)
		writeTwiML(w, errorReply, http.StatusInternalServerError)
		return
	}

	writeTwiML(w, reply, http.StatusOK)
}

// IncomingLeadRequest is the body for POST /incoming-lead.
type IncomingLeadRequest struct {
	Phone string `json:"phone"`
}

// IncomingLead handles POST /incoming-lead requests: external sources
// registering a phone number ahead of the first SMS exchange.
func (h *Handler) IncomingLead(w http.ResponseWriter, r *http.Request) {
	var req IncomingLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	phone := NormalizeE164(req.Phone)
	if phone == "" {
		http.Error(w, "missing phone", http.StatusBadRequest)
		return
	}

	existing, err := h.leads.GetByPhone(r.Context(), phone)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Lead already exists",
			"stage":   string(existing.Stage),
		})
		return
	}
	if !errors.Is(err, leads.ErrLeadNotFound) {
		h.logger.Error("failed to look up lead", "error", err, "phone", phone)
		http.Error(w, "failed to look up lead", http.StatusInternalServerError)
		return
	}

	lead, err := h.leads.FindOrCreate(r.Context(), phone)
	if err != nil {
		h.logger.Error("failed to create lead", "error", err, "phone", phone)
		http.Error(w, "failed to create lead", http.StatusInternalServerError)
		return
	}

	h.logger.Info("lead registered", "phone", phone)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "Lead created",
		"stage":  string(lead.Stage),
	})
}

func writeTwiML(w http.ResponseWriter, message string, status int) {
	var escaped strings.Builder
	xml.EscapeText(&escaped, []byte(message))

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Response><Message>%s</Message></Response>`, escaped.String())
}

func buildAbsoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.Scheme != "" {
		return r.URL.String()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, r.URL.RequestURI())
}
