package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/pkg/logging"
)

// Snapshot is the qualified-lead payload posted to the CRM webhook.
type Snapshot struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Age             int    `json:"age"`
	State           string `json:"state"`
	HealthFlag      string `json:"health_flag"`
	HealthDetails   string `json:"health_details,omitempty"`
	Budget          string `json:"budget"`
	AppointmentTime string `json:"appointment_time"`
	Ticket          string `json:"ticket"`
	Status          string `json:"status"`
}

// SnapshotFromLead flattens a booked lead into the webhook payload.
func SnapshotFromLead(lead *leads.Lead) Snapshot {
	return Snapshot{
		Name:            lead.Name,
		Phone:           lead.Phone,
		Age:             lead.Age,
		State:           lead.State,
		HealthFlag:      lead.HealthFlag,
		HealthDetails:   lead.HealthDetails,
		Budget:          lead.Budget,
		AppointmentTime: lead.Slot,
		Ticket:          lead.Ticket,
		Status:          string(lead.Status),
	}
}

// Dispatcher posts booked leads to an external CRM webhook. Delivery is best
// effort: failures are logged and never surface to the lead's conversation.
type Dispatcher struct {
	webhookURL string
	client     *http.Client
	logger     *logging.Logger
}

// NewDispatcher builds a Dispatcher. An empty webhookURL produces a no-op
// dispatcher so local setups work without a CRM.
func NewDispatcher(webhookURL string, timeout time.Duration, logger *logging.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send posts the snapshot to the configured webhook.
func (d *Dispatcher) Send(ctx context.Context, snap Snapshot) error {
	if d.webhookURL == "" {
		d.logger.Info("crm webhook not configured, skipping dispatch", "ticket", snap.Ticket)
		return nil
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("crm: marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("crm: post failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("crm: webhook returned status %d", resp.StatusCode)
	}

	d.logger.Info("lead dispatched to crm", "ticket", snap.Ticket, "phone", snap.Phone)
	return nil
}
