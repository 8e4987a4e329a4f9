package training

import (
	"encoding/json"
	"net/http"

	"github.com/paulgroup/leadbot/pkg/logging"
)

// Handler serves the admin endpoints for managing the fuzzy-match dataset.
type Handler struct {
	holder    *Holder
	snapshots *SnapshotStore
	matcher   *Matcher
	logger    *logging.Logger
}

// NewHandler builds the training admin handler. snapshots may be nil when
// Redis is not configured; uploads then live in memory only.
func NewHandler(holder *Holder, snapshots *SnapshotStore, matcher *Matcher, logger *logging.Logger) *Handler {
	if holder == nil {
		panic("training: holder required")
	}
	if matcher == nil {
		panic("training: matcher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		holder:    holder,
		snapshots: snapshots,
		matcher:   matcher,
		logger:    logger,
	}
}

// UploadDataset handles POST /admin/dataset. The body is a JSON array of
// records; a valid upload replaces the active dataset atomically.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	var records []Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ds, err := NewDataset(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.holder.Replace(ds)
	h.logger.Info("dataset replaced", "records", ds.Len())

	if h.snapshots != nil {
		if err := h.snapshots.Save(r.Context(), ds); err != nil {
			h.logger.Error("failed to persist dataset snapshot", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"records": ds.Len(),
	})
}

// DatasetStats handles GET /admin/dataset/stats.
func (h *Handler) DatasetStats(w http.ResponseWriter, r *http.Request) {
	ds := h.holder.Load()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"records": ds.Len(),
		"intents": ds.Intents(),
	})
}

// TestMatchRequest is the body for POST /admin/dataset/test-match.
type TestMatchRequest struct {
	Message string `json:"message"`
}

// TestMatchResponse describes the match outcome for a sample message.
type TestMatchResponse struct {
	Matched      bool     `json:"matched"`
	Intent       string   `json:"intent,omitempty"`
	Response     string   `json:"response,omitempty"`
	SMSFormatted string   `json:"sms_formatted,omitempty"`
	Triggers     []string `json:"triggers,omitempty"`
	Score        int      `json:"score,omitempty"`
}

// TestMatch handles POST /admin/dataset/test-match so operators can probe
// how a message would be answered before it goes live.
func (h *Handler) TestMatch(w http.ResponseWriter, r *http.Request) {
	var req TestMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "missing message", http.StatusBadRequest)
		return
	}

	resp := TestMatchResponse{}
	if rec, ok := h.matcher.Match(req.Message); ok {
		resp.Matched = true
		resp.Intent = rec.Intent
		resp.Response = rec.BotResponse
		resp.SMSFormatted = SanitizeForSMS(rec.BotResponse)
		resp.Triggers = rec.Trigger
		resp.Score = h.matcher.Score(req.Message, rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
