package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeLLM struct {
	resp        LLMResponse
	err         error
	lastReq     LLMRequest
	hadDeadline bool
}

func (f *fakeLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	f.lastReq = req
	_, f.hadDeadline = ctx.Deadline()
	return f.resp, f.err
}

func TestResponderReply(t *testing.T) {
	llm := &fakeLLM{resp: LLMResponse{Text: "**Great** question! Most plans cover that."}}
	r := NewResponder(llm, "model-id", 0, 0, nil)

	got := r.Reply(context.Background(), "do you cover diabetes?")
	if strings.Contains(got, "**") {
		t.Errorf("reply not sanitized: %q", got)
	}
	if !strings.Contains(got, "Great question") {
		t.Errorf("reply = %q", got)
	}

	if llm.lastReq.MaxTokens != 120 {
		t.Errorf("max tokens = %d, want default 120", llm.lastReq.MaxTokens)
	}
	if len(llm.lastReq.System) == 0 || !strings.Contains(llm.lastReq.System[0], "Nia") {
		t.Error("persona prompt missing from request")
	}
	if !llm.hadDeadline {
		t.Error("request context should carry a deadline")
	}
}

func TestResponderErrorRedirects(t *testing.T) {
	llm := &fakeLLM{err: errors.New("throttled")}
	r := NewResponder(llm, "model-id", 120, 10*time.Second, nil)

	got := r.Reply(context.Background(), "hello?")
	if got != redirectReply {
		t.Errorf("reply = %q, want redirect", got)
	}
}

func TestResponderEmptyTextRedirects(t *testing.T) {
	llm := &fakeLLM{resp: LLMResponse{Text: "   "}}
	r := NewResponder(llm, "model-id", 120, 10*time.Second, nil)

	if got := r.Reply(context.Background(), "hello?"); got != redirectReply {
		t.Errorf("reply = %q, want redirect", got)
	}
}

func TestResponderNilClientRedirects(t *testing.T) {
	r := NewResponder(nil, "", 0, 0, nil)
	if got := r.Reply(context.Background(), "hi"); got != redirectReply {
		t.Errorf("reply = %q, want redirect", got)
	}
}
