package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/internal/training"
	"github.com/paulgroup/leadbot/pkg/logging"
)

// Reply sources, recorded for metrics and logs.
const (
	SourceScript = "script"
	SourceFuzzy  = "fuzzy"
	SourceLLM    = "llm"
	SourceOptOut = "opt_out"
)

// ResponseMatcher finds a curated answer for an off-script message.
type ResponseMatcher interface {
	Match(input string) (training.Record, bool)
}

// FallbackResponder produces a reply when no scripted or curated answer fits.
type FallbackResponder interface {
	Reply(ctx context.Context, msg string) string
}

// Result is the outcome of one conversational turn.
type Result struct {
	Reply   string
	Changed bool   // lead was mutated and must be persisted
	Booked  bool   // booking was confirmed on this turn
	Source  string // which layer produced the reply
}

// Engine advances a lead through the qualification flow one inbound message
// at a time. It is pure state transition logic: no storage, no transport.
type Engine struct {
	detector  *Detector
	matcher   ResponseMatcher
	responder FallbackResponder
	logger    *logging.Logger
	now       func() time.Time
}

// NewEngine builds an Engine. matcher and responder may be nil; the engine
// degrades to scripted replies plus a static redirect.
func NewEngine(matcher ResponseMatcher, responder FallbackResponder, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		detector:  NewDetector(),
		matcher:   matcher,
		responder: responder,
		logger:    logger,
		now:       time.Now,
	}
}

// Step processes one inbound message against the lead's current stage and
// mutates the lead in place. Opt-out wins over everything else.
func (e *Engine) Step(ctx context.Context, lead *leads.Lead, msg string) Result {
	msg = strings.TrimSpace(msg)

	if e.detector.IsOptOut(msg) {
		changed := lead.Status != leads.StatusOptOut
		lead.Status = leads.StatusOptOut
		return Result{Reply: optOutReply, Changed: changed, Source: SourceOptOut}
	}

	if lead.Status == leads.StatusOptOut {
		if e.detector.IsStart(msg) {
			lead.Status = leads.StatusActive
			lead.Stage = leads.StageGreeting
			return Result{Reply: greetingPrompt, Changed: true, Source: SourceScript}
		}
		return Result{Reply: optOutReply, Source: SourceOptOut}
	}

	// A finished lead saying hello again goes back to the top of the flow.
	// Slot state resets like a requote so a fresh offer is generated.
	restarted := false
	if lead.Stage == leads.StageCompleted && e.detector.IsStart(msg) {
		lead.Stage = leads.StageGreeting
		lead.SlotOptions = nil
		lead.Slot = ""
		restarted = true
	}

	res := e.step(ctx, lead, msg)
	res.Changed = res.Changed || restarted
	return res
}

func (e *Engine) step(ctx context.Context, lead *leads.Lead, msg string) Result {
	switch lead.Stage {
	case leads.StageGreeting:
		return e.handleGreeting(lead, msg)
	case leads.StageAskName:
		return e.handleAskName(lead, msg)
	case leads.StageAskAge:
		return e.handleAskAge(lead, msg)
	case leads.StageAskState:
		return e.handleAskState(lead, msg)
	case leads.StageAskHealthConfirm:
		return e.handleAskHealthConfirm(lead, msg)
	case leads.StageAskHealthDetails:
		return e.handleAskHealthDetails(lead, msg)
	case leads.StageAskBudget:
		return e.handleAskBudget(lead, msg)
	case leads.StageAskContactTime:
		return e.handleAskContactTime(lead, msg)
	case leads.StageAskTimeSlotConfirm:
		return e.handleSlotSelection(lead, msg)
	case leads.StageConfirmBooking:
		return e.handleConfirmBooking(lead, msg)
	case leads.StageCompleted:
		return e.handleCompleted(ctx, lead, msg)
	default:
		// Unknown stage in storage; recover at the top of the flow.
		e.logger.Warn("unknown stage, resetting to greeting", "stage", lead.Stage, "phone", lead.Phone)
		lead.Stage = leads.StageGreeting
		return Result{Reply: greetingPrompt, Changed: true, Source: SourceScript}
	}
}

func (e *Engine) handleGreeting(lead *leads.Lead, msg string) Result {
	switch e.detector.Classify(msg) {
	case YesNoYes:
		lead.Stage = leads.StageAskName
		return Result{Reply: askNamePrompt, Changed: true, Source: SourceScript}
	case YesNoNo:
		return Result{Reply: declineReply, Source: SourceScript}
	default:
		return Result{Reply: greetingPrompt, Source: SourceScript}
	}
}

func (e *Engine) handleAskName(lead *leads.Lead, msg string) Result {
	if !ValidateName(msg) {
		return Result{Reply: invalidNameReply, Source: SourceScript}
	}
	lead.Name = strings.TrimSpace(msg)
	lead.Stage = leads.StageAskAge
	return Result{Reply: askAgePrompt(lead.FirstName()), Changed: true, Source: SourceScript}
}

func (e *Engine) handleAskAge(lead *leads.Lead, msg string) Result {
	age, ok := ParseAge(msg)
	if !ok {
		return Result{Reply: invalidAgeReply, Source: SourceScript}
	}
	lead.Age = age
	lead.Stage = leads.StageAskState
	return Result{Reply: askStatePrompt, Changed: true, Source: SourceScript}
}

func (e *Engine) handleAskState(lead *leads.Lead, msg string) Result {
	if msg == "" {
		return Result{Reply: askStatePrompt, Source: SourceScript}
	}
	lead.State = msg
	lead.Stage = leads.StageAskHealthConfirm
	return Result{Reply: askHealthPrompt, Changed: true, Source: SourceScript}
}

func (e *Engine) handleAskHealthConfirm(lead *leads.Lead, msg string) Result {
	switch e.detector.Classify(msg) {
	case YesNoYes:
		lead.HealthFlag = "Yes"
		lead.Stage = leads.StageAskHealthDetails
		return Result{Reply: askHealthDetails, Changed: true, Source: SourceScript}
	case YesNoNo:
		lead.HealthFlag = "No"
		lead.Stage = leads.StageAskBudget
		return Result{Reply: askBudgetPrompt, Changed: true, Source: SourceScript}
	default:
		return Result{Reply: healthRetryReply, Source: SourceScript}
	}
}

func (e *Engine) handleAskHealthDetails(lead *leads.Lead, msg string) Result {
	if msg == "" {
		return Result{Reply: askHealthDetails, Source: SourceScript}
	}
	lead.HealthDetails = msg
	lead.Stage = leads.StageAskBudget
	return Result{Reply: askBudgetPrompt, Changed: true, Source: SourceScript}
}

func (e *Engine) handleAskBudget(lead *leads.Lead, msg string) Result {
	budget, ok := ParseBudget(msg)
	if !ok {
		return Result{Reply: invalidBudgetReply, Source: SourceScript}
	}
	lead.Budget = budget
	lead.Stage = leads.StageAskContactTime
	return Result{Reply: askContactTime, Changed: true, Source: SourceScript}
}

func (e *Engine) handleAskContactTime(lead *leads.Lead, msg string) Result {
	if msg == "" {
		return Result{Reply: askContactTime, Source: SourceScript}
	}
	lead.ContactTime = msg
	period, slots := MakeSlots(msg, e.now())
	lead.SlotOptions = slots
	lead.Stage = leads.StageAskTimeSlotConfirm
	return Result{Reply: slotOfferPrompt(period, slots), Changed: true, Source: SourceScript}
}

func (e *Engine) handleSlotSelection(lead *leads.Lead, msg string) Result {
	// Options can go missing when storage is wiped mid-conversation;
	// regenerate and offer them again rather than dead-ending.
	if len(lead.SlotOptions) == 0 {
		period, slots := MakeSlots(lead.ContactTime, e.now())
		lead.SlotOptions = slots
		return Result{Reply: slotOfferPrompt(period, slots), Changed: true, Source: SourceScript}
	}

	slot, ok := ChooseSlot(msg, lead.SlotOptions)
	if !ok {
		return Result{Reply: slotRetryPrompt(lead.SlotOptions), Source: SourceScript}
	}
	lead.Slot = slot
	lead.Stage = leads.StageConfirmBooking
	return Result{Reply: confirmBookingPrompt(slot), Changed: true, Source: SourceScript}
}

func (e *Engine) handleConfirmBooking(lead *leads.Lead, msg string) Result {
	switch e.detector.Classify(msg) {
	case YesNoYes:
		if lead.Ticket == "" {
			lead.Ticket = newTicket()
		}
		lead.Status = leads.StatusBooked
		lead.Stage = leads.StageCompleted
		return Result{
			Reply:   bookedReply(lead.Slot, lead.Ticket),
			Changed: true,
			Booked:  true,
			Source:  SourceScript,
		}
	case YesNoNo:
		if len(lead.SlotOptions) == 0 {
			period, slots := MakeSlots(lead.ContactTime, e.now())
			lead.SlotOptions = slots
			lead.Stage = leads.StageAskTimeSlotConfirm
			return Result{Reply: slotOfferPrompt(period, slots), Changed: true, Source: SourceScript}
		}
		lead.Stage = leads.StageAskTimeSlotConfirm
		return Result{Reply: reofferPrompt(lead.SlotOptions), Changed: true, Source: SourceScript}
	default:
		return Result{Reply: confirmRetryReply, Source: SourceScript}
	}
}

func (e *Engine) handleCompleted(ctx context.Context, lead *leads.Lead, msg string) Result {
	if e.detector.IsRequote(msg) {
		// Keep the answers already collected so an agent can compare
		// quotes; the slot machinery resets for the new round.
		lead.Stage = leads.StageGreeting
		lead.SlotOptions = nil
		lead.Slot = ""
		return Result{Reply: requoteReply + greetingPrompt, Changed: true, Source: SourceScript}
	}

	if e.matcher != nil {
		if rec, ok := e.matcher.Match(msg); ok {
			res := Result{Reply: training.SanitizeForSMS(rec.BotResponse), Source: SourceFuzzy}
			if rec.HasTrigger(training.TriggerSetAppointment) {
				lead.Stage = leads.StageAskName
				res.Reply += askNameFollowup
				res.Changed = true
			}
			return res
		}
	}

	return Result{Reply: e.respond(ctx, msg), Source: SourceLLM}
}

func (e *Engine) respond(ctx context.Context, msg string) string {
	if e.responder == nil {
		return redirectReply
	}
	return e.responder.Reply(ctx, msg)
}

func newTicket() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:8])
}
