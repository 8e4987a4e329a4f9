package conversation

import (
	"fmt"
	"strings"
)

// Scripted copy for every stage of the qualification flow. Formatting
// markers render fine on most handsets and keep emphasis on WhatsApp.
const (
	greetingPrompt = "Hello! I'm Nia from The Paul Group 👋. I can help you get a quick quote for Final Expense insurance. Would you like to see your options? (Yes/No)"

	askNamePrompt      = "Great! To get started, may I have your **full name**?"
	askStatePrompt     = "And which **state** do you live in?"
	askHealthPrompt    = "Got it. Do you have any *major* health conditions? (Yes/No)"
	askHealthDetails   = "Please briefly list the major health conditions you have."
	askBudgetPrompt    = "What's your **monthly budget** for premiums? e.g. '$55', '$75', 'around $100'."
	askContactTime     = "When is the **best time** for a licensed agent to call you? (morning / afternoon / evening or a specific day and time)"
	declineReply       = "No problem! If you change your mind about Final Expense insurance, just text me back. Have a great day! 😊"
	invalidNameReply   = "Please provide your *first and last* name (no numbers)."
	invalidAgeReply    = "Please reply with a valid age between 18-120."
	healthRetryReply   = "Please answer *Yes* or *No* - do you have any major health conditions?"
	invalidBudgetReply = "Sorry, I didn't catch that. Please enter a monthly amount like '$75' or 'around $100'."
	confirmRetryReply  = "Please reply *Yes* to confirm or *No* to choose a different time."
	optOutReply        = "You have been unsubscribed and won't receive further messages. Reply START to opt back in."
	requoteReply       = "I'd be happy to help with another quote! "

	askNameFollowup = "\n\nTo get started with your quote, may I have your full name?"
)

func askAgePrompt(firstName string) string {
	if firstName == "" {
		return "Thanks! What is your **current age**?"
	}
	return fmt.Sprintf("Thanks, %s! What is your **current age**?", firstName)
}

func slotOfferPrompt(period string, slots []string) string {
	return fmt.Sprintf("Great! I have these times %s:\n\n%s\n\nPlease reply with the number of the slot you prefer.",
		period, strings.Join(slots, "\n"))
}

func slotRetryPrompt(slots []string) string {
	return "Please reply with the number of one of the available slots:\n\n" + strings.Join(slots, "\n")
}

func reofferPrompt(slots []string) string {
	return "No problem! Here are the available times again:\n\n" + strings.Join(slots, "\n") + "\n\nPlease reply with the number of the slot you prefer."
}

func confirmBookingPrompt(slot string) string {
	return fmt.Sprintf("Perfect! I'll pencil you in for **%s**. Shall I confirm this appointment? (Yes/No)", slot)
}

func bookedReply(slot, ticket string) string {
	return fmt.Sprintf("Thank you! Your appointment is confirmed for **%s**. Your ticket number is **%s**. We look forward to speaking with you! ✅", slot, ticket)
}
