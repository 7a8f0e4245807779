package booking

import (
	"fmt"
	"strings"
)

const (
	haircutReply = "Great choice! 💇‍♂️ Our haircuts are $35. What day works best for you? We're located in downtown Johnstown, right across from the Galleria."
	colorReply   = "Perfect! Our color services start at $65. What day works best for you?"
	serviceMenu  = "We offer haircuts ($35), color ($65+), and styling ($45). Which service interests you?"

	tomorrowReply = "Perfect! What time works best for you tomorrow? We have slots at 10am, 12pm, 2pm, and 4pm."
	todayReply    = "I have a 4pm slot available today! Does that work?"
	dayPrompt     = "What day works best? We're open Tuesday-Saturday, 9am-6pm."

	timeConfirmFormat = "Excellent! I have %s available %s. May I have your name?"
	timePrompt        = "What time works best for you? Available: 10am, 12pm, 2pm, or 4pm"

	nameThanksFormat = "Thanks, %s! What's the best phone number to reach you?"
	namePrompt       = "May I have your name?"

	confirmationFormat = "✅ All set, %s! Your %s is booked for %s at %s.\n\n" +
		"📍 Main Street Barbershop, 123 Main St, Johnstown PA\n" +
		"💳 I'll collect a $10 deposit to secure your spot\n" +
		"📱 Confirmation text sent to %s\n" +
		"🅿️ Free parking behind the shop!\n\n" +
		"See you %s! 👋"
	phonePrompt = "What's the best phone number to reach you? (e.g., 814-555-0123)"

	doneReply = "Is there anything else I can help you with?"
)

type stageHandler func(message, lower string, state State) (string, State)

var stageHandlers = map[Stage]stageHandler{
	StageNeedService: askService,
	StageNeedDate:    askDate,
	StageNeedTime:    askTime,
	StageNeedName:    askName,
	StageNeedPhone:   askPhone,
	StageDone:        finished,
}

// Step answers one user message given the currently known state. It never
// clears a known field and always returns a non-empty reply; input it cannot
// parse repeats the current question.
func Step(message string, state State) Reply {
	stage := StageOf(state)
	content, next := stageHandlers[stage](message, strings.ToLower(message), state)
	return Reply{Content: content, State: next, Stage: stage}
}

func askService(_, lower string, state State) (string, State) {
	switch {
	case strings.Contains(lower, "haircut") || strings.Contains(lower, "cut"):
		state.Service = ServiceHaircut
		return haircutReply, state
	case strings.Contains(lower, "color"):
		state.Service = ServiceColor
		return colorReply, state
	}
	return serviceMenu, state
}

func askDate(_, lower string, state State) (string, State) {
	switch {
	case strings.Contains(lower, "tomorrow"):
		state.Date = "tomorrow"
		return tomorrowReply, state
	case strings.Contains(lower, "today"):
		state.Date = "today"
		return todayReply, state
	}
	return dayPrompt, state
}

func askTime(_, lower string, state State) (string, State) {
	t := findTime(lower)
	if t == "" {
		return timePrompt, state
	}
	state.Time = t
	return fmt.Sprintf(timeConfirmFormat, state.Time, state.Date), state
}

func askName(message, _ string, state State) (string, State) {
	name := capitalizedToken(message)
	if name == "" {
		return namePrompt, state
	}
	state.Name = name
	return fmt.Sprintf(nameThanksFormat, name), state
}

func askPhone(message, _ string, state State) (string, State) {
	phone := findPhone(message)
	if phone == "" {
		return phonePrompt, state
	}
	confirmed := state
	state.Phone = phone
	state.Completed = true
	return fmt.Sprintf(confirmationFormat,
		confirmed.Name, confirmed.Service, confirmed.Date, confirmed.Time, phone, confirmed.Date,
	), state
}

func finished(_, _ string, state State) (string, State) {
	return doneReply, state
}
