package session

import "strings"

// Step is the dialogue state a call is waiting in.
type Step int

const (
	StepIVRMenu Step = iota
	StepAskIdentifier
	StepConfirmCustomer
	StepAskLocation
	StepAskPincode
	StepAskPhone
	StepConfirmPhone
	StepAskComplaint
	StepAskSubComplaint
	StepConfirmComplaint
	StepAskServiceDate
	StepAskTimeFrom
	StepAskTimeTo
	StepSubmit
	StepTerminal
)

var stepNames = [...]string{
	StepIVRMenu:          "ivr_menu",
	StepAskIdentifier:    "ask_identifier",
	StepConfirmCustomer:  "confirm_customer",
	StepAskLocation:      "ask_location",
	StepAskPincode:       "ask_pincode",
	StepAskPhone:         "ask_phone",
	StepConfirmPhone:     "confirm_phone",
	StepAskComplaint:     "ask_complaint",
	StepAskSubComplaint:  "ask_sub_complaint",
	StepConfirmComplaint: "confirm_complaint",
	StepAskServiceDate:   "ask_service_date",
	StepAskTimeFrom:      "ask_time_from",
	StepAskTimeTo:        "ask_time_to",
	StepSubmit:           "submit",
	StepTerminal:         "terminal",
}

// String returns the snake_case name used in logs and config keys.
func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// ParseStep is the inverse of String.
func ParseStep(name string) (Step, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stepNames {
		if n == name {
			return Step(i), true
		}
	}
	return 0, false
}

// Steps lists every step in flow order.
func Steps() []Step {
	out := make([]Step, len(stepNames))
	for i := range stepNames {
		out[i] = Step(i)
	}
	return out
}
