// Package session holds the per-call dialogue record and the store that keeps
// it for the lifetime of a call.
package session

import (
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/classifier"
	"github.com/anshu200710/ai-agent-sub000/pkg/location"
	"github.com/google/uuid"
)

// IdentifierKind says what the caller chose to identify themselves with.
type IdentifierKind string

const (
	IdentifierMachine IdentifierKind = "machine"
	IdentifierPhone   IdentifierKind = "phone"
)

// Job location kinds sent with the complaint.
const (
	JobSite     = "SITE"
	JobWorkshop = "WORKSHOP"
)

// Customer is the record a resolved identifier points to.
type Customer struct {
	Name                string `json:"name"`
	City                string `json:"city"`
	Model               string `json:"model"`
	Phone               string `json:"phone"`
	BusinessPartnerCode string `json:"business_partner_code"`
	InstallDate         string `json:"install_date"`
	MachineID           string `json:"machine_id"`
}

// Schedule is the visit window the caller asked for.
type Schedule struct {
	ServiceDate     string `json:"service_date"`
	FromTime        string `json:"from_time"`
	ToTime          string `json:"to_time"`
	JobLocationKind string `json:"job_location_kind"`
}

// Session is everything the dialogue knows about one call. Fields are filled
// as Step advances; Step says which of them are meaningful.
type Session struct {
	CallID  string `json:"call_id"`
	TraceID string `json:"trace_id"`
	Step    Step   `json:"step"`

	RetryCount   int `json:"retry_count"`
	SilenceCount int `json:"silence_count"`
	// Rejections counts read-backs the caller said "no" to in the current
	// confirmation phase. Unlike RetryCount it survives the back-edge.
	Rejections int `json:"rejections"`

	DigitBuffer    string         `json:"-"`
	IdentifierKind IdentifierKind `json:"identifier_kind,omitempty"`
	MachineID      string         `json:"machine_id,omitempty"`
	Customer       *Customer      `json:"customer,omitempty"`

	CallerNumber string `json:"caller_number,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	ComplaintText string                 `json:"complaint_text,omitempty"`
	Complaints    []classifier.Complaint `json:"complaints,omitempty"`

	Location location.Location `json:"location"`
	Schedule Schedule          `json:"schedule"`

	LastPromptText string `json:"last_prompt_text"`
	LastPromptKey  string `json:"last_prompt_key"`
	LastVariant    int    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New starts a session at the menu.
func New(callID string, now time.Time) *Session {
	return &Session{
		CallID:    callID,
		TraceID:   uuid.NewString(),
		Step:      StepIVRMenu,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves to step and clears per-step counters.
func (s *Session) Advance(step Step) {
	s.Step = step
	s.RetryCount = 0
	s.SilenceCount = 0
	s.DigitBuffer = ""
}

// AppendComplaintText adds one utterance to the running complaint transcript.
func (s *Session) AppendComplaintText(text string) {
	if text == "" {
		return
	}
	if s.ComplaintText == "" {
		s.ComplaintText = text
		return
	}
	s.ComplaintText += " " + text
}
