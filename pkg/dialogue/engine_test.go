package dialogue

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/anshu200710/ai-agent-sub000/pkg/outbox"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// Monday 10 June 2024, 09:00 IST.
var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, ist)

type fakeBackend struct {
	mu        sync.Mutex
	customers map[string]*backend.Customer
	lookups   []string
	submits   []backend.Complaint
	result    backend.SubmitResult
	panicOn   string
}

func newFakeBackend() *fakeBackend {
	c := &backend.Customer{
		Name:        "Ramesh Meena",
		City:        "Kota",
		Model:       "3DX Super",
		Phone:       "9876543210",
		MachineID:   "3305447",
		InstallDate: "2021-03-14",
	}
	return &fakeBackend{
		customers: map[string]*backend.Customer{
			backend.KindMachine + ":3305447": c,
			backend.KindPhone + ":9876543210": c,
		},
		result: backend.SubmitResult{Success: true, TicketID: "4821", Attempts: 1},
	}
}

func (f *fakeBackend) LookupCustomer(_ context.Context, kind, id string) (*backend.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn != "" && id == f.panicOn {
		panic("lookup exploded")
	}
	f.lookups = append(f.lookups, kind+":"+id)
	return f.customers[kind+":"+id], nil
}

func (f *fakeBackend) SubmitComplaint(_ context.Context, p backend.Complaint) backend.SubmitResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, p)
	return f.result
}

type harness struct {
	t      *testing.T
	engine *Engine
	store  *session.LRUStore
	be     *fakeBackend
	obs    *metrics.MemoryObserver
	box    *outbox.Memory
	callID string
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		store:  session.NewLRUStore(100, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))),
		be:     newFakeBackend(),
		obs:    metrics.NewMemoryObserver(),
		box:    outbox.NewMemory(),
		callID: "CA-test-1",
	}
	if cfg.AgentNumber == "" {
		cfg.AgentNumber = "+911412345678"
	}
	e, err := New(cfg, h.store, taxonomy.Default(), h.be,
		WithClock(func() time.Time { return fixedNow }),
		WithObserver(h.obs),
		WithOutbox(h.box),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	h.engine = e
	return h
}

func (h *harness) start() Reply {
	h.t.Helper()
	r, err := h.engine.HandleTurn(context.Background(), TurnEvent{CallID: h.callID, CallerNumber: "+919812345678"})
	require.NoError(h.t, err)
	return r
}

func (h *harness) say(text string) Reply {
	h.t.Helper()
	r, err := h.engine.HandleTurn(context.Background(), TurnEvent{CallID: h.callID, Transcript: text})
	require.NoError(h.t, err)
	return r
}

func (h *harness) press(digits string) Reply {
	h.t.Helper()
	r, err := h.engine.HandleTurn(context.Background(), TurnEvent{CallID: h.callID, Digits: digits})
	require.NoError(h.t, err)
	return r
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	s, ok := h.store.Get(h.callID)
	require.True(h.t, ok, "session should still be active")
	return s
}

func (h *harness) step() session.Step { return h.session().Step }

// toLocation drives a call to the location question through the machine path.
func (h *harness) toLocation() {
	h.t.Helper()
	h.start()
	h.press("1")
	h.say("3305447")
	h.say("haan")
	require.Equal(h.t, session.StepAskLocation, h.step())
}

func TestHappyPathFilesOneTicket(t *testing.T) {
	h := newHarness(t, Config{})

	r := h.start()
	assert.Contains(t, r.Text, "press 1")
	assert.Equal(t, "ivr_menu", r.Step)

	h.press("1")
	assert.Equal(t, session.StepAskIdentifier, h.step())

	r = h.say("330")
	assert.Contains(t, r.Text, "3 3 0")
	assert.Equal(t, "330", h.session().DigitBuffer)

	r = h.say("5447")
	assert.Equal(t, session.StepConfirmCustomer, h.step())
	assert.Contains(t, r.Text, "Ramesh Meena")

	h.say("haan")
	assert.Equal(t, session.StepAskLocation, h.step())

	r = h.say("Kota")
	assert.Equal(t, session.StepConfirmPhone, h.step())
	assert.Contains(t, r.Text, "3 2 1 0")

	h.say("yes")
	assert.Equal(t, session.StepAskComplaint, h.step())

	r = h.say("engine not starting and brake weak")
	assert.Equal(t, session.StepConfirmComplaint, h.step())
	assert.Contains(t, r.Text, "Engine")
	assert.Contains(t, r.Text, "Braking")

	h.say("yes")
	assert.Equal(t, session.StepAskServiceDate, h.step())
	h.say("today")
	assert.Equal(t, session.StepAskTimeFrom, h.step())
	h.say("10 baje")
	assert.Equal(t, session.StepAskTimeTo, h.step())

	r = h.say("12 baje")
	assert.True(t, r.Terminal)
	assert.False(t, r.Escalate)
	assert.Equal(t, "4821", r.TicketID)
	assert.Contains(t, r.Text, "4 8 2 1")

	_, active := h.store.Get(h.callID)
	assert.False(t, active)

	require.Len(t, h.be.submits, 1)
	p := h.be.submits[0]
	assert.Equal(t, "3305447", p.MachineNo)
	assert.Equal(t, "9876543210", p.ContactPhone)
	assert.Equal(t, "RJ04", p.Branch)
	assert.Equal(t, "KTA-01", p.Outlet)
	assert.Equal(t, "2024-06-10", p.ServiceDate)
	assert.Equal(t, "10:00", p.FromTime)
	assert.Equal(t, "12:00", p.ToTime)
	assert.Equal(t, session.JobSite, p.JobLocation)
	require.Len(t, p.Complaints, 2)
	assert.Equal(t, backend.ComplaintLine{Category: "Engine", SubCategory: "Start Problem"}, p.Complaints[0])
	assert.Equal(t, backend.ComplaintLine{Category: "Braking", SubCategory: "Weak Braking"}, p.Complaints[1])
	assert.Empty(t, h.box.Entries())
}

func TestMobilePathLooksUpByPhone(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	r := h.say("mobile number")
	assert.Equal(t, session.StepAskIdentifier, h.step())
	assert.Contains(t, r.Text, "mobile")

	h.say("98765")
	assert.Equal(t, session.StepAskIdentifier, h.step())
	h.say("43210")
	assert.Equal(t, session.StepConfirmCustomer, h.step())
	assert.Contains(t, h.be.lookups, backend.KindPhone+":9876543210")
	assert.Equal(t, "3305447", h.session().MachineID)
}

func TestMenuEscalatesAfterThresholdPlusOne(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	for i := 1; i <= 3; i++ {
		r := h.say("banana")
		require.False(t, r.Terminal, "retry %d should not escalate", i)
		assert.Equal(t, i, h.session().RetryCount)
	}
	r := h.say("banana")
	assert.True(t, r.Terminal)
	assert.True(t, r.Escalate)
	assert.Equal(t, "+911412345678", r.AgentNumber)
	assert.Equal(t, "ivr_menu", r.Step)

	esc := h.obs.Named(metrics.EventEscalation)
	require.Len(t, esc, 1)
	assert.Equal(t, "retries_exhausted", esc[0].Tags["cause"])
}

func TestConfiguredThresholdOverride(t *testing.T) {
	h := newHarness(t, Config{Thresholds: map[string]int{"ivr_menu": 1}})
	h.start()
	assert.False(t, h.say("banana").Terminal)
	assert.True(t, h.say("banana").Escalate)
}

func TestUnknownThresholdStepRejected(t *testing.T) {
	_, err := New(Config{Thresholds: map[string]int{"nope": 1}}, session.NewLRUStore(1, time.Minute, nil), taxonomy.Default(), newFakeBackend())
	require.Error(t, err)
}

func TestFailedLookupStartsFreshBuffer(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	h.press("1")
	r := h.say("9999")
	assert.Equal(t, session.StepAskIdentifier, h.step())
	assert.Equal(t, "", h.session().DigitBuffer)
	assert.Equal(t, 1, h.session().RetryCount)
	assert.NotEmpty(t, r.Text)

	h.say("3305447")
	assert.Equal(t, session.StepConfirmCustomer, h.step())
}

func TestIdentifierFoundInsidePaddedBuffer(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	h.press("1")
	h.say("mera number 1 2 3305447 hai")
	assert.Equal(t, session.StepConfirmCustomer, h.step())
	assert.Equal(t, "3305447", h.session().MachineID)
}

func TestCustomerRejectionGoesBackThenEscalates(t *testing.T) {
	h := newHarness(t, Config{MaxRejections: 1})
	h.start()
	h.press("1")
	h.say("3305447")
	h.say("nahi")
	assert.Equal(t, session.StepAskIdentifier, h.step())
	assert.Nil(t, h.session().Customer)

	h.say("3305447")
	r := h.say("no")
	assert.True(t, r.Escalate)
}

func TestConfirmCustomerAcceptsQuestionTag(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	h.press("1")
	h.say("3305447")
	h.say("haan ji sahi hai na")
	assert.Equal(t, session.StepAskLocation, h.step())
	assert.NotNil(t, h.session().Customer)
	assert.Zero(t, h.session().Rejections)
}

func TestSilenceEscalates(t *testing.T) {
	h := newHarness(t, Config{SilenceMax: 2})
	first := h.start()
	r := h.say("")
	assert.Equal(t, first.Text, r.Text)
	h.say("  ")
	r = h.say("")
	assert.True(t, r.Terminal)
	assert.True(t, r.Escalate)
}

func TestRepeatReplaysLastPrompt(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	asked := h.press("1")
	r := h.say("please repeat")
	assert.Equal(t, asked.Text, r.Text)
	r = h.press("*")
	assert.Equal(t, asked.Text, r.Text)
	assert.Equal(t, 0, h.session().RetryCount)
}

func TestCallerCanAskForAgent(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	r := h.say("mujhe agent se baat karni hai")
	assert.True(t, r.Escalate)
	assert.Equal(t, "ask_location", r.Step)
}

func TestRetryPromptsNeverRepeatBackToBack(t *testing.T) {
	h := newHarness(t, Config{})
	h.start()
	a := h.say("banana")
	b := h.say("banana")
	c := h.say("banana")
	assert.NotEqual(t, a.Text, b.Text)
	assert.NotEqual(t, b.Text, c.Text)
}

func TestUnresolvedLocationDefaultsToPincode(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("qqqq")
	h.say("qqqq")
	r := h.say("qqqq")
	assert.Equal(t, session.StepAskPincode, h.step())
	assert.Contains(t, strings.ToLower(r.Text), "pin")
	assert.True(t, h.session().Location.IsUnresolved())
	assert.Equal(t, "qqqq", h.session().Location.Address)

	h.press("#")
	assert.Equal(t, session.StepConfirmPhone, h.step())
	assert.NotEmpty(t, h.obs.Named(metrics.EventDefault))
}

func TestPincodeCaptured(t *testing.T) {
	h := newHarness(t, Config{Thresholds: map[string]int{"ask_location": 0}})
	h.toLocation()
	h.say("qqqq")
	require.Equal(t, session.StepAskPincode, h.step())
	h.say("three two four zero zero five")
	assert.Equal(t, session.StepConfirmPhone, h.step())
	assert.Equal(t, "324005", h.session().Location.Pincode)
}

func TestWorkshopVisitRecorded(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Jaipur workshop")
	assert.Equal(t, session.JobWorkshop, h.session().Schedule.JobLocationKind)
	assert.Equal(t, "RJ01", h.session().Location.Branch)
}

func TestRejectedPhoneIsAskedFor(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Kota")
	h.say("nahi")
	require.Equal(t, session.StepAskPhone, h.step())
	h.say("nine eight one two three")
	h.say("four five six seven eight")
	require.Equal(t, session.StepConfirmPhone, h.step())
	assert.Equal(t, "9812345678", h.session().ContactPhone)
}

func TestGenericComplaintAsksSubCategory(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Kota")
	h.say("yes")
	r := h.say("engine mein problem hai")
	require.Equal(t, session.StepAskSubComplaint, h.step())
	assert.Contains(t, r.Text, "Engine")

	h.say("overheating ho raha hai")
	assert.Equal(t, session.StepConfirmComplaint, h.step())
	assert.Equal(t, "Overheating", h.session().Complaints[0].SubCategory)
}

func TestShortComplaintWithAgainIsClassified(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Kota")
	h.say("yes")
	require.Equal(t, session.StepAskComplaint, h.step())

	r := h.say("brake fail again")
	assert.Equal(t, session.StepConfirmComplaint, h.step())
	require.NotEmpty(t, h.session().Complaints)
	assert.Equal(t, "Braking", h.session().Complaints[0].Category)
	assert.Equal(t, "Brake Failure", h.session().Complaints[0].SubCategory)
	assert.Contains(t, r.Text, "Braking")
}

func TestConfirmComplaintAcceptsAddition(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Kota")
	h.say("yes")
	h.say("engine not starting")
	require.Equal(t, session.StepConfirmComplaint, h.step())
	r := h.say("aur brake bhi weak hai")
	assert.Equal(t, session.StepConfirmComplaint, h.step())
	assert.Contains(t, r.Text, "Braking")
	assert.Len(t, h.session().Complaints, 2)
}

func TestComplaintDefaultsToGeneral(t *testing.T) {
	h := newHarness(t, Config{})
	h.toLocation()
	h.say("Kota")
	h.say("yes")
	for i := 0; i < 4; i++ {
		h.say("zzz")
	}
	s := h.session()
	assert.Equal(t, session.StepAskServiceDate, s.Step)
	require.Len(t, s.Complaints, 1)
	assert.Equal(t, "General", s.Complaints[0].Category)
}

// toSchedule drives a call up to the service date question.
func (h *harness) toSchedule() {
	h.t.Helper()
	h.toLocation()
	h.say("Kota")
	h.say("yes")
	h.say("engine not starting")
	h.say("yes")
	require.Equal(h.t, session.StepAskServiceDate, h.step())
}

func TestDateAndTimeInOneUtterance(t *testing.T) {
	h := newHarness(t, Config{})
	h.toSchedule()
	h.say("kal subah 10 baje")
	s := h.session()
	assert.Equal(t, session.StepAskTimeTo, s.Step)
	assert.Equal(t, "2024-06-11", s.Schedule.ServiceDate)
	assert.Equal(t, "10:00", s.Schedule.FromTime)
}

func TestTimeRangeInOneUtterance(t *testing.T) {
	h := newHarness(t, Config{})
	h.toSchedule()
	h.say("parso")
	r := h.say("10 se 2 baje tak")
	assert.True(t, r.Terminal)
	require.Len(t, h.be.submits, 1)
	assert.Equal(t, "10:00", h.be.submits[0].FromTime)
	assert.Equal(t, "14:00", h.be.submits[0].ToTime)
	assert.Equal(t, "2024-06-12", h.be.submits[0].ServiceDate)
}

func TestScheduleDefaults(t *testing.T) {
	h := newHarness(t, Config{Thresholds: map[string]int{"ask_service_date": 0, "ask_time_from": 0, "ask_time_to": 0}})
	h.toSchedule()
	h.say("pata nahi")
	assert.Equal(t, session.StepAskTimeFrom, h.step())
	h.say("pata nahi")
	assert.Equal(t, session.StepAskTimeTo, h.step())
	r := h.say("pata nahi")
	assert.True(t, r.Terminal)
	require.Len(t, h.be.submits, 1)
	p := h.be.submits[0]
	assert.Equal(t, "2024-06-11", p.ServiceDate)
	assert.Equal(t, "10:00", p.FromTime)
	assert.Equal(t, "12:00", p.ToTime)
}

func TestFailedSubmitGoesToOutbox(t *testing.T) {
	h := newHarness(t, Config{})
	h.be.result = backend.SubmitResult{Error: "status 503", Attempts: 3}
	h.toSchedule()
	h.say("kal")
	h.say("11 baje")
	r := h.say("1 baje")
	assert.True(t, r.Terminal)
	assert.False(t, r.Escalate)
	assert.Empty(t, r.TicketID)

	entries := h.box.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, h.callID, entries[0].CallID)
	assert.Equal(t, 3, entries[0].Attempts)
	assert.Equal(t, "13:00", entries[0].Payload.ToTime)
	assert.Equal(t, outbox.KindFailed, entries[0].Kind)
	assert.Len(t, h.obs.Named(metrics.EventOutbox), 1)
}

func TestAcceptedWithoutTicketIsMarked(t *testing.T) {
	h := newHarness(t, Config{})
	h.be.result = backend.SubmitResult{Success: true, Attempts: 1}
	h.toSchedule()
	h.say("kal")
	h.say("11 baje")
	r := h.say("1 baje")
	assert.True(t, r.Terminal)
	assert.Empty(t, r.TicketID)

	entries := h.box.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, outbox.KindAccepted, entries[0].Kind)
	assert.Equal(t, "accepted without ticket id", entries[0].Error)
	assert.Len(t, h.be.submits, 1)
}

func TestPanicBecomesEscalation(t *testing.T) {
	h := newHarness(t, Config{})
	h.be.panicOn = "1234"
	h.start()
	h.press("1")
	r := h.say("1234")
	assert.True(t, r.Terminal)
	assert.True(t, r.Escalate)
	_, active := h.store.Get(h.callID)
	assert.False(t, active)
}

func TestEndCallDropsSession(t *testing.T) {
	h := newHarness(t, Config{})
	assert.False(t, h.engine.HasCall(h.callID))
	h.start()
	assert.True(t, h.engine.HasCall(h.callID))
	h.engine.EndCall(h.callID, "completed")
	assert.False(t, h.engine.HasCall(h.callID))
}

func TestHindiPromptBook(t *testing.T) {
	h := newHarness(t, Config{Language: LangHindi})
	r := h.start()
	assert.Equal(t, "hi-IN", r.Language)
	assert.NotEqual(t, englishPrompts[promptWelcome][0], r.Text)
}

func TestNewRejectsBadConfig(t *testing.T) {
	store := session.NewLRUStore(1, time.Minute, nil)
	_, err := New(Config{Language: "fr"}, store, taxonomy.Default(), newFakeBackend())
	assert.Error(t, err)
	_, err = New(Config{WorkStart: "18:00", WorkEnd: "09:00"}, store, taxonomy.Default(), newFakeBackend())
	assert.Error(t, err)
	_, err = New(Config{}, nil, taxonomy.Default(), newFakeBackend())
	assert.Error(t, err)
}

func TestEmptyCallIDIsAnError(t *testing.T) {
	h := newHarness(t, Config{})
	_, err := h.engine.HandleTurn(context.Background(), TurnEvent{})
	assert.Error(t, err)
}
