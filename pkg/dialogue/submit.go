package dialogue

import (
	"context"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/classifier"
	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/anshu200710/ai-agent-sub000/pkg/outbox"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/google/uuid"
)

// submit files the ticket and closes the call. It runs at most once per
// session because the session leaves the store with the terminal reply.
// The submission outlives a cancelled turn so a caller hanging up during the
// final prompt does not lose the ticket.
func (e *Engine) submit(ctx context.Context, s *session.Session) (Reply, error) {
	if err := e.transition(s, session.StepSubmit, "schedule_complete"); err != nil {
		return Reply{}, err
	}
	if len(s.Complaints) == 0 {
		s.Complaints = []classifier.Complaint{classifier.Fallback(e.catalog)}
	}
	payload := e.buildPayload(s)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.SubmitTimeout)
	defer cancel()
	res := e.backend.SubmitComplaint(sctx, payload)

	var reply Reply
	switch {
	case res.Success && res.TicketID != "":
		e.logger.Info("complaint_submitted", "call_id", s.CallID, "trace_id", s.TraceID,
			"ticket_id", res.TicketID, "attempts", res.Attempts)
		if err := e.transition(s, session.StepTerminal, "submitted"); err != nil {
			return Reply{}, err
		}
		reply = e.ask(s, promptClosingSuccess, map[string]string{"ticket": spaced(res.TicketID)})
		reply.TicketID = res.TicketID
	case res.Success:
		e.logger.Warn("complaint_accepted_without_id", "call_id", s.CallID, "trace_id", s.TraceID,
			"attempts", res.Attempts)
		e.park(sctx, s, payload, outbox.KindAccepted, "accepted without ticket id", res.Attempts)
		if err := e.transition(s, session.StepTerminal, "accepted_without_id"); err != nil {
			return Reply{}, err
		}
		reply = e.ask(s, promptClosingFailure, nil)
	default:
		e.logger.Error("complaint_submit_failed", "call_id", s.CallID, "trace_id", s.TraceID,
			"attempts", res.Attempts, "error", res.Error, "reason_code", string(errorsx.ReasonSubmitFailed))
		e.park(sctx, s, payload, outbox.KindFailed, res.Error, res.Attempts)
		if err := e.transition(s, session.StepTerminal, "submit_failed"); err != nil {
			return Reply{}, err
		}
		reply = e.ask(s, promptClosingFailure, nil)
	}
	reply.Terminal = true
	return reply, nil
}

// park hands a failed submission to the outbox.
func (e *Engine) park(ctx context.Context, s *session.Session, p backend.Complaint, kind, cause string, attempts int) {
	entry := outbox.Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		CallID:    s.CallID,
		TraceID:   s.TraceID,
		Payload:   p,
		Error:     cause,
		Attempts:  attempts,
		CreatedAt: e.now(),
	}
	result := "queued"
	if err := e.outbox.Enqueue(ctx, entry); err != nil {
		result = "error"
		err = errorsx.Wrap(err, errorsx.ReasonOutboxEnqueue)
		e.logger.Error("outbox_enqueue_failed", "call_id", s.CallID, "entry_id", entry.ID,
			"error", err.Error(), "reason_code", string(errorsx.Reason(err)))
	}
	e.obs.RecordEvent(metrics.NewEvent(metrics.EventOutbox, 1, map[string]string{"result": result, "kind": kind}))
}

func (e *Engine) buildPayload(s *session.Session) backend.Complaint {
	p := backend.Complaint{
		CallID:       s.CallID,
		MachineNo:    s.MachineID,
		ContactPhone: s.ContactPhone,
		Description:  s.ComplaintText,
		Branch:       s.Location.Branch,
		Outlet:       s.Location.Outlet,
		CityCode:     s.Location.CityCode,
		Lat:          s.Location.Lat,
		Lng:          s.Location.Lng,
		Address:      s.Location.Address,
		Pincode:      s.Location.Pincode,
		ServiceDate:  s.Schedule.ServiceDate,
		FromTime:     s.Schedule.FromTime,
		ToTime:       s.Schedule.ToTime,
		JobLocation:  s.Schedule.JobLocationKind,
	}
	if p.JobLocation == "" {
		p.JobLocation = session.JobSite
	}
	if c := s.Customer; c != nil {
		p.CustomerName = c.Name
		p.CustomerPhone = c.Phone
		p.BusinessPartnerCode = c.BusinessPartnerCode
		p.Model = c.Model
		p.City = c.City
	}
	if p.Description == "" {
		p.Description = summarize(s.Complaints, e.catalog.OtherSubCategory)
	}
	for _, c := range s.Complaints {
		p.Complaints = append(p.Complaints, backend.ComplaintLine{Category: c.Category, SubCategory: c.SubCategory})
	}
	return p
}
