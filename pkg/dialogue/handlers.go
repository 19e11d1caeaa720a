package dialogue

import (
	"context"
	"strings"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/classifier"
	"github.com/anshu200710/ai-agent-sub000/pkg/location"
	"github.com/anshu200710/ai-agent-sub000/pkg/redact"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
)

const phoneLen = 10

func (e *Engine) handleMenu(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	switch menuChoice(in) {
	case session.IdentifierMachine:
		s.IdentifierKind = session.IdentifierMachine
		return e.advance(s, session.StepAskIdentifier, "menu_machine", promptAskMachine, nil)
	case session.IdentifierPhone:
		s.IdentifierKind = session.IdentifierPhone
		return e.advance(s, session.StepAskIdentifier, "menu_phone", promptAskRegistered, nil)
	}
	return e.retry(ctx, s, promptMenuRetry, nil)
}

func menuChoice(in turnInput) session.IdentifierKind {
	switch in.keypad {
	case "1":
		return session.IdentifierMachine
	case "2":
		return session.IdentifierPhone
	}
	switch {
	case containsPhrase(in.text, mobilePhrases):
		return session.IdentifierPhone
	case containsPhrase(in.text, machinePhrases):
		return session.IdentifierMachine
	}
	switch speech.ExtractDigits(in.raw) {
	case "1":
		return session.IdentifierMachine
	case "2":
		return session.IdentifierPhone
	}
	return ""
}

func (e *Engine) identifierPrompt(s *session.Session) string {
	if s.IdentifierKind == session.IdentifierPhone {
		return promptAskRegistered
	}
	return promptAskMachine
}

// turnDigits prefers keypad input; spoken digits are extracted otherwise.
func turnDigits(in turnInput, phone bool) string {
	if in.keypad != "" {
		return in.keypad
	}
	if phone {
		return speech.ExtractPhoneDigits(in.raw)
	}
	return speech.ExtractDigits(in.raw)
}

func (e *Engine) handleIdentifier(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	phone := s.IdentifierKind == session.IdentifierPhone
	digits := turnDigits(in, phone)
	if digits == "" {
		return e.retry(ctx, s, e.identifierPrompt(s), nil)
	}
	s.DigitBuffer = speech.Accumulate(s.DigitBuffer, digits)
	need := e.cfg.IdentifierMin
	if phone {
		need = phoneLen
	}
	if speech.NeedsMore(s.DigitBuffer, need) {
		e.recordTurn(s, "partial")
		return e.ask(s, promptRestDigits, map[string]string{"digits": spaced(s.DigitBuffer)}), nil
	}

	id, cust, ok := e.resolveIdentifier(ctx, s, phone)
	if !ok {
		e.logger.Info("identifier_not_found", "call_id", s.CallID, "kind", string(s.IdentifierKind),
			"buffer", redact.Digits(s.DigitBuffer), "retry", s.RetryCount)
		// Start the next attempt from nothing so stale digits cannot blend in.
		s.DigitBuffer = ""
		return e.retry(ctx, s, promptNotFound, nil)
	}
	s.Customer = toSessionCustomer(cust)
	s.MachineID = cust.MachineID
	if !phone {
		s.MachineID = id
	}
	e.logger.Info("identifier_resolved", "call_id", s.CallID, "kind", string(s.IdentifierKind), "machine_id", s.MachineID)
	return e.advance(s, session.StepConfirmCustomer, "identifier_resolved", promptConfirmCustomer, customerVars(s.Customer))
}

// resolveIdentifier validates the buffer against the customer API. Machine
// numbers vary in length, so windows of the buffer are tried in turn; phone
// numbers have one or two plausible readings.
func (e *Engine) resolveIdentifier(ctx context.Context, s *session.Session, phone bool) (string, *backend.Customer, bool) {
	kind := backend.KindMachine
	var candidates []string
	if phone {
		kind = backend.KindPhone
		candidates = phoneCandidates(s.DigitBuffer)
	} else {
		candidates = speech.CandidateWindows(s.DigitBuffer, e.cfg.IdentifierMin, e.cfg.IdentifierMax)
	}
	lookup := func(ctx context.Context, id string) (*backend.Customer, bool) {
		cust, err := e.backend.LookupCustomer(ctx, kind, id)
		if err != nil {
			e.logger.Warn("identifier_lookup_error", "call_id", s.CallID, "error", err.Error())
			return nil, false
		}
		return cust, cust != nil
	}
	return speech.FirstMatch(ctx, candidates, e.cfg.MaxCandidates, lookup)
}

func phoneCandidates(buf string) []string {
	var out []string
	if p, ok := speech.NormalizePhone(buf); ok {
		out = append(out, p)
	}
	if len(buf) > phoneLen {
		if p, ok := speech.NormalizePhone(buf[len(buf)-phoneLen:]); ok && (len(out) == 0 || out[0] != p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) handleConfirmCustomer(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	switch yesNo(in) {
	case answerYes:
		s.Rejections = 0
		return e.advance(s, session.StepAskLocation, "customer_confirmed", promptAskLocation, nil)
	case answerNo:
		s.Rejections++
		if s.Rejections > e.cfg.MaxRejections {
			return e.escalate(s, "customer_rejected"), nil
		}
		s.Customer = nil
		s.MachineID = ""
		return e.advance(s, session.StepAskIdentifier, "customer_rejected", promptReaskIdentifier, nil)
	}
	return e.retry(ctx, s, promptConfirmCustomer, customerVars(s.Customer))
}

func (e *Engine) handleLocation(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	if in.text == "" {
		return e.retry(ctx, s, promptLocationRetry, nil)
	}
	s.Schedule.JobLocationKind = jobLocationKind(in.raw)
	loc := location.Resolve(in.raw, e.catalog)
	s.Location = loc
	if loc.IsUnresolved() {
		return e.retry(ctx, s, promptLocationRetry, nil)
	}
	e.logger.Info("location_resolved", "call_id", s.CallID, "branch", loc.Branch, "outlet", loc.Outlet)
	return e.toPhone(s, "location_resolved")
}

func (e *Engine) handlePincode(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	digits := turnDigits(in, false)
	keyedSkip := strings.Contains(in.rawDigits, "#") && in.keypad == ""
	if keyedSkip || (digits == "" && yesNo(in) == answerNo) {
		return e.toPhone(s, "pincode_skipped")
	}
	if len(digits) > 6 {
		digits = digits[len(digits)-6:]
	}
	if len(digits) != 6 || digits[0] == '0' {
		return e.retry(ctx, s, promptAskPincode, nil)
	}
	s.Location.Pincode = digits
	return e.toPhone(s, "pincode_captured")
}

// toPhone offers the number on record, or the caller id, for confirmation,
// and asks for one only when neither is usable.
func (e *Engine) toPhone(s *session.Session, reason string) (Reply, error) {
	if p := e.knownPhone(s); p != "" {
		s.ContactPhone = p
		return e.advance(s, session.StepConfirmPhone, reason, promptConfirmPhone, phoneVars(p))
	}
	return e.advance(s, session.StepAskPhone, reason, promptAskPhone, nil)
}

func (e *Engine) knownPhone(s *session.Session) string {
	if s.Customer != nil {
		if p, ok := speech.NormalizePhone(speech.KeypadDigits(s.Customer.Phone)); ok {
			return p
		}
	}
	if p, ok := speech.NormalizePhone(speech.KeypadDigits(s.CallerNumber)); ok {
		return p
	}
	return ""
}

func (e *Engine) handleConfirmPhone(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	// A caller may skip the yes/no and just say a different number.
	if d := turnDigits(in, true); len(d) >= phoneLen {
		if cands := phoneCandidates(d); len(cands) > 0 {
			s.ContactPhone = cands[0]
			s.Rejections = 0
			return e.advance(s, session.StepAskComplaint, "phone_replaced", promptAskComplaint, nil)
		}
	}
	switch yesNo(in) {
	case answerYes:
		s.Rejections = 0
		return e.advance(s, session.StepAskComplaint, "phone_confirmed", promptAskComplaint, nil)
	case answerNo:
		s.Rejections++
		if s.Rejections > e.cfg.MaxRejections {
			return e.advance(s, session.StepAskComplaint, "phone_kept", promptAskComplaint, nil)
		}
		return e.advance(s, session.StepAskPhone, "phone_rejected", promptAskPhone, nil)
	}
	return e.retry(ctx, s, promptConfirmPhone, phoneVars(s.ContactPhone))
}

func (e *Engine) handlePhone(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	digits := turnDigits(in, true)
	if digits == "" {
		return e.retry(ctx, s, promptPhoneRetry, nil)
	}
	s.DigitBuffer = speech.Accumulate(s.DigitBuffer, digits)
	if speech.NeedsMore(s.DigitBuffer, phoneLen) {
		e.recordTurn(s, "partial")
		return e.ask(s, promptRestDigits, map[string]string{"digits": spaced(s.DigitBuffer)}), nil
	}
	cands := phoneCandidates(s.DigitBuffer)
	if len(cands) == 0 {
		s.DigitBuffer = ""
		return e.retry(ctx, s, promptPhoneRetry, nil)
	}
	s.ContactPhone = cands[0]
	return e.advance(s, session.StepConfirmPhone, "phone_captured", promptConfirmPhone, phoneVars(s.ContactPhone))
}

func (e *Engine) handleComplaint(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	if in.text == "" {
		return e.retry(ctx, s, promptComplaintRetry, nil)
	}
	s.AppendComplaintText(in.raw)
	found := classifier.ClassifyAll(s.ComplaintText, e.catalog, e.cfg.MinScore)
	if len(found) == 0 {
		return e.retry(ctx, s, promptComplaintRetry, nil)
	}
	s.Complaints = found
	e.logger.Info("complaint_classified", "call_id", s.CallID, "complaints", summarize(found, e.catalog.OtherSubCategory))
	return e.afterComplaint(s, "complaint_classified")
}

func (e *Engine) afterComplaint(s *session.Session, reason string) (Reply, error) {
	if opts := e.subOptions(s.Complaints[0]); len(opts) > 0 {
		return e.advance(s, session.StepAskSubComplaint, reason, promptAskSubComplaint, map[string]string{
			"category": s.Complaints[0].Category,
			"options":  strings.Join(opts, ", "),
		})
	}
	return e.advance(s, session.StepConfirmComplaint, reason, promptConfirmComplaint, e.complaintVars(s))
}

// subOptions lists sub-categories to offer when c was classified only to the
// catch-all sub-category.
func (e *Engine) subOptions(c classifier.Complaint) []string {
	if c.SubCategory != e.catalog.OtherSubCategory {
		return nil
	}
	cat, ok := e.catalog.Category(c.Category)
	if !ok {
		return nil
	}
	var out []string
	for i, sc := range cat.SubCategories {
		if i == 3 {
			break
		}
		out = append(out, strings.ToLower(sc.Name))
	}
	return out
}

func (e *Engine) handleSubComplaint(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	if len(s.Complaints) == 0 {
		s.Complaints = []classifier.Complaint{classifier.Fallback(e.catalog)}
	}
	primary := &s.Complaints[0]
	vars := map[string]string{
		"category": primary.Category,
		"options":  strings.Join(e.subOptions(*primary), ", "),
	}
	if in.text == "" {
		return e.retry(ctx, s, promptAskSubComplaint, vars)
	}
	sub := classifier.SubCategory(in.raw, e.catalog, primary.Category)
	if sub == e.catalog.OtherSubCategory {
		return e.retry(ctx, s, promptAskSubComplaint, vars)
	}
	primary.SubCategory = sub
	s.AppendComplaintText(in.raw)
	return e.advance(s, session.StepConfirmComplaint, "sub_complaint_classified", promptConfirmComplaint, e.complaintVars(s))
}

func (e *Engine) handleConfirmComplaint(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	ans := yesNo(in)
	if added := e.specificComplaints(in.raw); len(added) > 0 {
		if ans == answerNo {
			s.ComplaintText = ""
		}
		s.AppendComplaintText(in.raw)
		if all := classifier.ClassifyAll(s.ComplaintText, e.catalog, e.cfg.MinScore); len(all) > 0 {
			s.Complaints = all
		}
		e.recordTurn(s, "amended")
		return e.ask(s, promptConfirmComplaint, e.complaintVars(s)), nil
	}
	switch ans {
	case answerYes:
		s.Rejections = 0
		return e.advance(s, session.StepAskServiceDate, "complaint_confirmed", promptAskDate, nil)
	case answerNo:
		s.Rejections++
		if s.Rejections > e.cfg.MaxRejections {
			return e.advance(s, session.StepAskServiceDate, "complaint_kept", promptAskDate, nil)
		}
		s.ComplaintText = ""
		s.Complaints = nil
		return e.advance(s, session.StepAskComplaint, "complaint_rejected", promptComplaintRestated, nil)
	}
	return e.retry(ctx, s, promptConfirmComplaint, e.complaintVars(s))
}

// specificComplaints classifies text alone, ignoring the catch-all so that
// "no problem" is not read as a new complaint.
func (e *Engine) specificComplaints(text string) []classifier.Complaint {
	var out []classifier.Complaint
	for _, c := range classifier.ClassifyAll(text, e.catalog, e.cfg.MinScore) {
		if c.Category != e.catalog.GeneralCategory {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) handleServiceDate(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	now := e.now()
	d, ok := parseServiceDate(in.raw, now)
	if ok && sameDay(d, now) && newClock(now.Hour(), now.Minute()) >= e.workEnd {
		ok = false
	}
	if !ok {
		return e.retry(ctx, s, promptDateRetry, nil)
	}
	s.Schedule.ServiceDate = d.Format(dateLayout)
	if times := e.workingTimes(parseTimes(in.raw)); len(times) > 0 {
		s.Schedule.FromTime = times[0].String()
		return e.advance(s, session.StepAskTimeTo, "date_and_time", promptAskTimeTo, nil)
	}
	return e.advance(s, session.StepAskTimeFrom, "date_captured", promptAskTimeFrom, nil)
}

func (e *Engine) handleTimeFrom(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	times := e.workingTimes(parseTimes(in.raw))
	if len(times) == 0 {
		return e.retry(ctx, s, promptTimeRetry, nil)
	}
	from := times[0]
	s.Schedule.FromTime = from.String()
	// "10 se 2 baje" gives both ends at once.
	if len(times) > 1 && times[1] > from {
		s.Schedule.ToTime = times[1].String()
		return e.submit(ctx, s)
	}
	return e.advance(s, session.StepAskTimeTo, "time_from_captured", promptAskTimeTo, nil)
}

func (e *Engine) handleTimeTo(ctx context.Context, s *session.Session, in turnInput) (Reply, error) {
	from, _ := parseClock(s.Schedule.FromTime)
	for _, t := range parseTimes(in.raw) {
		if t > from && t <= e.workEnd {
			s.Schedule.ToTime = t.String()
			return e.submit(ctx, s)
		}
	}
	return e.retry(ctx, s, promptTimeRetry, nil)
}

// workingTimes keeps times a visit may start at.
func (e *Engine) workingTimes(in []clockTime) []clockTime {
	var out []clockTime
	for _, t := range in {
		if t >= e.workStart && t < e.workEnd {
			out = append(out, t)
		}
	}
	return out
}

// applyDefault carries a soft step forward with a safe value once its
// retries are spent.
func (e *Engine) applyDefault(ctx context.Context, s *session.Session) (Reply, error) {
	switch s.Step {
	case session.StepAskLocation:
		if !s.Location.IsUnresolved() {
			return e.toPhone(s, "location_default")
		}
		if s.Location.Branch == "" {
			s.Location = location.Unresolved("")
		}
		return e.advance(s, session.StepAskPincode, "location_default", promptAskPincode, nil)
	case session.StepAskPincode:
		s.Location.Pincode = ""
		return e.toPhone(s, "pincode_default")
	case session.StepAskPhone:
		p := e.knownPhone(s)
		if p == "" {
			return e.escalate(s, "no_contact_phone"), nil
		}
		s.ContactPhone = p
		return e.advance(s, session.StepAskComplaint, "phone_default", promptAskComplaint, nil)
	case session.StepConfirmPhone:
		return e.advance(s, session.StepAskComplaint, "phone_default", promptAskComplaint, nil)
	case session.StepAskComplaint:
		s.Complaints = []classifier.Complaint{classifier.Fallback(e.catalog)}
		return e.advance(s, session.StepAskServiceDate, "complaint_default", promptAskDate, nil)
	case session.StepAskSubComplaint:
		return e.advance(s, session.StepConfirmComplaint, "sub_complaint_default", promptConfirmComplaint, e.complaintVars(s))
	case session.StepConfirmComplaint:
		return e.advance(s, session.StepAskServiceDate, "complaint_default", promptAskDate, nil)
	case session.StepAskServiceDate:
		s.Schedule.ServiceDate = e.now().AddDate(0, 0, 1).Format(dateLayout)
		return e.advance(s, session.StepAskTimeFrom, "date_default", promptAskTimeFrom, nil)
	case session.StepAskTimeFrom:
		s.Schedule.FromTime = e.defaultFrom.String()
		return e.advance(s, session.StepAskTimeTo, "time_from_default", promptAskTimeTo, nil)
	case session.StepAskTimeTo:
		from, ok := parseClock(s.Schedule.FromTime)
		if !ok {
			from = e.defaultFrom
		}
		s.Schedule.ToTime = min(from+120, e.workEnd).String()
		return e.submit(ctx, s)
	}
	return e.escalate(s, "retries_exhausted"), nil
}
