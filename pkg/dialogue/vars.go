package dialogue

import (
	"strings"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/classifier"
	"github.com/anshu200710/ai-agent-sub000/pkg/session"
)

const dateLayout = "2006-01-02"

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// spaced reads digits back one at a time: "330" -> "3 3 0".
func spaced(digits string) string {
	return strings.Join(strings.Split(digits, ""), " ")
}

func toSessionCustomer(c *backend.Customer) *session.Customer {
	if c == nil {
		return nil
	}
	return &session.Customer{
		Name:                c.Name,
		City:                c.City,
		Model:               c.Model,
		Phone:               c.Phone,
		BusinessPartnerCode: c.BusinessPartnerCode,
		InstallDate:         c.InstallDate,
		MachineID:           c.MachineID,
	}
}

func customerVars(c *session.Customer) map[string]string {
	v := map[string]string{"name": "the registered owner", "city": "your city", "model": "registered"}
	if c == nil {
		return v
	}
	if c.Name != "" {
		v["name"] = c.Name
	}
	if c.City != "" {
		v["city"] = c.City
	}
	if c.Model != "" {
		v["model"] = c.Model
	}
	return v
}

func phoneVars(phone string) map[string]string {
	last4 := phone
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return map[string]string{"last4": spaced(last4)}
}

func (e *Engine) complaintVars(s *session.Session) map[string]string {
	return map[string]string{"summary": summarize(s.Complaints, e.catalog.OtherSubCategory)}
}

// summarize renders complaints for read-back: "Engine, start problem and
// Braking, weak braking".
func summarize(cs []classifier.Complaint, other string) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		p := c.Category
		if c.SubCategory != "" && c.SubCategory != other {
			p += ", " + strings.ToLower(c.SubCategory)
		}
		parts = append(parts, p)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], "; ") + " and " + parts[len(parts)-1]
}
