// Package location resolves a spoken place name to a service center.
package location

import (
	"strings"
	"unicode/utf8"

	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
)

// UnresolvedBranch marks a location that matched no service center.
const UnresolvedBranch = "UNRESOLVED"

// minPrefix is the shortest token allowed to prefix-match a center name.
const minPrefix = 3

// fillerWords are place-talk words skipped before prefix scoring, on top of
// the speech stop words.
var fillerWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"jo", "ja", "jaa", "jana", "jaana", "raha", "rahe", "rahi", "the", "tha", "thi", "se", "me", "mein",
		"main", "par", "pe", "paas", "pass", "gaon", "gav", "gaav", "village", "near", "wala", "wali", "wale",
		"hum", "ham", "hoon", "hu", "bol", "side", "area", "district", "zila", "jila", "city", "shahar",
		"जो", "जा", "रहे", "था", "से", "में", "पर", "पास", "गांव", "गाँव", "वाला", "जिला", "शहर",
	} {
		fillerWords[speech.NormalizeTranscript(w)] = struct{}{}
	}
}

func isFiller(tok string) bool {
	if _, ok := fillerWords[tok]; ok {
		return true
	}
	return speech.IsStopWord(tok)
}

// Location is where the engineer should go.
type Location struct {
	Branch   string  `json:"branch"`
	Outlet   string  `json:"outlet"`
	CityCode string  `json:"city_code"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address"`
	Pincode  string  `json:"pincode,omitempty"`
	Resolved bool    `json:"resolved"`
}

// Match finds the service center text refers to. An exact name anywhere in
// the text beats every prefix match; otherwise the token covering the largest
// share of a center name wins, earlier directory entries winning ties. Filler
// and tokens shorter than minPrefix never prefix-match.
func Match(text string, cat *taxonomy.Catalog) (*taxonomy.ServiceCenter, bool) {
	norm := speech.NormalizeTranscript(text)
	if norm == "" || cat == nil || len(cat.Centers) == 0 {
		return nil, false
	}
	padded := " " + norm + " "
	tokens := strings.Fields(norm)

	for i := range cat.Centers {
		for _, name := range cat.Centers[i].MatchNames() {
			if strings.Contains(padded, " "+name+" ") {
				return &cat.Centers[i], true
			}
		}
	}

	best := -1
	bestScore := 0.0
	for _, tok := range tokens {
		tl := utf8.RuneCountInString(tok)
		if tl < minPrefix || isFiller(tok) {
			continue
		}
		for i := range cat.Centers {
			for _, name := range cat.Centers[i].MatchNames() {
				compact := strings.ReplaceAll(name, " ", "")
				if !strings.HasPrefix(compact, tok) {
					continue
				}
				score := float64(tl) / float64(utf8.RuneCountInString(compact))
				if score > bestScore {
					best, bestScore = i, score
				}
			}
		}
	}
	if best < 0 {
		return nil, false
	}
	return &cat.Centers[best], true
}

// Resolve turns text into a Location, falling back to Unresolved.
func Resolve(text string, cat *taxonomy.Catalog) Location {
	sc, ok := Match(text, cat)
	if !ok {
		return Unresolved(text)
	}
	return FromCenter(sc, text)
}

// FromCenter copies a directory entry. The caller's words are kept as the
// address when they say more than the bare city name.
func FromCenter(sc *taxonomy.ServiceCenter, spoken string) Location {
	addr := sc.Address
	if s := strings.TrimSpace(spoken); s != "" && !strings.EqualFold(s, sc.Name) {
		addr = s + ", " + sc.Name
	}
	return Location{
		Branch:   sc.Branch,
		Outlet:   sc.Outlet,
		CityCode: sc.CityCode,
		Lat:      sc.Lat,
		Lng:      sc.Lng,
		Address:  addr,
		Resolved: true,
	}
}

// Unresolved keeps the caller's text verbatim as a free-text address.
func Unresolved(text string) Location {
	return Location{
		Branch:   UnresolvedBranch,
		Outlet:   UnresolvedBranch,
		CityCode: UnresolvedBranch,
		Address:  strings.TrimSpace(text),
	}
}

// IsUnresolved reports whether l carries the unresolved sentinel.
func (l Location) IsUnresolved() bool {
	return !l.Resolved || l.Branch == UnresolvedBranch
}
