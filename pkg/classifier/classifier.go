// Package classifier scores complaint transcripts against the taxonomy's
// weighted keyword lists.
package classifier

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
)

// DefaultMinScore is the lowest score a category needs to be reported in
// multi-complaint mode.
const DefaultMinScore = 4

// Complaint is one classified problem.
type Complaint struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Score       int    `json:"score"`
}

// Classify returns the single best category for text. ok is false when no
// keyword matched at all.
func Classify(text string, cat *taxonomy.Catalog) (Complaint, bool) {
	norm := speech.NormalizeTranscript(text)
	if norm == "" || cat == nil {
		return Complaint{}, false
	}
	best := -1
	bestScore := 0
	for i, c := range cat.Categories {
		// Strict > keeps the earlier, higher-priority category on ties.
		if s := Score(norm, c.Keywords); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return Complaint{}, false
	}
	c := cat.Categories[best]
	return Complaint{
		Category:    c.Name,
		SubCategory: subCategory(norm, c, cat.OtherSubCategory),
		Score:       bestScore,
	}, true
}

// ClassifyAll returns every category scoring at least minScore, highest
// first. The general catch-all is dropped whenever a specific category
// qualified.
func ClassifyAll(text string, cat *taxonomy.Catalog, minScore int) []Complaint {
	norm := speech.NormalizeTranscript(text)
	if norm == "" || cat == nil {
		return nil
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	var (
		out     []Complaint
		general *Complaint
	)
	for _, c := range cat.Categories {
		s := Score(norm, c.Keywords)
		if s < minScore {
			continue
		}
		entry := Complaint{
			Category:    c.Name,
			SubCategory: subCategory(norm, c, cat.OtherSubCategory),
			Score:       s,
		}
		if c.Name == cat.GeneralCategory {
			general = &entry
			continue
		}
		out = append(out, entry)
	}
	if len(out) == 0 && general != nil {
		return []Complaint{*general}
	}
	// Categories arrive in priority order, so a stable sort settles ties the
	// same way every time.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// SubCategory scores text against one category's sub-keywords.
func SubCategory(text string, cat *taxonomy.Catalog, category string) string {
	if cat == nil {
		return ""
	}
	c, ok := cat.Category(category)
	if !ok {
		return cat.OtherSubCategory
	}
	return subCategory(speech.NormalizeTranscript(text), c, cat.OtherSubCategory)
}

// Fallback is the generic entry used when nothing could be classified.
func Fallback(cat *taxonomy.Catalog) Complaint {
	return Complaint{Category: cat.GeneralCategory, SubCategory: cat.OtherSubCategory}
}

func subCategory(norm string, c taxonomy.Category, other string) string {
	best := other
	bestScore := 0
	for _, sc := range c.SubCategories {
		if s := Score(norm, sc.Keywords); s > bestScore {
			best, bestScore = sc.Name, s
		}
	}
	return best
}

// Score sums the rune length of every keyword found in norm, doubling those
// that sit on whole-word boundaries. Both sides must already be normalized.
func Score(norm string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		found, whole := find(norm, kw)
		if !found {
			continue
		}
		n := utf8.RuneCountInString(kw)
		if whole {
			n *= 2
		}
		total += n
	}
	return total
}

func find(text, kw string) (found, whole bool) {
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return found, false
		}
		start := from + i
		end := start + len(kw)
		found = true
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true, true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return found, false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}
