package dialogue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
)

// maxBookingDays bounds how far ahead a visit can be booked.
const maxBookingDays = 30

// clockTime is minutes since midnight.
type clockTime int

func newClock(h, m int) clockTime { return clockTime(h*60 + m) }

func (c clockTime) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

func parseClock(s string) (clockTime, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, false
	}
	return newClock(hh, mm), true
}

var (
	todayWords    = normalizedList("today", "aaj", "abhi", "आज")
	tomorrowWords = normalizedList("tomorrow", "kal", "कल")
	dayAfterWords = normalizedList("day after tomorrow", "parso", "parson", "parsoon", "परसों", "परसो")
	dateSuffixes  = normalizedList("st", "nd", "rd", "th", "tarikh", "tareekh", "tarik", "date", "तारीख")

	weekdayWords = map[time.Weekday][]string{
		time.Monday:    normalizedList("monday", "somvar", "somwar", "सोमवार"),
		time.Tuesday:   normalizedList("tuesday", "mangalvar", "mangalwar", "mangal", "मंगलवार"),
		time.Wednesday: normalizedList("wednesday", "budhvar", "budhwar", "budh", "बुधवार"),
		time.Thursday:  normalizedList("thursday", "guruvar", "guruwar", "brihaspativar", "गुरुवार"),
		time.Friday:    normalizedList("friday", "shukravar", "shukrawar", "shukra", "शुक्रवार"),
		time.Saturday:  normalizedList("saturday", "shanivar", "shaniwar", "shani", "शनिवार"),
		time.Sunday:    normalizedList("sunday", "ravivar", "raviwar", "itvar", "itwar", "रविवार"),
	}
)

// parseServiceDate resolves a spoken day relative to now. Past days and days
// beyond the booking window are rejected.
func parseServiceDate(text string, now time.Time) (time.Time, bool) {
	norm := speech.NormalizeTranscript(text)
	if norm == "" {
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case containsPhrase(norm, dayAfterWords):
		return today.AddDate(0, 0, 2), true
	case containsPhrase(norm, tomorrowWords):
		return today.AddDate(0, 0, 1), true
	case containsPhrase(norm, todayWords):
		return today, true
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if containsPhrase(norm, weekdayWords[wd]) {
			ahead := (int(wd) - int(today.Weekday()) + 7) % 7
			return today.AddDate(0, 0, ahead), true
		}
	}
	if day, ok := dayOfMonth(norm); ok {
		d := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
		if d.Day() != day {
			return time.Time{}, false
		}
		if d.Before(today) {
			d = time.Date(today.Year(), today.Month()+1, day, 0, 0, 0, 0, today.Location())
			if d.Day() != day {
				return time.Time{}, false
			}
		}
		if d.Sub(today) > maxBookingDays*24*time.Hour {
			return time.Time{}, false
		}
		return d, true
	}
	return time.Time{}, false
}

// dayOfMonth accepts "15", "15th", "15 tarikh". A bare number only counts
// when it is the whole utterance, so "10 baje" is not read as a date.
func dayOfMonth(norm string) (int, bool) {
	tokens := strings.Fields(norm)
	for i, tok := range tokens {
		num, suffix := splitNumber(tok)
		if num == "" {
			continue
		}
		hasSuffix := suffix != "" && containsPhrase(suffix, dateSuffixes)
		if !hasSuffix && i+1 < len(tokens) && containsPhrase(tokens[i+1], dateSuffixes) {
			hasSuffix = true
		}
		if !hasSuffix && len(tokens) != 1 {
			continue
		}
		d, err := strconv.Atoi(num)
		if err != nil || d < 1 || d > 31 {
			continue
		}
		return d, true
	}
	return 0, false
}

// splitNumber separates a leading run of digits (ASCII or Devanagari) from
// the rest of the token: "15th" -> "15", "th".
func splitNumber(tok string) (string, string) {
	end := 0
	for i, r := range tok {
		if !unicode.IsDigit(r) {
			end = i
			break
		}
		end = i + len(string(r))
	}
	if end == 0 {
		return "", tok
	}
	return speech.ExtractDigits(tok[:end]), tok[end:]
}

type dayPart int

const (
	partNone dayPart = iota
	partAM
	partPM
	partMorning
	partAfternoon
	partEvening
)

var (
	dayPartWords = map[dayPart][]string{
		partMorning:   normalizedList("subah", "subha", "morning", "सुबह"),
		partAfternoon: normalizedList("dopahar", "dopehar", "afternoon", "noon", "दोपहर"),
		partEvening:   normalizedList("shaam", "sham", "evening", "raat", "night", "शाम", "रात"),
	}
	timeMarkers = normalizedList("baje", "bje", "bajey", "बजे", "am", "pm", "oclock", "clock", "o clock", "ghante")
	hourWords   = map[string]int{}
)

func init() {
	for w, h := range map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
		"nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
		"ek": 1, "do": 2, "teen": 3, "char": 4, "chaar": 4, "paanch": 5, "panch": 5, "chhe": 6, "che": 6,
		"saat": 7, "aath": 8, "nau": 9, "das": 10, "dus": 10, "gyarah": 11, "gyara": 11, "barah": 12, "bara": 12,
		"एक": 1, "दो": 2, "तीन": 3, "चार": 4, "पांच": 5, "छह": 6, "सात": 7, "आठ": 8, "नौ": 9, "दस": 10,
		"ग्यारह": 11, "बारह": 12,
	} {
		hourWords[speech.NormalizeTranscript(w)] = h
	}
}

// parseTimes finds every clock time in an utterance, in spoken order. Bare
// numbers count only when a time marker or day part appears somewhere in the
// utterance, or the utterance is a single number.
func parseTimes(text string) []clockTime {
	norm := speech.StripIdioms(speech.NormalizeTranscript(text))
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return nil
	}
	hasMarker := containsPhrase(norm, timeMarkers) || strings.Contains(norm, ":")
	global := partNone
	for _, tok := range tokens {
		if p := tokenDayPart(tok); p != partNone {
			global = p
			break
		}
	}
	if !hasMarker && global == partNone && len(tokens) != 1 {
		return nil
	}

	var out []clockTime
	recent := partNone
	for i, tok := range tokens {
		if p := tokenDayPart(tok); p != partNone {
			recent = p
			continue
		}
		if i+1 < len(tokens) && containsPhrase(tokens[i+1], dateSuffixes) {
			continue
		}
		h, m, part, ok := tokenClock(tok)
		if !ok {
			continue
		}
		if part == partNone {
			part = recent
		}
		if i+1 < len(tokens) {
			switch tokens[i+1] {
			case "am":
				part = partAM
			case "pm":
				part = partPM
			}
		}
		if part == partNone {
			part = global
		}
		h = applyDayPart(h, part)
		if h < 0 || h > 23 {
			continue
		}
		out = append(out, newClock(h, m))
	}
	return out
}

func tokenDayPart(tok string) dayPart {
	for p, words := range dayPartWords {
		for _, w := range words {
			if tok == w {
				return p
			}
		}
	}
	return partNone
}

// tokenClock reads "10", "10:30", "10am", "2pm" or an hour word.
func tokenClock(tok string) (int, int, dayPart, bool) {
	if h, ok := hourWords[tok]; ok {
		return h, 0, partNone, true
	}
	part := partNone
	switch {
	case strings.HasSuffix(tok, "am"):
		part, tok = partAM, strings.TrimSuffix(tok, "am")
	case strings.HasSuffix(tok, "pm"):
		part, tok = partPM, strings.TrimSuffix(tok, "pm")
	}
	hs, ms, hasMin := strings.Cut(tok, ":")
	digits, rest := splitNumber(hs)
	if digits == "" || rest != "" {
		return 0, 0, partNone, false
	}
	h, err := strconv.Atoi(digits)
	if err != nil || h > 23 {
		return 0, 0, partNone, false
	}
	m := 0
	if hasMin {
		m, err = strconv.Atoi(speech.ExtractDigits(ms))
		if err != nil || m > 59 {
			return 0, 0, partNone, false
		}
	}
	return h, m, part, true
}

// applyDayPart converts a spoken hour to 24h. Without a qualifier, 1 to 7 are
// taken as afternoon hours since nobody books a 3 am visit.
func applyDayPart(h int, p dayPart) int {
	switch p {
	case partAM, partMorning:
		if h == 12 {
			return 0
		}
		return h
	case partPM, partAfternoon, partEvening:
		if h < 12 {
			return h + 12
		}
		return h
	default:
		if h >= 1 && h <= 7 {
			return h + 12
		}
		return h
	}
}
