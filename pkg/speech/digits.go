package speech

import (
	"strings"
	"unicode"
)

// Verb phrases that contain a digit homophone but mean an action. "kar do"
// is "go ahead and do it", not the digit 2; "ek minute" is "one moment".
var idiomPhrases = []string{
	"submit kar do", "save kar do", "note kar do", "kar do na", "kar dijiye", "kar dena",
	"kar do", "kardo", "karwa do", "de do", "dedo", "bata do", "batado", "likh do", "likhdo",
	"ek minute", "ek min", "ek second", "ek sec", "ek baar", "ek bar",
	"one moment", "one minute", "one second", "hold on", "go ahead",
	"कर दो", "कर दीजिए", "कर दीजिये", "दे दो", "बता दो", "लिख दो", "एक मिनट", "एक सेकंड", "एक बार",
}

var stopWords = []string{
	// English
	"my", "number", "no", "is", "it", "its", "the", "a", "an", "please", "plz", "and", "this", "that",
	"ok", "okay", "yes", "yeah", "sir", "madam", "mam", "hello", "hi", "uh", "um", "umm", "hmm", "ah", "er",
	"machine", "mobile", "phone", "contact", "serial", "chassis", "id", "code", "digit", "digits",
	"last", "first", "then", "so", "like", "actually", "wait", "sorry", "i", "me", "what", "your", "you",
	"am", "of", "for", "to", "too", "in", "on", "at", "tell", "say", "rest", "remaining", "submit", "save",
	// Hindi, Latin script
	"mera", "meri", "mere", "hamara", "hamari", "nambar", "namber", "nmbr", "hai", "he", "hain", "h",
	"ji", "jee", "haan", "han", "ha", "ki", "ka", "ke", "ko", "toh", "aur", "bhi", "yeh", "ye", "woh",
	"wo", "theek", "thik", "accha", "acha", "bolo", "boliye", "likho", "likhiye", "kya", "sahab", "bhai",
	"aap", "apka", "aapka",
	// Hindi, Devanagari
	"मेरा", "मेरी", "नंबर", "नम्बर", "है", "हैं", "जी", "हाँ", "हां", "और", "का", "की", "के", "को", "तो",
	"यह", "ये", "मशीन", "मोबाइल", "फोन", "फ़ोन",
}

var digitWordTable = map[string]string{
	"zero": "0", "oh": "0", "o": "0", "shunya": "0", "shunye": "0", "sunya": "0", "sifar": "0",
	"शून्य": "0", "जीरो": "0", "ज़ीरो": "0",
	"one": "1", "ek": "1", "aek": "1", "एक": "1",
	"two": "2", "do": "2", "doo": "2", "दो": "2",
	"three": "3", "tree": "3", "teen": "3", "tin": "3", "तीन": "3",
	"four": "4", "char": "4", "chaar": "4", "चार": "4",
	"five": "5", "paanch": "5", "panch": "5", "paach": "5", "पांच": "5", "पाँच": "5",
	"six": "6", "chhe": "6", "chhah": "6", "chah": "6", "che": "6", "chhai": "6", "छह": "6", "छः": "6", "छे": "6", "छै": "6",
	"seven": "7", "saat": "7", "sat": "7", "सात": "7",
	"eight": "8", "aath": "8", "ath": "8", "आठ": "8",
	"nine": "9", "nau": "9", "naw": "9", "नौ": "9",
}

var multiplierTable = map[string]int{
	"double": 2, "dabal": 2, "dubal": 2, "डबल": 2,
	"triple": 3, "tripal": 3, "ट्रिपल": 3,
}

var (
	idioms      []string
	stopSet     = map[string]struct{}{}
	digitWords  = map[string]string{}
	multipliers = map[string]int{}
)

// IsStopWord reports whether a normalized token is filler around spoken
// numbers and names.
func IsStopWord(tok string) bool {
	_, ok := stopSet[tok]
	return ok
}

func init() {
	for _, p := range idiomPhrases {
		if n := NormalizeTranscript(p); n != "" {
			idioms = append(idioms, n)
		}
	}
	for _, w := range stopWords {
		stopSet[NormalizeTranscript(w)] = struct{}{}
	}
	for w, d := range digitWordTable {
		digitWords[NormalizeTranscript(w)] = d
	}
	for w, m := range multiplierTable {
		multipliers[NormalizeTranscript(w)] = m
	}
}

// StripIdioms removes digit-homophone verb phrases from normalized text.
func StripIdioms(text string) string {
	padded := " " + text + " "
	for _, idiom := range idioms {
		needle := " " + idiom + " "
		for strings.Contains(padded, needle) {
			padded = strings.ReplaceAll(padded, needle, " ")
		}
	}
	return strings.Join(strings.Fields(padded), " ")
}

// ExtractDigits converts an utterance of mixed digits, number words and
// filler into a clean digit string. Unknown words are treated as noise.
func ExtractDigits(text string) string {
	text = StripIdioms(NormalizeTranscript(text))
	if text == "" {
		return ""
	}
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '/' || r == ':'
	})

	var b strings.Builder
	repeat := 1
	for _, tok := range tokens {
		if _, stop := stopSet[tok]; stop {
			continue
		}
		if m, ok := multipliers[tok]; ok {
			repeat = m
			continue
		}
		d := tokenDigits(tok)
		if d == "" {
			// A multiplier only binds to the token right after it.
			repeat = 1
			continue
		}
		if repeat > 1 && len(d) == 1 {
			d = strings.Repeat(d, repeat)
		}
		repeat = 1
		b.WriteString(d)
	}
	return b.String()
}

// ExtractPhoneDigits is ExtractDigits with a single surviving digit treated
// as noise rather than the start of a phone number.
func ExtractPhoneDigits(text string) string {
	d := ExtractDigits(text)
	if len(d) < 2 {
		return ""
	}
	return d
}

// KeypadDigits keeps the 0-9 characters of a DTMF string.
func KeypadDigits(in string) string {
	var b strings.Builder
	for _, r := range in {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tokenDigits(tok string) string {
	if d, ok := digitWords[tok]; ok {
		return d
	}
	var b strings.Builder
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '०' && r <= '९':
			b.WriteRune('0' + (r - '०'))
		}
	}
	return b.String()
}

// Accumulate appends one turn's digits to the running buffer.
func Accumulate(buffer, digits string) string {
	return buffer + digits
}

// NeedsMore reports whether the buffer is still shorter than min.
func NeedsMore(buffer string, min int) bool {
	return len(buffer) < min
}

// NormalizePhone strips a +91 or trunk 0 prefix and checks for a ten digit
// Indian mobile number.
func NormalizePhone(digits string) (string, bool) {
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	if digits[0] < '6' || digits[0] > '9' {
		return "", false
	}
	return digits, true
}
