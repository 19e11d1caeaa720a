package dialogue

import (
	"slices"
	"strings"

	"github.com/anshu200710/ai-agent-sub000/pkg/session"
	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
)

type answer int

const (
	answerUnclear answer = iota
	answerYes
	answerNo
)

var (
	yesPhrases = normalizedList(
		"yes", "yeah", "yep", "yup", "ya", "haan", "han", "haa", "ha", "hanji", "haanji", "ji", "ji haan",
		"sahi", "sahi hai", "correct", "right", "theek", "thik", "theek hai", "ok", "okay", "bilkul", "confirm",
		"हाँ", "हां", "जी", "सही", "ठीक", "बिल्कुल",
	)
	noPhrases = normalizedList(
		"no", "nope", "nahi", "nahin", "nai", "na", "galat", "wrong", "incorrect", "mat", "not",
		"नहीं", "नही", "ना", "गलत",
	)
	repeatPhrases = normalizedList(
		"repeat", "again", "say again", "dobara", "dubara", "phir se", "fir se", "kya bola", "pardon",
		"दोबारा", "फिर से", "क्या बोला",
	)
	// repeatFiller may surround a repeat request without changing it.
	repeatFiller = normalizedList(
		"please", "plz", "sir", "madam", "mam", "ji", "can", "could", "you", "say", "it", "that", "once",
		"more", "time", "one", "ek", "baar", "zara", "jara", "kripya", "bhai", "sahab", "aap", "sorry",
		"bolo", "boliye", "bol", "batao", "bataiye", "kahiye", "sunaiye", "बोलिए", "बोलो", "बताइए",
		"कृपया", "ज़रा", "जरा", "एक", "बार",
	)
	// tagWords end a statement as a question tag ("sahi hai na") rather than
	// deny it.
	tagWords     = normalizedList("na", "naa", "ना")
	agentPhrases = normalizedList(
		"agent", "operator", "customer care", "human", "real person", "representative", "executive",
		"insaan", "kisi se baat", "aadmi se baat", "एजेंट", "ऑपरेटर", "कस्टमर केयर",
	)
	machinePhrases = normalizedList("machine", "machine number", "chassis", "मशीन")
	mobilePhrases  = normalizedList("mobile", "phone", "mobile number", "registered", "मोबाइल", "फोन")
	workshopWords  = normalizedList("workshop", "service center", "service centre", "branch", "dealer", "वर्कशॉप", "सर्विस सेंटर")
)

func normalizedList(in ...string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := speech.NormalizeTranscript(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// containsPhrase reports whether any phrase occurs on word boundaries in norm.
func containsPhrase(norm string, phrases []string) bool {
	if norm == "" {
		return false
	}
	padded := " " + norm + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// yesNo reads a confirmation from keypad or speech. Negatives win when both
// appear: "sahi nahi hai" means it is not correct.
func yesNo(in turnInput) answer {
	switch in.keypad {
	case "1":
		return answerYes
	case "2":
		return answerNo
	}
	text := stripTag(in.text)
	if containsPhrase(text, noPhrases) {
		return answerNo
	}
	if containsPhrase(text, yesPhrases) {
		return answerYes
	}
	return answerUnclear
}

// stripTag drops a trailing question tag when something precedes it. A bare
// "na" is still a no.
func stripTag(norm string) string {
	fields := strings.Fields(norm)
	if len(fields) < 2 || !slices.Contains(tagWords, fields[len(fields)-1]) {
		return norm
	}
	return strings.Join(fields[:len(fields)-1], " ")
}

// wantsRepeat fires only when the whole utterance, filler aside, is a repeat
// request, so "brake fail again" stays a complaint.
func wantsRepeat(in turnInput) bool {
	if strings.Trim(in.rawDigits, " ") == "*" {
		return true
	}
	var kept []string
	for _, tok := range strings.Fields(in.text) {
		if !slices.Contains(repeatFiller, tok) {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return false
	}
	return slices.Contains(repeatPhrases, strings.Join(kept, " "))
}

func wantsAgent(in turnInput) bool {
	return containsPhrase(in.text, agentPhrases)
}

func jobLocationKind(text string) string {
	if containsPhrase(speech.NormalizeTranscript(text), workshopWords) {
		return session.JobWorkshop
	}
	return session.JobSite
}
