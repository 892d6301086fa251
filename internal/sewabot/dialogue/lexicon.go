package dialogue

import (
	"strings"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// Cancel phrases abort an active workflow. Matching is verbatim against
// the whole trimmed, lowercased message: a sentence that merely contains
// "cancel" somewhere is an answer, not a cancel.
var cancelPhrases = map[string]struct{}{
	"❌ cancel":   {},
	"cancel":     {},
	"band karo":  {},
	"रद्द करें":  {},
	"रद्द":       {},
	"बंद करो":    {},
	"stop":       {},
	"quit":       {},
	"exit":       {},
	"back":       {},
	"home":       {},
	"main menu":  {},
	"मुख्य मेनू": {},
	"घर जाओ":     {},
	"वापस जाओ":   {},
	"बंद":        {},
	"छोड़ो":      {},
	"छोड़ दो":    {},
	"रद्द गर्नुहोस्": {},
}

// IsCancel reports whether the message is a cancel command.
func IsCancel(text string) bool {
	_, ok := cancelPhrases[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// ConfirmAnswer is the outcome of reading a message at the confirmation
// step.
type ConfirmAnswer int

const (
	ConfirmUnknown ConfirmAnswer = iota
	ConfirmYes
	ConfirmNo
)

var affirmativeWords = map[string]struct{}{
	"confirm": {}, "yes": {}, "submit": {}, "ok": {}, "okay": {},
	"haan": {}, "han": {}, "ha": {}, "ho": {}, "huncha": {}, "hunchha": {},
	"thik": {}, "theek": {}, "sahi": {},
	"हां": {}, "हाँ": {}, "हो": {}, "ठीक": {}, "सही": {},
}

var negativeWords = map[string]struct{}{
	"no": {}, "nahi": {}, "nahin": {}, "nope": {}, "hoina": {},
	"galat": {}, "change": {}, "edit": {},
	"नहीं": {}, "ना": {}, "होइन": {}, "गलत": {},
}

// Confirmation reads a message sent while the application summary is on
// screen. Negative words win when both appear ("no, don't confirm").
func Confirmation(text string) ConfirmAnswer {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	answer := ConfirmUnknown
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?")
		if _, ok := negativeWords[tok]; ok {
			return ConfirmNo
		}
		if _, ok := affirmativeWords[tok]; ok {
			answer = ConfirmYes
		}
	}
	return answer
}

// Explicit language-change commands, honored only at the main menu. These
// bypass the word-count threshold the passive re-detection path requires.
var languageChangePhrases = map[string]lang.Language{
	"switch to english": lang.English,
	"speak english":     lang.English,
	"english please":    lang.English,
	"in english":        lang.English,
	"english me bolo":   lang.English,
	"english ma bola":   lang.English,
	"अंग्रेजी में बोलो": lang.English,

	"switch to hindi":   lang.Hindi,
	"speak hindi":       lang.Hindi,
	"hindi me bolo":     lang.Hindi,
	"hindi mein bolo":   lang.Hindi,
	"hindi me baat karo": lang.Hindi,
	"हिंदी में बोलो":    lang.Hindi,

	"switch to nepali":        lang.Nepali,
	"speak nepali":            lang.Nepali,
	"nepali ma kura garnuhos": lang.Nepali,
	"nepali ma bola":          lang.Nepali,
	"नेपाली मा कुरा गर्नुहोस्": lang.Nepali,
	"नेपालीमा कुरा गर्नुहोस्":  lang.Nepali,

	"hinglish me bolo":    lang.HindiEnglishMixed,
	"switch to hinglish":  lang.HindiEnglishMixed,
	"mix me baat karo":    lang.HindiEnglishMixed,
}

// LanguageChange reports whether the message is an explicit language
// switch command, and the requested language.
func LanguageChange(text string) (lang.Language, bool) {
	l, ok := languageChangePhrases[strings.ToLower(strings.TrimSpace(text))]
	return l, ok
}
