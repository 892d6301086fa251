package intent

import (
	"strings"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// Keyword lexicons for the deterministic fast path. Token sets are matched
// against whole words; phrase lists by substring.

var greetingPhrases = []string{"good morning", "good afternoon", "good evening"}

var greetingTokens = map[lang.Language]map[string]struct{}{
	lang.English: setOf("hello", "hi", "hey", "namaste", "namaskar"),
	lang.Hindi:   setOf("hello", "hi", "hey", "namaste", "namaskar", "नमस्ते", "नमस्कार", "प्रणाम"),
	lang.Nepali:  setOf("hello", "hi", "hey", "namaste", "namaskar", "नमस्ते", "नमस्कार"),
	lang.HindiEnglishMixed: setOf(
		"hello", "hi", "hey", "namaste", "namaskar", "नमस्ते", "नमस्कार",
	),
}

// politenessTokens may accompany a greeting without disqualifying it
// ("hello ji", "namaste sir").
var politenessTokens = setOf("ji", "sir", "madam", "sahab", "bhai", "dada", "there")

var helpTokens = map[lang.Language]map[string]struct{}{
	lang.English: setOf("help", "assist", "assistance", "support"),
	lang.Hindi:   setOf("help", "madad", "sahayata", "sahayta", "मदद", "सहायता"),
	lang.Nepali:  setOf("help", "maddat", "madaad", "sahayata", "sahayog", "मद्दत", "सहयोग", "सहायता"),
	lang.HindiEnglishMixed: setOf(
		"help", "madad", "sahayata", "sahayta", "maddat", "मदद", "सहायता",
	),
}

// The remaining fast-path lexicons are language-independent: scheme names,
// status vocabulary, and procedural words arrive romanized or in English in
// all four languages.
var (
	applyTokens     = setOf("apply", "gratia", "exgratia", "ex-gratia", "आवेदन", "मुआवजा", "क्षतिपूर्ति")
	statusTokens    = setOf("status", "track", "स्टेटस", "स्थिति")
	normsTokens     = setOf("norms", "amount", "money", "compensation", "rules", "eligibility", "राशि", "नियम")
	procedureTokens = setOf("process", "procedure", "steps", "documents", "दस्तावेज", "प्रक्रिया", "कागजात")
)

func setOf(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r >= 0x0900 && r <= 0x097F:
			return false
		case r == '-':
			return false
		}
		return true
	})
}

// RuleClassify is the deterministic fast path. The boolean reports whether
// the rules produced a confident answer; when false the caller proceeds to
// the inference gateway.
//
// Greeting-vs-help ordering is deliberate and authoritative: a message made
// up solely of greeting tokens is a greeting, never help, no matter what the
// inference model would say. A greeting token buried in a longer request
// ("hello, I need help") does not short-circuit; the help tokens win.
func RuleClassify(text string, language lang.Language) (Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Other, true
	}
	tokens := tokenize(lower)

	if isPureGreeting(lower, tokens, language) {
		return Greeting, true
	}

	if anyToken(tokens, lookupLexicon(helpTokens, language)) {
		return Help, true
	}
	if anyToken(tokens, applyTokens) {
		return ExgratiaApply, true
	}
	if anyToken(tokens, statusTokens) || strings.Contains(lower, "24exg") {
		return StatusCheck, true
	}
	if anyToken(tokens, normsTokens) {
		return ExgratiaNorms, true
	}
	if anyToken(tokens, procedureTokens) {
		return ApplicationProcedure, true
	}

	return Other, false
}

// isPureGreeting reports whether the message is greeting tokens (plus
// optional politeness words) and nothing else.
func isPureGreeting(lower string, tokens []string, language lang.Language) bool {
	greetings := lookupLexicon(greetingTokens, language)

	for _, p := range greetingPhrases {
		if lower == p {
			return true
		}
	}

	if len(tokens) == 0 || len(tokens) > 4 {
		return false
	}
	sawGreeting := false
	for _, tok := range tokens {
		if _, ok := greetings[tok]; ok {
			sawGreeting = true
			continue
		}
		if _, ok := politenessTokens[tok]; ok {
			continue
		}
		return false
	}
	return sawGreeting
}

// lookupLexicon falls back to the English lexicon for the unset language.
func lookupLexicon(m map[lang.Language]map[string]struct{}, language lang.Language) map[string]struct{} {
	if s, ok := m[language]; ok {
		return s
	}
	return m[lang.English]
}

func anyToken(tokens []string, set map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}
