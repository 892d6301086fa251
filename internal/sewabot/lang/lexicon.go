package lang

import "strings"

// The marker lists below drive both the deterministic fallback scorer and
// the code-mixed check. Hindi and Nepali share vocabulary heavily; the
// per-language lists hold only markers exclusive to one language, while
// ambiguous words live in sharedMarkers at half weight.

// englishPhrases are matched by substring since several are multi-word.
var englishPhrases = []string{
	"can you", "help me", "i want", "how to", "what is", "apply for",
	"application", "please", "thank you", "hello", "where is", "check my",
	"my house", "damaged", "assistance", "tell me", "about", "compensation",
	"status check", "flood", "landslide", "earthquake", "fire", "storm",
}

// hindiDevanagari holds Devanagari markers exclusive to Hindi (verb endings,
// pronouns, question words).
var hindiDevanagari = []string{
	"मैं", "आप", "मेरा", "करना", "है", "हूं", "नहीं", "हां", "जी",
	"बताओ", "चाहिए", "अपना", "यह", "वह", "कैसे", "क्या", "कहां", "कब",
}

// hindiRomanized holds romanized markers exclusive to Hindi.
var hindiRomanized = []string{
	"mujhe", "mereko", "karna", "hain", "hai", "hun", "kaise", "kya",
	"kahan", "kab", "chahiye", "batao", "btao", "dijiye", "krna", "krdo",
	"kro", "baare", "mein", "karo", "nahin", "nahi", "haan", "han", "ji",
	"aap", "tum", "tumhara", "hamara", "wala", "wale", "wali", "kitna", "kitni",
}

// nepaliDevanagari holds Devanagari markers exclusive to Nepali.
var nepaliDevanagari = []string{
	"छ", "हुन्छ", "गर्छ", "सक्छु", "गर्नुहोस्", "छैन", "भन्नुहोस्",
	"चाहिन्छ", "पर्छ", "गर्न", "रुपैयाँ", "कति", "कसरी", "किन", "कुन",
	"राम्रो", "ठूलो", "सानो", "नयाँ",
}

// nepaliRomanized holds romanized markers exclusive to Nepali.
var nepaliRomanized = []string{
	"cha", "chha", "chaina", "chhaina", "huncha", "hunchha", "garcha",
	"garchha", "malai", "sakchu", "garna", "parcha", "parchha", "chaincha",
	"maddat", "madaad", "kati", "kasari", "kina", "kun", "rupaiya", "ramro",
	"thulo", "sano", "naya", "purano", "paincha", "bigareko", "noksaan",
	"noksan", "hernu", "herna", "bhanna", "bhannu", "garnuhos", "barema",
	"tapai", "tapaii", "mero", "hamro", "timro", "hami", "timi",
}

// sharedMarkers could belong to either Hindi or Nepali and are weighted
// lower in the fallback scorer.
var sharedMarkers = []string{
	"tera", "uska", "ghar", "paisa", "rupee", "rupaye", "paise",
	"sahayata", "sahayta",
}

// mixedGrammarMarkers are the romanized Hindi/Nepali function words and verb
// endings that signal code-mixed usage when they appear alongside English
// content words ("Mujhe help chahiye application ke liye").
var mixedGrammarMarkers = map[string]struct{}{
	"mereko": {}, "mujhe": {}, "mera": {}, "meri": {}, "mero": {},
	"ka": {}, "ki": {}, "ke": {}, "ko": {}, "liye": {}, "lagi": {},
	"karna": {}, "krna": {}, "karo": {}, "kar": {}, "garna": {}, "garne": {},
	"hai": {}, "hain": {}, "ho": {}, "cha": {}, "chha": {}, "huncha": {},
	"kya": {}, "kaise": {}, "kasari": {}, "kab": {}, "kahan": {},
	"chahiye": {}, "chaincha": {}, "batao": {}, "malai": {}, "wala": {},
	"se": {}, "par": {}, "aur": {}, "nahi": {}, "haan": {}, "bhi": {},
}

// mixedEnglishSignals are the English words that mark the other half of a
// code-mixed message. Scheme-name borrowings ("ex", "gratia", "apply") are
// deliberately absent: a Hindi sentence naming the scheme in English is
// still a Hindi sentence.
var mixedEnglishSignals = map[string]struct{}{
	"i": {}, "you": {}, "my": {}, "me": {}, "want": {}, "need": {},
	"the": {}, "is": {}, "to": {}, "for": {}, "and": {}, "please": {},
	"can": {}, "help": {}, "what": {}, "how": {}, "check": {},
	"status": {}, "application": {}, "form": {}, "submit": {},
	"process": {}, "scheme": {}, "government": {}, "document": {},
	"documents": {}, "track": {}, "information": {},
}

// countDevanagari returns the number of Devanagari code points in s.
func countDevanagari(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			n++
		}
	}
	return n
}

// tokenize lowercases s and splits it into letter/digit runs.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x0900 && r <= 0x097F: // Devanagari block
		return true
	}
	return false
}

// IsCodeMixed reports whether text interleaves romanized Hindi/Nepali
// grammar markers with English content words in the same message. A pure
// Devanagari message or a pure English message is never code-mixed.
func IsCodeMixed(text string) bool {
	grammar, english := 0, 0
	for _, tok := range tokenize(text) {
		if _, ok := mixedGrammarMarkers[tok]; ok {
			grammar++
			continue
		}
		if _, ok := mixedEnglishSignals[tok]; ok {
			english++
		}
	}
	return grammar >= 1 && english >= 1
}

// FallbackDetect is the deterministic detector used when the inference
// gateway is unavailable or answers outside the closed vocabulary. It scores
// each language by marker hits: Devanagari code points weigh 1.5, exclusive
// markers 1.0, shared Hindi/Nepali markers 0.5. Ties and empty input
// resolve to English.
func FallbackDetect(text string) Language {
	lower := strings.ToLower(text)
	tokens := tokenize(text)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	englishScore := 0.0
	for _, p := range englishPhrases {
		if strings.Contains(lower, p) {
			englishScore++
		}
	}

	hindiScore := scoreTokens(tokenSet, hindiRomanized) + scoreContains(lower, hindiDevanagari)
	nepaliScore := scoreTokens(tokenSet, nepaliRomanized) + scoreContains(lower, nepaliDevanagari)
	shared := scoreTokens(tokenSet, sharedMarkers)

	devanagari := float64(countDevanagari(text)) * 1.5
	hindiScore += shared*0.5 + devanagari
	nepaliScore += shared*0.5 + devanagari

	max := englishScore
	if hindiScore > max {
		max = hindiScore
	}
	if nepaliScore > max {
		max = nepaliScore
	}

	switch {
	case max == 0 || englishScore == max:
		return English
	case hindiScore == max:
		return Hindi
	default:
		return Nepali
	}
}

func scoreTokens(tokens map[string]struct{}, markers []string) float64 {
	score := 0.0
	for _, m := range markers {
		if _, ok := tokens[m]; ok {
			score++
		}
	}
	return score
}

// scoreContains matches Devanagari markers by substring: Devanagari suffix
// markers (verb endings) are attached to stems and never appear as
// standalone tokens.
func scoreContains(lower string, markers []string) float64 {
	score := 0.0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			score++
		}
	}
	return score
}
