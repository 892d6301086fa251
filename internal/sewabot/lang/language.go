// Package lang classifies the language of incoming citizen messages.
//
// Detection runs three mechanisms in a fixed order: a lexical code-mixed
// check (romanized Hindi/Nepali grammar markers co-occurring with English
// words), a prompt to the external inference gateway, and a deterministic
// marker-scoring fallback used whenever the gateway fails or answers outside
// the closed vocabulary. Detect is a total function: every input maps to a
// Language and callers never see an error.
package lang

// Language is the closed set of languages the assistant can answer in.
// The zero value means "not yet detected".
type Language string

const (
	Unset             Language = ""
	English           Language = "english"
	Hindi             Language = "hindi"
	Nepali            Language = "nepali"
	HindiEnglishMixed Language = "hindi_english_mixed"
)

// All returns every supported language. The message catalog uses this to
// verify completeness at startup.
func All() []Language {
	return []Language{English, Hindi, Nepali, HindiEnglishMixed}
}

// Valid reports whether l is a member of the closed language set.
func (l Language) Valid() bool {
	switch l {
	case English, Hindi, Nepali, HindiEnglishMixed:
		return true
	}
	return false
}
