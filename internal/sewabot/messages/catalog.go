// Package messages holds the per-language prompt texts the assistant sends.
//
// The catalog is a strongly typed Language × Key → string mapping loaded
// from YAML and validated for completeness at startup: a missing text for
// any supported language is a configuration error that refuses to boot,
// rather than a runtime surprise in the middle of a citizen's application.
package messages

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Key names one renderable text in the catalog.
type Key string

const (
	KeyMainMenu             Key = "main_menu"
	KeyGreeting             Key = "greeting"
	KeyHelp                 Key = "help"
	KeyExgratiaNorms        Key = "exgratia_norms"
	KeyApplicationProcedure Key = "application_procedure"
	KeyStatusHowTo          Key = "status_how_to"
	KeyStatusFound          Key = "status_found"
	KeyStatusNotFound       Key = "status_not_found"
	KeyFallback             Key = "fallback"
	KeyConfirmSummary       Key = "confirm_summary"
	KeyConfirmHint          Key = "confirm_hint"
	KeySubmitted            Key = "submitted"
	KeyCancelled            Key = "cancelled"
	KeyLanguageChanged      Key = "language_changed"
	KeyInvalidName          Key = "invalid_name"
	KeyInvalidPhone         Key = "invalid_phone"
	KeyInvalidChoice        Key = "invalid_choice"
	KeyInvalidDescription   Key = "invalid_description"
	KeyInvalidRequired      Key = "invalid_required"
	KeyError                Key = "error"
)

// questionKeyPrefix builds the per-field question keys
// ("question_applicant_name", ...).
const questionKeyPrefix = "question_"

// formFields lists the form fields whose question texts the catalog must
// carry. Kept in sync with the dialogue form schema; Validate fails loudly
// when a question text is missing.
var formFields = []string{
	"applicant_name", "father_name", "village", "contact_number",
	"ward", "gpu", "khatiyan_no", "plot_no", "damage_type",
	"damage_description",
}

// QuestionKey returns the catalog key carrying the prompt for field.
func QuestionKey(field string) Key {
	return Key(questionKeyPrefix + field)
}

// Keys returns every key the engine can render, sorted for stable error
// reporting.
func Keys() []Key {
	keys := []Key{
		KeyMainMenu, KeyGreeting, KeyHelp, KeyExgratiaNorms,
		KeyApplicationProcedure, KeyStatusHowTo, KeyStatusFound,
		KeyStatusNotFound, KeyFallback, KeyConfirmSummary, KeyConfirmHint,
		KeySubmitted, KeyCancelled, KeyLanguageChanged, KeyInvalidName,
		KeyInvalidPhone, KeyInvalidChoice, KeyInvalidDescription,
		KeyInvalidRequired, KeyError,
	}
	for _, f := range formFields {
		keys = append(keys, QuestionKey(f))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Catalog is an immutable, validated text mapping.
type Catalog struct {
	texts map[lang.Language]map[Key]string
}

// Default parses and validates the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Parse loads a catalog from YAML of the shape
//
//	english:
//	  main_menu: "..."
//	hindi:
//	  main_menu: "..."
//
// and validates completeness before returning it.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("messages: parse catalog: %w", err)
	}

	texts := make(map[lang.Language]map[Key]string, len(raw))
	for l, entries := range raw {
		language := lang.Language(l)
		if !language.Valid() {
			return nil, fmt.Errorf("messages: unknown language %q in catalog", l)
		}
		m := make(map[Key]string, len(entries))
		for k, v := range entries {
			m[Key(k)] = v
		}
		texts[language] = m
	}

	c := &Catalog{texts: texts}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every supported language carries a non-empty text
// for every key. Returns the first gap found, naming both coordinates.
func (c *Catalog) Validate() error {
	for _, l := range lang.All() {
		entries, ok := c.texts[l]
		if !ok {
			return fmt.Errorf("messages: catalog missing language %q", l)
		}
		for _, k := range Keys() {
			if entries[k] == "" {
				return fmt.Errorf("messages: catalog missing text for language %q, key %q", l, k)
			}
		}
	}
	return nil
}

// Get returns the text for key in the given language. The unset language
// renders English. Get never returns an empty string for a validated
// catalog; an unknown key falls back to the English entry, then to the key
// name itself so a rendering bug stays visible rather than silent.
func (c *Catalog) Get(l lang.Language, key Key) string {
	if l == lang.Unset {
		l = lang.English
	}
	if entries, ok := c.texts[l]; ok {
		if text := entries[key]; text != "" {
			return text
		}
	}
	if text := c.texts[lang.English][key]; text != "" {
		return text
	}
	return string(key)
}

// Question returns the prompt text for a form field.
func (c *Catalog) Question(l lang.Language, field string) string {
	return c.Get(l, QuestionKey(field))
}
