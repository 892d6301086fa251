package dialogue

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/messages"
)

//go:embed form.yaml
var defaultFormYAML []byte

//go:embed form.schema.json
var formSchemaJSON string

// Field kinds. Each kind carries its own validation rule.
const (
	kindText   = "text"
	kindPhone  = "phone"
	kindChoice = "choice"
)

// Field is one question of the structured form.
type Field struct {
	Name     string       `yaml:"name"`
	Kind     string       `yaml:"kind"`
	MinLen   int          `yaml:"min_len"`
	Choices  []string     `yaml:"choices"`
	ErrorKey messages.Key `yaml:"error_key"`
}

// Validate checks one answer against the field's rule and returns the
// normalized value to store. Phone numbers are stripped of formatting;
// choice answers resolve to the canonical option label.
func (f *Field) Validate(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	switch f.Kind {
	case kindPhone:
		cleaned := strings.NewReplacer(" ", "", "-", "").Replace(answer)
		cleaned = strings.TrimPrefix(cleaned, "+91")
		if len(cleaned) != 10 {
			return "", false
		}
		for _, r := range cleaned {
			if !unicode.IsDigit(r) {
				return "", false
			}
		}
		return cleaned, true

	case kindChoice:
		if n, err := strconv.Atoi(answer); err == nil {
			if n >= 1 && n <= len(f.Choices) {
				return f.Choices[n-1], true
			}
			return "", false
		}
		for _, c := range f.Choices {
			if strings.EqualFold(answer, c) {
				return c, true
			}
		}
		return "", false

	default:
		if utf8.RuneCountInString(answer) < f.MinLen || answer == "" {
			return "", false
		}
		return answer, true
	}
}

// Form is the ordered list of fields collected during an application.
type Form struct {
	fields []Field
	index  map[string]int
}

// DefaultForm parses and validates the embedded form definition.
func DefaultForm() (*Form, error) {
	return ParseForm(defaultFormYAML)
}

// ParseForm loads a form definition from YAML. The document is checked
// against the embedded JSON Schema before any field-level rules, so a
// malformed definition fails loudly at startup.
func ParseForm(data []byte) (*Form, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dialogue: parse form: %w", err)
	}

	// The schema validator expects JSON-decoded values; round-trip the
	// YAML document through encoding/json to normalize the types.
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("dialogue: normalize form document: %w", err)
	}
	var jsonDoc any
	if err := json.Unmarshal(buf, &jsonDoc); err != nil {
		return nil, fmt.Errorf("dialogue: normalize form document: %w", err)
	}

	schema, err := jsonschema.CompileString("form.schema.json", formSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("dialogue: compile form schema: %w", err)
	}
	if err := schema.Validate(jsonDoc); err != nil {
		return nil, fmt.Errorf("dialogue: form definition rejected by schema: %w", err)
	}

	var parsed struct {
		Fields []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("dialogue: parse form fields: %w", err)
	}

	form := &Form{fields: parsed.Fields, index: make(map[string]int, len(parsed.Fields))}
	validKeys := make(map[messages.Key]struct{})
	for _, k := range messages.Keys() {
		validKeys[k] = struct{}{}
	}
	for i, f := range parsed.Fields {
		if _, dup := form.index[f.Name]; dup {
			return nil, fmt.Errorf("dialogue: duplicate form field %q", f.Name)
		}
		if f.Kind == kindChoice && len(f.Choices) == 0 {
			return nil, fmt.Errorf("dialogue: choice field %q has no choices", f.Name)
		}
		if _, ok := validKeys[f.ErrorKey]; !ok {
			return nil, fmt.Errorf("dialogue: field %q names unknown error key %q", f.Name, f.ErrorKey)
		}
		if _, ok := validKeys[messages.QuestionKey(f.Name)]; !ok {
			return nil, fmt.Errorf("dialogue: field %q has no question text in the catalog", f.Name)
		}
		form.index[f.Name] = i
	}
	return form, nil
}

// Fields returns the fields in collection order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// First returns the first field of the form.
func (f *Form) First() Field {
	return f.fields[0]
}

// Field looks up a field by name.
func (f *Form) Field(name string) (Field, bool) {
	i, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[i], true
}

// Next returns the field asked after name. done is true when name is the
// last field and the form is complete.
func (f *Form) Next(name string) (next Field, done bool) {
	i, ok := f.index[name]
	if !ok || i+1 >= len(f.fields) {
		return Field{}, true
	}
	return f.fields[i+1], false
}
