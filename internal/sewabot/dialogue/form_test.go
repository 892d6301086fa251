package dialogue_test

import (
	"testing"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/dialogue"
)

func TestDefaultFormLoads(t *testing.T) {
	form, err := dialogue.DefaultForm()
	if err != nil {
		t.Fatalf("DefaultForm: %v", err)
	}

	fields := form.Fields()
	if len(fields) != 10 {
		t.Fatalf("field count: got %d, want 10", len(fields))
	}
	if form.First().Name != "applicant_name" {
		t.Errorf("first field: got %q, want applicant_name", form.First().Name)
	}
	if fields[len(fields)-1].Name != "damage_description" {
		t.Errorf("last field: got %q, want damage_description", fields[len(fields)-1].Name)
	}
}

func TestFormNextWalksInOrder(t *testing.T) {
	form, err := dialogue.DefaultForm()
	if err != nil {
		t.Fatalf("DefaultForm: %v", err)
	}

	name := form.First().Name
	var walked []string
	for {
		walked = append(walked, name)
		next, done := form.Next(name)
		if done {
			break
		}
		name = next.Name
	}
	if len(walked) != len(form.Fields()) {
		t.Errorf("walked %d fields, want %d", len(walked), len(form.Fields()))
	}
}

func TestParseFormRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown kind",
			yaml: "fields:\n  - name: x\n    kind: slider\n    error_key: invalid_required\n",
		},
		{
			name: "missing error key",
			yaml: "fields:\n  - name: x\n    kind: text\n",
		},
		{
			name: "unknown error key",
			yaml: "fields:\n  - name: applicant_name\n    kind: text\n    error_key: no_such_key\n",
		},
		{
			name: "duplicate field",
			yaml: "fields:\n  - name: applicant_name\n    kind: text\n    error_key: invalid_name\n  - name: applicant_name\n    kind: text\n    error_key: invalid_name\n",
		},
		{
			name: "field without catalog question",
			yaml: "fields:\n  - name: shoe_size\n    kind: text\n    error_key: invalid_required\n",
		},
		{
			name: "empty document",
			yaml: "fields: []\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := dialogue.ParseForm([]byte(tt.yaml)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

func TestFieldValidation(t *testing.T) {
	form, err := dialogue.DefaultForm()
	if err != nil {
		t.Fatalf("DefaultForm: %v", err)
	}

	tests := []struct {
		field  string
		answer string
		want   string
		ok     bool
	}{
		{"applicant_name", "Ram Kumar", "Ram Kumar", true},
		{"applicant_name", "  Abhishek  ", "Abhishek", true},
		{"applicant_name", "R", "", false},
		{"applicant_name", "", "", false},

		{"contact_number", "9812345678", "9812345678", true},
		{"contact_number", "+91 98123 45678", "9812345678", true},
		{"contact_number", "98123-45678", "9812345678", true},
		{"contact_number", "12345", "", false},
		{"contact_number", "98123456789", "", false},
		{"contact_number", "98123abcde", "", false},

		{"ward", "5", "5", true},
		{"ward", "", "", false},

		{"damage_type", "1", "Flood", true},
		{"damage_type", "2", "Landslide", true},
		{"damage_type", "7", "Other", true},
		{"damage_type", "landslide", "Landslide", true},
		{"damage_type", "8", "", false},
		{"damage_type", "0", "", false},
		{"damage_type", "tsunami", "", false},

		{"damage_description", "House roof collapsed in the landslide", "House roof collapsed in the landslide", true},
		{"damage_description", "broken", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.answer, func(t *testing.T) {
			f, found := form.Field(tt.field)
			if !found {
				t.Fatalf("field %q not in form", tt.field)
			}
			got, ok := f.Validate(tt.answer)
			if ok != tt.ok {
				t.Fatalf("Validate(%q) ok = %v, want %v", tt.answer, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestCancelIsVerbatim(t *testing.T) {
	for _, msg := range []string{"cancel", "  CANCEL  ", "band karo", "रद्द", "main menu"} {
		if !dialogue.IsCancel(msg) {
			t.Errorf("IsCancel(%q) = false, want true", msg)
		}
	}
	// A sentence merely containing a cancel word is an answer.
	for _, msg := range []string{
		"my village is called Cancel Gaon",
		"the flood cancelled everything we had",
		"please cancel",
	} {
		if dialogue.IsCancel(msg) {
			t.Errorf("IsCancel(%q) = true, want false", msg)
		}
	}
}

func TestConfirmation(t *testing.T) {
	tests := []struct {
		text string
		want dialogue.ConfirmAnswer
	}{
		{"confirm", dialogue.ConfirmYes},
		{"CONFIRM", dialogue.ConfirmYes},
		{"yes please", dialogue.ConfirmYes},
		{"haan theek hai", dialogue.ConfirmYes},
		{"हाँ", dialogue.ConfirmYes},
		{"no", dialogue.ConfirmNo},
		{"nahi galat hai", dialogue.ConfirmNo},
		{"no, don't confirm", dialogue.ConfirmNo},
		{"what is this", dialogue.ConfirmUnknown},
		{"", dialogue.ConfirmUnknown},
	}
	for _, tt := range tests {
		if got := dialogue.Confirmation(tt.text); got != tt.want {
			t.Errorf("Confirmation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestLanguageChangePhrases(t *testing.T) {
	if _, ok := dialogue.LanguageChange("switch to nepali"); !ok {
		t.Error("switch to nepali should be a language change command")
	}
	if _, ok := dialogue.LanguageChange("I would like to switch to nepali someday"); ok {
		t.Error("embedded phrase must not match")
	}
	l, ok := dialogue.LanguageChange("हिंदी में बोलो")
	if !ok || string(l) != "hindi" {
		t.Errorf("got (%v, %v), want (hindi, true)", l, ok)
	}
	if _, ok := dialogue.LanguageChange("Hindi Me Bolo"); !ok {
		t.Error("matching should be case-insensitive")
	}
}
