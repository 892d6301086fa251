package lang_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/cache"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/gateway"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// stubProvider returns a fixed completion (or error) on every Generate call
// and counts invocations.
type stubProvider struct {
	resp  string
	err   error
	calls int
}

func (s *stubProvider) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.resp, nil
}

// ---------------------------------------------------------------------------
// LLM path
// ---------------------------------------------------------------------------

func TestDetect_AcceptsVocabularyLabels(t *testing.T) {
	cases := []struct {
		name string
		resp string
		want lang.Language
	}{
		{"plain", "hindi", lang.Hindi},
		{"uppercase", "NEPALI", lang.Nepali},
		{"trailing_period", "english.", lang.English},
		{"verbose_first_line", "hindi\nThe text uses Devanagari verb endings.", lang.Hindi},
		{"leading_blank_line", "\n  nepali  \n", lang.Nepali},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := lang.NewDetector(&stubProvider{resp: tc.resp}, nil, nil, nil)
			got := d.Detect(context.Background(), "@u:example.org", "some ordinary sentence")
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetect_OutOfVocabularyFallsBack(t *testing.T) {
	// The model rambles; the deterministic fallback must take over.
	d := lang.NewDetector(&stubProvider{resp: "The text appears to be in the Hindi language."}, nil, nil, nil)

	got := d.Detect(context.Background(), "@u:example.org", "Mujhe madad chahiye")
	if got != lang.Hindi {
		t.Errorf("got %q, want %q from fallback markers", got, lang.Hindi)
	}
}

func TestDetect_GatewayDownFallsBack(t *testing.T) {
	down := &stubProvider{err: gateway.ErrUnavailable}

	cases := []struct {
		text string
		want lang.Language
	}{
		{"Mujhe madad chahiye", lang.Hindi},
		{"Malai sahayata chaincha", lang.Nepali},
		{"please help me with my application", lang.English},
		{"मुझे बताओ क्या करना है", lang.Hindi},
		{"मलाई थाहा छैन, कसरी गर्ने", lang.Nepali},
	}

	for _, tc := range cases {
		got := lang.NewDetector(down, nil, nil, nil).Detect(context.Background(), "@u:example.org", tc.text)
		if got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetect_NeverReturnsOutOfSet(t *testing.T) {
	providers := []*stubProvider{
		{resp: "french"},
		{resp: ""},
		{resp: "42"},
		{err: errors.New("boom")},
	}
	inputs := []string{"", "   ", "Abhishek", "9832012345", "!?", "नमस्ते"}

	for _, p := range providers {
		d := lang.NewDetector(p, nil, nil, nil)
		for _, in := range inputs {
			if got := d.Detect(context.Background(), "@u:example.org", in); !got.Valid() {
				t.Errorf("Detect(%q) returned out-of-set value %q", in, got)
			}
		}
	}
}

func TestDetect_EmptyInputIsEnglish(t *testing.T) {
	d := lang.NewDetector(nil, nil, nil, nil)
	if got := d.Detect(context.Background(), "@u:example.org", "   "); got != lang.English {
		t.Errorf("got %q, want english", got)
	}
}

// ---------------------------------------------------------------------------
// Code-mixed check
// ---------------------------------------------------------------------------

func TestDetect_CodeMixed(t *testing.T) {
	cases := []struct {
		text  string
		mixed bool
	}{
		{"Mujhe help chahiye application ke liye", true},
		{"Mera application status check karna hai", true},
		{"Ex gratia ke liye form kaise submit karna hai", true},
		{"Government scheme ka process kya hai", true},
		{"I want to apply for ex gratia", false},
		{"मुझे एक्स-ग्रेशिया के लिए आवेदन करना है", false},
		// Naming the scheme in English inside a Hindi sentence is still
		// Hindi, not code-mixed.
		{"Mereko ex gratia apply krna hain", false},
	}

	for _, tc := range cases {
		if got := lang.IsCodeMixed(tc.text); got != tc.mixed {
			t.Errorf("IsCodeMixed(%q) = %v, want %v", tc.text, got, tc.mixed)
		}
	}
}

func TestDetect_CodeMixedOverridesGateway(t *testing.T) {
	// Even when the gateway confidently answers "english", a code-mixed
	// message must be reported as mixed.
	d := lang.NewDetector(&stubProvider{resp: "english"}, nil, nil, nil)

	got := d.Detect(context.Background(), "@u:example.org", "Mujhe help chahiye application ke liye")
	if got != lang.HindiEnglishMixed {
		t.Errorf("got %q, want %q", got, lang.HindiEnglishMixed)
	}
}

// ---------------------------------------------------------------------------
// Fallback scorer
// ---------------------------------------------------------------------------

func TestFallbackDetect_SpecificMessages(t *testing.T) {
	cases := []struct {
		text string
		want lang.Language
	}{
		{"Mereko ex gratia apply krna hain", lang.Hindi},
		{"Madad chahiye", lang.Hindi},
		{"kati paisa paincha", lang.Nepali},
		{"how to apply for compensation", lang.English},
		{"", lang.English},
		{"Abhishek", lang.English}, // single name: best-effort default
	}

	for _, tc := range cases {
		if got := lang.FallbackDetect(tc.text); got != tc.want {
			t.Errorf("FallbackDetect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestFallbackDetect_DevanagariTieBreaksToHindi(t *testing.T) {
	// Shared Devanagari with no exclusive verb endings either way.
	if got := lang.FallbackDetect("राम कुमार"); got != lang.Hindi {
		t.Errorf("got %q, want hindi for bare Devanagari", got)
	}
}

// ---------------------------------------------------------------------------
// Caching
// ---------------------------------------------------------------------------

func TestDetect_CachesGatewayResults(t *testing.T) {
	p := &stubProvider{resp: "hindi"}
	c := cache.New(0, 0)
	d := lang.NewDetector(p, c, nil, nil)

	for i := 0; i < 3; i++ {
		if got := d.Detect(context.Background(), "@u:example.org", "Mujhe jankari chahiye"); got != lang.Hindi {
			t.Fatalf("got %q, want hindi", got)
		}
	}
	if p.calls != 1 {
		t.Errorf("gateway called %d times, want 1 (cached)", p.calls)
	}
}

func TestDetect_CacheKeyNormalizesWhitespaceAndCase(t *testing.T) {
	p := &stubProvider{resp: "nepali"}
	c := cache.New(0, 0)
	d := lang.NewDetector(p, c, nil, nil)

	d.Detect(context.Background(), "@u:example.org", "Kasari garne hola")
	d.Detect(context.Background(), "@u:example.org", "  kasari   GARNE hola ")

	if p.calls != 1 {
		t.Errorf("gateway called %d times, want 1", p.calls)
	}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestDetect_RateLimitedUsesFallback(t *testing.T) {
	p := &stubProvider{resp: "english"}
	limiter := gateway.NewRateLimiter(1, time.Minute)
	d := lang.NewDetector(p, nil, limiter, nil)
	user := "@chatty:example.org"

	if !limiter.Allow(user) {
		t.Fatal("first Allow should pass")
	}

	// Over quota: the marker fallback answers without a gateway call.
	if got := d.Detect(context.Background(), user, "Mujhe madad chahiye"); got != lang.Hindi {
		t.Errorf("got %q, want hindi from fallback", got)
	}
	if p.calls != 0 {
		t.Errorf("gateway called %d times for a rate-limited user", p.calls)
	}
}

func TestDetect_CacheHitConsumesNoQuota(t *testing.T) {
	p := &stubProvider{resp: "hindi"}
	limiter := gateway.NewRateLimiter(5, time.Minute)
	d := lang.NewDetector(p, cache.New(0, 0), limiter, nil)
	user := "@frugal:example.org"

	d.Detect(context.Background(), user, "Mujhe jankari chahiye")
	if got := limiter.Remaining(user); got != 4 {
		t.Fatalf("after first detection: remaining %d, want 4", got)
	}

	for i := 0; i < 3; i++ {
		d.Detect(context.Background(), user, "Mujhe jankari chahiye")
	}
	if got := limiter.Remaining(user); got != 4 {
		t.Errorf("cached detections consumed quota, remaining %d, want 4", got)
	}
	if p.calls != 1 {
		t.Errorf("gateway called %d times, want 1", p.calls)
	}
}

func TestDetect_FallbackResultsAreNotCached(t *testing.T) {
	p := &stubProvider{err: gateway.ErrUnavailable}
	c := cache.New(0, 0)
	d := lang.NewDetector(p, c, nil, nil)

	d.Detect(context.Background(), "@u:example.org", "Mujhe madad chahiye")
	if c.Len() != 0 {
		t.Errorf("degraded result was cached, cache len %d", c.Len())
	}
}

// ---------------------------------------------------------------------------
// Label cleaning
// ---------------------------------------------------------------------------

func TestCleanLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"hindi", "hindi"},
		{"  Hindi.  ", "hindi"},
		{"HINDI\nbecause of the verb endings", "hindi"},
		{"'english'", "english"},
		{"status_check", "status_check"},
		{"ex-gratia", "ex-gratia"},
		{"", ""},
		{"\n\n nepali \n", "nepali"},
	}

	for _, tc := range cases {
		if got := lang.CleanLabel(tc.raw); got != tc.want {
			t.Errorf("CleanLabel(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
