package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/cache"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/gateway"
)

// Detector classifies message language. The zero-value Detector is not
// usable; construct with NewDetector.
type Detector struct {
	provider gateway.Provider
	cache    *cache.TTLCache
	limiter  *gateway.RateLimiter
	logger   *slog.Logger
}

// NewDetector returns a Detector backed by provider. provider, c and
// limiter may all be nil: without a provider every detection runs on the
// deterministic fallback, without a cache nothing is memoized, and without
// a limiter gateway usage is unmetered.
func NewDetector(provider gateway.Provider, c *cache.TTLCache, limiter *gateway.RateLimiter, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{provider: provider, cache: c, limiter: limiter, logger: logger}
}

// Detect returns the language of userID's text. It never fails: gateway
// errors, rate-limited users and out-of-vocabulary answers all degrade to
// FallbackDetect, and empty input is English.
//
// The code-mixed check runs before everything else and overrides any label
// the gateway would produce, because the inference model is instructed to
// pick a single dominant language and cannot express the mixed register.
// The rate limiter is consulted only when a real gateway call is about to
// happen; code-mixed answers and cache hits never consume quota, and
// degraded fallback results are never cached.
func (d *Detector) Detect(ctx context.Context, userID, text string) Language {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return English
	}

	if IsCodeMixed(trimmed) {
		return HindiEnglishMixed
	}

	key := normalizeKey(trimmed)
	if d.cache != nil {
		if v, ok := d.cache.Get(key); ok {
			return Language(v)
		}
	}

	detected, ok := d.detectLLM(ctx, userID, trimmed)
	if !ok {
		return FallbackDetect(trimmed)
	}

	if d.cache != nil {
		d.cache.Set(key, string(detected))
	}
	return detected
}

// detectLLM asks the gateway for a label and accepts only exact vocabulary
// matches after cleaning. The second return value is false whenever the
// caller should fall back.
func (d *Detector) detectLLM(ctx context.Context, userID, text string) (Language, bool) {
	if d.provider == nil {
		return Unset, false
	}
	if d.limiter != nil && !d.limiter.Allow(userID) {
		d.logger.Info("lang: rate limited, using fallback detection", "user", userID)
		return Unset, false
	}

	raw, err := d.provider.Generate(ctx, detectionPrompt(text))
	if err != nil {
		d.logger.Warn("lang: gateway failed, using fallback detection", "err", err)
		return Unset, false
	}

	switch label := CleanLabel(raw); label {
	case string(English):
		return English, true
	case string(Hindi):
		return Hindi, true
	case string(Nepali):
		return Nepali, true
	default:
		d.logger.Warn("lang: unrecognized detection label, using fallback", "label", label)
		return Unset, false
	}
}

// CleanLabel normalizes a raw model completion into a comparable label: the
// first non-empty line, lowercased, with everything but letters, digits,
// '_' and '-' removed. Shared with the intent classifier, which applies the
// same cleaning before validating against its vocabulary.
func CleanLabel(raw string) string {
	line := raw
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	line = strings.ToLower(strings.TrimSpace(line))

	var b strings.Builder
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeKey derives the cache key: lowercased, whitespace-collapsed text.
func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
