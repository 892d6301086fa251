package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/cache"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/gateway"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// containmentPriority is the fixed order in which labels are tested by
// substring against a verbose model answer. More specific labels come first
// so "the user wants to apply for exgratia_apply" never resolves to a
// broader label that happens to also appear.
var containmentPriority = []Intent{
	ExgratiaApply,
	ExgratiaNorms,
	ApplicationProcedure,
	StatusCheck,
	Help,
	Greeting,
}

// Classifier resolves message intent. Construct with NewClassifier.
type Classifier struct {
	provider gateway.Provider
	cache    *cache.TTLCache
	limiter  *gateway.RateLimiter
	logger   *slog.Logger
}

// NewClassifier returns a Classifier backed by provider. provider, c and
// limiter may all be nil: without a provider every message the rules cannot
// resolve is Other, without a cache nothing is memoized, and without a
// limiter gateway usage is unmetered.
func NewClassifier(provider gateway.Provider, c *cache.TTLCache, limiter *gateway.RateLimiter, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{provider: provider, cache: c, limiter: limiter, logger: logger}
}

// Classify returns the intent of userID's text in the given language. It is
// total: gateway failures, rate-limited users and unparseable answers
// coerce to Other with SourceFallback rather than surfacing an error.
//
// The rule fast path always runs first and short-circuits; in particular the
// greeting-vs-help distinction is never delegated to the inference model.
// Quota is charged only when a real gateway call is about to happen:
// rule-resolved messages and cache hits never consume a slot.
func (c *Classifier) Classify(ctx context.Context, userID, text string, language lang.Language) Result {
	trimmed := strings.TrimSpace(text)

	if label, ok := RuleClassify(trimmed, language); ok {
		return Result{Label: label, Source: SourceRuleBased}
	}

	key := string(language) + "|" + strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return Result{Label: Intent(v), Source: SourceLLM}
		}
	}

	if c.provider == nil {
		return Result{Label: Other, Source: SourceFallback}
	}
	if c.limiter != nil && !c.limiter.Allow(userID) {
		c.logger.Info("intent: rate limited, coercing to other", "user", userID)
		return Result{Label: Other, Source: SourceFallback}
	}

	raw, err := c.provider.Generate(ctx, classificationPrompt(trimmed, language))
	if err != nil {
		c.logger.Warn("intent: gateway failed, coercing to other", "err", err)
		return Result{Label: Other, Source: SourceFallback}
	}

	label, ok := validate(lang.CleanLabel(raw))
	if !ok {
		c.logger.Warn("intent: unrecognized label, coercing to other", "raw", raw)
		return Result{Label: Other, Source: SourceFallback}
	}

	if c.cache != nil {
		c.cache.Set(key, string(label))
	}
	return Result{Label: label, Source: SourceLLM}
}

// validate maps a cleaned model answer onto the vocabulary: exact match
// first, then substring containment in priority order to tolerate verbose
// answers.
func validate(cleaned string) (Intent, bool) {
	if cleaned == "" {
		return Other, false
	}

	candidate := Intent(cleaned)
	if candidate.Valid() {
		return candidate, true
	}

	for _, label := range containmentPriority {
		if strings.Contains(cleaned, string(label)) {
			return label, true
		}
	}
	if strings.Contains(cleaned, string(Other)) {
		return Other, true
	}
	return Other, false
}
