// Package intent classifies citizen messages against the closed intent
// vocabulary of the assistant.
//
// Classification is hybrid: a deterministic keyword fast path resolves the
// common intents (and is authoritative for the greeting-vs-help ambiguity,
// where the inference model is unreliable), and the inference gateway
// handles everything the rules cannot. Classify is total: gateway failures
// and out-of-vocabulary answers coerce to Other.
package intent

// Intent is the closed vocabulary of things a citizen can ask for.
type Intent string

const (
	Greeting             Intent = "greeting"
	Help                 Intent = "help"
	StatusCheck          Intent = "status_check"
	ApplicationProcedure Intent = "application_procedure"
	ExgratiaNorms        Intent = "exgratia_norms"
	ExgratiaApply        Intent = "exgratia_apply"
	Other                Intent = "other"
)

// All returns every intent in the vocabulary.
func All() []Intent {
	return []Intent{
		Greeting, Help, StatusCheck, ApplicationProcedure,
		ExgratiaNorms, ExgratiaApply, Other,
	}
}

// Valid reports whether i is a member of the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case Greeting, Help, StatusCheck, ApplicationProcedure,
		ExgratiaNorms, ExgratiaApply, Other:
		return true
	}
	return false
}

// Source records which mechanism produced a classification.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceRuleBased Source = "rule_based"
	SourceFallback  Source = "fallback"
)

// Result is the transient outcome of one classification. It is consumed
// once per turn and never persisted.
type Result struct {
	Label  Intent
	Source Source
}
