package intent

import (
	"fmt"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

// classificationPromptTmpl embeds the closed vocabulary and one example per
// intent. Two printf verbs are substituted: the detected language and the
// message text.
const classificationPromptTmpl = `You are the intent classifier for a government services assistant in Sikkim. The user's message is in %s. Classify it into exactly one of these intents:

1. greeting: Salutations with no other request ("Hello", "Namaste")
2. help: The user asks for help or guidance ("I need help", "Madad chahiye")
3. status_check: Track an existing application ("What's my application status", "Mera application kahan hai")
4. application_procedure: How to apply, what the steps or documents are ("How do I apply", "Kaise apply karna hai")
5. exgratia_norms: Questions about compensation amounts, rules, eligibility ("Kitna muavja milega", "What documents are needed for eligibility")
6. exgratia_apply: The user wants to start an ex-gratia application ("I want to apply for ex gratia", "Mereko ex gratia apply karna hain")
7. other: None of the above

User message: "%s"

Respond with EXACTLY one word from: greeting, help, status_check, application_procedure, exgratia_norms, exgratia_apply, other`

// classificationPrompt renders the intent-classification prompt.
func classificationPrompt(text string, language lang.Language) string {
	l := language
	if l == lang.Unset {
		l = lang.English
	}
	return fmt.Sprintf(classificationPromptTmpl, l, text)
}
