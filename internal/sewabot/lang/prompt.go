package lang

import "fmt"

// detectionPromptTmpl instructs the inference model to answer with exactly
// one vocabulary word. One printf verb is substituted: the text to analyze.
const detectionPromptTmpl = `You are the language detection system for a government services assistant in Sikkim. Analyze this text and determine if it's English, Hindi, or Nepali.

Key Grammar Patterns to Consider:

1. Hindi Markers:
   - Verb endings: है, हैं, था, थी, होगा, करना है
   - Question words: क्या, कैसे, कहाँ
   - Common phrases: मुझे चाहिए, कृपया बताएं
   - Romanized: "mereko", "mujhe", "karna hain", "chahiye"

2. Nepali Markers:
   - Verb endings: छ, छन्, हो, भयो, हुन्छ
   - Question words: के, कसरी, कहाँ
   - Common phrases: मलाई चाहिन्छ, कृपया भन्नुहोस्
   - Romanized: "malai", "garna", "chaincha", "parcha"

3. English Markers:
   - SVO structure
   - Auxiliary verbs: is, are, was, were
   - Question words: what, how, where

Rules:
- For mixed language, identify the dominant language
- Consider both Devanagari and Roman script
- Account for transliterated text
- Look for grammar patterns over individual words
- Handle informal and colloquial usage

Examples:
- "Mereko ex gratia apply karna hain" → hindi
- "Malai sahayata chaincha" → nepali
- "I want to check my application status" → english

Text to analyze: "%s"

Respond with EXACTLY one word - either 'english', 'hindi', or 'nepali'.`

// detectionPrompt renders the language-detection prompt for text.
func detectionPrompt(text string) string {
	return fmt.Sprintf(detectionPromptTmpl, text)
}
