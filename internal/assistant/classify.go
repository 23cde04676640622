package assistant

import "strings"

// Classify picks the intent of text. Rules are checked in precedence order
// and the first keyword contained in the lowercased text wins; Help is the
// fallback.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			return rule.intent
		}
	}
	return IntentHelp
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
