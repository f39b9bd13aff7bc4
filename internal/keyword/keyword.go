// Package keyword counts distinct keyword matches in generated text.
package keyword

// #region imports
import (
	"strings"
	"unicode"
)

// #endregion imports

// #region score

// Score counts distinct keywords from keywords that appear in text.
// Matching is case-insensitive whole-word containment; multi-word
// keywords are matched as phrases on word boundaries. Repeats of one
// keyword count once. Keywords listed in exempted are removed from
// consideration entirely. Returns the count and the matched keywords.
func Score(text string, keywords []string, exempted map[string]bool) (int, []string) {
	if len(keywords) == 0 || text == "" {
		return 0, nil
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if exempted[kw] {
			continue
		}
		if containsWholeWord(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return len(matched), matched
}

// #endregion score

// #region whole-word

// containsWholeWord reports whether phrase occurs in lower on word
// boundaries. Both inputs must already be lowercase.
func containsWholeWord(lower, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(lower[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		if boundaryBefore(lower, idx) && boundaryAfter(lower, end) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordRune(rune(s[idx-1]))
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	return !isWordRune(rune(s[end]))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// #endregion whole-word

// #region exemption-set

// ExemptionSet normalizes a list of exempted keywords into a lookup set.
func ExemptionSet(exempted []string) map[string]bool {
	if len(exempted) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exempted))
	for _, e := range exempted {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// #endregion exemption-set
