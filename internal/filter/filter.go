// Package filter classifies free-text input against a fixed list of
// disallowed terms. Matching is case-insensitive and tolerant of common
// character substitutions, so "sh1t" trips the same term as "shit". The
// check is pure and is applied identically to message content and
// recipient names.
package filter

import (
	"regexp"
	"strings"
)

// Reason is the generic user-facing explanation returned for any match.
// The matched term is deliberately not echoed back.
const Reason = "Your message contains language that is not allowed. Please revise and try again."

var blockedTerms = []string{
	"fuck", "shit", "bitch", "bastard", "damn", "cunt", "dick", "cock",
	"pussy", "whore", "slut", "retard", "asshole",
	"kill yourself", "kys", "hate you", "go to hell",
}

var patterns = compile(blockedTerms)

// substitutions maps each letter to the character class that catches its
// common leetspeak stand-ins.
var substitutions = map[rune]string{
	'a': "[a@4]",
	'e': "[e3]",
	'i': "[i1!]",
	'o': "[o0]",
	's': "[s$5]",
	't': "[t7]",
	'l': "[l1]",
}

func compile(terms []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		var b strings.Builder
		for _, r := range term {
			if class, ok := substitutions[r]; ok {
				b.WriteString(class)
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		compiled = append(compiled, regexp.MustCompile(b.String()))
	}
	return compiled
}

// Check reports whether text contains a blocked term. When blocked, the
// returned reason is suitable for direct display to the user.
func Check(text string) (blocked bool, reason string) {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if p.MatchString(lower) {
			return true, Reason
		}
	}
	return false, ""
}

// BlockedTerms returns the configured term list. Used by tests and the
// admin console; the list itself is fixed at build time.
func BlockedTerms() []string {
	out := make([]string, len(blockedTerms))
	copy(out, blockedTerms)
	return out
}
