package onelog

import "strings"

// Sub-patterns matching a complete quoted string literal. The body is any run
// of characters other than a backslash or the closing quote, or any
// backslash-escaped character.
const (
	DoubleQuotedPattern = `(?:"(?:[^\\"]|(?:\\.))*")`
	SingleQuotedPattern = `(?:'(?:[^\\']|(?:\\.))*')`
)

// Expand rewrites the quoted-string shorthand in pattern text into standard
// pattern syntax. Each `\"` becomes DoubleQuotedPattern and each `\'` becomes
// SingleQuotedPattern; everything else is copied unchanged.
//
// A backslash always pairs with the character after it, so `\\"` is an escaped
// backslash followed by a literal quote, not a shorthand token. Every backslash
// in the inserted sub-patterns is part of such a pair, which makes Expand
// idempotent.
//
// Expand never fails. Quote nesting is not validated; a pattern that cannot be
// compiled is reported by New.
func Expand(pattern string) string {
	pattern = expandQuote(pattern, '"', DoubleQuotedPattern)
	return expandQuote(pattern, '\'', SingleQuotedPattern)
}

func expandQuote(pattern string, quote byte, sub string) string {
	if !strings.Contains(pattern, `\`+string(quote)) {
		return pattern
	}

	var sb strings.Builder
	sb.Grow(len(pattern) + len(sub))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' || i+1 >= len(pattern) {
			sb.WriteByte(c)
			continue
		}
		if pattern[i+1] == quote {
			sb.WriteString(sub)
		} else {
			sb.WriteByte(c)
			sb.WriteByte(pattern[i+1])
		}
		i++
	}
	return sb.String()
}
