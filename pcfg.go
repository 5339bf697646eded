package pcfg

import (
	"fmt"
	"regexp"
	"strings"
)

// --- Symbols ---------------------------------------------------------------

// NumSymbol is the placeholder symbol for tokens which are purely numeric.
// Lexical rules are trained with NumSymbol instead of the literal number, and
// every numeric input token will match them.
const NumSymbol = "<NUM>"

// BodySeparator separates the two symbols of a binary production body.
const BodySeparator = " "

var (
	letters = regexp.MustCompile(`[a-zA-Z*]`)
	digits  = regexp.MustCompile(`[0-9]`)
)

// IsNumeric is a predicate: does a token count as a number?
// Numbers contain at least one digit and no letters; a lone "0" is not
// considered numeric, as it is used as a determiner-like token in the treebank.
//
//     IsNumeric("42")      // true
//     IsNumeric("3,000")   // true
//     IsNumeric("42nd")    // false
//     IsNumeric("0")       // false
//
func IsNumeric(token string) bool {
	return token != "0" && !letters.MatchString(token) && digits.MatchString(token)
}

// LexicalForm returns the symbol a terminal is stored as in the grammar: its
// lower-case form, or NumSymbol for numbers.
func LexicalForm(word string) string {
	word = strings.ToLower(word)
	if IsNumeric(word) {
		return NumSymbol
	}
	return word
}

// MatchesLexical is a predicate: does an input token match a lexical body?
// Lexical bodies are stored in lower case, thus the comparison is case-insensitive
// with respect to the token. The body NumSymbol matches every numeric token.
func MatchesLexical(body string, token string) bool {
	if body == strings.ToLower(token) {
		return true
	}
	return body == NumSymbol && IsNumeric(token)
}

// --- Spans -----------------------------------------------------------------

// Span is a small type for capturing a run of input tokens. For every
// non-terminal in the chart we track which input positions it covers.
// A span denotes a start position and the position just behind the end.
type Span [2]int // (x…y)

// From returns the start value of a span.
func (s Span) From() int {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() int {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() int {
	return s[1] - s[0]
}

// Split divides a span at position mid into (x…mid) and (mid…y).
func (s Span) Split(mid int) (Span, Span) {
	return Span{s[0], mid}, Span{mid, s[1]}
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
