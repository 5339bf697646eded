package cyk

import (
	"fmt"

	"github.com/npillmayer/pcfg"
)

// BackpointerKind tells how a chart entry has been derived.
type BackpointerKind uint8

// Entries are derived from a word, from a single symbol of the same span,
// or from a pair of symbols of adjacent sub-spans.
const (
	LeafBP BackpointerKind = iota
	UnaryBP
	BinaryBP
)

func (k BackpointerKind) String() string {
	switch k {
	case LeafBP:
		return "leaf"
	case UnaryBP:
		return "unary"
	case BinaryBP:
		return "binary"
	}
	return fmt.Sprintf("BackpointerKind(%d)", uint8(k))
}

// Ref references a chart entry by symbol and span.
type Ref struct {
	Symbol string
	Span   pcfg.Span
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Symbol, r.Span.From(), r.Span.To())
}

// Backpointer records the derivation of a chart entry.
//
// For LeafBP, Token holds the word. For UnaryBP, Left references the child
// symbol on the same span. For BinaryBP, Left and Right reference the
// children on the two sub-spans.
type Backpointer struct {
	Kind  BackpointerKind
	Token string
	Left  Ref
	Right Ref
}

// Leaf creates a backpointer to a word.
func Leaf(token string) Backpointer {
	return Backpointer{Kind: LeafBP, Token: token}
}

// Unary creates a backpointer to a single child symbol on span.
func Unary(child string, span pcfg.Span) Backpointer {
	return Backpointer{Kind: UnaryBP, Left: Ref{child, span}}
}

// Binary creates a backpointer to two children on adjacent spans.
func Binary(left string, lspan pcfg.Span, right string, rspan pcfg.Span) Backpointer {
	return Backpointer{
		Kind:  BinaryBP,
		Left:  Ref{left, lspan},
		Right: Ref{right, rspan},
	}
}

func (bp Backpointer) String() string {
	switch bp.Kind {
	case LeafBP:
		return bp.Token
	case UnaryBP:
		return bp.Left.Symbol
	}
	return bp.Left.String() + " " + bp.Right.String()
}
