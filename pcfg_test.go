package pcfg

import "testing"

func TestIsNumeric(t *testing.T) {
	numeric := []string{"42", "3,000", "1.5", "1987", "-12", "50%"}
	for _, tok := range numeric {
		if !IsNumeric(tok) {
			t.Errorf("expected %q to be numeric, isn't", tok)
		}
	}
	other := []string{"42nd", "0", "", "dog", "*-1", "%", "1a"}
	for _, tok := range other {
		if IsNumeric(tok) {
			t.Errorf("expected %q not to be numeric, is", tok)
		}
	}
}

func TestMatchesLexical(t *testing.T) {
	if !MatchesLexical("dog", "Dog") {
		t.Errorf("expected lexical body 'dog' to match token 'Dog'")
	}
	if !MatchesLexical(NumSymbol, "42") {
		t.Errorf("expected <NUM> to match '42'")
	}
	if MatchesLexical(NumSymbol, "0") {
		t.Errorf("expected <NUM> not to match '0'")
	}
	if MatchesLexical("Dog", "dog") {
		t.Errorf("bodies are lower case; 'Dog' should not match")
	}
}

func TestLexicalForm(t *testing.T) {
	if f := LexicalForm("The"); f != "the" {
		t.Errorf("expected 'the', got %q", f)
	}
	if f := LexicalForm("1,000"); f != NumSymbol {
		t.Errorf("expected %s, got %q", NumSymbol, f)
	}
}

func TestSpan(t *testing.T) {
	s := Span{0, 5}
	if s.Len() != 5 {
		t.Errorf("expected length 5, is %d", s.Len())
	}
	l, r := s.Split(2)
	if l != (Span{0, 2}) || r != (Span{2, 5}) {
		t.Errorf("unexpected split of %v: %v %v", s, l, r)
	}
	if s.String() != "(0…5)" {
		t.Errorf("unexpected string for span: %s", s)
	}
}

func TestSliceCorpus(t *testing.T) {
	c := NewSliceCorpus(Example{SourceID: "a"}, Example{SourceID: "b"})
	var ids []string
	for c.Next() {
		ids = append(ids, c.Example().SourceID)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected iteration order: %v", ids)
	}
	if c.Next() {
		t.Errorf("corpus should be exhausted")
	}
}
