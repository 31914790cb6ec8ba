package parser_test

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestGrammarEBNF cross-checks grammar.ebnf for internal consistency: every
// production referenced from Module must be declared, and the grammar must
// not contain unreachable or ill-formed productions. It is a documentation
// check on the hand-maintained EBNF description of this package's
// recursive-descent parser, not a generator driving the parser itself.
func TestGrammarEBNF(t *testing.T) {
	f, err := os.Open("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse("grammar.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(grammar, "Module"); err != nil {
		t.Fatal(err)
	}
}
