package token

// Value carries the literal data associated with a token returned by the
// scanner. Raw is always the exact source text of the token; Int, Float and
// String hold the decoded value for INT, FLOAT and STRING/BYTES tokens
// respectively, and are otherwise zero.
type Value struct {
	Raw    string
	Pos    Pos
	Int    int64
	Float  float64
	String string // decoded string/bytes contents
}
