package scanner

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mna/pyflyby/lang/token"
)

// PrintError prints err to w, one line per entry if err is an ErrorList,
// matching go/scanner.PrintError's behavior for its own ErrorList type.
func PrintError(w io.Writer, err error) {
	var list ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintf(w, "%s\n", e)
		}
		return
	}
	fmt.Fprintf(w, "%s\n", err)
}

// Error is one error reported while scanning or parsing a fragment,
// tied to the Position where it was detected. Grounded on the standard
// library's go/scanner.Error, adapted to this module's own token.Position
// (the standard library type can't be used directly: it's tied to
// go/token.Position, not this module's offset-based Position).
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Filename != "" || e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// ErrorList is an accumulating, sortable list of *Error, implementing the
// error interface so it can be returned as a single value. The zero value
// is ready to use.
type ErrorList []*Error

// Add appends an error at pos with the given message; it matches the
// func(token.Position, string) shape Scanner.Init expects for its error
// handler.
func (el *ErrorList) Add(pos token.Position, msg string) {
	*el = append(*el, &Error{Pos: pos, Msg: msg})
}

// Reset empties the list.
func (el *ErrorList) Reset() { *el = (*el)[0:0] }

func (el ErrorList) Len() int      { return len(el) }
func (el ErrorList) Swap(i, j int) { el[i], el[j] = el[j], el[i] }
func (el ErrorList) Less(i, j int) bool {
	a, b := el[i].Pos, el[j].Pos
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// Sort sorts the list in place by position, file first.
func (el ErrorList) Sort() { sort.Sort(el) }

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", el[0].Error(), len(el)-1)
	return b.String()
}

// Err returns nil if the list is empty, el otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Unwrap lets errors.Is/errors.As see through to every individual error.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
