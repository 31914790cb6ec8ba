package token

import (
	"fmt"
	"sort"
)

// Pos is a compact encoding of a source position: an offset into the
// concatenation of all files known to a FileSet. The zero Pos (NoPos) means
// "no position known".
type Pos int

// NoPos is the zero value for Pos; it means "unknown position".
const NoPos Pos = 0

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool { return p != NoPos }

// Position is the expanded, human-readable form of a Pos.
type Position struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based, in runes
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// File tracks line-start offsets for a single source file so that a byte
// offset can be translated into a line/column pair.
type File struct {
	name  string
	base  int // offset of the first byte of this file within its FileSet
	size  int
	lines []int // offsets (0-based, within this file) of the start of each line after the first
}

func (f *File) Name() string { return f.name }
func (f *File) Base() int    { return f.base }
func (f *File) Size() int    { return f.size }

// Pos returns the Pos value for the given 0-based byte offset within f.
func (f *File) Pos(offset int) Pos { return Pos(f.base + offset) }

// Offset returns the 0-based byte offset of p within f.
func (f *File) Offset(p Pos) int { return int(p) - f.base }

// AddLine records a newline character at the given 0-based byte offset; the
// following line is then understood to start at offset+1. Offsets must be
// added in increasing order; out-of-order or duplicate offsets are ignored.
func (f *File) AddLine(offset int) {
	start := offset + 1
	if n := len(f.lines); (n == 0 || f.lines[n-1] < start) && start <= f.size {
		f.lines = append(f.lines, start)
	}
}

func (f *File) unpack(offset int) (line, column int) {
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset })
	line = i + 1
	if i == 0 {
		column = offset + 1
	} else {
		column = offset - f.lines[i-1] + 1
	}
	return line, column
}

// Position returns the expanded position for p, which must belong to f.
func (f *File) Position(p Pos) Position {
	if !p.IsValid() {
		return Position{Filename: f.name}
	}
	line, col := f.unpack(f.Offset(p))
	return Position{Filename: f.name, Line: line, Column: col}
}

// FileSet is a lightweight registry of source files sharing one Pos space,
// following the same base/size bookkeeping as the standard library's
// go/token.FileSet.
type FileSet struct {
	base  int
	files []*File
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{base: 1} }

// AddFile registers a new file of the given size (in bytes) and returns its
// handle. If base <= 0, the next available base is used.
func (s *FileSet) AddFile(name string, base, size int) *File {
	if base <= 0 {
		base = s.base
	}
	f := &File{name: name, base: base, size: size}
	s.base = base + size + 1 // +1 reserves a position for EOF
	s.files = append(s.files, f)
	return f
}

// File returns the file containing p, or nil if none does.
func (s *FileSet) File(p Pos) *File {
	for _, f := range s.files {
		if int(p) >= f.base && int(p) <= f.base+f.size {
			return f
		}
	}
	return nil
}

// Position expands p using whichever file in s contains it.
func (s *FileSet) Position(p Pos) Position {
	if f := s.File(p); f != nil {
		return f.Position(p)
	}
	return Position{}
}

// PosMode controls how FormatPos renders a position.
type PosMode int

const (
	PosLong    PosMode = iota // file:line:col
	PosOffsets                // 0-based byte offset
	PosRaw                    // raw Pos integer
	PosNone                   // empty string
)

func (m PosMode) String() string {
	switch m {
	case PosLong:
		return "long"
	case PosOffsets:
		return "offsets"
	case PosRaw:
		return "raw"
	case PosNone:
		return "none"
	default:
		return "invalid"
	}
}

// FormatPos renders p according to mode. withFilename controls whether the
// filename prefix is included for PosLong.
func FormatPos(mode PosMode, f *File, p Pos, withFilename bool) string {
	switch mode {
	case PosOffsets:
		if !p.IsValid() {
			return "-"
		}
		return fmt.Sprintf("%d", f.Offset(p))
	case PosRaw:
		return fmt.Sprintf("%d", int(p))
	case PosNone:
		return ""
	default: // PosLong
		if !p.IsValid() {
			if withFilename {
				return fmt.Sprintf("%s:-:-", f.Name())
			}
			return "-:-"
		}
		pos := f.Position(p)
		if !withFilename {
			return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
		}
		return pos.String()
	}
}

// Spanner is implemented by anything with a source span, used by PosInside
// and PosAdjacent.
type Spanner interface {
	Span() (start, end Pos)
}

// PosInside reports whether test's span is entirely inside ref's span
// (inclusive).
func PosInside(ref, test Spanner) bool {
	rs, re := ref.Span()
	ts, te := test.Span()
	return rs <= ts && te <= re
}

// PosAdjacent reports whether the span that starts later (test or ref)
// starts at most one line after the line on which the other span ends, per
// f's line table. It is used to decide
// whether two nodes are close enough to share a single diagnostic.
func PosAdjacent(ref, test Spanner, f *File) bool {
	rs, re := ref.Span()
	ts, te := test.Span()
	if rs > ts {
		rs, re, ts, te = ts, te, rs, re
	}
	refLine, _ := f.unpack(f.Offset(re))
	testLine, _ := f.unpack(f.Offset(ts))
	return testLine-refLine <= 1
}
