package scanner

import (
	"strconv"
	"strings"

	"github.com/mna/pyflyby/lang/token"
)

// number scans a Python-style integer or float literal: decimal, or 0x/0o/0b
// prefixed integers, with an optional fractional part and decimal exponent,
// and '_' permitted as a digit separator.
func (s *Scanner) number() (tok token.Token, base int, lit string) {
	start := s.off
	tok = token.ILLEGAL

	base = 10
	prefix := rune(0) // one of 0 (decimal), 'x', 'o', or 'b'
	digsep := 0        // bit 0: digit present, bit 1: '_' present
	invalid := -1      // offset of invalid digit in literal, or < 0

	if s.cur != '.' {
		tok = token.INT
		if s.cur == '0' {
			s.advance()
			switch lower(s.cur) {
			case 'x':
				s.advance()
				base, prefix = 16, 'x'
			case 'o':
				s.advance()
				base, prefix = 8, 'o'
			case 'b':
				s.advance()
				base, prefix = 2, 'b'
			default:
				digsep = 1 // the leading '0' is itself a digit
			}
		}
		digsep |= s.digits(base, &invalid)
	}

	if s.cur == '.' && prefix == 0 {
		tok = token.FLOAT
		s.advance()
		digsep |= s.digits(10, &invalid)
	}

	if digsep&1 == 0 {
		s.error(s.off, litname(prefix)+" has no digits")
	}

	if e := lower(s.cur); prefix == 0 && e == 'e' {
		s.advance()
		tok = token.FLOAT
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		ds := s.digits(10, nil)
		digsep |= ds
		if ds&1 == 0 {
			s.error(s.off, "exponent has no digits")
		}
	}

	// an integer or float literal immediately followed by a letter is almost
	// certainly a typo; Python itself rejects it.
	if isLetter(s.cur) {
		s.errorf(s.off, "invalid character %q after numeric literal", s.cur)
	}

	lit = string(s.src[start:s.off])
	if tok == token.INT && invalid >= 0 {
		s.errorf(invalid, "invalid digit %q in %s", lit[invalid-start], litname(prefix))
	}
	if digsep&2 != 0 {
		if i := invalidSep(lit); i >= 0 {
			s.error(start+i, "'_' must separate successive digits")
		}
	}
	return tok, base, lit
}

func isDecimal(rn rune) bool {
	return '0' <= rn && rn <= '9'
}

func isHexadecimal(rn rune) bool {
	return isDecimal(rn) ||
		'a' <= rn && rn <= 'f' ||
		'A' <= rn && rn <= 'F'
}

// digits accepts the sequence { digit | '_' }. If base <= 10, digits accepts
// any decimal digit but records the offset of a digit >= base in *invalid,
// if *invalid < 0. digits returns a bitset describing whether the sequence
// contained digits (bit 0) or separators '_' (bit 1).
func (s *Scanner) digits(base int, invalid *int) (digsep int) {
	if base <= 10 {
		max := rune('0' + base)
		for isDecimal(s.cur) || s.cur == '_' {
			ds := 1
			if s.cur == '_' {
				ds = 2
			} else if s.cur >= max && invalid != nil && *invalid < 0 {
				*invalid = s.off
			}
			digsep |= ds
			s.advance()
		}
	} else {
		for isHexadecimal(s.cur) || s.cur == '_' {
			ds := 1
			if s.cur == '_' {
				ds = 2
			}
			digsep |= ds
			s.advance()
		}
	}
	return
}

// invalidSep returns the index of the first invalid separator in x, or -1.
func invalidSep(x string) int {
	x1 := ' ' // prefix char, we only care if it's 'x'
	d := '.'  // digit, one of '_', '0' (a digit), or '.' (anything else)
	i := 0

	if len(x) >= 2 && x[0] == '0' {
		x1 = lower(rune(x[1]))
		if x1 == 'x' || x1 == 'o' || x1 == 'b' {
			d = '0'
			i = 2
		}
	}

	for ; i < len(x); i++ {
		p := d
		d = rune(x[i])
		switch {
		case d == '_':
			if p != '0' {
				return i
			}
		case isDecimal(d) || x1 == 'x' && isHexadecimal(d):
			d = '0'
		default:
			if p == '_' {
				return i - 1
			}
			d = '.'
		}
	}
	if d == '_' {
		return len(x) - 1
	}
	return -1
}

func litname(prefix rune) string {
	switch prefix {
	case 'x':
		return "hexadecimal literal"
	case 'o':
		return "octal literal"
	case 'b':
		return "binary literal"
	}
	return "decimal literal"
}

func lower(ch rune) rune {
	return ('a' - 'A') | ch // returns lower-case ch iff ch is ASCII letter
}

func numberToInt(lit string, base int) (int64, error) {
	if base != 10 {
		lit = lit[2:]
	}
	return strconv.ParseInt(strings.ReplaceAll(lit, "_", ""), base, 64)
}

func numberToFloat(lit string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
}
