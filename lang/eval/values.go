package eval

import (
	"fmt"

	"github.com/mna/pyflyby/lang/token"
)

func isTruthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}

func asInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func applyUnary(op token.Token, x interface{}) (interface{}, error) {
	switch op {
	case token.NOT:
		return !isTruthy(x), nil
	case token.MINUS:
		switch v := x.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
	case token.PLUS:
		switch x.(type) {
		case int64, float64:
			return x, nil
		}
	case token.TILDE:
		if v, ok := x.(int64); ok {
			return ^v, nil
		}
	}
	return nil, fmt.Errorf("unsupported operand type for %s: %T", op, x)
}

// applyBinOp implements arithmetic, bitwise and string-concatenation
// operators. Mixed int64/float64 operands promote to float64, matching the
// usual numeric-tower behavior of the host language.
func applyBinOp(op token.Token, l, r interface{}) (interface{}, error) {
	if op == token.PLUS {
		if ls, ok := l.(string); ok {
			if rs, ok := r.(string); ok {
				return ls + rs, nil
			}
		}
		if ll, ok := l.([]interface{}); ok {
			if rl, ok := r.([]interface{}); ok {
				out := make([]interface{}, 0, len(ll)+len(rl))
				out = append(out, ll...)
				out = append(out, rl...)
				return out, nil
			}
		}
	}

	li, liok := l.(int64)
	ri, riok := r.(int64)
	if liok && riok {
		switch op {
		case token.PLUS:
			return li + ri, nil
		case token.MINUS:
			return li - ri, nil
		case token.STAR:
			return li * ri, nil
		case token.SLASHSLASH:
			if ri == 0 {
				return nil, fmt.Errorf("integer division by zero")
			}
			return li / ri, nil
		case token.SLASH:
			if ri == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return float64(li) / float64(ri), nil
		case token.PERCENT:
			if ri == 0 {
				return nil, fmt.Errorf("integer division by zero")
			}
			return li % ri, nil
		case token.STARSTAR:
			return ipow(li, ri), nil
		case token.PIPE:
			return li | ri, nil
		case token.AMPERSAND:
			return li & ri, nil
		case token.CIRCUMFLEX:
			return li ^ ri, nil
		case token.LTLT:
			return li << uint(ri), nil
		case token.GTGT:
			return li >> uint(ri), nil
		}
	}

	lf, lfok := asFloat(l)
	rf, rfok := asFloat(r)
	if lfok && rfok {
		switch op {
		case token.PLUS:
			return lf + rf, nil
		case token.MINUS:
			return lf - rf, nil
		case token.STAR:
			return lf * rf, nil
		case token.SLASH, token.SLASHSLASH:
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return lf / rf, nil
		}
	}

	return nil, fmt.Errorf("unsupported operand types for %s: %T and %T", op, l, r)
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

func applyCompare(op token.Token, l, r interface{}) (bool, error) {
	switch op {
	case token.IS:
		return l == r, nil
	case token.IN:
		return containsValue(r, l)
	}

	if lf, ok := asFloat(l); ok {
		if rf, ok := asFloat(r); ok {
			return compareOrdered(op, lf, rf), nil
		}
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return compareOrdered(op, ls, rs), nil
		}
	}
	switch op {
	case token.EQL:
		return l == r, nil
	case token.NEQ:
		return l != r, nil
	}
	return false, fmt.Errorf("unsupported comparison %s between %T and %T", op, l, r)
}

type ordered interface{ ~int64 | ~float64 | ~string }

func compareOrdered[T ordered](op token.Token, l, r T) bool {
	switch op {
	case token.LT:
		return l < r
	case token.LE:
		return l <= r
	case token.GT:
		return l > r
	case token.GE:
		return l >= r
	case token.EQL:
		return l == r
	case token.NEQ:
		return l != r
	}
	return false
}

func containsValue(container, needle interface{}) (bool, error) {
	switch c := container.(type) {
	case []interface{}:
		for _, v := range c {
			if v == needle {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("'in <string>' requires string as left operand, not %T", needle)
		}
		return stringContains(c, s), nil
	case map[string]interface{}:
		key := fmt.Sprint(needle)
		_, ok := c[key]
		return ok, nil
	default:
		return false, fmt.Errorf("argument of type %T is not iterable", container)
	}
}

func stringContains(s, substr string) bool {
	return len(substr) == 0 || indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}
