package eval

import (
	"fmt"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

func (in *interp) eval(bindings scope.BindingsStack, e ast.Expr) (interface{}, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value, nil

	case *ast.IdentExpr:
		if in.globals[n.Name] {
			if v, ok := in.moduleGlobals[n.Name]; ok {
				return v, nil
			}
		}
		if v, ok := in.locals[n.Name]; ok {
			return v, nil
		}
		if v, ok := bindings.Get(n.Name); ok {
			return v, nil
		}
		return nil, in.errorAt(n.Pos, fmt.Errorf("name %q is not defined", n.Name))

	case *ast.AttributeExpr:
		base, err := in.eval(bindings, n.Value)
		if err != nil {
			return nil, err
		}
		ag, ok := base.(scope.Attributer)
		if !ok {
			return nil, in.errorAt(n.Dot, fmt.Errorf("%T has no attribute %q", base, n.Attr.Name))
		}
		v, ok := ag.GetAttr(n.Attr.Name)
		if !ok {
			return nil, in.errorAt(n.Dot, fmt.Errorf("no attribute %q", n.Attr.Name))
		}
		return v, nil

	case *ast.SubscriptExpr:
		return in.evalSubscript(bindings, n)

	case *ast.CallExpr:
		return in.evalCall(bindings, n)

	case *ast.TupleExpr:
		return in.evalElts(bindings, n.Elts)
	case *ast.ListExpr:
		return in.evalElts(bindings, n.Elts)
	case *ast.SetExpr:
		return in.evalElts(bindings, n.Elts)

	case *ast.DictExpr:
		m := make(map[string]interface{}, len(n.Values))
		for i, v := range n.Values {
			val, err := in.eval(bindings, v)
			if err != nil {
				return nil, err
			}
			if n.Keys[i] == nil {
				continue // **spread, not supported by this thin evaluator
			}
			k, err := in.eval(bindings, n.Keys[i])
			if err != nil {
				return nil, err
			}
			m[fmt.Sprint(k)] = val
		}
		return m, nil

	case *ast.UnaryExpr:
		x, err := in.eval(bindings, n.X)
		if err != nil {
			return nil, err
		}
		v, err := applyUnary(n.Op, x)
		if err != nil {
			return nil, in.errorAt(n.OpPos, err)
		}
		return v, nil

	case *ast.BinOpExpr:
		l, err := in.eval(bindings, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := in.eval(bindings, n.Right)
		if err != nil {
			return nil, err
		}
		v, err := applyBinOp(n.Op, l, r)
		if err != nil {
			return nil, in.errorAt(n.OpPos, err)
		}
		return v, nil

	case *ast.BoolOpExpr:
		return in.evalBoolOp(bindings, n)

	case *ast.CompareExpr:
		return in.evalCompare(bindings, n)

	case *ast.LambdaExpr:
		return &Function{Name: "<lambda>", Params: n.Params, Body: []ast.Stmt{&ast.ReturnStmt{Value: n.Body}}, closure: in.locals}, nil

	case *ast.ParenExpr:
		return in.eval(bindings, n.X)

	case *ast.StarExpr:
		return in.eval(bindings, n.X)

	case *ast.ListCompExpr, *ast.SetCompExpr, *ast.DictCompExpr, *ast.GeneratorExpr:
		return nil, fmt.Errorf("comprehensions are not supported by auto_eval")

	default:
		start, _ := e.Span()
		return nil, in.errorAt(start, fmt.Errorf("unsupported expression %T", e))
	}
}

func (in *interp) evalElts(bindings scope.BindingsStack, elts []ast.Expr) ([]interface{}, error) {
	out := make([]interface{}, 0, len(elts))
	for _, el := range elts {
		v, err := in.eval(bindings, el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *interp) evalSubscript(bindings scope.BindingsStack, n *ast.SubscriptExpr) (interface{}, error) {
	base, err := in.eval(bindings, n.Value)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(bindings, n.Index)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case []interface{}:
		i, ok := asInt(idx)
		if !ok || i < 0 || int(i) >= len(b) {
			return nil, in.errorAt(n.Start, fmt.Errorf("index out of range"))
		}
		return b[i], nil
	case map[string]interface{}:
		v, ok := b[fmt.Sprint(idx)]
		if !ok {
			return nil, in.errorAt(n.Start, fmt.Errorf("key %v not found", idx))
		}
		return v, nil
	case string:
		i, ok := asInt(idx)
		if !ok || i < 0 || int(i) >= len(b) {
			return nil, in.errorAt(n.Start, fmt.Errorf("index out of range"))
		}
		return string(b[i]), nil
	default:
		return nil, in.errorAt(n.Start, fmt.Errorf("%T is not subscriptable", base))
	}
}

func (in *interp) evalBoolOp(bindings scope.BindingsStack, n *ast.BoolOpExpr) (interface{}, error) {
	var last interface{}
	for _, v := range n.Values {
		val, err := in.eval(bindings, v)
		if err != nil {
			return nil, err
		}
		last = val
		truthy := isTruthy(val)
		if n.Op == token.OR && truthy {
			return val, nil
		}
		if n.Op == token.AND && !truthy {
			return val, nil
		}
	}
	return last, nil
}

func (in *interp) evalCompare(bindings scope.BindingsStack, n *ast.CompareExpr) (interface{}, error) {
	left, err := in.eval(bindings, n.Left)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Ops {
		right, err := in.eval(bindings, n.Comparators[i])
		if err != nil {
			return nil, err
		}
		ok, err := applyCompare(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}
