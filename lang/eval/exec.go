package eval

import (
	"fmt"
	"strings"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/modules"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// returnSignal, breakSignal and continueSignal are control-flow signals
// threaded back up through exec's error return, the same way lang/machine
// uses sentinel values to unwind its opcode loop on a RETURN/BREAK.
type returnSignal struct{ value interface{} }

func (returnSignal) Error() string { return "return outside of a function" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break outside of a loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue outside of a loop" }

func (in *interp) exec(bindings scope.BindingsStack, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := in.eval(bindings, n.X)
		return err

	case *ast.AssignStmt:
		v, err := in.eval(bindings, n.Value)
		if err != nil {
			return err
		}
		for _, t := range n.Targets {
			if err := in.assign(bindings, t, v); err != nil {
				return err
			}
		}
		return nil

	case *ast.AugAssignStmt:
		cur, err := in.eval(bindings, n.Target)
		if err != nil {
			return err
		}
		rhs, err := in.eval(bindings, n.Value)
		if err != nil {
			return err
		}
		v, err := applyBinOp(augOpToBinOp(n.Op), cur, rhs)
		if err != nil {
			return in.errorAt(n.Start, err)
		}
		return in.assign(bindings, n.Target, v)

	case *ast.GlobalStmt:
		if in.globals == nil {
			in.globals = map[string]bool{}
		}
		for _, id := range n.Names {
			in.globals[id.Name] = true
		}
		return nil

	case *ast.PassStmt:
		return nil
	case *ast.BreakStmt:
		return breakSignal{}
	case *ast.ContinueStmt:
		return continueSignal{}

	case *ast.ReturnStmt:
		var v interface{}
		if n.Value != nil {
			var err error
			v, err = in.eval(bindings, n.Value)
			if err != nil {
				return err
			}
		}
		return returnSignal{value: v}

	case *ast.PrintStmt:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			v, err := in.eval(bindings, a)
			if err != nil {
				return err
			}
			parts[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(in.th.Stdout, strings.Join(parts, " "))
		return nil

	case *ast.IfStmt:
		cond, err := in.eval(bindings, n.Cond)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return in.execAll(bindings, n.Body.Stmts)
		}
		if n.Else != nil {
			return in.execAll(bindings, n.Else.Stmts)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := in.eval(bindings, n.Cond)
			if err != nil {
				return err
			}
			if !isTruthy(cond) {
				break
			}
			if err := in.execAll(bindings, n.Body.Stmts); err != nil {
				if _, ok := err.(breakSignal); ok {
					return nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return err
			}
		}
		if n.Else != nil {
			return in.execAll(bindings, n.Else.Stmts)
		}
		return nil

	case *ast.ForStmt:
		items, err := in.iterate(bindings, n.Iter)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := in.assignFor(bindings, n.Targets, item); err != nil {
				return err
			}
			if err := in.execAll(bindings, n.Body.Stmts); err != nil {
				if _, ok := err.(breakSignal); ok {
					return nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return err
			}
		}
		if n.Else != nil {
			return in.execAll(bindings, n.Else.Stmts)
		}
		return nil

	case *ast.FuncDef:
		fn := &Function{Name: n.Name.Name, Params: n.Params, Body: n.Body.Stmts, closure: in.locals}
		in.locals[n.Name.Name] = fn
		return nil

	case *ast.ClassDef:
		nsLocals := map[string]interface{}{}
		sub := &interp{th: in.th, fset: in.fset, locals: nsLocals, moduleGlobals: in.moduleGlobals, frame: &frame{name: n.Name.Name, up: in.frame}}
		subBindings := append(append(scope.BindingsStack{}, bindings...), nsLocals)
		if err := sub.execAll(subBindings, n.Body.Stmts); err != nil {
			return err
		}
		in.locals[n.Name.Name] = nsLocals
		return nil

	case *ast.ImportStmt:
		for _, al := range n.Names {
			m, err := modules.Import(strings.Join(al.Path, "."))
			if err != nil {
				return in.errorAt(n.Start, err)
			}
			name := al.Path[0]
			if al.As != nil {
				name = al.As.Name
			}
			in.locals[name] = m
		}
		return nil

	case *ast.ImportFromStmt:
		modPath := strings.Join(n.Module, ".")
		m, err := modules.Import(modPath)
		if err != nil {
			return in.errorAt(n.Start, err)
		}
		for _, al := range n.Names {
			attr := al.Path[0]
			v, ok := m.GetAttr(attr)
			if !ok {
				return in.errorAt(n.Start, fmt.Errorf("module %q has no attribute %q", modPath, attr))
			}
			name := attr
			if al.As != nil {
				name = al.As.Name
			}
			in.locals[name] = v
		}
		return nil

	default:
		start, _ := s.Span()
		return in.errorAt(start, fmt.Errorf("unsupported statement %T", s))
	}
}

func (in *interp) execAll(bindings scope.BindingsStack, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := in.exec(bindings, s); err != nil {
			return err
		}
	}
	return nil
}

func augOpToBinOp(op token.Token) token.Token {
	switch op {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.PERCENT_EQ:
		return token.PERCENT
	default:
		return op
	}
}

func (in *interp) iterate(bindings scope.BindingsStack, e ast.Expr) ([]interface{}, error) {
	v, err := in.eval(bindings, e)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case []interface{}:
		return x, nil
	case string:
		out := make([]interface{}, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	case map[string]interface{}:
		out := make([]interface{}, 0, len(x))
		for k := range x {
			out = append(out, k)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%T is not iterable", v)
	}
}

func (in *interp) assignFor(bindings scope.BindingsStack, targets []ast.Expr, item interface{}) error {
	if len(targets) == 1 {
		return in.assign(bindings, targets[0], item)
	}
	elts, ok := item.([]interface{})
	if !ok || len(elts) != len(targets) {
		return fmt.Errorf("cannot unpack %T into %d targets", item, len(targets))
	}
	for i, t := range targets {
		if err := in.assign(bindings, t, elts[i]); err != nil {
			return err
		}
	}
	return nil
}

// assign implements every assignable target form (identifier, attribute,
// subscript, tuple/list unpacking) recognized by ast.IsAssignable.
func (in *interp) assign(bindings scope.BindingsStack, target ast.Expr, value interface{}) error {
	switch t := target.(type) {
	case *ast.IdentExpr:
		if in.globals[t.Name] {
			in.moduleGlobals[t.Name] = value
			return nil
		}
		in.locals[t.Name] = value
		return nil

	case *ast.AttributeExpr:
		base, err := in.eval(bindings, t.Value)
		if err != nil {
			return err
		}
		ns, ok := base.(map[string]interface{})
		if !ok {
			return in.errorAt(t.Dot, fmt.Errorf("cannot set attribute %q on %T", t.Attr.Name, base))
		}
		ns[t.Attr.Name] = value
		return nil

	case *ast.SubscriptExpr:
		base, err := in.eval(bindings, t.Value)
		if err != nil {
			return err
		}
		idx, err := in.eval(bindings, t.Index)
		if err != nil {
			return err
		}
		switch b := base.(type) {
		case []interface{}:
			i, ok := asInt(idx)
			if !ok || i < 0 || int(i) >= len(b) {
				return in.errorAt(t.Start, fmt.Errorf("index out of range"))
			}
			b[i] = value
			return nil
		case map[string]interface{}:
			b[fmt.Sprint(idx)] = value
			return nil
		default:
			return in.errorAt(t.Start, fmt.Errorf("%T does not support item assignment", base))
		}

	case *ast.TupleExpr:
		return in.assignFor(bindings, t.Elts, value)
	case *ast.ListExpr:
		return in.assignFor(bindings, t.Elts, value)
	case *ast.ParenExpr:
		return in.assign(bindings, t.X, value)

	default:
		start, _ := target.Span()
		return in.errorAt(start, fmt.Errorf("invalid assignment target %T", target))
	}
}
