package eval

import (
	"fmt"
	"reflect"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/scope"
)

func (in *interp) evalCall(bindings scope.BindingsStack, n *ast.CallExpr) (interface{}, error) {
	callee, err := in.eval(bindings, n.Func)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, 0, len(n.Args))
	for _, a := range n.Args {
		if star, ok := a.(*ast.StarExpr); ok {
			v, err := in.eval(bindings, star.X)
			if err != nil {
				return nil, err
			}
			elts, ok := v.([]interface{})
			if !ok {
				return nil, in.errorAt(n.Lparen, fmt.Errorf("argument after * must be iterable, got %T", v))
			}
			args = append(args, elts...)
			continue
		}
		v, err := in.eval(bindings, a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	kwargs := make(map[string]interface{}, len(n.Keywords))
	for _, kw := range n.Keywords {
		if kw.Name == nil {
			continue // **kwargs spread, not supported by this thin evaluator
		}
		v, err := in.eval(bindings, kw.Value)
		if err != nil {
			return nil, err
		}
		kwargs[kw.Name.Name] = v
	}

	switch fn := callee.(type) {
	case *Function:
		return in.callFunction(bindings, fn, args, kwargs)
	default:
		v, err := callGoValue(callee, args)
		if err != nil {
			return nil, in.errorAt(n.Lparen, err)
		}
		return v, nil
	}
}

// callFunction invokes a user-defined *Function: a fresh locals map seeded
// from its closure, positional and keyword arguments bound against its
// parameter list (defaults evaluated against the closure), then its body is
// executed in that frame until a return (or the body falls off the end).
func (in *interp) callFunction(bindings scope.BindingsStack, fn *Function, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	locals := make(map[string]interface{}, len(fn.closure)+len(fn.Params.Args))
	for k, v := range fn.closure {
		locals[k] = v
	}

	params := fn.Params.Args
	for i, p := range params {
		name := p.Name.Name
		switch {
		case i < len(args):
			locals[name] = args[i]
		case kwargs != nil && hasKey(kwargs, name):
			locals[name] = kwargs[name]
		case p.Default != nil:
			defIn := &interp{th: in.th, fset: in.fset, frame: in.frame, locals: fn.closure, moduleGlobals: in.moduleGlobals}
			v, err := defIn.eval(bindings, p.Default)
			if err != nil {
				return nil, err
			}
			locals[name] = v
		default:
			return nil, fmt.Errorf("%s() missing required argument: %q", fn.Name, name)
		}
	}
	if fn.Params.VarArg != nil {
		extra := []interface{}{}
		if len(args) > len(params) {
			extra = append(extra, args[len(params):]...)
		}
		locals[fn.Params.VarArg.Name] = extra
	}
	if fn.Params.KwArg != nil {
		locals[fn.Params.KwArg.Name] = kwargs
	}

	callFrame := &interp{th: in.th, fset: in.fset, locals: locals, moduleGlobals: in.moduleGlobals, frame: &frame{name: fn.Name, up: in.frame}}
	callBindings := append(scope.BindingsStack{}, bindings...)
	callBindings = append(callBindings, locals)

	for _, s := range fn.Body {
		err := callFrame.exec(callBindings, s)
		if err == nil {
			continue
		}
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return nil, nil
}

func hasKey(m map[string]interface{}, k string) bool {
	_, ok := m[k]
	return ok
}

// callGoValue invokes a host Go function value (as registered by
// lang/modules) via reflection, unwrapping a trailing error return per Go
// convention.
func callGoValue(callee interface{}, args []interface{}) (interface{}, error) {
	fv := reflect.ValueOf(callee)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not callable", callee)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("variadic host functions are not supported")
	}
	if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("expected %d arguments, got %d", ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := ft.In(i)
		av := reflect.ValueOf(a)
		if a == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		if !av.Type().AssignableTo(want) {
			if av.Type().ConvertibleTo(want) {
				av = av.Convert(want)
			} else {
				return nil, fmt.Errorf("argument %d: cannot use %T as %s", i, a, want)
			}
		}
		in[i] = av
	}

	out := fv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if errv, ok := out[0].Interface().(error); ok {
			return nil, errv
		}
		return out[0].Interface(), nil
	case 2:
		var err error
		if e, ok := out[1].Interface().(error); ok {
			err = e
		}
		return out[0].Interface(), err
	default:
		return nil, fmt.Errorf("host function returns %d values, unsupported", len(out))
	}
}
