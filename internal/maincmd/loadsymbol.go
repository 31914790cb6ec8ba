package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/lang/loader"
	"github.com/mna/pyflyby/lang/scope"
)

// LoadSymbol implements the `load-symbol` subcommand: spec.md's
// load_symbol, resolving a single dotted-path or (with --allow-eval)
// expression argument against an empty bindings mapping, auto-importing
// along the way.
func (c *Cmd) LoadSymbol(ctx context.Context, stdio mainer.Stdio, args []string) error {
	text := args[0]

	db, err := loadDB(c.DBPath)
	if err != nil {
		return printError(stdio, err)
	}

	v, err := loader.LoadSymbol(ctx, text, scope.BindingsStack{{}}, db, true, c.AllowEval, !c.NoAutoFlags)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintf(stdio.Stdout, "%v\n", v)
	return nil
}
