package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/eval"
	"github.com/mna/pyflyby/lang/scope"
)

// Eval implements the `eval` subcommand: spec.md's auto_eval, run against a
// single file, against an empty writable bindings mapping. If the fragment
// evaluates to a value (rather than only executing statements), it is
// printed to stdout.
func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return printError(stdio, err)
	}

	db, err := loadDB(c.DBPath)
	if err != nil {
		return printError(stdio, err)
	}

	bindings := scope.BindingsStack{{}}
	opts := eval.Options{
		AutoImport: autoimport.Options{
			DB:     db,
			Log:    stdio.Stdout,
			Prefix: c.Prefix,
		},
		NoAutoFlags: c.NoAutoFlags,
		Thread:      &eval.Thread{Stdout: stdio.Stdout, Stderr: stdio.Stderr, Stdin: stdio.Stdin},
	}

	v, err := eval.AutoEval(ctx, file, src, bindings, opts)
	if err != nil {
		return printError(stdio, err)
	}
	if v != nil {
		fmt.Fprintf(stdio.Stdout, "%v\n", v)
	}
	return nil
}
