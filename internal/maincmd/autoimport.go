package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// AutoImport implements the `auto-import` subcommand: spec.md's
// auto_import, run against an empty writable bindings mapping for each
// file given, logging every import action to stdout.
func (c *Cmd) AutoImport(ctx context.Context, stdio mainer.Stdio, args []string) error {
	db, err := loadDB(c.DBPath)
	if err != nil {
		return printError(stdio, err)
	}

	opts := autoimport.Options{
		DB:     db,
		Log:    stdio.Stdout,
		Prefix: c.Prefix,
	}

	allOK := true
	for _, file := range args {
		src, rerr := os.ReadFile(file)
		if rerr != nil {
			return printError(stdio, rerr)
		}
		mod, perr := parser.ParseModule(ctx, token.NewFileSet(), file, src, 0, !c.NoAutoFlags)
		if perr != nil {
			return printError(stdio, perr)
		}
		ok, aerr := autoimport.AutoImport(ctx, mod, scope.BindingsStack{{}}, opts)
		if aerr != nil {
			return printError(stdio, fmt.Errorf("%s: %w", file, aerr))
		}
		allOK = allOK && ok
	}
	if !allOK {
		return printError(stdio, fmt.Errorf("one or more imports failed"))
	}
	return nil
}
