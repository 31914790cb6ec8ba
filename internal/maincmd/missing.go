package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scanner"
	"github.com/mna/pyflyby/lang/scope"
)

// Missing implements the `missing` subcommand: spec.md's
// find_missing_imports, run against an empty bindings stack (just the
// host builtins) for each file given.
func (c *Cmd) Missing(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return MissingFiles(ctx, stdio, !c.NoAutoFlags, args...)
}

// MissingFiles implements the `missing` subcommand's logic as a standalone,
// unit-testable function, following the same ParseFiles-then-report shape
// as TokenizeFiles and ParseFiles in this package. autoFlags controls
// whether a file that fails to parse is retried once with print-as-function
// mode toggled (spec.md §4.1, §7), matching the --no-auto-flags /
// PYFLYBY_AUTO_FLAGS configuration documented for this command.
func MissingFiles(ctx context.Context, stdio mainer.Stdio, autoFlags bool, args ...string) error {
	_, mods, err := parser.ParseFiles(ctx, 0, autoFlags, args...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	for i, mod := range mods {
		names, aerr := scope.FindMissingImports(mod, scope.BindingsStack{{}})
		if aerr != nil {
			return printError(stdio, fmt.Errorf("%s: %w", args[i], aerr))
		}
		for _, name := range names {
			fmt.Fprintf(stdio.Stdout, "%s: %s\n", args[i], name)
		}
	}
	return nil
}
