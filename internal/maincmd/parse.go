package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scanner"
	"github.com/mna/pyflyby/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, token.PosLong, "", args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, nodeFmt string, files ...string) error {
	printer := ast.Printer{
		Output:  stdio.Stdout,
		Pos:     posMode,
		NodeFmt: nodeFmt,
	}
	fs, mods, err := parser.ParseFiles(ctx, 0, true, files...)
	for _, mod := range mods {
		start, _ := mod.Span()
		file := fs.File(start)
		if perr := printer.Print(mod, file); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
