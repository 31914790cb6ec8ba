package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "pyflyby"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Auto-import core for an interactive dynamic-language environment: static
scope analysis plus an import-database-driven auto-importer and evaluator.

The <command> can be one of:
       tokenize                  Execute the scanner phase and print the
                                 resulting tokens, one file per <arg>.
       parse                     Execute the parser phase and print the
                                 resulting abstract syntax tree (AST).
       missing                   Run the scope analyzer and print the
                                 sorted list of missing dotted names,
                                 one file per <arg>.
       auto-import                Run the auto-importer against each file
                                 and report the executed imports.
       eval                       Run the auto-evaluator against a single
                                 file and print the resulting value, if any.
       load-symbol                Resolve a single dotted-path or
                                 expression <arg> against the known-imports
                                 database and print the resulting value.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for <missing>, <auto-import>, <eval> and <load-symbol>:
       --db <path>               Path to a YAML known-imports database
                                 (defaults to a small built-in one).
       --prefix <text>           Log-line prefix for auto-import actions
                                 (default "[PYFLYBY]").
       --no-auto-flags           Disable automatic print-as-function retry
                                 on a syntax error.
       --allow-eval               For <load-symbol>, permit falling back to
                                 full expression evaluation when <arg> is
                                 not a pure dotted path.

Configuration defaults above may also be set via the PYFLYBY_DB,
PYFLYBY_PREFIX and PYFLYBY_AUTO_FLAGS environment variables; CLI flags
take precedence over them.

More information on the pyflyby project:
       https://github.com/mna/pyflyby
`, binName)
)

// config holds the environment-sourced defaults for the commands below,
// loaded once via github.com/caarlos0/env/v6 and overridden by whichever
// CLI flags the caller actually passed.
type config struct {
	DBPath    string `env:"DB"`
	Prefix    string `env:"PREFIX" envDefault:"[PYFLYBY]"`
	AutoFlags bool   `env:"AUTO_FLAGS" envDefault:"true"`
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	DBPath      string `flag:"db"`
	Prefix      string `flag:"prefix"`
	NoAutoFlags bool   `flag:"no-auto-flags"`
	AllowEval   bool   `flag:"allow-eval"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
	cfg   config
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := normalizeCmdName(c.args[0])

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	switch cmdName {
	case "tokenize", "parse", "missing", "autoimport":
		if len(c.args[1:]) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", c.args[0])
		}
	case "eval":
		if len(c.args[1:]) != 1 {
			return fmt.Errorf("eval: exactly one file must be provided")
		}
	case "loadsymbol":
		if len(c.args[1:]) != 1 {
			return fmt.Errorf("load-symbol: exactly one dotted-path or expression argument must be provided")
		}
	}

	if c.flags["allow-eval"] && cmdName != "loadsymbol" {
		return fmt.Errorf("%s: invalid flag 'allow-eval'", c.args[0])
	}

	return nil
}

// normalizeCmdName strips hyphens so that hyphenated CLI command names
// (auto-import, load-symbol) can dispatch to the corresponding exported
// method (AutoImport, LoadSymbol) through buildCmds' reflection-based
// lookup, which otherwise only matches a bare lowercased method name.
func normalizeCmdName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", ""))
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	if err := env.ParseWithOptions(&c.cfg, env.Options{Prefix: strings.ToUpper(binName) + "_"}); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return mainer.InvalidArgs
	}

	p := mainer.Parser{
		EnvVars:   false, // this module's own config uses caarlos0/env instead, see config above
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	// CLI flags override the environment-sourced defaults, but only the
	// flags the caller actually passed; zero-valued unset flags must not
	// clobber a configured environment default.
	if !c.flags["db"] {
		c.DBPath = c.cfg.DBPath
	}
	if !c.flags["prefix"] {
		c.Prefix = c.cfg.Prefix
	}
	if !c.flags["no-auto-flags"] {
		c.NoAutoFlags = !c.cfg.AutoFlags
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
