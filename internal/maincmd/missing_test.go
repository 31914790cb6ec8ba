package maincmd_test

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/pyflyby/internal/filetest"
	"github.com/mna/pyflyby/internal/maincmd"
)

var testUpdateMissingTests = flag.Bool("test.update-missing-tests", false, "If set, replace expected missing-imports test results with actual results.")

// TestMissingFiles exercises find_missing_imports end to end through the
// `missing` subcommand's underlying MissingFiles, covering the scoping
// rules lang/scope enforces: a list comprehension leaks its first-clause
// target into the enclosing scope, a generator expression does not, and a
// module-level function may forward-reference a sibling defined later.
func TestMissingFiles(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".py") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			_ = maincmd.MissingFiles(ctx, stdio, true, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateMissingTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateMissingTests)
		})
	}
}
