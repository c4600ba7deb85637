package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/kasa-lang/kasa/eval"
	"github.com/kasa-lang/kasa/lexer"
	"github.com/kasa-lang/kasa/parser"
)

type Phase string

const (
	// PhaseScan prints the token stream and stops.
	PhaseScan Phase = "scan"
	// PhaseParse parses and evaluates. The default.
	PhaseParse Phase = "parse"
)

// Runner owns one interpreter session: the evaluator, the selected phase,
// and the error flags that decide the process exit code.
type Runner struct {
	Phase           Phase
	HadParseError   bool
	HadRuntimeError bool

	interp *eval.Evaluator
	stdout io.Writer
	stderr io.Writer
}

func NewRunner(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{
		Phase:  PhaseParse,
		interp: eval.NewEvaluator(stdin, stdout),
		stdout: stdout,
		stderr: stderr,
	}
}

// RunSource drives one batch of source text through the pipeline, reporting
// diagnostics to stderr and updating the error flags. Evaluator state
// persists across calls, so the REPL keeps its definitions.
func (r *Runner) RunSource(source string) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		r.reportParseErrors(err)
	}

	if r.Phase == PhaseScan {
		for _, tok := range tokens {
			fmt.Fprintln(r.stdout, tok)
		}
		return
	}

	statements, err := parser.NewParser(tokens).Parse()
	if err != nil {
		r.reportParseErrors(err)
	}

	// Static errors suppress evaluation.
	if r.HadParseError {
		return
	}

	if err := r.interp.Interpret(statements); err != nil {
		var runtimeErr eval.RuntimeError
		if errors.As(err, &runtimeErr) {
			fmt.Fprintf(r.stderr, "%s\n[line %d]\n", runtimeErr.Msg, runtimeErr.Token.Line)
		} else {
			fmt.Fprintln(r.stderr, err)
		}
		r.HadRuntimeError = true
	}
}

// ResetParseError clears the static error flag between REPL lines.
func (r *Runner) ResetParseError() {
	r.HadParseError = false
}

// ExitCode maps the error flags to the process exit status.
func (r *Runner) ExitCode() int {
	if r.HadParseError {
		return 65
	}
	if r.HadRuntimeError {
		return 70
	}
	return 0
}

func (r *Runner) reportParseErrors(err error) {
	r.HadParseError = true
	if errs, ok := err.(interface{ Unwrap() []error }); ok {
		for _, err := range errs.Unwrap() {
			fmt.Fprintln(r.stderr, err)
		}
	} else {
		fmt.Fprintln(r.stderr, err)
	}
}
