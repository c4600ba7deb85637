package eval_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kasa-lang/kasa/eval"
	"github.com/kasa-lang/kasa/lexer"
	"github.com/kasa-lang/kasa/parser"
	"github.com/kasa-lang/kasa/utils"
)

// run evaluates source with the given stdin and returns captured stdout.
func run(t *testing.T, source, stdin string) (string, error) {
	t.Helper()

	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	statements, err := parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var out strings.Builder
	ev := eval.NewEvaluator(strings.NewReader(stdin), &out)
	err = ev.Interpret(statements)

	return out.String(), err
}

func TestEvalFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		expected, ok := testcase.Expected["eval"]
		if !ok {
			continue
		}
		actual, err := run(t, testcase.Input, "")
		if err != nil {
			t.Errorf("%s returned error: %v", testcase.Label, err)
			continue
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", testcase.Label, diff)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label  string
		source string
		want   string
		line   int
	}{
		{"mixed plus", "print 1 + \"a\";", "Operands must be two numbers or two strings.", 1},
		{"non-number arithmetic", "print \"a\" * 2;", "Operands must be numbers.", 1},
		{"non-number negation", "print -\"a\";", "Operand must be a number.", 1},
		{"undefined variable", "print missing;", "Undefined variable 'missing'.", 1},
		{"undefined assignment", "missing = 1;", "Undefined variable 'missing'.", 1},
		{"call non-callable", "\"not a function\"();", "Can only call functions and classes.", 1},
		{"arity mismatch", "fun f(a) {}\nf(1, 2);", "Expected 1 arguments but got 2.", 2},
		{"loop over non-string", "loop (var ch in 42) { print ch; }", "String loop can only iterate over strings.", 1},
		{"floor type", "print floor(\"a\");", "floor() requires a number argument.", 1},
		{"substring type", "print substring(1, 2, 3);", "First argument must be a string.", 1},
		{"substring bounds", "print substring(\"abc\", 0, 9);", "substring error: invalid indices.", 1},
		{"top-level return", "return 1;", "Can't return from top-level code.", 1},
	}

	for _, test := range tests {
		_, err := run(t, test.source, "")
		if err == nil {
			t.Errorf("%s: want runtime error, got none", test.label)
			continue
		}
		var runtimeErr eval.RuntimeError
		if !errors.As(err, &runtimeErr) {
			t.Errorf("%s: want RuntimeError, got %T", test.label, err)
			continue
		}
		if runtimeErr.Msg != test.want {
			t.Errorf("%s: got %q, want %q", test.label, runtimeErr.Msg, test.want)
		}
		if runtimeErr.Token.Line != test.line {
			t.Errorf("%s: reported line %d, want %d", test.label, runtimeErr.Token.Line, test.line)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	t.Parallel()

	// IEEE-754 semantics, not a language error.
	out, err := run(t, "print 1 / 0; print -1 / 0; print 0 / 0;", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("+Inf\n-Inf\nNaN\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRandWrapsAround(t *testing.T) {
	t.Parallel()

	var source strings.Builder
	for i := 0; i < 13; i++ {
		source.WriteString("print rand;")
	}
	out, err := run(t, source.String(), "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}

	want := "57\n97\n28\n7\n71\n1\n79\n83\n64\n82\n89\n24\n57\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRandIndexIsPerEvaluator(t *testing.T) {
	t.Parallel()

	first, err := run(t, "print !!;", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := run(t, "print !!;", "")
	if err != nil {
		t.Fatal(err)
	}
	if first != "57\n" || second != "57\n" {
		t.Errorf("fresh evaluators should restart the sequence: got %q, %q", first, second)
	}
}

func TestReadPromptsAndTrims(t *testing.T) {
	t.Parallel()

	out, err := run(t, "var x = <-; print x;", "  hello  \n")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("input required > hello\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAtEOFReturnsEmptyString(t *testing.T) {
	t.Parallel()

	out, err := run(t, "var x = read; print x == \"\";", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("input required > true\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStringLoopScopesEachIteration(t *testing.T) {
	t.Parallel()

	// The loop variable does not leak and the outer binding is untouched.
	out, err := run(t, "var ch = \"outer\"; loop (var ch in \"ab\") { printonly ch; } print \"\"; print ch;", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("ab\nouter\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStringLoopIteratesRunes(t *testing.T) {
	t.Parallel()

	out, err := run(t, "loop (var ch in \"héñ\") { print ch; }", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("h\né\nñ\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReturnUnwindsToCallBoundary(t *testing.T) {
	t.Parallel()

	source := `
fun find(s) {
  loop (var ch in s) {
    if (ch == "x") {
      return "found";
    }
  }
  return "missing";
}
print find("axb");
print find("abc");
`
	out, err := run(t, source, "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if diff := cmp.Diff("found\nmissing\n", out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentRestoredAfterRuntimeError(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("var x = 1; { var x = 2; print undefined_name; }")
	if err != nil {
		t.Fatal(err)
	}
	statements, err := parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	ev := eval.NewEvaluator(strings.NewReader(""), &out)
	if err := ev.Interpret(statements); err == nil {
		t.Fatal("want runtime error, got none")
	}

	// After unwinding, the global frame is current again.
	tokens, err = lexer.Lex("print x;")
	if err != nil {
		t.Fatal(err)
	}
	statements, err = parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if err := ev.Interpret(statements); err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if out.String() != "1\n" {
		t.Errorf("got %q, want %q", out.String(), "1\n")
	}
}

func TestClockReturnsSeconds(t *testing.T) {
	t.Parallel()

	out, err := run(t, "var t = clock(); print t > 0;", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if out != "true\n" {
		t.Errorf("got %q, want %q", out, "true\n")
	}
}

func TestDoubleNegationMatchesTruthiness(t *testing.T) {
	t.Parallel()

	// !(!v) for every value class; 0 and "" are truthy.
	source := `print !(!nil); print !(!false); print !(!true); print !(!0); print !(!""); print !(!:sym); print !(!clock);`
	out, err := run(t, source, "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	want := "false\nfalse\ntrue\ntrue\ntrue\ntrue\ntrue\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNativeStringification(t *testing.T) {
	t.Parallel()

	out, err := run(t, "print clock; print floor; print substring;", "")
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	want := "<native fn clock>\n<native fn floor>\n<native fn substring>\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
