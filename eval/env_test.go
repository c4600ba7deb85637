package eval_test

import (
	"errors"
	"testing"

	"github.com/kasa-lang/kasa/eval"
	"github.com/kasa-lang/kasa/token"
)

func ident(name string) token.Token {
	return token.Token{Kind: token.IDENTIFIER, Lexeme: name, Line: 1}
}

func TestDefineWritesCurrentFrame(t *testing.T) {
	t.Parallel()

	outer := eval.NewEnv(nil)
	outer.Define("x", eval.Number(1))

	inner := eval.NewEnv(outer)
	inner.Define("x", eval.Number(2))

	got, err := inner.Get(ident("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got != eval.Number(2) {
		t.Errorf("inner x = %v, want 2", got)
	}

	got, err = outer.Get(ident("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got != eval.Number(1) {
		t.Errorf("outer x = %v, want 1", got)
	}
}

func TestGetWalksParentChain(t *testing.T) {
	t.Parallel()

	outer := eval.NewEnv(nil)
	outer.Define("x", eval.String("from outer"))
	inner := eval.NewEnv(eval.NewEnv(outer))

	got, err := inner.Get(ident("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got != eval.String("from outer") {
		t.Errorf("got %v", got)
	}
}

func TestAssignUpdatesNearestBinding(t *testing.T) {
	t.Parallel()

	outer := eval.NewEnv(nil)
	outer.Define("x", eval.Number(1))
	inner := eval.NewEnv(outer)

	if err := inner.Assign(ident("x"), eval.Number(5)); err != nil {
		t.Fatal(err)
	}

	got, err := outer.Get(ident("x"))
	if err != nil {
		t.Fatal(err)
	}
	if got != eval.Number(5) {
		t.Errorf("outer x = %v, want 5", got)
	}
}

func TestUndefinedNameFailsAtRoot(t *testing.T) {
	t.Parallel()

	env := eval.NewEnv(eval.NewEnv(nil))

	_, err := env.Get(ident("missing"))
	var runtimeErr eval.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("want RuntimeError, got %T", err)
	}
	if runtimeErr.Msg != "Undefined variable 'missing'." {
		t.Errorf("got %q", runtimeErr.Msg)
	}

	if err := env.Assign(ident("missing"), eval.Nil{}); err == nil {
		t.Error("assign to undefined name: want error, got none")
	}
}

func TestValueEquality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		a, b  eval.Value
		want  bool
	}{
		{"nil equals nil", eval.Nil{}, eval.Nil{}, true},
		{"nil vs zero", eval.Nil{}, eval.Number(0), false},
		{"numbers", eval.Number(1.5), eval.Number(1.5), true},
		{"strings", eval.String("a"), eval.String("a"), true},
		{"bools", eval.Bool(true), eval.Bool(true), true},
		{"symbol vs string spelling", eval.Symbol("ok"), eval.String(":ok"), false},
		{"cross tag", eval.Number(1), eval.String("1"), false},
	}

	for _, test := range tests {
		if got := eval.Equal(test.a, test.b); got != test.want {
			t.Errorf("%s: Equal(%v, %v) = %v, want %v", test.label, test.a, test.b, got, test.want)
		}
		// Symmetry.
		if got := eval.Equal(test.b, test.a); got != test.want {
			t.Errorf("%s: Equal(%v, %v) = %v, want %v", test.label, test.b, test.a, got, test.want)
		}
	}
}
