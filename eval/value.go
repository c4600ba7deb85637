package eval

import (
	"fmt"
	"strconv"

	"github.com/kasa-lang/kasa/ast"
	"github.com/kasa-lang/kasa/token"
)

// Value is a runtime value. String returns the user-visible form used by
// print, so integral numbers render without a fractional part.
type Value interface {
	fmt.Stringer
	Truthy() bool
}

type Nil struct{}

func (Nil) String() string {
	return "nil"
}

func (Nil) Truthy() bool {
	return false
}

var _ Value = Nil{}

type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) Truthy() bool {
	return bool(b)
}

var _ Value = Bool(false)

type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (n Number) Truthy() bool {
	return true
}

var _ Value = Number(0)

type String string

func (s String) String() string {
	return string(s)
}

func (s String) Truthy() bool {
	return true
}

var _ Value = String("")

// Symbol is a `:name` atom. Symbols only ever compare equal to the same
// symbol, never to the string spelling.
type Symbol string

func (s Symbol) String() string {
	return ":" + string(s)
}

func (s Symbol) Truthy() bool {
	return true
}

var _ Value = Symbol("")

// Callable is anything invocable with `(...)`: user functions and natives.
// where is the call-site token used to attribute runtime errors.
type Callable interface {
	Value
	Arity() int
	Call(ev *Evaluator, where token.Token, args []Value) (Value, error)
}

// Function is a user-defined function closed over the environment that was
// current at its declaration.
type Function struct {
	decl    *ast.Function
	closure *Env
}

func (f *Function) String() string {
	return "<fn " + f.decl.Name.Lexeme + ">"
}

func (f *Function) Truthy() bool {
	return true
}

func (f *Function) Arity() int {
	return len(f.decl.Params)
}

func (f *Function) Call(ev *Evaluator, where token.Token, args []Value) (Value, error) {
	env := NewEnv(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	err := ev.executeBlock(f.decl.Body, env)
	if sig, ok := err.(returnSignal); ok {
		return sig.value, nil
	}
	if err != nil {
		return nil, err
	}

	return Nil{}, nil
}

var _ Callable = &Function{}

// Equal implements `==`: nils are equal, same-tag values compare
// structurally, cross-tag comparison is false. It never errors.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case String:
		bs, ok := b.(String)
		return ok && a == bs
	case Symbol:
		bs, ok := b.(Symbol)
		return ok && a == bs
	default:
		// Callables are pointer values; identity comparison.
		return a == b
	}
}
