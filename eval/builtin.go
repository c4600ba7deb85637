package eval

import (
	"math"
	"time"

	"github.com/kasa-lang/kasa/token"
)

// Builtin is a native function pre-defined in the global environment.
type Builtin struct {
	name  string
	arity int
	fn    func(ev *Evaluator, where token.Token, args []Value) (Value, error)
}

func (b *Builtin) String() string {
	return "<native fn " + b.name + ">"
}

func (b *Builtin) Truthy() bool {
	return true
}

func (b *Builtin) Arity() int {
	return b.arity
}

func (b *Builtin) Call(ev *Evaluator, where token.Token, args []Value) (Value, error) {
	return b.fn(ev, where, args)
}

var _ Callable = &Builtin{}

func defineBuiltins(globals *Env) {
	globals.Define("clock", &Builtin{
		name:  "clock",
		arity: 0,
		fn: func(_ *Evaluator, _ token.Token, _ []Value) (Value, error) {
			return Number(float64(time.Now().UnixMilli()) / 1000.0), nil
		},
	})

	globals.Define("floor", &Builtin{
		name:  "floor",
		arity: 1,
		fn: func(_ *Evaluator, where token.Token, args []Value) (Value, error) {
			n, ok := args[0].(Number)
			if !ok {
				return nil, RuntimeError{Token: where, Msg: "floor() requires a number argument."}
			}
			return Number(math.Floor(float64(n))), nil
		},
	})

	globals.Define("substring", &Builtin{
		name:  "substring",
		arity: 3,
		fn: func(_ *Evaluator, where token.Token, args []Value) (Value, error) {
			str, ok := args[0].(String)
			if !ok {
				return nil, RuntimeError{Token: where, Msg: "First argument must be a string."}
			}
			start, ok := args[1].(Number)
			if !ok {
				return nil, RuntimeError{Token: where, Msg: "substring() requires number indices."}
			}
			end, ok := args[2].(Number)
			if !ok {
				return nil, RuntimeError{Token: where, Msg: "substring() requires number indices."}
			}

			runes := []rune(string(str))
			i, j := int(start), int(end)
			if i < 0 || j > len(runes) {
				return nil, RuntimeError{Token: where, Msg: "substring error: invalid indices."}
			}
			if j <= i {
				return String(""), nil
			}
			return String(runes[i:j]), nil
		},
	})
}
