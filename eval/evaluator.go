package eval

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kasa-lang/kasa/ast"
	"github.com/kasa-lang/kasa/token"
)

// RuntimeError is an evaluation failure attributed to a source token.
type RuntimeError struct {
	Token token.Token
	Msg   string
}

func (e RuntimeError) Error() string {
	return e.Msg
}

// returnSignal unwinds the evaluation stack from a `return` statement up to
// the enclosing function call. It travels the error path but is not an error:
// Function.Call strips it off and yields the carried value.
type returnSignal struct {
	keyword token.Token
	value   Value
}

func (returnSignal) Error() string {
	return "return"
}

// randSequence is the fixed cycle the `rand` literal walks through.
var randSequence = [...]float64{57, 97, 28, 7, 71, 1, 79, 83, 64, 82, 89, 24}

// Evaluator walks statements against an environment chain. Each Evaluator
// owns its own rand cursor and I/O, so instances are independent.
type Evaluator struct {
	globals   *Env
	env       *Env
	stdin     *bufio.Reader
	stdout    io.Writer
	randIndex int
}

func NewEvaluator(stdin io.Reader, stdout io.Writer) *Evaluator {
	globals := NewEnv(nil)
	defineBuiltins(globals)

	return &Evaluator{
		globals: globals,
		env:     globals,
		stdin:   bufio.NewReader(stdin),
		stdout:  stdout,
	}
}

// Interpret executes statements in order, stopping at the first runtime
// error. A `return` at top level has no function boundary to stop at and is
// reported as a runtime error.
func (ev *Evaluator) Interpret(statements []ast.Stmt) error {
	for _, stmt := range statements {
		err := ev.execute(stmt)
		if sig, ok := err.(returnSignal); ok {
			return RuntimeError{Token: sig.keyword, Msg: "Can't return from top-level code."}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (ev *Evaluator) execute(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.Expression:
		_, err := ev.evaluate(stmt.Expr)
		return err
	case *ast.Print:
		value, err := ev.evaluate(stmt.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(ev.stdout, value.String())
		return nil
	case *ast.PrintOnly:
		value, err := ev.evaluate(stmt.Expr)
		if err != nil {
			return err
		}
		fmt.Fprint(ev.stdout, value.String())
		return nil
	case *ast.Var:
		var value Value = Nil{}
		if stmt.Initializer != nil {
			var err error
			value, err = ev.evaluate(stmt.Initializer)
			if err != nil {
				return err
			}
		}
		ev.env.Define(stmt.Name.Lexeme, value)
		return nil
	case *ast.Block:
		return ev.executeBlock(stmt.Statements, NewEnv(ev.env))
	case *ast.If:
		condition, err := ev.evaluate(stmt.Condition)
		if err != nil {
			return err
		}
		if condition.Truthy() {
			return ev.execute(stmt.ThenBranch)
		}
		if stmt.ElseBranch != nil {
			return ev.execute(stmt.ElseBranch)
		}
		return nil
	case *ast.While:
		for {
			condition, err := ev.evaluate(stmt.Condition)
			if err != nil {
				return err
			}
			if !condition.Truthy() {
				return nil
			}
			if err := ev.execute(stmt.Body); err != nil {
				return err
			}
		}
	case *ast.StringLoop:
		return ev.executeStringLoop(stmt)
	case *ast.Function:
		ev.env.Define(stmt.Name.Lexeme, &Function{decl: stmt, closure: ev.env})
		return nil
	case *ast.Return:
		var value Value = Nil{}
		if stmt.Value != nil {
			var err error
			value, err = ev.evaluate(stmt.Value)
			if err != nil {
				return err
			}
		}
		return returnSignal{keyword: stmt.Keyword, value: value}
	}

	panic(fmt.Sprintf("unhandled statement: %v", stmt))
}

// executeBlock runs statements in env and restores the previous environment
// on every exit path, including return unwinding and runtime errors.
func (ev *Evaluator) executeBlock(statements []ast.Stmt, env *Env) error {
	previous := ev.env
	ev.env = env
	defer func() {
		ev.env = previous
	}()

	for _, stmt := range statements {
		if err := ev.execute(stmt); err != nil {
			return err
		}
	}

	return nil
}

// executeStringLoop binds the loop variable to each character of the string
// in a fresh child scope per iteration.
func (ev *Evaluator) executeStringLoop(stmt *ast.StringLoop) error {
	iterable, err := ev.evaluate(stmt.Iterable)
	if err != nil {
		return err
	}

	str, ok := iterable.(String)
	if !ok {
		return RuntimeError{Token: stmt.Name, Msg: "String loop can only iterate over strings."}
	}

	for _, char := range string(str) {
		env := NewEnv(ev.env)
		env.Define(stmt.Name.Lexeme, String(char))
		if err := ev.executeBlock([]ast.Stmt{stmt.Body}, env); err != nil {
			return err
		}
	}

	return nil
}

func (ev *Evaluator) evaluate(expr ast.Expr) (Value, error) {
	switch expr := expr.(type) {
	case *ast.Literal:
		return literalValue(expr.Token)
	case *ast.Grouping:
		return ev.evaluate(expr.Expr)
	case *ast.Unary:
		return ev.evaluateUnary(expr)
	case *ast.Binary:
		return ev.evaluateBinary(expr)
	case *ast.Logical:
		return ev.evaluateLogical(expr)
	case *ast.Variable:
		return ev.env.Get(expr.Name)
	case *ast.Assign:
		value, err := ev.evaluate(expr.Value)
		if err != nil {
			return nil, err
		}
		if err := ev.env.Assign(expr.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.Call:
		return ev.evaluateCall(expr)
	case *ast.DynamicLiteral:
		switch expr.Name.Kind {
		case token.READ:
			return ev.read(expr.Name)
		case token.RAND:
			return ev.rand(), nil
		}
		return nil, RuntimeError{Token: expr.Name, Msg: "Unexpected dynamic literal type."}
	case *ast.Symbol:
		return Symbol(expr.Name), nil
	}

	panic(fmt.Sprintf("unhandled expression: %v", expr))
}

func literalValue(tok token.Token) (Value, error) {
	switch tok.Kind {
	case token.NIL:
		return Nil{}, nil
	case token.TRUE:
		return Bool(true), nil
	case token.FALSE:
		return Bool(false), nil
	case token.NUMBER:
		n, ok := tok.Literal.(float64)
		if !ok {
			return nil, RuntimeError{Token: tok, Msg: "Malformed number literal."}
		}
		return Number(n), nil
	case token.STRING:
		s, ok := tok.Literal.(string)
		if !ok {
			return nil, RuntimeError{Token: tok, Msg: "Malformed string literal."}
		}
		return String(s), nil
	}

	return nil, RuntimeError{Token: tok, Msg: "Unexpected literal."}
}

func (ev *Evaluator) evaluateUnary(expr *ast.Unary) (Value, error) {
	right, err := ev.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Kind {
	case token.BANG:
		return Bool(!right.Truthy()), nil
	case token.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, RuntimeError{Token: expr.Op, Msg: "Operand must be a number."}
		}
		return -n, nil
	}

	panic(fmt.Sprintf("unhandled unary operator: %v", expr.Op))
}

func (ev *Evaluator) evaluateBinary(expr *ast.Binary) (Value, error) {
	left, err := ev.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Kind {
	case token.PLUS:
		if ln, ok := left.(Number); ok {
			if rn, ok := right.(Number); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs, nil
			}
		}
		return nil, RuntimeError{Token: expr.Op, Msg: "Operands must be two numbers or two strings."}
	case token.EQUAL_EQUAL:
		return Bool(Equal(left, right)), nil
	case token.BANG_EQUAL:
		return Bool(!Equal(left, right)), nil
	}

	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, RuntimeError{Token: expr.Op, Msg: "Operands must be numbers."}
	}

	switch expr.Op.Kind {
	case token.MINUS:
		return ln - rn, nil
	case token.STAR:
		return ln * rn, nil
	case token.SLASH:
		// Division by zero follows IEEE-754 semantics.
		return ln / rn, nil
	case token.GREATER:
		return Bool(ln > rn), nil
	case token.GREATER_EQUAL:
		return Bool(ln >= rn), nil
	case token.LESS:
		return Bool(ln < rn), nil
	case token.LESS_EQUAL:
		return Bool(ln <= rn), nil
	}

	panic(fmt.Sprintf("unhandled binary operator: %v", expr.Op))
}

// evaluateLogical short-circuits and returns the operand that decided the
// result, not a coerced boolean.
func (ev *Evaluator) evaluateLogical(expr *ast.Logical) (Value, error) {
	left, err := ev.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}

	if expr.Op.Kind == token.OR {
		if left.Truthy() {
			return left, nil
		}
	} else {
		if !left.Truthy() {
			return left, nil
		}
	}

	return ev.evaluate(expr.Right)
}

func (ev *Evaluator) evaluateCall(expr *ast.Call) (Value, error) {
	callee, err := ev.evaluate(expr.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		value, err := ev.evaluate(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, RuntimeError{Token: expr.Paren, Msg: "Can only call functions and classes."}
	}

	if len(args) != callable.Arity() {
		return nil, RuntimeError{
			Token: expr.Paren,
			Msg:   fmt.Sprintf("Expected %d arguments but got %d.", callable.Arity(), len(args)),
		}
	}

	return callable.Call(ev, expr.Paren, args)
}

// read prompts on stdout and returns one trimmed line from stdin.
// EOF yields the empty string.
func (ev *Evaluator) read(where token.Token) (Value, error) {
	fmt.Fprint(ev.stdout, "input required > ")

	line, err := ev.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, RuntimeError{Token: where, Msg: "Error reading input."}
	}

	return String(strings.TrimSpace(line)), nil
}

// rand yields the next number of the fixed sequence, wrapping around.
func (ev *Evaluator) rand() Value {
	value := randSequence[ev.randIndex]
	ev.randIndex = (ev.randIndex + 1) % len(randSequence)

	return Number(value)
}
