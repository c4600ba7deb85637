package ast

import (
	"fmt"
	"strings"

	"github.com/kasa-lang/kasa/token"
)

// Node is either an expression or a statement.
// String renders the node as an s-expression for diagnostics and tests.
type Node interface {
	fmt.Stringer
	Base() token.Token
}

type Expr interface {
	Node
	expr()
}

type Stmt interface {
	Node
	stmt()
}

// Expressions

type Literal struct {
	token.Token
}

func (l Literal) String() string {
	return l.Lexeme
}

func (l *Literal) Base() token.Token {
	return l.Token
}

func (l *Literal) expr() {}

var _ Expr = &Literal{}

type Grouping struct {
	Expr Expr
}

func (g Grouping) String() string {
	return parenthesize("group", g.Expr).String()
}

func (g *Grouping) Base() token.Token {
	return g.Expr.Base()
}

func (g *Grouping) expr() {}

var _ Expr = &Grouping{}

type Unary struct {
	Op    token.Token
	Right Expr
}

func (u Unary) String() string {
	return parenthesize(u.Op.Lexeme, u.Right).String()
}

func (u *Unary) Base() token.Token {
	return u.Op
}

func (u *Unary) expr() {}

var _ Expr = &Unary{}

type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (b Binary) String() string {
	return parenthesize(b.Op.Lexeme, b.Left, b.Right).String()
}

func (b *Binary) Base() token.Token {
	return b.Op
}

func (b *Binary) expr() {}

var _ Expr = &Binary{}

// Logical is `and`/`or`; kept apart from Binary because it short-circuits.
type Logical struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (l Logical) String() string {
	return parenthesize(l.Op.Lexeme, l.Left, l.Right).String()
}

func (l *Logical) Base() token.Token {
	return l.Op
}

func (l *Logical) expr() {}

var _ Expr = &Logical{}

type Variable struct {
	Name token.Token
}

func (v Variable) String() string {
	return v.Name.Lexeme
}

func (v *Variable) Base() token.Token {
	return v.Name
}

func (v *Variable) expr() {}

var _ Expr = &Variable{}

type Assign struct {
	Name  token.Token
	Value Expr
}

func (a Assign) String() string {
	return parenthesize("= "+a.Name.Lexeme, a.Value).String()
}

func (a *Assign) Base() token.Token {
	return a.Name
}

func (a *Assign) expr() {}

var _ Expr = &Assign{}

type Call struct {
	Callee Expr
	// Paren is the closing parenthesis, used to attribute call errors.
	Paren token.Token
	Args  []Expr
}

func (c Call) String() string {
	return parenthesize("call", c.Callee, concat(c.Args)).String()
}

func (c *Call) Base() token.Token {
	return c.Paren
}

func (c *Call) expr() {}

var _ Expr = &Call{}

// DynamicLiteral is `read` or `rand` in expression position.
type DynamicLiteral struct {
	Name token.Token
}

func (d DynamicLiteral) String() string {
	switch d.Name.Kind {
	case token.READ:
		return "(read)"
	case token.RAND:
		return "(rand)"
	}
	return parenthesize(d.Name.Lexeme).String()
}

func (d *DynamicLiteral) Base() token.Token {
	return d.Name
}

func (d *DynamicLiteral) expr() {}

var _ Expr = &DynamicLiteral{}

type Symbol struct {
	Token token.Token
	Name  string
}

func (s Symbol) String() string {
	return ":" + s.Name
}

func (s *Symbol) Base() token.Token {
	return s.Token
}

func (s *Symbol) expr() {}

var _ Expr = &Symbol{}

// Statements

type Expression struct {
	Expr Expr
}

func (e Expression) String() string {
	return parenthesize("expr", e.Expr).String()
}

func (e *Expression) Base() token.Token {
	return e.Expr.Base()
}

func (e *Expression) stmt() {}

var _ Stmt = &Expression{}

type Print struct {
	Expr Expr
}

func (p Print) String() string {
	return parenthesize("print", p.Expr).String()
}

func (p *Print) Base() token.Token {
	return p.Expr.Base()
}

func (p *Print) stmt() {}

var _ Stmt = &Print{}

type PrintOnly struct {
	Expr Expr
}

func (p PrintOnly) String() string {
	return parenthesize("printonly", p.Expr).String()
}

func (p *PrintOnly) Base() token.Token {
	return p.Expr.Base()
}

func (p *PrintOnly) stmt() {}

var _ Stmt = &PrintOnly{}

type Var struct {
	Name token.Token
	// Initializer is nil for `var x;`.
	Initializer Expr
}

func (v Var) String() string {
	if v.Initializer == nil {
		return parenthesize("var " + v.Name.Lexeme).String()
	}
	return parenthesize("var "+v.Name.Lexeme, v.Initializer).String()
}

func (v *Var) Base() token.Token {
	return v.Name
}

func (v *Var) stmt() {}

var _ Stmt = &Var{}

type Block struct {
	Statements []Stmt
}

func (b Block) String() string {
	return parenthesize("block", concat(b.Statements)).String()
}

func (b *Block) Base() token.Token {
	if len(b.Statements) == 0 {
		return token.Token{}
	}
	return b.Statements[0].Base()
}

func (b *Block) stmt() {}

var _ Stmt = &Block{}

type If struct {
	Condition  Expr
	ThenBranch Stmt
	// ElseBranch is nil when there is no else clause.
	ElseBranch Stmt
}

func (i If) String() string {
	if i.ElseBranch == nil {
		return parenthesize("if", i.Condition, i.ThenBranch).String()
	}
	return parenthesize("if", i.Condition, i.ThenBranch, i.ElseBranch).String()
}

func (i *If) Base() token.Token {
	return i.Condition.Base()
}

func (i *If) stmt() {}

var _ Stmt = &If{}

type While struct {
	Condition Expr
	Body      Stmt
}

func (w While) String() string {
	return parenthesize("while", w.Condition, w.Body).String()
}

func (w *While) Base() token.Token {
	return w.Condition.Base()
}

func (w *While) stmt() {}

var _ Stmt = &While{}

// StringLoop is `loop (var x in expr) body`.
type StringLoop struct {
	Name     token.Token
	Iterable Expr
	Body     Stmt
}

func (s StringLoop) String() string {
	return parenthesize("loop "+s.Name.Lexeme, s.Iterable, s.Body).String()
}

func (s *StringLoop) Base() token.Token {
	return s.Name
}

func (s *StringLoop) stmt() {}

var _ Stmt = &StringLoop{}

type Function struct {
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

func (f Function) String() string {
	var params strings.Builder
	params.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			params.WriteString(" ")
		}
		params.WriteString(p.Lexeme)
	}
	params.WriteString(")")
	return parenthesize("fun "+f.Name.Lexeme+" "+params.String(), concat(f.Body)).String()
}

func (f *Function) Base() token.Token {
	return f.Name
}

func (f *Function) stmt() {}

var _ Stmt = &Function{}

type Return struct {
	Keyword token.Token
	// Value is nil for a bare `return;`.
	Value Expr
}

func (r Return) String() string {
	if r.Value == nil {
		return parenthesize("return").String()
	}
	return parenthesize("return", r.Value).String()
}

func (r *Return) Base() token.Token {
	return r.Keyword
}

func (r *Return) stmt() {}

var _ Stmt = &Return{}

// parenthesize renders `(head elem elem ...)`, skipping empty elements.
func parenthesize(head string, elems ...fmt.Stringer) fmt.Stringer {
	var b strings.Builder
	b.WriteString("(")
	elemsStr := concat(elems).String()
	if head != "" {
		b.WriteString(head)
	}
	if elemsStr != "" {
		if head != "" {
			b.WriteString(" ")
		}
		b.WriteString(elemsStr)
	}
	b.WriteString(")")
	return &b
}

func concat[T fmt.Stringer](elems []T) fmt.Stringer {
	var b strings.Builder
	for i, elem := range elems {
		str := elem.String()
		if str == "" {
			continue
		}
		if i != 0 {
			b.WriteString(" ")
		}
		b.WriteString(str)
	}
	return &b
}
