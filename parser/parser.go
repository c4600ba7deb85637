package parser

import (
	"errors"

	"github.com/kasa-lang/kasa/ast"
	"github.com/kasa-lang/kasa/token"
	"github.com/kasa-lang/kasa/utils"
)

type Parser struct {
	tokens  []token.Token
	current int
	err     error
}

func NewParser(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, current: 0, err: nil}
}

// parseError drives synchronization. It carries no payload; the diagnostic is
// recorded on the parser when it is raised.
type parseError struct{}

// Parse consumes the token stream and returns the statement list.
// Failed declarations are reported, skipped, and omitted from the result, so
// a single run can surface several diagnostics; the joined error is non-nil
// if any were reported.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	return statements, p.err
}

// declaration = funDecl | varDecl | statement ;
func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	if p.match(token.FUN) {
		return p.function("function")
	}
	if p.match(token.VAR) {
		return p.varDeclaration()
	}

	return p.statement()
}

// funDecl = "fun" IDENT "(" params? ")" block ;
func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")
	p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")
	params := []token.Token{}
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= 255 {
				p.reportError(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")

	return &ast.Function{Name: name, Params: params, Body: p.block()}
}

// varDecl = "var" IDENT ( "=" expression )? ";" ;
func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")

	var initializer ast.Expr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	return &ast.Var{Name: name, Initializer: initializer}
}

// statement = printStmt | printOnlyStmt | block | returnStmt | ifStmt
//           | whileStmt | forStmt | stringLoop | exprStmt ;
func (p *Parser) statement() ast.Stmt {
	if p.match(token.PRINT) {
		return p.printStatement()
	}
	if p.match(token.PRINTONLY) {
		return p.printOnlyStatement()
	}
	if p.match(token.LEFT_BRACE) {
		return &ast.Block{Statements: p.block()}
	}
	if p.match(token.RETURN) {
		return p.returnStatement()
	}
	if p.match(token.IF) {
		return p.ifStatement()
	}
	if p.match(token.WHILE) {
		return p.whileStatement()
	}
	if p.match(token.FOR) {
		return p.forStatement()
	}
	if p.match(token.LOOP) {
		return p.stringLoop()
	}

	return p.expressionStatement()
}

// block = "{" declaration* "}" ;
func (p *Parser) block() []ast.Stmt {
	statements := []ast.Stmt{}

	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")

	return statements
}

func (p *Parser) printStatement() ast.Stmt {
	value := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")

	return &ast.Print{Expr: value}
}

func (p *Parser) printOnlyStatement() ast.Stmt {
	value := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")

	return &ast.PrintOnly{Expr: value}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after return value.")

	return &ast.Return{Keyword: keyword, Value: value}
}

// ifStmt = "if" "(" expression ")" block ( "else" block )? ;
// Both branches are required to be brace blocks.
func (p *Parser) ifStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after if condition.")

	if !p.match(token.LEFT_BRACE) {
		panic(p.error(p.peek(), "Expect '{' after 'if' condition for a block statement."))
	}
	thenBranch := &ast.Block{Statements: p.block()}

	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		if !p.match(token.LEFT_BRACE) {
			panic(p.error(p.peek(), "Expect '{' after 'else' for a block statement."))
		}
		elseBranch = &ast.Block{Statements: p.block()}
	}

	return &ast.If{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	return &ast.While{Condition: condition, Body: p.statement()}
}

// forStmt desugars into a while loop nested in blocks:
// { init; while (cond) { body; incr; } }
func (p *Parser) forStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	if p.match(token.SEMICOLON) {
		initializer = nil
	} else if p.match(token.VAR) {
		initializer = p.varDeclaration()
	} else {
		initializer = p.expressionStatement()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	semicolon := p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		increment = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &ast.Block{Statements: []ast.Stmt{body, &ast.Expression{Expr: increment}}}
	}

	if condition == nil {
		condition = &ast.Literal{Token: token.Token{Kind: token.TRUE, Lexeme: "true", Line: semicolon.Line}}
	}
	body = &ast.While{Condition: condition, Body: body}

	if initializer != nil {
		body = &ast.Block{Statements: []ast.Stmt{initializer, body}}
	}

	return body
}

// stringLoop = "loop" "(" "var" IDENT "in" expression ")" statement ;
func (p *Parser) stringLoop() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'loop'.")
	p.consume(token.VAR, "Expect 'var'.")
	loopVar := p.consume(token.IDENTIFIER, "Expect variable name in loop.")
	p.consume(token.IN, "Expect 'in' after loop variable.")

	iterable := p.expression()

	p.consume(token.RIGHT_PAREN, "Expect ')' after loop expression.")

	return &ast.StringLoop{Name: loopVar, Iterable: iterable, Body: p.statement()}
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")

	return &ast.Expression{Expr: expr}
}

// expression = assignment ;
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment = IDENT "=" assignment | logic_or ;
func (p *Parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		if variable, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: variable.Name, Value: value}
		}

		p.reportError(equals, "Invalid assignment target.")
	}

	return expr
}

// logic_or = logic_and ( "or" logic_and )* ;
func (p *Parser) or() ast.Expr {
	expr := p.and()

	for p.match(token.OR) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}

	return expr
}

// logic_and = equality ( "and" equality )* ;
func (p *Parser) and() ast.Expr {
	expr := p.equality()

	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}

	return expr
}

// equality = comparison ( ("!=" | "==") comparison )* ;
func (p *Parser) equality() ast.Expr {
	expr := p.comparison()

	for p.match(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr
}

// comparison = term ( (">" | ">=" | "<" | "<=") term )* ;
func (p *Parser) comparison() ast.Expr {
	expr := p.term()

	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr
}

// term = factor ( ("+" | "-") factor )* ;
func (p *Parser) term() ast.Expr {
	expr := p.factor()

	for p.match(token.MINUS, token.PLUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr
}

// factor = unary ( ("*" | "/") unary )* ;
func (p *Parser) factor() ast.Expr {
	expr := p.unary()

	for p.match(token.SLASH, token.STAR) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr
}

// unary = ("!" | "-") unary | call ;
func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()

		return &ast.Unary{Op: op, Right: right}
	}

	return p.call()
}

// call = primary ( "(" args? ")" )* ;
func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for p.match(token.LEFT_PAREN) {
		expr = p.finishCall(expr)
	}

	return expr
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	args := []ast.Expr{}
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= 255 {
				p.reportError(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")

	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

// primary = "false" | "true" | "nil" | NUMBER | STRING | SYMBOL
//         | "rand" | "read" | IDENT | "(" expression ")" ;
func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE), p.match(token.TRUE), p.match(token.NIL),
		p.match(token.NUMBER), p.match(token.STRING):
		return &ast.Literal{Token: p.previous()}
	case p.match(token.SYMBOL):
		name, _ := p.previous().Literal.(string)

		return &ast.Symbol{Token: p.previous(), Name: name}
	case p.match(token.RAND), p.match(token.READ):
		return &ast.DynamicLiteral{Name: p.previous()}
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")

		return &ast.Grouping{Expr: expr}
	}

	panic(p.error(p.peek(), "Expect expression."))
}

// synchronize skips tokens until a likely statement boundary so that one
// error does not cascade into a flood of spurious diagnostics.
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}

		switch p.peek().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}

		p.advance()
	}
}

func (p *Parser) reportError(tok token.Token, msg string) {
	p.err = errors.Join(p.err, utils.ErrorAt{Where: tok, Msg: msg})
}

func (p *Parser) error(tok token.Token, msg string) parseError {
	p.reportError(tok, msg)

	return parseError{}
}

func (p *Parser) consume(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}

	panic(p.error(p.peek(), msg))
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()

			return true
		}
	}

	return false
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}

	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}

	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}
