package parser

// Position is a 1-based source location.
type Position struct {
	Line int
	Col  int
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Program is the AST root. It owns its statement list exclusively.
type Program struct {
	Body []Stmt
}

func (p *Program) Pos() Position {
	if len(p.Body) > 0 {
		return p.Body[0].Pos()
	}
	return Position{Line: 1, Col: 1}
}

// FunctionDeclaration is `function name(params) { body }`.
type FunctionDeclaration struct {
	Name     string
	Params   []string
	Body     []Stmt
	Position Position
}

func (n *FunctionDeclaration) Pos() Position { return n.Position }
func (n *FunctionDeclaration) stmtNode()     {}

// ReturnStatement is `return expr;` or a bare `return;`. Argument is nil
// when absent.
type ReturnStatement struct {
	Argument Expr
	Position Position
}

func (n *ReturnStatement) Pos() Position { return n.Position }
func (n *ReturnStatement) stmtNode()     {}

// ExpressionStatement is an expression evaluated for its side effects; the
// result is discarded.
type ExpressionStatement struct {
	Expression Expr
	Position   Position
}

func (n *ExpressionStatement) Pos() Position { return n.Position }
func (n *ExpressionStatement) stmtNode()     {}

// BinaryExpression is `left op right` with op one of + - * / == != < >.
type BinaryExpression struct {
	Operator string
	Left     Expr
	Right    Expr
	Position Position
}

func (n *BinaryExpression) Pos() Position { return n.Position }
func (n *BinaryExpression) exprNode()     {}

// CallExpression is `callee(args)`. Calls chain: `f(1)(2)` is a call whose
// callee is itself a call.
type CallExpression struct {
	Callee    Expr
	Arguments []Expr
	Position  Position
}

func (n *CallExpression) Pos() Position { return n.Position }
func (n *CallExpression) exprNode()     {}

// Identifier is a bare name.
type Identifier struct {
	Name     string
	Position Position
}

func (n *Identifier) Pos() Position { return n.Position }
func (n *Identifier) exprNode()     {}

// LiteralKind discriminates Literal payloads.
type LiteralKind uint8

const (
	LiteralNumber LiteralKind = iota
	LiteralString
)

// Literal is a number or string literal.
type Literal struct {
	Str      string
	Number   float64
	Kind     LiteralKind
	Position Position
}

func (n *Literal) Pos() Position { return n.Position }
func (n *Literal) exprNode()     {}
