// Package ast defines the tagged AST the semantic analyzer and code
// generator consume. The lexer, parser, and their grammar are out of
// scope for this repository: a Program tree is assumed well-formed
// syntactically by the time it reaches internal/sem.
package ast

import "github.com/gmofishsauce/ool/internal/types"

// Program is the root node: an ordered list of class declarations.
type Program struct {
	Classes []*Class
}

// Class is a class declaration: a name, an optional superclass name,
// an ordered list of member declarations, and an ordered list of methods.
type Class struct {
	Name       string
	Super      string // empty when there is no explicit superclass
	Members    []*Declaration
	Methods    []*Method
	Line       int
}

// Declaration declares one or more names of the same Type. Member
// declarations are always singleton (len(Names) == 1); local declarations
// inside a method body may declare several names at once.
type Declaration struct {
	Type  TypeNode
	Names []string
	Line  int
}

// Parameter is one formal parameter of a method.
type Parameter struct {
	Type TypeNode
	Name string
	Line int
}

// Method is a method (or, when Name == its class's name, a constructor).
type Method struct {
	Name       string
	Parameters []*Parameter
	ReturnType TypeNode
	Body       *MethodBody
	Line       int
}

// MethodBody holds a method's local declarations, its statement list, and
// its optional return statement. Decorated with the method's declared
// return type once the enclosing Method is processed (§4.3 step 1).
type MethodBody struct {
	Locals   []*Declaration
	Stmts    []Stmt
	Return   *ReturnStmt // nil when the method has no return statement
	decorated
}

// decorated carries the two type-checker decoration fields shared by
// MethodBody and every Expr implementation (§3 "Lifecycle", §4.1).
type decorated struct {
	basetype        types.BaseType
	objectClassName string
}

func (d *decorated) Type() types.Compound {
	return types.Compound{Base: d.basetype, ClassName: d.objectClassName}
}

func (d *decorated) SetType(t types.Compound) {
	d.basetype = t.Base
	d.objectClassName = t.ClassName
}

// Typed is implemented by every node the type checker decorates.
type Typed interface {
	Type() types.Compound
	SetType(types.Compound)
}

// ---- Types (§4.1 "Types") ----

// TypeNode is a syntactic type reference: IntegerType, BooleanType,
// NoneType, or ObjectType(identifier).
type TypeNode interface {
	typeNode()
}

type IntegerType struct{}
type BooleanType struct{}
type NoneType struct{}
type ObjectType struct{ ClassName string }

func (IntegerType) typeNode() {}
func (BooleanType) typeNode() {}
func (NoneType) typeNode()    {}
func (ObjectType) typeNode()  {}

// Compound converts a syntactic TypeNode into the compound type it denotes.
// This is a pure syntactic mapping (original source's typeMap); it performs
// no lookups and cannot fail.
func Compound(t TypeNode) types.Compound {
	switch tt := t.(type) {
	case IntegerType:
		return types.IntegerType
	case BooleanType:
		return types.BooleanType
	case NoneType:
		return types.NoneType
	case ObjectType:
		return types.NewObject(tt.ClassName)
	default:
		return types.Compound{}
	}
}

// ---- Statements (§4.1 "Statements") ----

type Stmt interface {
	stmtNode()
	SourceLine() int
}

type baseStmt struct{ Line int }

func (s baseStmt) stmtNode()        {}
func (s baseStmt) SourceLine() int  { return s.Line }

// Assignment is `x = e` (Name2 == "") or `x.y = e` (Name2 == "y").
type Assignment struct {
	baseStmt
	Name1 string
	Name2 string // empty for the non-dotted form
	Value Expr
}

// IfElse is an if/else statement; Else may be empty.
type IfElse struct {
	baseStmt
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a pre-tested loop.
type While struct {
	baseStmt
	Cond Expr
	Body []Stmt
}

// DoWhile is a post-tested loop.
type DoWhile struct {
	baseStmt
	Cond Expr
	Body []Stmt
}

// Print prints the value of an integer expression.
type Print struct {
	baseStmt
	Value Expr
}

// CallStmt is an expression-statement wrapping a MethodCall whose result
// is discarded.
type CallStmt struct {
	baseStmt
	Call *MethodCall
}

// ReturnStmt returns the value of an expression from the enclosing method.
// Decorated with that expression's compound type once checked (§4.4).
type ReturnStmt struct {
	baseStmt
	Value Expr
	decorated
}

// ---- Expressions (§4.1 "Expressions") ----

// Expr is implemented by every expression node. Every Expr is Typed: the
// type checker sets its compound type during the single top-down pass.
type Expr interface {
	Typed
	exprNode()
	SourceLine() int
}

type baseExpr struct {
	decorated
	Line int
}

func (e *baseExpr) exprNode()        {}
func (e *baseExpr) SourceLine() int  { return e.Line }

// BinaryOp enumerates the binary operators (arithmetic, relational, and
// logical and/or).
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Greater
	GreaterEqual
	Equal
	And
	Or
)

// Binary is a binary expression.
type Binary struct {
	baseExpr
	Op          BinaryOp
	Left, Right Expr
}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	Not UnaryOp = iota // logical not, Boolean -> Boolean
	Neg                // arithmetic negation, Integer -> Integer
)

// Unary is a unary expression.
type Unary struct {
	baseExpr
	Op      UnaryOp
	Operand Expr
}

// MethodCall is `f(args...)` (Name2 == "") or `x.f(args...)` (Name2 == "f",
// Name1 == "x"). For the implicit-receiver form Name1 holds the method
// name and Name2 is empty.
type MethodCall struct {
	baseExpr
	Name1 string
	Name2 string
	Args  []Expr
}

// MemberAccess is `x.y`.
type MemberAccess struct {
	baseExpr
	Name1 string
	Name2 string
}

// Variable is a bare identifier reference `x`.
type Variable struct {
	baseExpr
	Name string
}

// IntegerLiteral is an integer constant.
type IntegerLiteral struct {
	baseExpr
	Value int64
}

// BooleanLiteral is a boolean constant (runtime representation 0/1).
type BooleanLiteral struct {
	baseExpr
	Value bool
}

// New is `new C(args...)`.
type New struct {
	baseExpr
	ClassName string
	Args      []Expr
}
