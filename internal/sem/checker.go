// Package sem implements the type checker of spec.md §4.2-§4.4: a single
// top-down traversal of the AST that builds the symbol table (internal
// /symtab), assigns member/frame offsets, decorates every expression node
// with its inferred compound type, and enforces the Language's typing
// rules. The first rule violation aborts the traversal and is returned as
// a *Diagnostic; nothing is accumulated (spec.md §7).
//
// Traversal state is not held in package or checker-global variables.
// The running member/local/parameter offset cursors are local variables
// of checkClass and checkMethod; the current class and the current
// method's variable table are built fresh per method and threaded
// explicitly through the recursive checkStmt/checkExpr calls as a *scope
// value.
package sem

import (
	"fmt"

	"github.com/gmofishsauce/ool/internal/ast"
	"github.com/gmofishsauce/ool/internal/symtab"
	"github.com/gmofishsauce/ool/internal/types"
)

// ownMember is one member declared directly on a class (not inherited),
// recorded in declaration order so that subclasses can re-walk exactly the
// members their ancestors themselves declared (spec.md §4.2 step 4).
type ownMember struct {
	name string
	typ  types.Compound
}

// checker holds the symbol table under construction and the per-class
// index of own-member declarations needed to resolve inheritance. It is
// not traversal state in the sense the Design Notes warn against: it is
// write-once-per-class-or-method data, not mutable cursors threaded
// through expression recursion.
type checker struct {
	classes    *symtab.ClassTable
	ownMembers map[string][]ownMember
}

// scope is the explicit traversal context for type-checking inside a
// single method body: which class we're in, and that method's combined
// parameter+local variable table.
type scope struct {
	classTable *symtab.ClassTable
	className  string
	variables  map[string]*symtab.VariableInfo
}

// Check type-checks prog, building and returning its class table. On the
// first rule violation it returns a *Diagnostic and a nil table; no
// assembly should be generated in that case (spec.md §4.6, §7).
func Check(prog *ast.Program) (*symtab.ClassTable, error) {
	c := &checker{
		classes:    symtab.New(),
		ownMembers: make(map[string][]ownMember),
	}
	for _, cls := range prog.Classes {
		if err := c.checkClass(cls); err != nil {
			return nil, err
		}
	}
	if !c.classes.Has("Main") {
		return nil, fail(NoMainClass)
	}
	return c.classes, nil
}

func (c *checker) checkClass(cls *ast.Class) error {
	if cls.Super != "" && !c.classes.Has(cls.Super) {
		return fail(UndefinedClass)
	}
	if cls.Name == "Main" && len(cls.Members) > 0 {
		return fail(MainClassMembersPresent)
	}

	ci := c.classes.Declare(cls.Name, cls.Super)

	// Own members: dense offsets starting at 0 (spec.md I3).
	offset := 0
	var own []ownMember
	for _, decl := range cls.Members {
		t := ast.Compound(decl.Type)
		for _, name := range decl.Names {
			ci.Members[name] = &symtab.VariableInfo{Type: t, Offset: offset, Size: 4}
			offset += 4
			own = append(own, ownMember{name: name, typ: t})
		}
	}
	c.ownMembers[cls.Name] = own

	// Inherited members: walk the superclass chain, appending each
	// ancestor's own members (not its own already-inherited set), own
	// before inherited, nearest ancestor before farther (spec.md §4.2
	// step 4).
	for cur := cls.Super; cur != ""; {
		ciCur, ok := c.classes.Lookup(cur)
		if !ok {
			break
		}
		for _, m := range c.ownMembers[cur] {
			if _, exists := ci.Members[m.name]; !exists {
				ci.Members[m.name] = &symtab.VariableInfo{Type: m.typ, Offset: offset, Size: 4}
				offset += 4
			}
		}
		cur = ciCur.SuperClassName
	}
	ci.MembersSize = offset

	for _, m := range cls.Methods {
		if err := c.checkMethod(cls, ci, m); err != nil {
			return err
		}
	}

	if cls.Name == "Main" {
		mi, ok := ci.Methods["main"]
		if !ok {
			return fail(NoMainMethod)
		}
		if len(mi.Parameters) != 0 {
			return fail(MainMethodIncorrectSignature)
		}
	}
	return nil
}

func (c *checker) checkMethod(cls *ast.Class, ci *symtab.ClassInfo, m *ast.Method) error {
	variables := make(map[string]*symtab.VariableInfo)
	mi := &symtab.MethodInfo{
		ReturnType: ast.Compound(m.ReturnType),
		Variables:  variables,
	}

	paramOffset := 12
	for _, p := range m.Parameters {
		t := ast.Compound(p.Type)
		variables[p.Name] = &symtab.VariableInfo{Type: t, Offset: paramOffset, Size: 4}
		mi.Parameters = append(mi.Parameters, t)
		paramOffset += 4
	}

	localOffset := -4
	for _, decl := range m.Body.Locals {
		t := ast.Compound(decl.Type)
		for _, name := range decl.Names {
			variables[name] = &symtab.VariableInfo{Type: t, Offset: localOffset, Size: 4}
			localOffset -= 4
		}
	}
	mi.LocalsSize = -(localOffset + 4)

	m.Body.SetType(mi.ReturnType)

	sc := &scope{classTable: c.classes, className: cls.Name, variables: variables}
	for _, s := range m.Body.Stmts {
		if err := checkStmt(sc, s); err != nil {
			return err
		}
	}

	if m.Body.Return != nil {
		var retType types.Compound
		if m.Body.Return.Value != nil {
			t, err := checkExpr(sc, m.Body.Return.Value)
			if err != nil {
				return err
			}
			retType = t
		}
		m.Body.Return.SetType(retType)
		if !retType.Equal(mi.ReturnType) {
			return fail(ReturnTypeMismatch)
		}
	} else if !mi.ReturnType.Equal(types.NoneType) {
		return fail(ReturnTypeMismatch)
	}

	if m.Name == cls.Name && !mi.ReturnType.Equal(types.NoneType) {
		return fail(ConstructorReturnsType)
	}

	ci.Methods[m.Name] = mi
	return nil
}

// resolveVariable resolves name per spec.md §4.4 "Variable x": the
// current method's variables first, then the current class's members,
// walking the superclass chain.
func resolveVariable(sc *scope, name string) (types.Compound, bool) {
	if v, ok := sc.variables[name]; ok {
		return v.Type, true
	}
	if v, _, ok := sc.classTable.FindMember(sc.className, name); ok {
		return v.Type, true
	}
	return types.Compound{}, false
}

func checkStmt(sc *scope, s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.Assignment:
		var lhsType types.Compound
		if st.Name2 == "" {
			t, ok := resolveVariable(sc, st.Name1)
			if !ok {
				return fail(UndefinedVariable)
			}
			lhsType = t
		} else {
			recvType, ok := resolveVariable(sc, st.Name1)
			if !ok {
				return fail(UndefinedVariable)
			}
			if !recvType.IsObject() {
				return fail(NotObject)
			}
			v, _, ok := sc.classTable.FindMember(recvType.ClassName, st.Name2)
			if !ok {
				return fail(UndefinedMember)
			}
			lhsType = v.Type
		}
		rhsType, err := checkExpr(sc, st.Value)
		if err != nil {
			return err
		}
		if !lhsType.Equal(rhsType) {
			return fail(AssignmentTypeMismatch)
		}
		return nil

	case *ast.IfElse:
		t, err := checkExpr(sc, st.Cond)
		if err != nil {
			return err
		}
		if !t.Equal(types.BooleanType) {
			return fail(IfPredicateTypeMismatch)
		}
		if err := checkStmts(sc, st.Then); err != nil {
			return err
		}
		return checkStmts(sc, st.Else)

	case *ast.While:
		t, err := checkExpr(sc, st.Cond)
		if err != nil {
			return err
		}
		if !t.Equal(types.BooleanType) {
			return fail(WhilePredicateTypeMismatch)
		}
		return checkStmts(sc, st.Body)

	case *ast.DoWhile:
		if err := checkStmts(sc, st.Body); err != nil {
			return err
		}
		t, err := checkExpr(sc, st.Cond)
		if err != nil {
			return err
		}
		if !t.Equal(types.BooleanType) {
			return fail(DoWhilePredicateTypeMismatch)
		}
		return nil

	case *ast.Print:
		t, err := checkExpr(sc, st.Value)
		if err != nil {
			return err
		}
		if !t.Equal(types.IntegerType) {
			return fail(ExpressionTypeMismatch)
		}
		return nil

	case *ast.CallStmt:
		_, err := checkExpr(sc, st.Call)
		return err

	default:
		panic(fmt.Sprintf("sem: unhandled statement type %T", s))
	}
}

func checkStmts(sc *scope, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := checkStmt(sc, s); err != nil {
			return err
		}
	}
	return nil
}

func checkExpr(sc *scope, e ast.Expr) (types.Compound, error) {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		ex.SetType(types.IntegerType)
		return types.IntegerType, nil

	case *ast.BooleanLiteral:
		ex.SetType(types.BooleanType)
		return types.BooleanType, nil

	case *ast.Variable:
		t, ok := resolveVariable(sc, ex.Name)
		if !ok {
			return types.Compound{}, fail(UndefinedVariable)
		}
		ex.SetType(t)
		return t, nil

	case *ast.MemberAccess:
		recvType, ok := resolveVariable(sc, ex.Name1)
		if !ok {
			return types.Compound{}, fail(UndefinedVariable)
		}
		if !recvType.IsObject() {
			return types.Compound{}, fail(NotObject)
		}
		v, _, ok := sc.classTable.FindMember(recvType.ClassName, ex.Name2)
		if !ok {
			return types.Compound{}, fail(UndefinedMember)
		}
		ex.SetType(v.Type)
		return v.Type, nil

	case *ast.Binary:
		return checkBinary(sc, ex)

	case *ast.Unary:
		return checkUnary(sc, ex)

	case *ast.New:
		ci, ok := sc.classTable.Lookup(ex.ClassName)
		if !ok {
			return types.Compound{}, fail(UndefinedClass)
		}
		if ctor, ok := ci.Methods[ex.ClassName]; ok {
			if err := checkArguments(sc, ex.Args, ctor.Parameters); err != nil {
				return types.Compound{}, err
			}
		} else if err := checkExprs(sc, ex.Args); err != nil {
			return types.Compound{}, err
		} else if len(ex.Args) != 0 {
			return types.Compound{}, fail(ArgumentNumberMismatch)
		}
		t := types.NewObject(ex.ClassName)
		ex.SetType(t)
		return t, nil

	case *ast.MethodCall:
		return checkMethodCall(sc, ex)

	default:
		panic(fmt.Sprintf("sem: unhandled expression type %T", e))
	}
}

func checkBinary(sc *scope, ex *ast.Binary) (types.Compound, error) {
	lt, err := checkExpr(sc, ex.Left)
	if err != nil {
		return types.Compound{}, err
	}
	rt, err := checkExpr(sc, ex.Right)
	if err != nil {
		return types.Compound{}, err
	}

	var result types.Compound
	switch ex.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		if !lt.Equal(types.IntegerType) || !rt.Equal(types.IntegerType) {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
		result = types.IntegerType
	case ast.Greater, ast.GreaterEqual:
		if !lt.Equal(types.IntegerType) || !rt.Equal(types.IntegerType) {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
		result = types.BooleanType
	case ast.Equal:
		bothInt := lt.Equal(types.IntegerType) && rt.Equal(types.IntegerType)
		bothBool := lt.Equal(types.BooleanType) && rt.Equal(types.BooleanType)
		if !bothInt && !bothBool {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
		result = types.BooleanType
	case ast.And, ast.Or:
		if !lt.Equal(types.BooleanType) || !rt.Equal(types.BooleanType) {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
		result = types.BooleanType
	default:
		panic(fmt.Sprintf("sem: unhandled binary operator %v", ex.Op))
	}
	ex.SetType(result)
	return result, nil
}

func checkUnary(sc *scope, ex *ast.Unary) (types.Compound, error) {
	t, err := checkExpr(sc, ex.Operand)
	if err != nil {
		return types.Compound{}, err
	}
	switch ex.Op {
	case ast.Not:
		if !t.Equal(types.BooleanType) {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
	case ast.Neg:
		if !t.Equal(types.IntegerType) {
			return types.Compound{}, fail(ExpressionTypeMismatch)
		}
	default:
		panic(fmt.Sprintf("sem: unhandled unary operator %v", ex.Op))
	}
	ex.SetType(t)
	return t, nil
}

func checkMethodCall(sc *scope, ex *ast.MethodCall) (types.Compound, error) {
	var lookupClass, methodName string
	if ex.Name2 == "" {
		lookupClass = sc.className
		methodName = ex.Name1
	} else {
		recvType, ok := resolveVariable(sc, ex.Name1)
		if !ok {
			return types.Compound{}, fail(UndefinedVariable)
		}
		if !recvType.IsObject() {
			return types.Compound{}, fail(NotObject)
		}
		lookupClass = recvType.ClassName
		methodName = ex.Name2
	}

	mi, _, ok := sc.classTable.FindMethod(lookupClass, methodName)
	if !ok {
		return types.Compound{}, fail(UndefinedMethod)
	}
	if err := checkArguments(sc, ex.Args, mi.Parameters); err != nil {
		return types.Compound{}, err
	}
	ex.SetType(mi.ReturnType)
	return mi.ReturnType, nil
}

func checkArguments(sc *scope, args []ast.Expr, params []types.Compound) error {
	argTypes := make([]types.Compound, len(args))
	for i, a := range args {
		t, err := checkExpr(sc, a)
		if err != nil {
			return err
		}
		argTypes[i] = t
	}
	if len(argTypes) != len(params) {
		return fail(ArgumentNumberMismatch)
	}
	for i, t := range argTypes {
		if !t.Equal(params[i]) {
			return fail(ArgumentTypeMismatch)
		}
	}
	return nil
}

func checkExprs(sc *scope, exprs []ast.Expr) error {
	for _, e := range exprs {
		if _, err := checkExpr(sc, e); err != nil {
			return err
		}
	}
	return nil
}
