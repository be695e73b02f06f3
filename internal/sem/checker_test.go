package sem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/ool/internal/ast"
	"github.com/gmofishsauce/ool/internal/sem"
)

func mainClass(locals []*ast.Declaration, stmts []ast.Stmt) *ast.Class {
	return &ast.Class{
		Name: "Main",
		Methods: []*ast.Method{
			{
				Name:       "main",
				ReturnType: ast.NoneType{},
				Body:       &ast.MethodBody{Locals: locals, Stmts: stmts},
			},
		},
	}
}

func TestCheckSimpleValidProgram(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(
			[]*ast.Declaration{{Type: ast.IntegerType{}, Names: []string{"x"}}},
			[]ast.Stmt{
				&ast.Assignment{Name1: "x", Value: &ast.IntegerLiteral{Value: 5}},
				&ast.Print{Value: &ast.Variable{Name: "x"}},
			},
		),
	}}

	classes, err := sem.Check(prog)
	require.NoError(t, err)
	ci, ok := classes.Lookup("Main")
	require.True(t, ok)
	mi, ok := ci.Methods["main"]
	require.True(t, ok)
	assert.Equal(t, 4, mi.LocalsSize)
}

func TestCheckNoMainClass(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{{Name: "Other"}}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.NoMainClass, diag.Code)
}

func TestCheckMainClassWithMembers(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name:    "Main",
			Members: []*ast.Declaration{{Type: ast.IntegerType{}, Names: []string{"x"}}},
			Methods: []*ast.Method{{Name: "main", ReturnType: ast.NoneType{}, Body: &ast.MethodBody{}}},
		},
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.MainClassMembersPresent, diag.Code)
}

func TestCheckMainMethodWrongSignature(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Main",
			Methods: []*ast.Method{
				{
					Name:       "main",
					Parameters: []*ast.Parameter{{Type: ast.IntegerType{}, Name: "n"}},
					ReturnType: ast.NoneType{},
					Body:       &ast.MethodBody{},
				},
			},
		},
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.MainMethodIncorrectSignature, diag.Code)
}

func TestCheckUndefinedVariable(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{
			&ast.Print{Value: &ast.Variable{Name: "missing"}},
		}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.UndefinedVariable, diag.Code)
}

func TestCheckAssignmentTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(
			[]*ast.Declaration{{Type: ast.BooleanType{}, Names: []string{"b"}}},
			[]ast.Stmt{&ast.Assignment{Name1: "b", Value: &ast.IntegerLiteral{Value: 1}}},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.AssignmentTypeMismatch, diag.Code)
}

func TestCheckPrintRequiresInteger(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{&ast.Print{Value: &ast.BooleanLiteral{Value: true}}}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ExpressionTypeMismatch, diag.Code)
}

func TestCheckEqualityRejectsObjectOperands(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{Name: "Widget", Methods: []*ast.Method{
			{Name: "Widget", ReturnType: ast.NoneType{}, Body: &ast.MethodBody{}},
		}},
		mainClass(
			[]*ast.Declaration{
				{Type: ast.ObjectType{ClassName: "Widget"}, Names: []string{"a"}},
				{Type: ast.ObjectType{ClassName: "Widget"}, Names: []string{"b"}},
				{Type: ast.BooleanType{}, Names: []string{"same"}},
			},
			[]ast.Stmt{
				&ast.Assignment{Name1: "a", Value: &ast.New{ClassName: "Widget"}},
				&ast.Assignment{Name1: "b", Value: &ast.New{ClassName: "Widget"}},
				&ast.Assignment{Name1: "same", Value: &ast.Binary{
					Op: ast.Equal,
					Left: &ast.Variable{Name: "a"}, Right: &ast.Variable{Name: "b"},
				}},
			},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ExpressionTypeMismatch, diag.Code)
}

func TestCheckMemberInheritanceOffsets(t *testing.T) {
	// B declares b; C < B declares c. C's own member c stays at offset 0,
	// the inherited member b follows at offset 4 (own before inherited).
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name:    "B",
			Members: []*ast.Declaration{{Type: ast.IntegerType{}, Names: []string{"b"}}},
		},
		{
			Name:    "C",
			Super:   "B",
			Members: []*ast.Declaration{{Type: ast.IntegerType{}, Names: []string{"c"}}},
		},
		mainClass(nil, nil),
	}}
	classes, err := sem.Check(prog)
	require.NoError(t, err)

	ci, ok := classes.Lookup("C")
	require.True(t, ok)
	assert.Equal(t, 8, ci.MembersSize)
	assert.Equal(t, 0, ci.Members["c"].Offset)
	assert.Equal(t, 4, ci.Members["b"].Offset)
}

func TestCheckMethodRedefinitionDispatchesToDefiningClass(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Base",
			Methods: []*ast.Method{
				{Name: "speak", ReturnType: ast.IntegerType{}, Body: &ast.MethodBody{
					Return: &ast.ReturnStmt{Value: &ast.IntegerLiteral{Value: 1}},
				}},
			},
		},
		{
			Name:  "Derived",
			Super: "Base",
			Methods: []*ast.Method{
				{Name: "speak", ReturnType: ast.IntegerType{}, Body: &ast.MethodBody{
					Return: &ast.ReturnStmt{Value: &ast.IntegerLiteral{Value: 2}},
				}},
			},
		},
		mainClass(nil, nil),
	}}
	classes, err := sem.Check(prog)
	require.NoError(t, err)

	_, defining, ok := classes.FindMethod("Derived", "speak")
	require.True(t, ok)
	assert.Equal(t, "Derived", defining)
}

func TestCheckNoMainMethod(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{{Name: "Main"}}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.NoMainMethod, diag.Code)
}

func TestCheckUndefinedClass(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{Name: "Derived", Super: "Missing"},
		mainClass(nil, nil),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.UndefinedClass, diag.Code)
}

func TestCheckUndefinedMethod(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{
			&ast.CallStmt{Call: &ast.MethodCall{Name1: "missing"}},
		}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.UndefinedMethod, diag.Code)
}

func TestCheckUndefinedMember(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{Name: "Widget"},
		mainClass(
			[]*ast.Declaration{{Type: ast.ObjectType{ClassName: "Widget"}, Names: []string{"w"}}},
			[]ast.Stmt{
				&ast.Assignment{Name1: "w", Value: &ast.New{ClassName: "Widget"}},
				&ast.Print{Value: &ast.MemberAccess{Name1: "w", Name2: "missing"}},
			},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.UndefinedMember, diag.Code)
}

func TestCheckNotObject(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(
			[]*ast.Declaration{{Type: ast.IntegerType{}, Names: []string{"x"}}},
			[]ast.Stmt{
				&ast.Assignment{Name1: "x", Value: &ast.IntegerLiteral{Value: 1}},
				&ast.Print{Value: &ast.MemberAccess{Name1: "x", Name2: "y"}},
			},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.NotObject, diag.Code)
}

func TestCheckArgumentNumberMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Widget",
			Methods: []*ast.Method{
				{
					Name:       "set",
					Parameters: []*ast.Parameter{{Type: ast.IntegerType{}, Name: "n"}},
					ReturnType: ast.NoneType{},
					Body:       &ast.MethodBody{},
				},
			},
		},
		mainClass(
			[]*ast.Declaration{{Type: ast.ObjectType{ClassName: "Widget"}, Names: []string{"w"}}},
			[]ast.Stmt{
				&ast.Assignment{Name1: "w", Value: &ast.New{ClassName: "Widget"}},
				&ast.CallStmt{Call: &ast.MethodCall{Name1: "w", Name2: "set"}},
			},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ArgumentNumberMismatch, diag.Code)
}

func TestCheckArgumentTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Widget",
			Methods: []*ast.Method{
				{
					Name:       "set",
					Parameters: []*ast.Parameter{{Type: ast.IntegerType{}, Name: "n"}},
					ReturnType: ast.NoneType{},
					Body:       &ast.MethodBody{},
				},
			},
		},
		mainClass(
			[]*ast.Declaration{{Type: ast.ObjectType{ClassName: "Widget"}, Names: []string{"w"}}},
			[]ast.Stmt{
				&ast.Assignment{Name1: "w", Value: &ast.New{ClassName: "Widget"}},
				&ast.CallStmt{Call: &ast.MethodCall{
					Name1: "w", Name2: "set",
					Args: []ast.Expr{&ast.BooleanLiteral{Value: true}},
				}},
			},
		),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ArgumentTypeMismatch, diag.Code)
}

func TestCheckIfPredicateTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{
			&ast.IfElse{Cond: &ast.IntegerLiteral{Value: 1}},
		}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.IfPredicateTypeMismatch, diag.Code)
}

func TestCheckWhilePredicateTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{
			&ast.While{Cond: &ast.IntegerLiteral{Value: 1}},
		}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.WhilePredicateTypeMismatch, diag.Code)
}

func TestCheckDoWhilePredicateTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		mainClass(nil, []ast.Stmt{
			&ast.DoWhile{Cond: &ast.IntegerLiteral{Value: 1}},
		}),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.DoWhilePredicateTypeMismatch, diag.Code)
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Widget",
			Methods: []*ast.Method{
				{
					Name:       "count",
					ReturnType: ast.IntegerType{},
					Body: &ast.MethodBody{
						Return: &ast.ReturnStmt{Value: &ast.BooleanLiteral{Value: true}},
					},
				},
			},
		},
		mainClass(nil, nil),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ReturnTypeMismatch, diag.Code)
}

func TestCheckConstructorReturnsTypeRejected(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.Class{
		{
			Name: "Widget",
			Methods: []*ast.Method{
				{Name: "Widget", ReturnType: ast.IntegerType{}, Body: &ast.MethodBody{
					Return: &ast.ReturnStmt{Value: &ast.IntegerLiteral{Value: 1}},
				}},
			},
		},
		mainClass(nil, nil),
	}}
	_, err := sem.Check(prog)
	require.Error(t, err)
	var diag *sem.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, sem.ConstructorReturnsType, diag.Code)
}
