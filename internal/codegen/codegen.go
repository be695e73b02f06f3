// Package codegen turns a type-checked AST (decorated by internal/sem) and
// its symbol table (internal/symtab) into AT&T-syntax x86 assembly using
// the cdecl calling convention, per spec.md §4.5. Every value — integer,
// boolean, or object reference — is a 32-bit word; every object is a
// malloc'd record of the class's member words, addressed through an
// implicit receiver pointer that the caller always pushes last, so it
// always lands at 8(%ebp) in the callee's frame.
package codegen

import (
	"fmt"
	"io"

	"github.com/gmofishsauce/ool/internal/ast"
	"github.com/gmofishsauce/ool/internal/symtab"
	"github.com/gmofishsauce/ool/internal/types"
)

const (
	receiverOffset = 8  // 8(%ebp): implicit receiver, pushed last by every caller
	dataPrintFmt   = "printfmt"
)

// genScope is the explicit traversal context for emitting one method body:
// which class and method we're in (to resolve bare names and dispatch
// calls) and the emitter doing the writing. It is rebuilt per method, the
// same discipline internal/sem uses for its scope (spec.md Design Notes).
type genScope struct {
	classes   *symtab.ClassTable
	className string
	variables map[string]*symtab.VariableInfo
	e         *Emitter
}

// Generate emits the full program: the data section, then one label per
// method in declaration order, to w. prog must already have passed
// sem.Check, and classes must be the table that call produced.
func Generate(prog *ast.Program, classes *symtab.ClassTable, w io.Writer) error {
	e := NewEmitter(w)

	e.Directive(".data")
	e.Label(dataPrintFmt)
	e.Directive(`	.asciz "%d\n"`)
	e.Directive(".text")
	e.Directive(".globl Main_main")
	e.Directive(".globl main")

	// main: the process entry point. It calls Main_main with a null
	// receiver pushed at 8(%ebp) — Main is checked to have no members, so
	// nothing ever dereferences it, but every method body is generated
	// assuming a receiver slot exists there.
	e.Label("main")
	e.Push("%ebp")
	e.Mov("%esp", "%ebp")
	e.PushImm(0)
	e.Call("Main_main")
	e.Add("$4", "%esp")
	e.Mov("%ebp", "%esp")
	e.Pop("%ebp")
	e.Mov("$0", "%eax")
	e.Ret()

	for _, cls := range prog.Classes {
		ci, ok := classes.Lookup(cls.Name)
		if !ok {
			return fmt.Errorf("codegen: class %q missing from symbol table", cls.Name)
		}
		for _, m := range cls.Methods {
			if err := genMethod(e, classes, cls, ci, m); err != nil {
				return err
			}
		}
	}

	return e.Flush()
}

func genMethod(e *Emitter, classes *symtab.ClassTable, cls *ast.Class, ci *symtab.ClassInfo, m *ast.Method) error {
	mi, ok := ci.Methods[m.Name]
	if !ok {
		return fmt.Errorf("codegen: method %s.%s missing from symbol table", cls.Name, m.Name)
	}
	isConstructor := m.Name == cls.Name

	e.Label(cls.Name + "_" + m.Name)
	e.Push("%ebp")
	e.Mov("%esp", "%ebp")
	if mi.LocalsSize > 0 {
		e.Sub(fmt.Sprintf("$%d", mi.LocalsSize), "%esp")
	}
	e.Push("%ebx")
	e.Push("%esi")
	e.Push("%edi")

	gs := &genScope{classes: classes, className: cls.Name, variables: mi.Variables, e: e}

	for _, s := range m.Body.Stmts {
		if err := genStmt(gs, s); err != nil {
			return err
		}
	}

	switch {
	case isConstructor:
		e.Mov(Offset(receiverOffset, "%ebp"), "%eax")
	case m.Body.Return != nil && m.Body.Return.Value != nil:
		if err := genExpr(gs, m.Body.Return.Value); err != nil {
			return err
		}
	}

	e.Pop("%edi")
	e.Pop("%esi")
	e.Pop("%ebx")
	e.Mov("%ebp", "%esp")
	e.Pop("%ebp")
	e.Ret()
	return nil
}

// varLocation is where a resolved name lives: either a frame-relative slot
// (a parameter or local of the current method) or a member reached through
// the implicit receiver.
type varLocation struct {
	frameOffset int
	isMember    bool
	memberOff   int
}

func resolveLocation(gs *genScope, name string) (varLocation, bool) {
	if v, ok := gs.variables[name]; ok {
		return varLocation{frameOffset: v.Offset}, true
	}
	if v, _, ok := gs.classes.FindMember(gs.className, name); ok {
		return varLocation{isMember: true, memberOff: v.Offset}, true
	}
	return varLocation{}, false
}

// loadInto emits code that loads loc's value into reg, using scratch as a
// spare register when a member must first be reached through the receiver.
func loadInto(gs *genScope, loc varLocation, reg, scratch string) {
	if !loc.isMember {
		gs.e.Mov(Offset(loc.frameOffset, "%ebp"), reg)
		return
	}
	gs.e.Mov(Offset(receiverOffset, "%ebp"), scratch)
	gs.e.Mov(Offset(loc.memberOff, scratch), reg)
}

// storeFrom emits code that stores reg into loc, using scratch the same way.
func storeFrom(gs *genScope, loc varLocation, reg, scratch string) {
	if !loc.isMember {
		gs.e.Mov(reg, Offset(loc.frameOffset, "%ebp"))
		return
	}
	gs.e.Mov(Offset(receiverOffset, "%ebp"), scratch)
	gs.e.Mov(reg, Offset(loc.memberOff, scratch))
}

func genStmt(gs *genScope, s ast.Stmt) error {
	e := gs.e
	switch st := s.(type) {
	case *ast.Assignment:
		if err := genExpr(gs, st.Value); err != nil {
			return err
		}
		if st.Name2 == "" {
			loc, ok := resolveLocation(gs, st.Name1)
			if !ok {
				return fmt.Errorf("codegen: unresolved variable %q", st.Name1)
			}
			storeFrom(gs, loc, "%eax", "%ecx")
			return nil
		}
		e.Push("%eax") // save rhs across receiver evaluation
		recvLoc, ok := resolveLocation(gs, st.Name1)
		if !ok {
			return fmt.Errorf("codegen: unresolved variable %q", st.Name1)
		}
		loadInto(gs, recvLoc, "%ecx", "%ecx")
		recvType, _ := resolveVarType(gs, st.Name1)
		v, _, ok := gs.classes.FindMember(recvType.ClassName, st.Name2)
		if !ok {
			return fmt.Errorf("codegen: unresolved member %q", st.Name2)
		}
		e.Pop("%eax")
		e.Mov("%eax", Offset(v.Offset, "%ecx"))
		return nil

	case *ast.IfElse:
		elseLabel := e.NewLabel("Lelse")
		endLabel := e.NewLabel("Lend")
		if err := genExpr(gs, st.Cond); err != nil {
			return err
		}
		e.Cmp("$0", "%eax")
		e.Je(elseLabel)
		if err := genStmts(gs, st.Then); err != nil {
			return err
		}
		e.Jmp(endLabel)
		e.Label(elseLabel)
		if err := genStmts(gs, st.Else); err != nil {
			return err
		}
		e.Label(endLabel)
		return nil

	case *ast.While:
		topLabel := e.NewLabel("Lwhile")
		endLabel := e.NewLabel("Lend")
		e.Label(topLabel)
		if err := genExpr(gs, st.Cond); err != nil {
			return err
		}
		e.Cmp("$0", "%eax")
		e.Je(endLabel)
		if err := genStmts(gs, st.Body); err != nil {
			return err
		}
		e.Jmp(topLabel)
		e.Label(endLabel)
		return nil

	case *ast.DoWhile:
		topLabel := e.NewLabel("Ldo")
		e.Label(topLabel)
		if err := genStmts(gs, st.Body); err != nil {
			return err
		}
		if err := genExpr(gs, st.Cond); err != nil {
			return err
		}
		e.Cmp("$0", "%eax")
		e.Instr1("jne", topLabel)
		return nil

	case *ast.Print:
		if err := genExpr(gs, st.Value); err != nil {
			return err
		}
		e.Push("%eax")
		e.PushLabel(dataPrintFmt)
		e.Call("printf")
		e.Add("$8", "%esp")
		return nil

	case *ast.CallStmt:
		return genMethodCall(gs, st.Call)

	default:
		return fmt.Errorf("codegen: unhandled statement type %T", s)
	}
}

func genStmts(gs *genScope, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := genStmt(gs, s); err != nil {
			return err
		}
	}
	return nil
}

// resolveVarType reports the static type of a bare name already validated
// by internal/sem; codegen trusts it and uses it only to know which class
// to search for a member on.
func resolveVarType(gs *genScope, name string) (types.Compound, bool) {
	if v, ok := gs.variables[name]; ok {
		return v.Type, true
	}
	if v, _, ok := gs.classes.FindMember(gs.className, name); ok {
		return v.Type, true
	}
	return types.Compound{}, false
}

func genExpr(gs *genScope, e ast.Expr) error {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		gs.e.Mov(fmt.Sprintf("$%d", ex.Value), "%eax")
		return nil

	case *ast.BooleanLiteral:
		v := 0
		if ex.Value {
			v = 1
		}
		gs.e.Mov(fmt.Sprintf("$%d", v), "%eax")
		return nil

	case *ast.Variable:
		loc, ok := resolveLocation(gs, ex.Name)
		if !ok {
			return fmt.Errorf("codegen: unresolved variable %q", ex.Name)
		}
		loadInto(gs, loc, "%eax", "%ecx")
		return nil

	case *ast.MemberAccess:
		recvLoc, ok := resolveLocation(gs, ex.Name1)
		if !ok {
			return fmt.Errorf("codegen: unresolved variable %q", ex.Name1)
		}
		loadInto(gs, recvLoc, "%ecx", "%ecx")
		recvType, _ := resolveVarType(gs, ex.Name1)
		v, _, ok := gs.classes.FindMember(recvType.ClassName, ex.Name2)
		if !ok {
			return fmt.Errorf("codegen: unresolved member %q", ex.Name2)
		}
		gs.e.Mov(Offset(v.Offset, "%ecx"), "%eax")
		return nil

	case *ast.Binary:
		return genBinary(gs, ex)

	case *ast.Unary:
		return genUnary(gs, ex)

	case *ast.New:
		return genNew(gs, ex)

	case *ast.MethodCall:
		return genMethodCall(gs, ex)

	default:
		return fmt.Errorf("codegen: unhandled expression type %T", e)
	}
}

// genBinary evaluates Left then Right, leaving Left in %ebx and Right in
// %eax, then combines them per Op, leaving the result in %eax.
func genBinary(gs *genScope, ex *ast.Binary) error {
	e := gs.e
	if err := genExpr(gs, ex.Left); err != nil {
		return err
	}
	e.Push("%eax")
	if err := genExpr(gs, ex.Right); err != nil {
		return err
	}
	e.Pop("%ebx")

	switch ex.Op {
	case ast.Add:
		e.Add("%ebx", "%eax")
	case ast.Sub:
		// eax = ebx - eax, computed as ebx -= eax then moved into eax.
		e.Sub("%eax", "%ebx")
		e.Mov("%ebx", "%eax")
	case ast.Mul:
		e.IMul("%ebx", "%eax")
	case ast.Div:
		e.Mov("%eax", "%ecx") // divisor (right)
		e.Mov("%ebx", "%eax") // dividend (left)
		e.Cdq()
		e.IDiv("%ecx")
	case ast.Greater:
		genCompare(gs, (*Emitter).Jg)
	case ast.GreaterEqual:
		genCompare(gs, (*Emitter).Jge)
	case ast.Equal:
		genCompare(gs, (*Emitter).Je)
	case ast.And:
		e.And("%ebx", "%eax")
	case ast.Or:
		e.Or("%ebx", "%eax")
	default:
		return fmt.Errorf("codegen: unhandled binary operator %v", ex.Op)
	}
	return nil
}

// genCompare emits the cmp-and-set sequence shared by the three relational
// operators: %ebx holds the left operand, %eax the right; the flags of
// left-right decide which branch sets %eax to 1 or 0. jcc is one of
// (*Emitter).Je/Jg/Jge.
func genCompare(gs *genScope, jcc func(*Emitter, string)) {
	e := gs.e
	trueLabel := e.NewLabel("Ltrue")
	endLabel := e.NewLabel("Lend")
	e.Cmp("%eax", "%ebx")
	jcc(e, trueLabel)
	e.Mov("$0", "%eax")
	e.Jmp(endLabel)
	e.Label(trueLabel)
	e.Mov("$1", "%eax")
	e.Label(endLabel)
}

func genUnary(gs *genScope, ex *ast.Unary) error {
	if err := genExpr(gs, ex.Operand); err != nil {
		return err
	}
	switch ex.Op {
	case ast.Not:
		gs.e.Xor("$1", "%eax")
	case ast.Neg:
		gs.e.Neg("%eax")
	default:
		return fmt.Errorf("codegen: unhandled unary operator %v", ex.Op)
	}
	return nil
}

// genNew mallocs the object's record and, if the class declares its own
// constructor, calls it with the receiver pushed last (spec.md §4.5). The
// constructor's own epilogue leaves the receiver pointer in %eax.
func genNew(gs *genScope, ex *ast.New) error {
	e := gs.e
	ci, ok := gs.classes.Lookup(ex.ClassName)
	if !ok {
		return fmt.Errorf("codegen: unresolved class %q", ex.ClassName)
	}
	e.Push(fmt.Sprintf("$%d", ci.MembersSize))
	e.Call("malloc")
	e.Add("$4", "%esp")

	ctor, hasCtor := ci.Methods[ex.ClassName]
	if !hasCtor {
		return nil
	}

	e.Push("%eax") // stash the receiver under the stack depth args will add
	for i := len(ex.Args) - 1; i >= 0; i-- {
		if err := genExpr(gs, ex.Args[i]); err != nil {
			return err
		}
		e.Push("%eax")
	}
	// Recover the stashed receiver and push it again, last, so it lands
	// at 8(%ebp) as every callee expects.
	e.Mov(Offset(4*len(ex.Args), "%esp"), "%eax")
	e.Push("%eax")
	e.Call(ex.ClassName + "_" + ex.ClassName)
	e.Add(fmt.Sprintf("$%d", 4*(len(ctor.Parameters)+2)), "%esp")
	return nil
}

// genMethodCall dispatches statically to the defining class of the target
// method — not the receiver's declared class's whole ancestry walked to
// its root, which spec.md's Design Notes flag as the bug to avoid
// (symtab.FindMethod already returns the correct defining class).
func genMethodCall(gs *genScope, ex *ast.MethodCall) error {
	e := gs.e
	var lookupClass string
	var receiverOn varLocation
	hasReceiver := ex.Name2 != ""

	if !hasReceiver {
		lookupClass = gs.className
	} else {
		loc, ok := resolveLocation(gs, ex.Name1)
		if !ok {
			return fmt.Errorf("codegen: unresolved variable %q", ex.Name1)
		}
		receiverOn = loc
		recvType, _ := resolveVarType(gs, ex.Name1)
		lookupClass = recvType.ClassName
	}

	_, definingClass, ok := gs.classes.FindMethod(lookupClass, methodName(ex))
	if !ok {
		return fmt.Errorf("codegen: unresolved method on %q", lookupClass)
	}

	for i := len(ex.Args) - 1; i >= 0; i-- {
		if err := genExpr(gs, ex.Args[i]); err != nil {
			return err
		}
		e.Push("%eax")
	}
	if hasReceiver {
		loadInto(gs, receiverOn, "%eax", "%ecx")
	} else {
		e.Mov(Offset(receiverOffset, "%ebp"), "%eax")
	}
	e.Push("%eax")

	e.Call(definingClass + "_" + methodName(ex))
	e.Add(fmt.Sprintf("$%d", 4*(len(ex.Args)+1)), "%esp")
	return nil
}

func methodName(ex *ast.MethodCall) string {
	if ex.Name2 == "" {
		return ex.Name1
	}
	return ex.Name2
}
