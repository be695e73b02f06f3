package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// Emitter writes AT&T-syntax x86 assembly a line at a time. It knows
// nothing about the Language's AST; it is the same kind of thin
// instruction-formatting layer as lang/ygen's Emitter in the teacher
// pipeline, adapted from that ISA's three-operand RISC mnemonics to AT&T
// "op src, dst" two-operand syntax.
type Emitter struct {
	out        *bufio.Writer
	labelCount int
}

// NewEmitter wraps w in a buffered line emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Flush flushes any buffered output.
func (e *Emitter) Flush() error {
	return e.out.Flush()
}

// NewLabel returns a fresh, globally unique label with the given prefix
// (spec.md §4.5 "Labels are globally unique using a monotonic counter").
func (e *Emitter) NewLabel(prefix string) string {
	n := e.labelCount
	e.labelCount++
	return fmt.Sprintf("%s%d", prefix, n)
}

// Directive emits an assembler directive verbatim, e.g. ".data".
func (e *Emitter) Directive(s string) {
	fmt.Fprintln(e.out, s)
}

// Label emits a label definition.
func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

// Comment emits a GAS-style '#' comment line.
func (e *Emitter) Comment(format string, args ...interface{}) {
	fmt.Fprintf(e.out, "# %s\n", fmt.Sprintf(format, args...))
}

// Instr0 emits a zero-operand instruction.
func (e *Emitter) Instr0(op string) {
	fmt.Fprintf(e.out, "\t%s\n", op)
}

// Instr1 emits a one-operand instruction.
func (e *Emitter) Instr1(op, arg string) {
	fmt.Fprintf(e.out, "\t%s %s\n", op, arg)
}

// Instr2 emits a two-operand instruction in AT&T "src, dst" order.
func (e *Emitter) Instr2(op, src, dst string) {
	fmt.Fprintf(e.out, "\t%s %s, %s\n", op, src, dst)
}

// --- Specific instruction helpers (spec.md §4.5) ---

func (e *Emitter) Push(operand string) { e.Instr1("push", operand) }
func (e *Emitter) PushImm(n int)       { e.Push(fmt.Sprintf("$%d", n)) }
func (e *Emitter) PushLabel(l string)  { e.Push(fmt.Sprintf("$%s", l)) }
func (e *Emitter) Pop(reg string)      { e.Instr1("pop", reg) }

func (e *Emitter) Mov(src, dst string)  { e.Instr2("mov", src, dst) }
func (e *Emitter) Add(src, dst string)  { e.Instr2("add", src, dst) }
func (e *Emitter) Sub(src, dst string)  { e.Instr2("sub", src, dst) }
func (e *Emitter) IMul(src, dst string) { e.Instr2("imul", src, dst) }
func (e *Emitter) IDiv(src string)      { e.Instr1("idiv", src) }
func (e *Emitter) Cdq()                 { e.Instr0("cdq") }
func (e *Emitter) And(src, dst string)  { e.Instr2("and", src, dst) }
func (e *Emitter) Or(src, dst string)   { e.Instr2("or", src, dst) }
func (e *Emitter) Xor(src, dst string)  { e.Instr2("xor", src, dst) }
func (e *Emitter) Neg(reg string)       { e.Instr1("neg", reg) }
func (e *Emitter) Cmp(src, dst string)  { e.Instr2("cmp", src, dst) }

func (e *Emitter) Jmp(label string) { e.Instr1("jmp", label) }
func (e *Emitter) Je(label string)  { e.Instr1("je", label) }
func (e *Emitter) Jg(label string)  { e.Instr1("jg", label) }
func (e *Emitter) Jge(label string) { e.Instr1("jge", label) }

func (e *Emitter) Call(label string) { e.Instr1("call", label) }
func (e *Emitter) Ret()              { e.Instr0("ret") }

// Offset formats a frame/object-relative memory operand, e.g. "-4(%ebp)".
func Offset(offset int, base string) string {
	return fmt.Sprintf("%d(%s)", offset, base)
}
