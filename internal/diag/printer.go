// Package diag prints the symbol table built by internal/sem in a
// human-readable nested form, the same debugging aid the original
// checker's print(ClassTable) family provided, but rendered with an Go
// io.Writer and, when connected to a terminal, a splash of color on the
// structural punctuation.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/samber/lo"

	"github.com/gmofishsauce/ool/internal/symtab"
)

const indentWidth = 2

// Printer renders a *symtab.ClassTable to an io.Writer.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer writing to w. If w is an *os.File connected
// to a terminal, structural punctuation is colorized unless noColor is set.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok && !noColor {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, color: color}
}

func (p *Printer) punct(s string) string {
	if !p.color {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

// PrintClassTable renders every class in ct, in declaration order.
func (p *Printer) PrintClassTable(ct *symtab.ClassTable) {
	fmt.Fprintln(p.w, p.punct("ClassTable {"))
	names := ct.ClassNames()
	for i, name := range names {
		ci, _ := ct.Lookup(name)
		fmt.Fprintf(p.w, "%s%s -> %s\n", indent(2), name, p.punct("{"))
		if ci.SuperClassName != "" {
			fmt.Fprintf(p.w, "%s%s\n", indent(4), ci.SuperClassName)
		}
		p.printVariableTable(ci.Members, 4)
		fmt.Fprintln(p.w, p.punct(","))
		p.printMethodTable(ci.Methods, 4)
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%s%s", indent(2), p.punct("}"))
		if i != len(names)-1 {
			fmt.Fprint(p.w, p.punct(","))
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w, p.punct("}"))
}

func (p *Printer) printVariableTable(vars map[string]*symtab.VariableInfo, ind int) {
	fmt.Fprintf(p.w, "%s%s", indent(ind), p.punct("VariableTable {"))
	names := sortedKeys(vars)
	if len(names) == 0 {
		fmt.Fprint(p.w, p.punct("}"))
		return
	}
	fmt.Fprintln(p.w)
	for i, name := range names {
		v := vars[name]
		fmt.Fprintf(p.w, "%s%s -> %s%s, %d, %d%s", indent(ind+2), name, p.punct("{"), v.Type.String(), v.Offset, v.Size, p.punct("}"))
		if i != len(names)-1 {
			fmt.Fprint(p.w, p.punct(","))
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "%s%s", indent(ind), p.punct("}"))
}

func (p *Printer) printMethodTable(methods map[string]*symtab.MethodInfo, ind int) {
	fmt.Fprintf(p.w, "%s%s", indent(ind), p.punct("MethodTable {"))
	names := sortedKeys(methods)
	if len(names) == 0 {
		fmt.Fprint(p.w, p.punct("}"))
		return
	}
	fmt.Fprintln(p.w)
	for i, name := range names {
		m := methods[name]
		fmt.Fprintf(p.w, "%s%s -> %s\n", indent(ind+2), name, p.punct("{"))
		fmt.Fprintf(p.w, "%s%s,\n", indent(ind+4), m.ReturnType.String())
		fmt.Fprintf(p.w, "%s%d,\n", indent(ind+4), m.LocalsSize)
		p.printVariableTable(m.Variables, ind+4)
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%s%s", indent(ind+2), p.punct("}"))
		if i != len(names)-1 {
			fmt.Fprint(p.w, p.punct(","))
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "%s%s", indent(ind), p.punct("}"))
}

func indent(n int) string {
	return strings.Repeat(" ", n)
}

func sortedKeys[V any](m map[string]V) []string {
	names := lo.Keys(m)
	sort.Strings(names)
	return names
}
