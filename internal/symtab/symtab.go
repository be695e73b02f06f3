// Package symtab defines the hierarchical symbol table built by the type
// checker (internal/sem) and read back by the code generator
// (internal/codegen): classes, their members and methods, and each
// method's locals and parameters, together with the offset arithmetic
// described in spec.md §3.
package symtab

import (
	"sort"

	"github.com/samber/lo"

	"github.com/gmofishsauce/ool/internal/types"
)

// VariableInfo describes one member, parameter, or local: its compound
// type, its offset (member offset from the object record base, or
// frame-pointer-relative offset for a parameter/local), and its size
// (always 4 — every value is a 32-bit word).
type VariableInfo struct {
	Type   types.Compound
	Offset int
	Size   int
}

// MethodInfo describes one method: its declared return type, its ordered
// parameter types, the combined table of its parameters and locals, and
// the byte size of its local area.
type MethodInfo struct {
	ReturnType types.Compound
	Parameters []types.Compound
	Variables  map[string]*VariableInfo
	LocalsSize int
}

// ClassInfo describes one class: its superclass name (empty when there is
// none), its own-plus-inherited member table, its method table, and the
// total byte size of its object record.
type ClassInfo struct {
	SuperClassName string
	Members        map[string]*VariableInfo
	Methods        map[string]*MethodInfo
	MembersSize    int
}

// ClassTable is the class -> ClassInfo map, populated once during type
// checking and read-only thereafter during code generation (spec.md §3
// "Lifecycle").
type ClassTable struct {
	classes map[string]*ClassInfo
	order   []string // declaration order, for deterministic iteration
}

// New returns an empty class table.
func New() *ClassTable {
	return &ClassTable{classes: make(map[string]*ClassInfo)}
}

// Declare inserts an empty shell for className so that a class may
// reference its own name (e.g. a member of its own type) before its
// members and methods are populated. Declaring the same name twice
// replaces the earlier entry and lists the name twice in ClassNames;
// internal/sem does not check for duplicate class names.
func (ct *ClassTable) Declare(className, superClassName string) *ClassInfo {
	ci := &ClassInfo{
		SuperClassName: superClassName,
		Members:        make(map[string]*VariableInfo),
		Methods:        make(map[string]*MethodInfo),
	}
	ct.classes[className] = ci
	ct.order = append(ct.order, className)
	return ci
}

// Lookup returns the ClassInfo for className, or (nil, false) if it is not
// in the table.
func (ct *ClassTable) Lookup(className string) (*ClassInfo, bool) {
	ci, ok := ct.classes[className]
	return ci, ok
}

// Has reports whether className is present in the table (spec.md I1).
func (ct *ClassTable) Has(className string) bool {
	_, ok := ct.classes[className]
	return ok
}

// ClassNames returns every declared class name in declaration order.
func (ct *ClassTable) ClassNames() []string {
	return append([]string(nil), ct.order...)
}

// SortedClassNames returns every declared class name sorted
// lexicographically.
func (ct *ClassTable) SortedClassNames() []string {
	names := lo.Keys(ct.classes)
	sort.Strings(names)
	return names
}

// FindMember walks className and its superclass chain looking for a
// member named name, own members taking priority over inherited ones at
// each level (spec.md §4.2 step 4). It returns the VariableInfo, the name
// of the class that defines it, and whether it was found.
func (ct *ClassTable) FindMember(className, name string) (*VariableInfo, string, bool) {
	for cur := className; cur != ""; {
		ci, ok := ct.classes[cur]
		if !ok {
			return nil, "", false
		}
		if v, ok := ci.Members[name]; ok {
			return v, cur, true
		}
		cur = ci.SuperClassName
	}
	return nil, "", false
}

// FindMethod walks className and its superclass chain looking for a
// method named name. It returns the MethodInfo, the name of the class
// that defines it (the class whose own Methods table holds it — the
// defining class code generation dispatches to, spec.md §4.5), and
// whether it was found.
func (ct *ClassTable) FindMethod(className, name string) (*MethodInfo, string, bool) {
	for cur := className; cur != ""; {
		ci, ok := ct.classes[cur]
		if !ok {
			return nil, "", false
		}
		if m, ok := ci.Methods[name]; ok {
			return m, cur, true
		}
		cur = ci.SuperClassName
	}
	return nil, "", false
}

// IsAncestor reports whether base is className itself or one of its
// (transitive) superclasses.
func (ct *ClassTable) IsAncestor(className, base string) bool {
	for cur := className; cur != ""; {
		if cur == base {
			return true
		}
		ci, ok := ct.classes[cur]
		if !ok {
			return false
		}
		cur = ci.SuperClassName
	}
	return false
}
