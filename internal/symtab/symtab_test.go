package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/ool/internal/symtab"
	"github.com/gmofishsauce/ool/internal/types"
)

func TestFindMemberWalksSuperclassChain(t *testing.T) {
	ct := symtab.New()
	a := ct.Declare("A", "")
	a.Members["x"] = &symtab.VariableInfo{Type: types.IntegerType, Offset: 0, Size: 4}

	b := ct.Declare("B", "A")
	b.Members["y"] = &symtab.VariableInfo{Type: types.BooleanType, Offset: 4, Size: 4}

	v, defining, ok := ct.FindMember("B", "y")
	require.True(t, ok)
	assert.Equal(t, "B", defining)
	assert.Equal(t, types.BooleanType, v.Type)

	v, defining, ok = ct.FindMember("B", "x")
	require.True(t, ok)
	assert.Equal(t, "A", defining)
	assert.Equal(t, 0, v.Offset)

	_, _, ok = ct.FindMember("B", "z")
	assert.False(t, ok)
}

func TestFindMethodReturnsDefiningClass(t *testing.T) {
	ct := symtab.New()
	root := ct.Declare("Root", "")
	root.Methods["greet"] = &symtab.MethodInfo{ReturnType: types.NoneType}

	mid := ct.Declare("Mid", "Root")

	leaf := ct.Declare("Leaf", "Mid")
	leaf.Methods["greet"] = &symtab.MethodInfo{ReturnType: types.IntegerType}

	_, defining, ok := ct.FindMethod("Leaf", "greet")
	require.True(t, ok)
	assert.Equal(t, "Leaf", defining, "a method redefined on Leaf must dispatch to Leaf, not walk past it to Root")

	_, defining, ok = ct.FindMethod("Mid", "greet")
	require.True(t, ok)
	assert.Equal(t, "Root", defining)
}

func TestIsAncestor(t *testing.T) {
	ct := symtab.New()
	ct.Declare("A", "")
	ct.Declare("B", "A")
	ct.Declare("C", "B")

	assert.True(t, ct.IsAncestor("C", "A"))
	assert.True(t, ct.IsAncestor("C", "C"))
	assert.False(t, ct.IsAncestor("A", "C"))
}

func TestSortedClassNames(t *testing.T) {
	ct := symtab.New()
	ct.Declare("Zebra", "")
	ct.Declare("Apple", "")

	assert.Equal(t, []string{"Apple", "Zebra"}, ct.SortedClassNames())
	assert.Equal(t, []string{"Zebra", "Apple"}, ct.ClassNames())
}
