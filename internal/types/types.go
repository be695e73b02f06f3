// Package types implements the Language's compound type system: the base
// type enumeration and the (base, class name) pair used throughout the
// symbol table and the type checker.
package types

import "fmt"

// BaseType is the enumerated tag of a compound type.
type BaseType int

const (
	Invalid BaseType = iota
	Integer
	Boolean
	Object
	None
)

func (b BaseType) String() string {
	switch b {
	case Integer:
		return "Integer"
	case Boolean:
		return "Boolean"
	case Object:
		return "Object"
	case None:
		return "None"
	default:
		return "<invalid>"
	}
}

// Compound is the pair (base, objectClassName). ClassName is the empty
// string unless Base == Object. Equality is structural: two Compound
// values are equal iff their Base tags match and their ClassNames match
// exactly. There is no subtype compatibility anywhere in the Language:
// Object("A") != Object("B") even when A inherits from B.
type Compound struct {
	Base      BaseType
	ClassName string
}

// Equal reports whether c and other denote the same compound type.
func (c Compound) Equal(other Compound) bool {
	return c.Base == other.Base && c.ClassName == other.ClassName
}

// IsObject reports whether c is an Object type.
func (c Compound) IsObject() bool {
	return c.Base == Object
}

func (c Compound) String() string {
	if c.Base == Object {
		return fmt.Sprintf("Object(%s)", c.ClassName)
	}
	return c.Base.String()
}

// Predefined non-object compound types. Object types are constructed with
// NewObject since they carry a class name.
var (
	IntegerType = Compound{Base: Integer}
	BooleanType = Compound{Base: Boolean}
	NoneType    = Compound{Base: None}
)

// NewObject builds the compound type for an instance of className.
func NewObject(className string) Compound {
	return Compound{Base: Object, ClassName: className}
}
