package sem

// Code is one of the fixed diagnostic codes of spec.md §6. The type
// checker halts on the first violation encountered during its traversal
// and reports exactly one of these.
type Code string

const (
	UndefinedVariable            Code = "undefined_variable"
	UndefinedMethod               Code = "undefined_method"
	UndefinedClass                Code = "undefined_class"
	UndefinedMember                Code = "undefined_member"
	NotObject                      Code = "not_object"
	ExpressionTypeMismatch          Code = "expression_type_mismatch"
	ArgumentNumberMismatch          Code = "argument_number_mismatch"
	ArgumentTypeMismatch            Code = "argument_type_mismatch"
	WhilePredicateTypeMismatch      Code = "while_predicate_type_mismatch"
	DoWhilePredicateTypeMismatch    Code = "do_while_predicate_type_mismatch"
	IfPredicateTypeMismatch         Code = "if_predicate_type_mismatch"
	AssignmentTypeMismatch          Code = "assignment_type_mismatch"
	ReturnTypeMismatch              Code = "return_type_mismatch"
	ConstructorReturnsType          Code = "constructor_returns_type"
	NoMainClass                     Code = "no_main_class"
	MainClassMembersPresent         Code = "main_class_members_present"
	NoMainMethod                    Code = "no_main_method"
	MainMethodIncorrectSignature    Code = "main_method_incorrect_signature"
)

var messages = map[Code]string{
	UndefinedVariable:            "Undefined variable.",
	UndefinedMethod:              "Method does not exist.",
	UndefinedClass:               "Class does not exist.",
	UndefinedMember:              "Class member does not exist.",
	NotObject:                    "Variable is not an object.",
	ExpressionTypeMismatch:       "Expression types do not match.",
	ArgumentNumberMismatch:       "Method called with incorrect number of arguments.",
	ArgumentTypeMismatch:         "Method called with argument of incorrect type.",
	WhilePredicateTypeMismatch:   "Predicate of while loop is not boolean.",
	DoWhilePredicateTypeMismatch: "Predicate of do while loop is not boolean.",
	IfPredicateTypeMismatch:      "Predicate of if statement is not boolean.",
	AssignmentTypeMismatch:       "Left and right hand sides of assignment types mismatch.",
	ReturnTypeMismatch:           "Return statement type does not match declared return type.",
	ConstructorReturnsType:       "Class constructor returns a value.",
	NoMainClass:                  `The "Main" class was not found.`,
	MainClassMembersPresent:      `The "Main" class has members.`,
	NoMainMethod:                 `The "Main" class does not have a "main" method.`,
	MainMethodIncorrectSignature: `The "main" method of the "Main" class has an incorrect signature.`,
}

// Diagnostic is the single fixed-text error the checker reports. Only one
// is ever produced per run: the traversal stops at the first violation
// (spec.md §7 — errors are not accumulated).
type Diagnostic struct {
	Code Code
}

func (d *Diagnostic) Error() string {
	return messages[d.Code]
}

func fail(code Code) error {
	return &Diagnostic{Code: code}
}
