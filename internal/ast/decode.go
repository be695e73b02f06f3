package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram decodes the JSON representation of a Program produced by
// an upstream parser. Each node is tagged with a "kind" discriminator; this
// is the seam described in SPEC_FULL.md §4.7 where a real parser's output
// would be substituted for a hand-authored test fixture.
func DecodeProgram(data []byte) (*Program, error) {
	var raw struct {
		Classes []json.RawMessage `json:"classes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	prog := &Program{}
	for _, rc := range raw.Classes {
		c, err := decodeClass(rc)
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, c)
	}
	return prog, nil
}

func decodeClass(data []byte) (*Class, error) {
	var raw struct {
		Name    string            `json:"name"`
		Super   string            `json:"super"`
		Members []json.RawMessage `json:"members"`
		Methods []json.RawMessage `json:"methods"`
		Line    int               `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode class: %w", err)
	}
	c := &Class{Name: raw.Name, Super: raw.Super, Line: raw.Line}
	for _, rm := range raw.Members {
		d, err := decodeDeclaration(rm)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, d)
	}
	for _, rm := range raw.Methods {
		m, err := decodeMethod(rm)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func decodeDeclaration(data []byte) (*Declaration, error) {
	var raw struct {
		Type  json.RawMessage `json:"type"`
		Names []string        `json:"names"`
		Line  int             `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode declaration: %w", err)
	}
	t, err := decodeType(raw.Type)
	if err != nil {
		return nil, err
	}
	return &Declaration{Type: t, Names: raw.Names, Line: raw.Line}, nil
}

func decodeType(data []byte) (TypeNode, error) {
	var raw struct {
		Kind      string `json:"kind"`
		ClassName string `json:"className"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode type: %w", err)
	}
	switch raw.Kind {
	case "integer":
		return IntegerType{}, nil
	case "boolean":
		return BooleanType{}, nil
	case "none":
		return NoneType{}, nil
	case "object":
		return ObjectType{ClassName: raw.ClassName}, nil
	default:
		return nil, fmt.Errorf("decode type: unknown kind %q", raw.Kind)
	}
}

func decodeMethod(data []byte) (*Method, error) {
	var raw struct {
		Name       string            `json:"name"`
		Parameters []json.RawMessage `json:"parameters"`
		ReturnType json.RawMessage   `json:"returnType"`
		Body       json.RawMessage   `json:"body"`
		Line       int               `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode method: %w", err)
	}
	rt, err := decodeType(raw.ReturnType)
	if err != nil {
		return nil, err
	}
	m := &Method{Name: raw.Name, ReturnType: rt, Line: raw.Line}
	for _, rp := range raw.Parameters {
		p, err := decodeParameter(rp)
		if err != nil {
			return nil, err
		}
		m.Parameters = append(m.Parameters, p)
	}
	body, err := decodeMethodBody(raw.Body)
	if err != nil {
		return nil, err
	}
	m.Body = body
	return m, nil
}

func decodeParameter(data []byte) (*Parameter, error) {
	var raw struct {
		Type json.RawMessage `json:"type"`
		Name string          `json:"name"`
		Line int             `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode parameter: %w", err)
	}
	t, err := decodeType(raw.Type)
	if err != nil {
		return nil, err
	}
	return &Parameter{Type: t, Name: raw.Name, Line: raw.Line}, nil
}

func decodeMethodBody(data []byte) (*MethodBody, error) {
	var raw struct {
		Locals []json.RawMessage `json:"locals"`
		Stmts  []json.RawMessage `json:"stmts"`
		Return json.RawMessage   `json:"returnStmt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode method body: %w", err)
	}
	body := &MethodBody{}
	for _, rl := range raw.Locals {
		d, err := decodeDeclaration(rl)
		if err != nil {
			return nil, err
		}
		body.Locals = append(body.Locals, d)
	}
	for _, rs := range raw.Stmts {
		s, err := decodeStmt(rs)
		if err != nil {
			return nil, err
		}
		body.Stmts = append(body.Stmts, s)
	}
	if len(raw.Return) > 0 && string(raw.Return) != "null" {
		r, err := decodeStmt(raw.Return)
		if err != nil {
			return nil, err
		}
		ret, ok := r.(*ReturnStmt)
		if !ok {
			return nil, fmt.Errorf("decode method body: returnStmt is not a return statement")
		}
		body.Return = ret
	}
	return body, nil
}

func decodeStmt(data []byte) (Stmt, error) {
	var raw struct {
		Kind  string          `json:"kind"`
		Line  int             `json:"line"`
		Name1 string          `json:"name1"`
		Name2 string          `json:"name2"`
		Value json.RawMessage `json:"value"`
		Cond  json.RawMessage `json:"cond"`
		Then  []json.RawMessage `json:"then"`
		Else  []json.RawMessage `json:"else"`
		Body  []json.RawMessage `json:"body"`
		Call  json.RawMessage `json:"call"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode stmt: %w", err)
	}
	base := baseStmt{Line: raw.Line}
	switch raw.Kind {
	case "assignment":
		v, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{baseStmt: base, Name1: raw.Name1, Name2: raw.Name2, Value: v}, nil
	case "if":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(raw.Else)
		if err != nil {
			return nil, err
		}
		return &IfElse{baseStmt: base, Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(raw.Body)
		if err != nil {
			return nil, err
		}
		return &While{baseStmt: base, Cond: cond, Body: stmts}, nil
	case "doWhile":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(raw.Body)
		if err != nil {
			return nil, err
		}
		return &DoWhile{baseStmt: base, Cond: cond, Body: stmts}, nil
	case "print":
		v, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Print{baseStmt: base, Value: v}, nil
	case "call":
		ce, err := decodeExpr(raw.Call)
		if err != nil {
			return nil, err
		}
		mc, ok := ce.(*MethodCall)
		if !ok {
			return nil, fmt.Errorf("decode stmt: call statement does not wrap a method call")
		}
		return &CallStmt{baseStmt: base, Call: mc}, nil
	case "return":
		var v Expr
		if len(raw.Value) > 0 && string(raw.Value) != "null" {
			var err error
			v, err = decodeExpr(raw.Value)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStmt{baseStmt: base, Value: v}, nil
	default:
		return nil, fmt.Errorf("decode stmt: unknown kind %q", raw.Kind)
	}
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	var out []Stmt
	for _, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExpr(data []byte) (Expr, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw struct {
		Kind      string            `json:"kind"`
		Line      int               `json:"line"`
		Op        string            `json:"op"`
		Left      json.RawMessage   `json:"left"`
		Right     json.RawMessage   `json:"right"`
		Operand   json.RawMessage   `json:"operand"`
		Name1     string            `json:"name1"`
		Name2     string            `json:"name2"`
		Name      string            `json:"name"`
		ClassName string            `json:"className"`
		Args      []json.RawMessage `json:"args"`
		IntValue  int64             `json:"intValue"`
		BoolValue bool              `json:"boolValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode expr: %w", err)
	}
	base := baseExpr{Line: raw.Line}
	switch raw.Kind {
	case "binary":
		l, err := decodeExpr(raw.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(raw.Right)
		if err != nil {
			return nil, err
		}
		op, err := decodeBinaryOp(raw.Op)
		if err != nil {
			return nil, err
		}
		return &Binary{baseExpr: base, Op: op, Left: l, Right: r}, nil
	case "unary":
		o, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		var op UnaryOp
		switch raw.Op {
		case "not":
			op = Not
		case "neg":
			op = Neg
		default:
			return nil, fmt.Errorf("decode expr: unknown unary op %q", raw.Op)
		}
		return &Unary{baseExpr: base, Op: op, Operand: o}, nil
	case "methodCall":
		args, err := decodeExprs(raw.Args)
		if err != nil {
			return nil, err
		}
		return &MethodCall{baseExpr: base, Name1: raw.Name1, Name2: raw.Name2, Args: args}, nil
	case "memberAccess":
		return &MemberAccess{baseExpr: base, Name1: raw.Name1, Name2: raw.Name2}, nil
	case "variable":
		return &Variable{baseExpr: base, Name: raw.Name}, nil
	case "integerLiteral":
		return &IntegerLiteral{baseExpr: base, Value: raw.IntValue}, nil
	case "booleanLiteral":
		return &BooleanLiteral{baseExpr: base, Value: raw.BoolValue}, nil
	case "new":
		args, err := decodeExprs(raw.Args)
		if err != nil {
			return nil, err
		}
		return &New{baseExpr: base, ClassName: raw.ClassName, Args: args}, nil
	default:
		return nil, fmt.Errorf("decode expr: unknown kind %q", raw.Kind)
	}
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	var out []Expr
	for _, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeBinaryOp(s string) (BinaryOp, error) {
	switch s {
	case "+":
		return Add, nil
	case "-":
		return Sub, nil
	case "*":
		return Mul, nil
	case "/":
		return Div, nil
	case ">":
		return Greater, nil
	case ">=":
		return GreaterEqual, nil
	case "=":
		return Equal, nil
	case "and":
		return And, nil
	case "or":
		return Or, nil
	default:
		return 0, fmt.Errorf("decode expr: unknown binary op %q", s)
	}
}
