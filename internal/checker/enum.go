package checker

import (
	"math"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// enumMemberValue evaluates an enum member to a float64 or string constant.
// Members without an initializer continue the previous numeric member.
func (c *Checker) enumMemberValue(member *ast.Symbol) any {
	if member == nil {
		return nil
	}
	if v, ok := c.enumValues[member]; ok {
		return v
	}
	if c.enumEvaluating[member] {
		return nil
	}
	c.enumEvaluating[member] = true
	defer delete(c.enumEvaluating, member)

	decl, _ := member.FirstDeclaration().(*ast.EnumMember)
	var v any
	switch {
	case decl == nil:
	case decl.Initializer != nil:
		v = c.evaluateConstant(decl.Initializer, member.Parent, c.scopes[decl])
	default:
		v = 0.0
		order := c.enumOrder[member.Parent]
		for i, m := range order {
			if m != member || i == 0 {
				continue
			}
			if prev, ok := c.enumMemberValue(order[i-1]).(float64); ok {
				v = prev + 1
			} else {
				v = nil
			}
		}
	}
	c.enumValues[member] = v
	return v
}

func (c *Checker) evaluateConstant(e ast.Expression, enum *ast.Symbol, s *scope) any {
	switch e := e.(type) {
	case *ast.NumericLiteral:
		if v, ok := ParseNumber(e.Text); ok {
			return v
		}
	case *ast.StringLiteral:
		return e.Text
	case *ast.ParenthesizedExpression:
		return c.evaluateConstant(e.Expression, enum, s)
	case *ast.PrefixUnaryExpression:
		v, ok := c.evaluateConstant(e.Operand, enum, s).(float64)
		if !ok {
			return nil
		}
		switch e.Operator {
		case "+":
			return v
		case "-":
			return -v
		case "~":
			return float64(^toInt32(v))
		}
	case *ast.BinaryExpression:
		return evaluateBinary(e.Operator, c.evaluateConstant(e.Left, enum, s), c.evaluateConstant(e.Right, enum, s))
	case *ast.Identifier:
		switch e.Text {
		case "Infinity":
			return math.Inf(1)
		case "NaN":
			return math.NaN()
		}
		if enum != nil && enum.Members != nil {
			if m := enum.Members[e.Text]; m != nil {
				return c.enumMemberValue(m)
			}
		}
		if sym := c.resolveAliasOrSelf(c.resolveName(e.Text, s, meaningValue)); sym != nil && sym.Flags&ast.SymbolEnumMember != 0 {
			return c.enumMemberValue(sym)
		}
	case *ast.PropertyAccessExpression:
		if name := ast.ExpressionToEntityName(e); name != nil {
			if sym := c.resolveAliasOrSelf(c.resolveEntityName(name, s, meaningValue)); sym != nil && sym.Flags&ast.SymbolEnumMember != 0 {
				return c.enumMemberValue(sym)
			}
		}
	}
	return nil
}

func toInt32(v float64) int32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(v))))
}

func evaluateBinary(op string, l, r any) any {
	ls, lstr := l.(string)
	rs, rstr := r.(string)
	lf, lnum := l.(float64)
	rf, rnum := r.(float64)
	if op == "+" {
		switch {
		case lstr && rstr:
			return ls + rs
		case lstr && rnum:
			return ls + FormatNumber(rf)
		case lnum && rstr:
			return FormatNumber(lf) + rs
		}
	}
	if !lnum || !rnum {
		return nil
	}
	switch op {
	case "+":
		return lf + rf
	case "-":
		return lf - rf
	case "*":
		return lf * rf
	case "/":
		return lf / rf
	case "%":
		return math.Mod(lf, rf)
	case "**":
		return math.Pow(lf, rf)
	case "|":
		return float64(toInt32(lf) | toInt32(rf))
	case "&":
		return float64(toInt32(lf) & toInt32(rf))
	case "^":
		return float64(toInt32(lf) ^ toInt32(rf))
	case "<<":
		return float64(toInt32(lf) << (uint32(toInt32(rf)) & 31))
	case ">>":
		return float64(toInt32(lf) >> (uint32(toInt32(rf)) & 31))
	case ">>>":
		return float64(uint32(toInt32(lf)) >> (uint32(toInt32(rf)) & 31))
	}
	return nil
}
