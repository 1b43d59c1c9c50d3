package runtime

import "fmt"

// Arith and Compare back the emitted guard/body expression translators:
// CHR guards and bodies operate over untyped terms, so emitted
// occurrence code can't know at compile time whether an operand is an
// int64, a float64, or something else entirely. Centralizing the
// type-switch here keeps every occurrence procedure a thin, readable
// call site instead of repeating the same numeric-widening logic in
// every emitted file.

// Arith evaluates a binary arithmetic CHR operator ("+", "-", "*", "%")
// over two dynamically typed operands, promoting to float64 if either
// side is a float.
func Arith(op string, a, b any) any {
	af, _ := toFloat(a)
	bf, _ := toFloat(b)
	if isFloatVal(a) || isFloatVal(b) {
		switch op {
		case "+":
			return af + bf
		case "-":
			return af - bf
		case "*":
			return af * bf
		case "%":
			panic(fmt.Sprintf("chr: %% is not defined over floats (%v %% %v)", a, b))
		}
	}
	ai, bi := int64(af), int64(bf)
	switch op {
	case "+":
		return ai + bi
	case "-":
		return ai - bi
	case "*":
		return ai * bi
	case "%":
		return ai % bi
	}
	panic("chr: unknown arithmetic operator " + op)
}

// Neg negates a numeric operand.
func Neg(a any) any {
	if f, ok := a.(float64); ok {
		return -f
	}
	f, _ := toFloat(a)
	if _, ok := a.(int64); ok {
		return -int64(f)
	}
	return -f
}

// Compare evaluates a binary comparison CHR operator over two
// dynamically typed operands.
func Compare(op string, a, b any) bool {
	switch op {
	case "==":
		return compareValues(a, b) == 0
	case "!=":
		return compareValues(a, b) != 0
	case "<":
		return compareValues(a, b) < 0
	case "<=":
		return compareValues(a, b) <= 0
	case ">":
		return compareValues(a, b) > 0
	case ">=":
		return compareValues(a, b) >= 0
	}
	panic("chr: unknown comparison operator " + op)
}

func compareValues(a, b any) int {
	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)
	if aOK && bOK {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isFloatVal(v any) bool {
	_, ok := v.(float64)
	return ok
}

// AskEq unifies a and b against store s, reporting only success — the
// emitted guard expression translator uses this where CHR source calls
// for an `=` ask-constraint inside a guard, where a binding conflict
// simply fails the guard rather than propagating an error.
func AskEq(s *BuiltinStore, a, b any) bool {
	ok, err := s.Unify(a, b)
	return err == nil && ok
}
