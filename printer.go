package jsonpath

import (
	"strconv"
	"strings"
)

// Print renders segments to JSONPath's canonical textual form: every
// segment bracketed regardless of shorthand origin, descendant segments
// prefixed with "..", logical infix expressions always parenthesized.
func Print(segments Segments) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, seg := range segments {
		printSegment(&b, seg)
	}
	return b.String()
}

func printSegment(b *strings.Builder, seg Segment) {
	if seg.Descendant {
		b.WriteString("..")
	}
	b.WriteByte('[')
	for i, sel := range seg.Selectors {
		if i > 0 {
			b.WriteString(", ")
		}
		printSelector(b, sel)
	}
	b.WriteByte(']')
}

func printSelector(b *strings.Builder, sel Selector) {
	switch {
	case sel.Name != nil:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(sel.Name.Name, "'", `\'`))
		b.WriteByte('\'')
	case sel.Index != nil:
		b.WriteString(strconv.FormatInt(sel.Index.Index, 10))
	case sel.Wild != nil:
		b.WriteByte('*')
	case sel.Slice != nil:
		printSlice(b, sel.Slice)
	case sel.Filter != nil:
		b.WriteByte('?')
		printExpression(b, sel.Filter.Expr)
	}
}

func printSlice(b *strings.Builder, sl *SliceSelector) {
	printOptionalInt(b, sl.Start)
	b.WriteByte(':')
	printOptionalInt(b, sl.Stop)
	b.WriteByte(':')
	if sl.Step != nil {
		b.WriteString(strconv.FormatInt(*sl.Step, 10))
	} else {
		b.WriteByte('1')
	}
}

func printOptionalInt(b *strings.Builder, v *int64) {
	if v != nil {
		b.WriteString(strconv.FormatInt(*v, 10))
	}
}

func printExpression(b *strings.Builder, e Expression) {
	switch {
	case e.Null != nil:
		b.WriteString("null")
	case e.Bool != nil:
		if e.Bool.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case e.Int != nil:
		b.WriteString(strconv.FormatInt(e.Int.Value, 10))
	case e.Float != nil:
		b.WriteString(strconv.FormatFloat(e.Float.Value, 'g', -1, 64))
	case e.String != nil:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(e.String.Value, `"`, `\"`))
		b.WriteByte('"')
	case e.Not != nil:
		b.WriteByte('!')
		printExpression(b, e.Not.Right)
	case e.Infix != nil:
		printInfix(b, e.Infix)
	case e.Root != nil:
		b.WriteByte('$')
		for _, seg := range e.Root.Query {
			printSegment(b, seg)
		}
	case e.Relative != nil:
		b.WriteByte('@')
		for _, seg := range e.Relative.Query {
			printSegment(b, seg)
		}
	case e.Call != nil:
		b.WriteString(e.Call.Name)
		b.WriteByte('(')
		for i, arg := range e.Call.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printExpression(b, arg)
		}
		b.WriteByte(')')
	}
}

func printInfix(b *strings.Builder, inf *InfixExpression) {
	logical := inf.Op == OpAnd || inf.Op == OpOr
	if logical {
		b.WriteByte('(')
	}
	printExpression(b, inf.Left)
	b.WriteByte(' ')
	b.WriteString(operatorSymbol(inf.Op))
	b.WriteByte(' ')
	printExpression(b, inf.Right)
	if logical {
		b.WriteByte(')')
	}
}

func operatorSymbol(op BinaryOperator) string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}
