// Package odata builds OData v4 $filter boolean expressions. Filters are
// assembled as a small expression tree and rendered in one place so quoting
// and escaping policy lives at a single boundary instead of being scattered
// across handlers.
package odata

import (
	"fmt"
	"strings"
)

type Expr interface {
	render(b *strings.Builder)
}

// Render returns the wire form of e, or "" for a nil/empty expression.
func Render(e Expr) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.render(&b)
	return b.String()
}

// Escape doubles embedded single quotes so caller-supplied text cannot break
// out of a string literal.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

type cmp struct {
	field string
	op    string
	value string
}

func (c cmp) render(b *strings.Builder) {
	b.WriteString(c.field)
	b.WriteByte(' ')
	b.WriteString(c.op)
	b.WriteByte(' ')
	b.WriteString(c.value)
}

func literal(v any) string {
	switch t := v.(type) {
	case string:
		return "'" + Escape(t) + "'"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// Whole-number floats render without a trailing ".000000".
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func Eq(field string, v any) Expr { return cmp{field, "eq", literal(v)} }
func Ge(field string, v any) Expr { return cmp{field, "ge", literal(v)} }
func Gt(field string, v any) Expr { return cmp{field, "gt", literal(v)} }
func Le(field string, v any) Expr { return cmp{field, "le", literal(v)} }
func Lt(field string, v any) Expr { return cmp{field, "lt", literal(v)} }

// Raw injects an already-formed value, e.g. an unquoted ISO date for
// CloseDate comparisons. Never pass caller input through Raw.
func Raw(field, op, value string) Expr { return cmp{field, op, value} }

type fold struct {
	field string
	value string
}

// EqFold matches field against value case-insensitively, the way the Paragon
// docs suggest working around case-sensitive string equality.
func EqFold(field, value string) Expr { return fold{field, value} }

func (f fold) render(b *strings.Builder) {
	b.WriteString("tolower(")
	b.WriteString(f.field)
	b.WriteString(") eq '")
	b.WriteString(Escape(strings.ToLower(f.value)))
	b.WriteByte('\'')
}

type contains struct {
	field string
	value string
}

// Contains does case-insensitive substring matching.
func Contains(field, value string) Expr { return contains{field, value} }

func (c contains) render(b *strings.Builder) {
	b.WriteString("contains(tolower(")
	b.WriteString(c.field)
	b.WriteString("),'")
	b.WriteString(Escape(strings.ToLower(c.value)))
	b.WriteString("')")
}

type group struct {
	op    string
	exprs []Expr
}

func (g group) render(b *strings.Builder) {
	parens := g.op == "or" && len(g.exprs) > 1
	if parens {
		b.WriteByte('(')
	}
	for i, e := range g.exprs {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(g.op)
			b.WriteByte(' ')
		}
		e.render(b)
	}
	if parens {
		b.WriteByte(')')
	}
}

func compact(exprs []Expr) []Expr {
	out := exprs[:0:0]
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// And joins expressions with " and ". OR groups inside are already
// parenthesized, so no parens are needed at this level.
func And(exprs ...Expr) Expr {
	exprs = compact(exprs)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	// Nested ands must parenthesize when they appear inside an or group,
	// so wrap multi-term and-children defensively via sub.
	wrapped := make([]Expr, len(exprs))
	for i, e := range exprs {
		if g, ok := e.(group); ok && g.op == "and" && len(g.exprs) > 1 {
			wrapped[i] = paren{g}
		} else {
			wrapped[i] = e
		}
	}
	return group{op: "and", exprs: wrapped}
}

// Or joins expressions with " or " and wraps the result in parentheses so it
// composes safely under And.
func Or(exprs ...Expr) Expr {
	exprs = compact(exprs)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	wrapped := make([]Expr, len(exprs))
	for i, e := range exprs {
		if g, ok := e.(group); ok && g.op == "and" && len(g.exprs) > 1 {
			wrapped[i] = paren{g}
		} else {
			wrapped[i] = e
		}
	}
	return group{op: "or", exprs: wrapped}
}

type paren struct{ inner Expr }

func (p paren) render(b *strings.Builder) {
	b.WriteByte('(')
	p.inner.render(b)
	b.WriteByte(')')
}

// Group forces parentheses around an expression.
func Group(e Expr) Expr {
	if e == nil {
		return nil
	}
	if _, ok := e.(paren); ok {
		return e
	}
	if g, ok := e.(group); ok && g.op == "or" && len(g.exprs) > 1 {
		return e // or-groups self-parenthesize
	}
	return paren{e}
}
