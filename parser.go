package jsonpath

import (
	"math"
	"strconv"
	"strings"
)

// Filter expression operator precedences. Note that, as recorded in
// DESIGN.md's parser.go entry, '||' binds
// tighter than '&&': this is deliberate, not a typo, and is required for
// byte-for-byte compatible parses of existing queries.
const (
	precedenceLowest     = 1
	precedenceLogicalAnd = 4
	precedenceLogicalOr  = 5
	precedenceComparison = 6
	precedencePrefix     = 7
)

func tokenPrecedence(k Kind) int {
	switch k {
	case AND:
		return precedenceLogicalAnd
	case OR:
		return precedenceLogicalOr
	case EQ, NE, LT, LE, GT, GE:
		return precedenceComparison
	case NOT:
		return precedencePrefix
	default:
		return precedenceLowest
	}
}

func isInfixOperator(k Kind) bool {
	switch k {
	case AND, OR, EQ, NE, LT, LE, GT, GE:
		return true
	default:
		return false
	}
}

func isComparisonOperator(k Kind) bool {
	switch k {
	case EQ, NE, LT, LE, GT, GE:
		return true
	default:
		return false
	}
}

func binaryOperatorFor(tok Token) (BinaryOperator, error) {
	switch tok.Kind {
	case AND:
		return OpAnd, nil
	case OR:
		return OpOr, nil
	case EQ:
		return OpEq, nil
	case NE:
		return OpNe, nil
	case LT:
		return OpLt, nil
	case LE:
		return OpLe, nil
	case GT:
		return OpGt, nil
	case GE:
		return OpGe, nil
	default:
		return OpNone, syntaxError(tok, "%s is not a binary operator", tok.Kind)
	}
}

// Parser turns a token sequence, or a raw query string, into Segments. A
// Parser holds only its immutable function-extension registry, so a
// single instance may be shared across goroutines and invoked concurrently
// on independent inputs.
type Parser struct {
	functions map[string]FunctionExtensionType
}

// NewParser constructs a Parser. A nil functions map selects
// DefaultFunctionExtensions().
func NewParser(functions map[string]FunctionExtensionType) *Parser {
	if functions == nil {
		functions = DefaultFunctionExtensions()
	}
	return &Parser{functions: functions}
}

// Parse lexes and parses query with the default function registry.
func Parse(query string) (Segments, error) {
	return NewParser(nil).Parse(query)
}

// Parse lexes and parses query using p's function registry.
func (p *Parser) Parse(query string) (Segments, error) {
	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

// ParseTokens parses a pre-tokenized query.
func (p *Parser) ParseTokens(tokens []Token) (Segments, error) {
	st := &parserState{p: p, tokens: tokens}

	if st.current().Kind == ERROR {
		tok := st.current()
		return nil, syntaxError(tok, "%s", tok.Lexeme)
	}

	if err := st.consume(ROOT); err != nil {
		return nil, err
	}

	segs, err := st.parseSegments()
	if err != nil {
		return nil, err
	}

	if st.current().Kind != EOF {
		return nil, syntaxError(st.current(), "unexpected token %s", st.current().Kind)
	}

	return segs, nil
}

type parserState struct {
	p      *Parser
	tokens []Token
	pos    int
}

func (s *parserState) current() Token {
	if s.pos >= len(s.tokens) {
		return Token{Kind: EOF}
	}
	return s.tokens[s.pos]
}

func (s *parserState) advance() Token {
	tok := s.current()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

// consume asserts the current token has kind k and advances past it.
func (s *parserState) consume(k Kind) error {
	tok := s.current()
	if tok.Kind != k {
		return syntaxError(tok, "expected %s, found %s", k, tok.Kind)
	}
	s.advance()
	return nil
}

func (s *parserState) parseSegments() (Segments, error) {
	var segs Segments
	for s.current().Kind != EOF {
		seg, err := s.parseSegment()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func (s *parserState) parseSegment() (Segment, error) {
	tok := s.current()
	switch tok.Kind {
	case NAME:
		s.advance()
		return Segment{Token: tok, Selectors: []Selector{{Name: &NameSelector{Token: tok, Name: tok.Lexeme, Shorthand: true}}}}, nil
	case WILD:
		s.advance()
		return Segment{Token: tok, Selectors: []Selector{{Wild: &WildSelector{Token: tok, Shorthand: true}}}}, nil
	case LBRACKET:
		s.advance()
		sels, err := s.parseBracketedSelection(tok)
		if err != nil {
			return Segment{}, err
		}
		if err := s.consume(RBRACKET); err != nil {
			return Segment{}, err
		}
		return Segment{Token: tok, Selectors: sels}, nil
	case DDOT:
		s.advance()
		return s.parseDescendantSegment(tok)
	default:
		return Segment{}, syntaxError(tok, "expected segment, found %s", tok.Kind)
	}
}

func (s *parserState) parseDescendantSegment(ddot Token) (Segment, error) {
	tok := s.current()
	switch tok.Kind {
	case NAME:
		s.advance()
		return Segment{Token: ddot, Descendant: true, Selectors: []Selector{{Name: &NameSelector{Token: tok, Name: tok.Lexeme, Shorthand: false}}}}, nil
	case WILD:
		s.advance()
		return Segment{Token: ddot, Descendant: true, Selectors: []Selector{{Wild: &WildSelector{Token: tok, Shorthand: false}}}}, nil
	case LBRACKET:
		s.advance()
		sels, err := s.parseBracketedSelection(tok)
		if err != nil {
			return Segment{}, err
		}
		if err := s.consume(RBRACKET); err != nil {
			return Segment{}, err
		}
		return Segment{Token: ddot, Descendant: true, Selectors: sels}, nil
	default:
		return Segment{}, syntaxError(tok, "expected '*', '[', or name after '..', found %s", tok.Kind)
	}
}

// parseSubQuerySegments parses the zero-or-more segments following a '$'
// or '@' token inside a filter expression; it stops (without consuming)
// at the first token that doesn't start a segment.
func (s *parserState) parseSubQuerySegments() (Segments, error) {
	var segs Segments
	for {
		switch s.current().Kind {
		case NAME, WILD, LBRACKET, DDOT:
			seg, err := s.parseSegment()
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		default:
			return segs, nil
		}
	}
}

func (s *parserState) parseBracketedSelection(open Token) ([]Selector, error) {
	if s.current().Kind == RBRACKET {
		return nil, syntaxError(open, "empty bracketed segment")
	}

	var sels []Selector
	for {
		sel, err := s.parseSelector()
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
		if s.current().Kind == COMMA {
			s.advance()
			continue
		}
		break
	}
	return sels, nil
}

func (s *parserState) parseSelector() (Selector, error) {
	tok := s.current()
	switch tok.Kind {
	case SQSTRING, DQSTRING:
		s.advance()
		val, err := decodeStringToken(tok)
		if err != nil {
			return Selector{}, err
		}
		return Selector{Name: &NameSelector{Token: tok, Name: val, Shorthand: false}}, nil
	case WILD:
		s.advance()
		return Selector{Wild: &WildSelector{Token: tok, Shorthand: false}}, nil
	case FILTER:
		s.advance()
		expr, err := s.parseFilterExpression(precedenceLowest)
		if err != nil {
			return Selector{}, err
		}
		if call := expr.Call; call != nil {
			sig := s.p.functions[call.Name]
			if sig.Result == ValueType {
				return Selector{}, typeError(tok, "result of %s() must be compared", call.Name)
			}
		}
		return Selector{Filter: &FilterSelector{Token: tok, Expr: expr}}, nil
	case INDEX:
		return s.parseIndexOrSlice(tok)
	case COLON:
		return s.parseSlice(tok, nil)
	default:
		return Selector{}, syntaxError(tok, "unexpected token %s in bracketed selection", tok.Kind)
	}
}

func (s *parserState) parseIndexOrSlice(tok Token) (Selector, error) {
	s.advance()
	if s.current().Kind == COLON {
		idx, err := parseIndexLiteral(tok)
		if err != nil {
			return Selector{}, err
		}
		return s.parseSlice(tok, &idx)
	}
	idx, err := parseIndexLiteral(tok)
	if err != nil {
		return Selector{}, err
	}
	return Selector{Index: &IndexSelector{Token: tok, Index: idx}}, nil
}

func (s *parserState) parseSlice(tok Token, start *int64) (Selector, error) {
	if err := s.consume(COLON); err != nil {
		return Selector{}, err
	}
	stop, err := s.parseOptionalIndexComponent()
	if err != nil {
		return Selector{}, err
	}
	var step *int64
	if s.current().Kind == COLON {
		s.advance()
		step, err = s.parseOptionalIndexComponent()
		if err != nil {
			return Selector{}, err
		}
	}
	return Selector{Slice: &SliceSelector{Token: tok, Start: start, Stop: stop, Step: step}}, nil
}

func (s *parserState) parseOptionalIndexComponent() (*int64, error) {
	if s.current().Kind != INDEX {
		return nil, nil
	}
	tok := s.current()
	s.advance()
	v, err := parseIndexLiteral(tok)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseIndexLiteral decodes an INDEX token: a leading zero (other than the
// literal "0") or a "-0" is a SyntaxError; the index rule is the same for
// a direct index selector and for every slice component.
func parseIndexLiteral(tok Token) (int64, error) {
	lex := tok.Lexeme
	neg := strings.HasPrefix(lex, "-")
	digitsOnly := lex
	if neg {
		digitsOnly = lex[1:]
	}
	if len(digitsOnly) > 1 && digitsOnly[0] == '0' {
		return 0, syntaxError(tok, "array indicies with a leading zero are not allowed")
	}
	if neg && digitsOnly == "0" {
		return 0, syntaxError(tok, "-0 is not a valid array index")
	}
	v, err := strconv.ParseInt(lex, 10, 64)
	if err != nil {
		return 0, syntaxError(tok, "array index %q is out of range", lex)
	}
	return v, nil
}

// parseIntLiteral decodes an INT token. "-0" normalizes to 0 (tolerated in
// literal position, unlike index position).
func parseIntLiteral(tok Token) (int64, error) {
	lex := tok.Lexeme
	neg := strings.HasPrefix(lex, "-")
	digitsOnly := lex
	if neg {
		digitsOnly = lex[1:]
	}
	intPart := digitsOnly
	if i := strings.IndexAny(intPart, "eE"); i >= 0 {
		intPart = intPart[:i]
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return 0, syntaxError(tok, "integer literal with a leading zero is not allowed")
	}
	if neg && digitsOnly == "0" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return 0, syntaxError(tok, "invalid integer literal %q", lex)
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return 0, syntaxError(tok, "integer literal %q is out of range", lex)
	}
	return int64(f), nil
}

func parseFloatLiteral(tok Token) (float64, error) {
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, syntaxError(tok, "invalid float literal %q", tok.Lexeme)
	}
	return f, nil
}

// parseFilterExpression is the Pratt loop: parse one prefix, then while
// the next token's precedence is at least the caller's threshold, consume
// it and parse its right-hand side recursively.
func (s *parserState) parseFilterExpression(precedence int) (Expression, error) {
	left, err := s.parsePrefix()
	if err != nil {
		return Expression{}, err
	}

	for {
		tok := s.current()
		if !isInfixOperator(tok.Kind) {
			break
		}
		if tokenPrecedence(tok.Kind) < precedence {
			break
		}
		s.advance()

		right, err := s.parseFilterExpression(tokenPrecedence(tok.Kind))
		if err != nil {
			return Expression{}, err
		}

		op, err := binaryOperatorFor(tok)
		if err != nil {
			return Expression{}, err
		}

		if isComparisonOperator(tok.Kind) {
			if err := s.checkComparable(left); err != nil {
				return Expression{}, err
			}
			if err := s.checkComparable(right); err != nil {
				return Expression{}, err
			}
		}

		left = Expression{Infix: &InfixExpression{Token: tok, Left: left, Op: op, Right: right}}
	}

	return left, nil
}

func (s *parserState) parsePrefix() (Expression, error) {
	tok := s.current()
	switch tok.Kind {
	case TRUE:
		s.advance()
		return Expression{Bool: &BoolLiteral{Token: tok, Value: true}}, nil
	case FALSE:
		s.advance()
		return Expression{Bool: &BoolLiteral{Token: tok, Value: false}}, nil
	case NULL:
		s.advance()
		return Expression{Null: &NullLiteral{Token: tok}}, nil
	case INT:
		s.advance()
		v, err := parseIntLiteral(tok)
		if err != nil {
			return Expression{}, err
		}
		return Expression{Int: &IntLiteral{Token: tok, Value: v}}, nil
	case FLOAT:
		s.advance()
		v, err := parseFloatLiteral(tok)
		if err != nil {
			return Expression{}, err
		}
		return Expression{Float: &FloatLiteral{Token: tok, Value: v}}, nil
	case SQSTRING, DQSTRING:
		s.advance()
		v, err := decodeStringToken(tok)
		if err != nil {
			return Expression{}, err
		}
		return Expression{String: &StringLiteral{Token: tok, Value: v}}, nil
	case NOT:
		s.advance()
		right, err := s.parseFilterExpression(precedencePrefix)
		if err != nil {
			return Expression{}, err
		}
		return Expression{Not: &NotExpression{Token: tok, Right: right}}, nil
	case LPAREN:
		s.advance()
		expr, err := s.parseFilterExpression(precedenceLowest)
		if err != nil {
			return Expression{}, err
		}
		if err := s.consume(RPAREN); err != nil {
			return Expression{}, err
		}
		return expr, nil
	case ROOT:
		s.advance()
		segs, err := s.parseSubQuerySegments()
		if err != nil {
			return Expression{}, err
		}
		return Expression{Root: &RootQuery{Token: tok, Query: segs}}, nil
	case CURRENT:
		s.advance()
		segs, err := s.parseSubQuerySegments()
		if err != nil {
			return Expression{}, err
		}
		return Expression{Relative: &RelativeQuery{Token: tok, Query: segs}}, nil
	case FUNC:
		return s.parseFunctionCall(tok)
	default:
		return Expression{}, syntaxError(tok, "unexpected token %s in filter expression", tok.Kind)
	}
}

func (s *parserState) parseFunctionCall(tok Token) (Expression, error) {
	s.advance()
	name := tok.Lexeme

	var args []Expression
	if s.current().Kind != RPAREN {
		for {
			arg, err := s.parseFilterExpression(precedenceLowest)
			if err != nil {
				return Expression{}, err
			}
			args = append(args, arg)
			if s.current().Kind == COMMA {
				s.advance()
				continue
			}
			break
		}
	}

	if err := s.consume(RPAREN); err != nil {
		return Expression{}, err
	}

	sig, ok := s.p.functions[name]
	if !ok {
		return Expression{}, nameError(tok, "function %q is not defined", name)
	}
	if err := s.checkFunctionSignature(tok, name, sig, args); err != nil {
		return Expression{}, err
	}

	return Expression{Call: &FunctionCall{Token: tok, Name: name, Args: args}}, nil
}

func (s *parserState) checkFunctionSignature(tok Token, name string, sig FunctionExtensionType, args []Expression) error {
	if len(args) != len(sig.Args) {
		word := "arguments"
		if len(sig.Args) == 1 {
			word = "argument"
		}
		return typeError(tok, "%s() takes %d %s, %d given", name, len(sig.Args), word, len(args))
	}
	for i, want := range sig.Args {
		if !s.argMatchesType(args[i], want) {
			return typeError(tok, "%s() argument %d must be of %sType", name, i, want)
		}
	}
	return nil
}

func (s *parserState) argMatchesType(arg Expression, want TypeClass) bool {
	switch want {
	case ValueType:
		return s.isValueCompatible(arg)
	case LogicalType:
		return isLogicalCompatible(arg)
	case NodesType:
		return s.isNodesCompatible(arg)
	default:
		return false
	}
}

func (s *parserState) isValueCompatible(e Expression) bool {
	switch {
	case e.Null != nil, e.Bool != nil, e.Int != nil, e.Float != nil, e.String != nil:
		return true
	case e.Root != nil:
		return IsSingularQuery(e.Root.Query)
	case e.Relative != nil:
		return IsSingularQuery(e.Relative.Query)
	case e.Call != nil:
		return s.p.functions[e.Call.Name].Result == ValueType
	default:
		return false
	}
}

func isLogicalCompatible(e Expression) bool {
	return e.Root != nil || e.Relative != nil || e.Infix != nil || e.Not != nil
}

func (s *parserState) isNodesCompatible(e Expression) bool {
	switch {
	case e.Root != nil, e.Relative != nil:
		return true
	case e.Call != nil:
		return s.p.functions[e.Call.Name].Result == NodesType
	default:
		return false
	}
}

// checkComparable enforces that a comparison operand is a literal or a
// singular sub-query, and that a function-call operand returns ValueType.
// Errors are reported at the operand's own token, matching the reference
// implementation's diagnostics, which point at the offending sub-query
// rather than at the comparison operator.
func (s *parserState) checkComparable(operand Expression) error {
	switch {
	case operand.Null != nil, operand.Bool != nil, operand.Int != nil, operand.Float != nil, operand.String != nil:
		return nil
	case operand.Call != nil:
		if s.p.functions[operand.Call.Name].Result != ValueType {
			return typeError(operand.Call.Token, "result of %s() is not comparable", operand.Call.Name)
		}
		return nil
	case operand.Root != nil:
		if !IsSingularQuery(operand.Root.Query) {
			return syntaxError(operand.Root.Token, "non-singular query is not comparable")
		}
		return nil
	case operand.Relative != nil:
		if !IsSingularQuery(operand.Relative.Query) {
			return syntaxError(operand.Relative.Token, "non-singular query is not comparable")
		}
		return nil
	default:
		return syntaxError(exprToken(operand), "comparison operand must be a literal or singular query")
	}
}

// exprToken returns the leading token of any Expression variant, used for
// diagnostics when no more specific token applies.
func exprToken(e Expression) Token {
	switch {
	case e.Null != nil:
		return e.Null.Token
	case e.Bool != nil:
		return e.Bool.Token
	case e.Int != nil:
		return e.Int.Token
	case e.Float != nil:
		return e.Float.Token
	case e.String != nil:
		return e.String.Token
	case e.Not != nil:
		return e.Not.Token
	case e.Infix != nil:
		return e.Infix.Token
	case e.Root != nil:
		return e.Root.Token
	case e.Relative != nil:
		return e.Relative.Token
	case e.Call != nil:
		return e.Call.Token
	default:
		return Token{}
	}
}
