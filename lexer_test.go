package jsonpath

import "testing"

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []Kind
	}{
		{
			name: "root_only",
			in:   "$",
			want: []Kind{ROOT, EOF},
		},
		{
			name: "dot_name_chain",
			in:   "$.foo.bar",
			want: []Kind{ROOT, NAME, NAME, EOF},
		},
		{
			name: "bracketed_name",
			in:   "$['foo']",
			want: []Kind{ROOT, LBRACKET, SQSTRING, RBRACKET, EOF},
		},
		{
			name: "wildcard_shorthand",
			in:   "$.*",
			want: []Kind{ROOT, WILD, EOF},
		},
		{
			name: "descendant_wildcard",
			in:   "$..*",
			want: []Kind{ROOT, DDOT, WILD, EOF},
		},
		{
			name: "whitespace_between_segments",
			in:   "$ .foo .bar",
			want: []Kind{ROOT, NAME, NAME, EOF},
		},
		{
			name: "slice",
			in:   "$[1:2:3]",
			want: []Kind{ROOT, LBRACKET, INDEX, COLON, INDEX, COLON, INDEX, RBRACKET, EOF},
		},
		{
			name: "filter_comparison",
			in:   "$[?@.thing == 7]",
			want: []Kind{ROOT, LBRACKET, FILTER, CURRENT, NAME, EQ, INT, RBRACKET, EOF},
		},
		{
			name: "filter_function_call",
			in:   "$[?count(@.*)>2]",
			want: []Kind{ROOT, LBRACKET, FILTER, FUNC, CURRENT, WILD, RPAREN, GT, INT, RBRACKET, EOF},
		},
		{
			name: "nested_function_args",
			in:   "$[?match(@.a, 'a.*')]",
			want: []Kind{ROOT, LBRACKET, FILTER, FUNC, CURRENT, NAME, COMMA, SQSTRING, RPAREN, RBRACKET, EOF},
		},
		{
			name: "grouped_logical",
			in:   "$[?(@.a && @.b)]",
			want: []Kind{ROOT, LBRACKET, FILTER, LPAREN, CURRENT, NAME, AND, CURRENT, NAME, RPAREN, RBRACKET, EOF},
		},
		{
			name: "multiple_selectors",
			in:   "$['a','b']",
			want: []Kind{ROOT, LBRACKET, SQSTRING, COMMA, SQSTRING, RBRACKET, EOF},
		},
		{
			name: "negative_exponent_is_float",
			in:   "$[?@.a==1e-2]",
			want: []Kind{ROOT, LBRACKET, FILTER, CURRENT, NAME, EQ, FLOAT, RBRACKET, EOF},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toks, err := Tokenize(tt.in)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.in, err)
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %d tokens, got %d", tt.in, toks, len(tt.want), len(toks))
			}
			for i, k := range tt.want {
				if toks[i].Kind != k {
					t.Errorf("token %d: got %s, want %s (all: %v)", i, toks[i].Kind, k, toks)
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "missing_root", in: "foo"},
		{name: "leading_whitespace", in: "  $.foo"},
		{name: "unclosed_string", in: "$['foo"},
		{name: "bad_escape", in: `$['foo\qbar']`},
		{name: "dot_then_whitespace", in: "$. foo"},
		{name: "bare_wildcard_without_dot", in: "$*"},
		{name: "trailing_whitespace_only", in: "$.foo "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Tokenize(tt.in); err == nil {
				t.Fatalf("Tokenize(%q): want error, got nil", tt.in)
			}
		})
	}
}

func TestFunctionCallParenTracking(t *testing.T) {
	t.Parallel()

	// A comma inside a function call's argument list must not be treated
	// as ending the filter selector, even across nested grouping parens.
	// The outer comma, once the call and its grouping parens are closed,
	// does end the filter selector and start the next one in the list.
	toks, err := Tokenize("$[?match(@.a, (1)), ?@.b]")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	var commas, filters int
	for _, tok := range toks {
		switch tok.Kind {
		case COMMA:
			commas++
		case FILTER:
			filters++
		}
	}
	if filters != 2 {
		t.Fatalf("want two FILTER tokens, got %d", filters)
	}
	if commas != 2 {
		t.Fatalf("want two COMMA tokens (one argument separator, one selector separator), got %d", commas)
	}
}
