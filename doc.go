// Package jsonpath is a front-end for the JSONPath query language (RFC 9535).
//
// It tokenizes a query string with a hand-written state-machine Lexer,
// parses the resulting tokens with a recursive-descent / Pratt Parser into
// a tree of Segments, and can render that tree back to its canonical
// textual form with Print. Applying a parsed query to a JSON document is
// deliberately out of scope: this package produces the validated,
// structured representation a downstream evaluator would consume.
//
//	segments, err := jsonpath.Parse(`$.store.book[?@.price < 10].title`)
//	if err != nil {
//		// err wraps one of ErrLexer, ErrSyntax, ErrType, ErrName, ErrEncoding
//	}
//	fmt.Println(segments) // $['store']['book'][?@['price'] < 10]['title']
//
// A Parser is stateless after construction and safe for concurrent reuse.
// Each Lexer tokenization, by contrast, owns a fresh state machine and is
// not shared.
package jsonpath
