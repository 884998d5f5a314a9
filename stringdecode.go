package jsonpath

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeStringToken turns a SQSTRING/DQSTRING token's raw lexeme into the
// UTF-8 value carried by the corresponding AST node. It mirrors the
// reference implementation's two-stage decode: normalize escaped quotes
// for single-quoted literals first, then resolve the standard JSON escapes
// and \uXXXX sequences (combining UTF-16 surrogate pairs).
func decodeStringToken(tok Token) (string, error) {
	raw := tok.Lexeme
	if tok.Kind == SQSTRING {
		raw = strings.ReplaceAll(raw, `\'`, `'`)
	}
	return unescapeJSONString(raw, tok)
}

func unescapeJSONString(s string, tok Token) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]

		if c < 0x20 {
			return "", encodingError(tok, "invalid character in string literal")
		}

		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(s) {
			return "", syntaxError(tok, "unclosed string literal")
		}
		esc := s[i+1]
		switch esc {
		case '"':
			b.WriteByte('"')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		case '/':
			b.WriteByte('/')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'u':
			cp, n, err := decodeUnicodeEscape(s, i, tok)
			if err != nil {
				return "", err
			}
			b.WriteRune(cp)
			i = n
		default:
			return "", syntaxError(tok, "invalid escape sequence '\\%c'", esc)
		}
	}
	return b.String(), nil
}

// decodeUnicodeEscape decodes the \uXXXX sequence starting at s[i] and, if
// it is a high surrogate immediately followed by a matching \uXXXX low
// surrogate, combines the pair into one supplementary code point. It
// returns the decoded rune and the index immediately after the sequence(s)
// consumed.
func decodeUnicodeEscape(s string, i int, tok Token) (rune, int, error) {
	hi, err := readHex4(s, i+2, tok)
	if err != nil {
		return 0, 0, err
	}
	next := i + 6

	if utf16.IsSurrogate(rune(hi)) {
		if hi >= 0xD800 && hi <= 0xDBFF && next+1 < len(s) && s[next] == '\\' && s[next+1] == 'u' {
			lo, err := readHex4(s, next+2, tok)
			if err == nil && lo >= 0xDC00 && lo <= 0xDFFF {
				combined := utf16.DecodeRune(rune(hi), rune(lo))
				if combined != utf8.RuneError {
					return combined, next + 6, nil
				}
			}
		}
		return 0, 0, encodingError(tok, "lone surrogate in string literal")
	}

	return rune(hi), next, nil
}

func readHex4(s string, i int, tok Token) (uint32, error) {
	if i+4 > len(s) {
		return 0, syntaxError(tok, "invalid \\u escape sequence")
	}
	v, err := strconv.ParseUint(s[i:i+4], 16, 32)
	if err != nil {
		return 0, syntaxError(tok, "invalid \\u escape sequence")
	}
	return uint32(v), nil
}
