package query

import (
	"errors"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// ErrEmptyStatement is returned when there is nothing to translate.
var ErrEmptyStatement = errors.New("empty SQL statement")

// Snowflake functions DuckDB knows under another name.
var dialectRenames = map[string]string{
	"IFF":        "IF",
	"NVL":        "COALESCE",
	"IFNULL":     "COALESCE",
	"LISTAGG":    "STRING_AGG",
	"TO_VARIANT": "TO_JSON",
	"PARSE_JSON": "JSON",
}

// Niladic functions DuckDB only accepts without parentheses.
var niladicKeywords = map[string]bool{
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
}

const nvl2 = "NVL2"

// Translator rewrites Snowflake-only functions so that statements can run on
// the offline DuckDB engine.
//
// Call sites are edited in the source text, never re-printed from a parse
// tree: the MySQL grammar of the parser would turn "quoted" identifiers into
// string literals and add FROM dual to bare selects. The parser only narrows
// the rewrite to names it saw called. Statements that use none of the mapped
// functions are returned exactly as given.
type Translator struct{}

// NewTranslator creates a new SQL translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate converts Snowflake SQL to DuckDB-compatible SQL.
func (t *Translator) Translate(sql string) (string, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "", ErrEmptyStatement
	}

	var called map[string]bool
	if stmt, err := sqlparser.Parse(sql); err == nil {
		called = calledFunctions(stmt)
		if len(called) == 0 {
			return sql, nil
		}
	}
	// Unparsable statements (QUALIFY, FLATTEN, ...) are still scanned for
	// every mapped name.

	rw := callRewriter{only: called}
	out, changed := rw.rewrite(sql)
	if !changed {
		return sql, nil
	}
	return out, nil
}

// calledFunctions returns the mapped function names called in stmt.
func calledFunctions(stmt sqlparser.Statement) map[string]bool {
	called := make(map[string]bool)
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if fn, ok := node.(*sqlparser.FuncExpr); ok {
			if name := strings.ToUpper(fn.Name.String()); isMapped(name) {
				called[name] = true
			}
		}
		return true, nil
	}, stmt)
	return called
}

func isMapped(name string) bool {
	_, renamed := dialectRenames[name]
	return renamed || niladicKeywords[name] || name == nvl2
}

// callRewriter edits function calls in SQL text. Literals, quoted
// identifiers and comments are copied untouched.
type callRewriter struct {
	// only restricts the rewrite to these names; nil means every mapped name.
	only map[string]bool
}

func (r callRewriter) wants(name string) bool {
	if !isMapped(name) {
		return false
	}
	return r.only == nil || r.only[name]
}

func (r callRewriter) rewrite(src string) (string, bool) {
	var b strings.Builder
	b.Grow(len(src))
	changed := false

	for i := 0; i < len(src); {
		if j := skipQuoted(src, i); j > i {
			b.WriteString(src[i:j])
			i = j
			continue
		}
		if !isIdentStart(src[i]) {
			b.WriteByte(src[i])
			i++
			continue
		}

		j := i
		for j < len(src) && isIdentPart(src[j]) {
			j++
		}
		word := src[i:j]
		name := strings.ToUpper(word)

		open := skipSpace(src, j)
		qualified := i > 0 && src[i-1] == '.'
		if qualified || open >= len(src) || src[open] != '(' || !r.wants(name) {
			b.WriteString(word)
			i = j
			continue
		}
		closing := matchParen(src, open)
		if closing < 0 {
			b.WriteString(word)
			i = j
			continue
		}

		switch {
		case niladicKeywords[name]:
			if strings.TrimSpace(src[open+1:closing]) == "" {
				b.WriteString(word)
				i = closing + 1
				changed = true
				continue
			}
		case name == nvl2:
			if args := splitArgs(src[open+1 : closing]); len(args) == 3 {
				subject, _ := r.rewrite(strings.TrimSpace(args[0]))
				then, _ := r.rewrite(strings.TrimSpace(args[1]))
				otherwise, _ := r.rewrite(strings.TrimSpace(args[2]))
				b.WriteString("IF((" + subject + ") IS NOT NULL, " + then + ", " + otherwise + ")")
				i = closing + 1
				changed = true
				continue
			}
		default:
			b.WriteString(dialectRenames[name])
			i = j
			changed = true
			continue
		}

		b.WriteString(word)
		i = j
	}

	return b.String(), changed
}

// skipQuoted returns the index just past the literal, quoted identifier or
// comment starting at i, or i when none starts there. Unterminated sections
// run to the end of src.
func skipQuoted(src string, i int) int {
	rest := src[i:]
	switch {
	case rest[0] == '\'':
		for k := i + 1; k < len(src); k++ {
			switch src[k] {
			case '\\':
				k++
			case '\'':
				if k+1 < len(src) && src[k+1] == '\'' {
					k++
					continue
				}
				return k + 1
			}
		}
		return len(src)
	case rest[0] == '"':
		for k := i + 1; k < len(src); k++ {
			if src[k] == '"' {
				if k+1 < len(src) && src[k+1] == '"' {
					k++
					continue
				}
				return k + 1
			}
		}
		return len(src)
	case strings.HasPrefix(rest, "--"):
		if k := strings.IndexByte(rest, '\n'); k >= 0 {
			return i + k + 1
		}
		return len(src)
	case strings.HasPrefix(rest, "/*"):
		if k := strings.Index(rest[2:], "*/"); k >= 0 {
			return i + 2 + k + 2
		}
		return len(src)
	case strings.HasPrefix(rest, "$$"):
		if k := strings.Index(rest[2:], "$$"); k >= 0 {
			return i + 2 + k + 2
		}
		return len(src)
	}
	return i
}

// matchParen returns the index of the parenthesis closing the one at open, or -1.
func matchParen(src string, open int) int {
	depth := 0
	for k := open; k < len(src); {
		if j := skipQuoted(src, k); j > k {
			k = j
			continue
		}
		switch src[k] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return k
			}
		}
		k++
	}
	return -1
}

// splitArgs splits an argument list on its top-level commas.
func splitArgs(list string) []string {
	var args []string
	depth, start := 0, 0
	for k := 0; k < len(list); {
		if j := skipQuoted(list, k); j > k {
			k = j
			continue
		}
		switch list[k] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, list[start:k])
				start = k + 1
			}
		}
		k++
	}
	return append(args, list[start:])
}

func skipSpace(src string, i int) int {
	for i < len(src) && strings.IndexByte(" \t\r\n", src[i]) >= 0 {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '$' || ('0' <= c && c <= '9')
}
