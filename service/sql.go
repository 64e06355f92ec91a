package service

import (
	"errors"
	"regexp"
	"strings"
)

var (
	errEmptyStatement    = errors.New("empty SQL statement")
	errMultipleStatement = errors.New("only a single SQL statement is allowed")
	errNotReadOnly       = errors.New("only read-only SELECT statements are allowed")
)

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\s*```$")

// writeKeywords start a statement that changes data or schema. A CTE can
// wrap a data-modifying statement in PostgreSQL.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "UPSERT": true,
	"DROP": true, "ALTER": true, "CREATE": true, "TRUNCATE": true, "REPLACE": true,
	"ATTACH": true, "DETACH": true, "PRAGMA": true, "VACUUM": true, "GRANT": true, "REVOKE": true,
}

// lockStrengths follow FOR in a row-locking clause.
var lockStrengths = map[string]bool{"UPDATE": true, "SHARE": true, "NO": true, "KEY": true}

// cleanSQL removes the markdown code fence models like to wrap SQL in, plus
// surrounding whitespace.
func cleanSQL(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else {
		text = strings.TrimPrefix(text, "```sql")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// guardStatement accepts a single SELECT or WITH statement. A trailing
// semicolon is allowed.
func guardStatement(sqlText string) error {
	code := stripLiteralsAndComments(sqlText)
	code = strings.TrimSpace(code)
	code = strings.TrimRight(code, "; \t\r\n")
	if code == "" {
		return errEmptyStatement
	}
	if strings.Contains(code, ";") {
		return errMultipleStatement
	}

	tokens := sqlTokens(strings.ToUpper(code))
	if len(tokens) == 0 {
		return errEmptyStatement
	}
	if tokens[0] != "SELECT" && tokens[0] != "WITH" {
		return errNotReadOnly
	}

	for i, tok := range tokens {
		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}
		switch {
		case tok == "INTO":
			// SELECT ... INTO creates a table in PostgreSQL
			return errNotReadOnly
		case tok == "FOR" && lockStrengths[next]:
			return errNotReadOnly
		case writeKeywords[tok] && next != "(":
			// REPLACE(...) and friends are function calls
			return errNotReadOnly
		}
	}
	return nil
}

// sqlTokens splits code into words and single punctuation characters,
// dropping whitespace.
func sqlTokens(code string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '_' || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, code[start:i])
			start = -1
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			tokens = append(tokens, string(c))
		}
	}
	if start >= 0 {
		tokens = append(tokens, code[start:])
	}
	return tokens
}

// stripLiteralsAndComments blanks out quoted strings, quoted identifiers and
// comments so keyword and semicolon checks only see SQL syntax.
func stripLiteralsAndComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote := c
			i++
			for i < len(s) {
				if s[i] == quote {
					// doubled quote is an escaped quote
					if i+1 < len(s) && s[i+1] == quote {
						i += 2
						continue
					}
					break
				}
				i++
			}
			b.WriteByte(' ')
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
