package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// DefaultDelimiter is the statement delimiter used unless configured otherwise.
const DefaultDelimiter = ";"

// ParseResult holds the parsed AST and original SQL.
type ParseResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// Parse parses a PostgreSQL SQL string and returns the AST.
// Returns an empty result (zero statements) for empty or whitespace-only input.
func Parse(sql string) (*ParseResult, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &ParseResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing SQL: %w", err)
	}

	return &ParseResult{
		Stmts: tree.Stmts,
		SQL:   sql,
	}, nil
}

// Validate runs a script body through the PostgreSQL parser and reports the
// first syntax error, naming the script. Pre-flight only: execution never
// depends on it.
func Validate(script, sql string) error {
	if _, err := Parse(sql); err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}

	return nil
}

// SplitStatements splits a script body into executable statements on the
// given delimiter. An empty delimiter treats the whole body as a single
// statement. Statements that are empty after trimming whitespace, or that
// consist only of full-line comments, are dropped.
func SplitStatements(sql, delimiter string) []string {
	chunks := []string{sql}
	if delimiter != "" {
		chunks = strings.Split(sql, delimiter)
	}

	var statements []string

	for _, chunk := range chunks {
		stmt := strings.TrimSpace(chunk)
		if stmt == "" || onlyComments(stmt) {
			continue
		}

		statements = append(statements, stmt)
	}

	return statements
}

// onlyComments reports whether every non-blank line of stmt is a -- comment.
func onlyComments(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		return false
	}

	return true
}
