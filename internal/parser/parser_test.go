package parser_test

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhan042/migledger/internal/parser"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sql       string
		wantErr   bool
		wantStmts int
		checkNode func(t *testing.T, result *parser.ParseResult)
	}{
		{
			name:      "valid CREATE TABLE returns one statement",
			sql:       "CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT NOT NULL);",
			wantStmts: 1,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				_, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_CreateStmt)
				assert.True(t, ok, "expected CreateStmt node")
			},
		},
		{
			name:      "multi-statement SQL returns correct count",
			sql:       "CREATE TABLE a (id INT); CREATE TABLE b (id INT); CREATE TABLE c (id INT);",
			wantStmts: 3,
		},
		{
			name:      "ALTER TABLE RENAME parses as RenameStmt",
			sql:       "ALTER TABLE positions RENAME TO positions_old;",
			wantStmts: 1,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				_, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_RenameStmt)
				assert.True(t, ok, "expected RenameStmt node")
			},
		},
		{
			name:    "invalid SQL returns error",
			sql:     "SELECT * FROM WHERE;",
			wantErr: true,
		},
		{
			name:      "empty string returns zero statements",
			sql:       "",
			wantStmts: 0,
		},
		{
			name:      "whitespace-only returns zero statements",
			sql:       "   \n\t  ",
			wantStmts: 0,
			checkNode: func(t *testing.T, result *parser.ParseResult) {
				t.Helper()
				assert.Equal(t, "   \n\t  ", result.SQL, "original SQL preserved")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := parser.Parse(tt.sql)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Len(t, result.Stmts, tt.wantStmts)

			if tt.checkNode != nil {
				tt.checkNode(t, result)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid script passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, parser.Validate("V1__ok.sql", "CREATE TABLE t (id INT);"))
	})

	t.Run("syntax error names the script", func(t *testing.T) {
		t.Parallel()

		err := parser.Validate("V2__bad.sql", "CREATE TABEL t (id INT);")
		require.Error(t, err)
		assert.ErrorContains(t, err, "V2__bad.sql")
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sql       string
		delimiter string
		want      []string
	}{
		{
			name:      "splits on default delimiter",
			sql:       "CREATE TABLE a (id INT);\nCREATE TABLE b (id INT);\n",
			delimiter: ";",
			want:      []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"},
		},
		{
			name:      "drops whitespace-only chunks",
			sql:       "SELECT 1;\n\n;;  ;\n",
			delimiter: ";",
			want:      []string{"SELECT 1"},
		},
		{
			name:      "drops comment-only chunks",
			sql:       "-- header\n-- more header\n;SELECT 1;-- trailing\n",
			delimiter: ";",
			want:      []string{"SELECT 1"},
		},
		{
			name:      "keeps statements with inline leading comments",
			sql:       "-- what this does\nSELECT 1;",
			delimiter: ";",
			want:      []string{"-- what this does\nSELECT 1"},
		},
		{
			name:      "custom delimiter",
			sql:       "DO $$ BEGIN END $$@@SELECT 1@@",
			delimiter: "@@",
			want:      []string{"DO $$ BEGIN END $$", "SELECT 1"},
		},
		{
			name:      "empty delimiter keeps whole body",
			sql:       "CREATE TABLE a (id INT); CREATE TABLE b (id INT);",
			delimiter: "",
			want:      []string{"CREATE TABLE a (id INT); CREATE TABLE b (id INT);"},
		},
		{
			name:      "empty body yields nothing",
			sql:       "  \n\t",
			delimiter: ";",
			want:      nil,
		},
		{
			name:      "comment-only body yields nothing in whole-body mode",
			sql:       "-- nothing here\n-- at all\n",
			delimiter: "",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parser.SplitStatements(tt.sql, tt.delimiter)
			assert.Equal(t, tt.want, got)
		})
	}
}
