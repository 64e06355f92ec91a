package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"whitespace", "\n  SELECT 1;  \n", "SELECT 1;"},
		{"sql fence", "```sql\nSELECT COUNT(*) FROM users\n```", "SELECT COUNT(*) FROM users"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"fence with padding", "  ```sql SELECT 1 ```  ", "SELECT 1"},
		{"unterminated fence", "```sql\nSELECT 1", "SELECT 1"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanSQL(tt.in))
		})
	}
}

func TestGuardStatement(t *testing.T) {
	allowed := []string{
		"SELECT 1",
		"select count(*) from users;",
		"  -- total users\nSELECT COUNT(*) FROM users",
		"/* revenue */ SELECT SUM(mrr) FROM subscriptions",
		"WITH active AS (SELECT * FROM users WHERE is_active) SELECT COUNT(*) FROM active",
		"SELECT name FROM users WHERE name = 'drop; delete'",
		"SELECT 'it''s' AS quote",
		"WITH t AS (SELECT REPLACE(name, ' ', '_') AS n FROM users) SELECT n FROM t",
		"SELECT replace (email, '@', ' at ') FROM users",
		"SELECT 'select into' AS label",
	}
	for _, q := range allowed {
		assert.NoError(t, guardStatement(q), q)
	}

	rejected := map[string]error{
		"":                              errEmptyStatement,
		" ; ":                           errEmptyStatement,
		"-- just a comment":             errEmptyStatement,
		"DELETE FROM users":             errNotReadOnly,
		"DROP TABLE users":              errNotReadOnly,
		"UPDATE users SET plan = 'pro'": errNotReadOnly,
		"PRAGMA table_info(users)":      errNotReadOnly,
		"SELECT 1; DELETE FROM users":   errMultipleStatement,
		"SELECT 1; SELECT 2;":           errMultipleStatement,
	}
	for q, want := range rejected {
		assert.ErrorIs(t, guardStatement(q), want, q)
	}

	writes := []string{
		"WITH gone AS (DELETE FROM users RETURNING id) SELECT id FROM gone",
		"WITH p AS (SELECT 1) UPDATE users SET plan = 'pro'",
		"SELECT id INTO users_backup FROM users",
		"SELECT id FROM users FOR UPDATE",
		"SELECT id FROM users FOR NO KEY UPDATE",
		"SELECT id FROM subscriptions FOR SHARE",
	}
	for _, q := range writes {
		assert.ErrorIs(t, guardStatement(q), errNotReadOnly, q)
	}
}

func TestSQLTokens(t *testing.T) {
	assert.Equal(t,
		[]string{"SELECT", "REPLACE", "(", "A", ",", "B", ")", "FROM", "T"},
		sqlTokens("SELECT REPLACE (A,\tB)\nFROM T"),
	)
}
