package service

import (
	"fmt"
	"saasanalytics/database"
	"strings"
	"time"
)

func describeTables(tables []database.TableSchema) string {
	var b strings.Builder
	for _, table := range tables {
		fmt.Fprintf(&b, "Table %s:\n", table.Name)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "  - %s %s", col.Name, col.Type)
			if col.Nullable {
				b.WriteString(" NULL")
			}
			if col.Hint != "" {
				fmt.Fprintf(&b, " -- %s", col.Hint)
			}
			b.WriteByte('\n')
		}
	}
	b.WriteString("Relationships: events.user_id -> users.id, subscriptions.user_id -> users.id\n")
	return b.String()
}

func buildSQLPrompt(question, dialect string, tables []database.TableSchema, now time.Time) string {
	return fmt.Sprintf(`You are a %[1]s expert working on a SaaS analytics database. Today's date is %[2]s.

== DATABASE SCHEMA ==
Only use the tables and columns listed here:
%[3]s
Rules:
1. Answer the user's question with one %[1]s query.
2. Return only SQL. No markdown, no explanation.
3. Never use SELECT *; name the columns.
4. Give computed columns readable aliases.
5. Round monetary values to 2 decimals.

Question: "%[4]s"

SQL query:`,
		dialect,
		now.Format("2006-01-02"),
		describeTables(tables),
		question,
	)
}

func buildInsightPrompt(question, rowsJSON string, rowCount, shown int) string {
	sample := ""
	if shown < rowCount {
		sample = fmt.Sprintf(" (first %d of %d rows)", shown, rowCount)
	}
	return fmt.Sprintf(`You are a SaaS business analyst.

Question: "%s"

Query result%s:
%s

Write 2-3 sentences of business insight about this result for a founder.
Mention concrete numbers. If the result is empty, say that no matching data was found.
Plain text only, no markdown.`,
		question, sample, rowsJSON,
	)
}
