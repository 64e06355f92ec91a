package service

import (
	"database/sql"
	"saasanalytics/models"
	"time"
)

// scanRows materializes every row of rows into a column->value map.
// Driver byte slices become strings so they serialize as text rather than
// base64. The caller still owns rows and must close it.
func scanRows(rows *sql.Rows) ([]map[string]any, []string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	data := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return data, columns, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

// resultType tags a result set: exactly one row with exactly one column is a
// metric, anything else (including no rows) is a table.
func resultType(data []map[string]any, columns []string) string {
	if len(data) == 1 && len(columns) == 1 {
		return models.ResultTypeMetric
	}
	return models.ResultTypeTable
}
