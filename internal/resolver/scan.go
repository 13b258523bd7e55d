package resolver

import (
	"model-graphql/internal/session"
)

// scanRows converts a result set into row maps keyed by column name. Column
// names come from the result set itself, so any projection (full rows,
// primary keys only) scans with the same code.
func scanRows(rows session.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

func convertValue(val interface{}) interface{} {
	if val == nil {
		return nil
	}
	// Drivers return text columns as []byte.
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}
