// Package sqlutil provides SQL utility functions.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with backticks and escapes any backticks within the identifier.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, "`", "``")
	return "`" + escaped + "`"
}

// QualifyColumn quotes an alias-qualified column reference.
func QualifyColumn(alias, column string) string {
	return QuoteIdentifier(alias) + "." + QuoteIdentifier(column)
}
