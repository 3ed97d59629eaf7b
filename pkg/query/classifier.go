package query

import (
	"strings"
)

// StatementType represents the category of a SQL statement.
type StatementType int

// Statement types.
const (
	StatementTypeQuery       StatementType = iota // SELECT, SHOW, DESCRIBE, WITH
	StatementTypeDML                              // INSERT, UPDATE, DELETE, MERGE, COPY
	StatementTypeDDL                              // CREATE, DROP, ALTER
	StatementTypeTransaction                      // BEGIN, COMMIT, ROLLBACK
	StatementTypeOther                            // USE, SET, CALL and anything unrecognized
)

// String returns the lower-case name used in log fields.
func (s StatementType) String() string {
	switch s {
	case StatementTypeQuery:
		return "query"
	case StatementTypeDML:
		return "dml"
	case StatementTypeDDL:
		return "ddl"
	case StatementTypeTransaction:
		return "transaction"
	default:
		return "other"
	}
}

// Classifier provides SQL statement classification functionality. The
// executor runs every statement the same way; the category is reported in
// logs so operators can see what callers send.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the category of a SQL statement by its leading keyword.
func (c *Classifier) Classify(sql string) StatementType {
	upperSQL := strings.ToUpper(strings.TrimLeft(sql, " \t\r\n("))

	switch {
	case c.isQueryStatement(upperSQL):
		return StatementTypeQuery
	case hasAnyPrefix(upperSQL, "INSERT", "UPDATE", "DELETE", "MERGE", "COPY", "TRUNCATE"):
		return StatementTypeDML
	case hasAnyPrefix(upperSQL, "CREATE", "DROP", "ALTER"):
		return StatementTypeDDL
	case c.isTransactionStatement(upperSQL):
		return StatementTypeTransaction
	default:
		return StatementTypeOther
	}
}

// isQueryStatement checks if the SQL is a query (read-only) statement.
func (c *Classifier) isQueryStatement(upperSQL string) bool {
	return hasAnyPrefix(upperSQL, "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "VALUES")
}

// isTransactionStatement checks if the SQL is a transaction control statement.
func (c *Classifier) isTransactionStatement(upperSQL string) bool {
	return hasAnyPrefix(upperSQL, "BEGIN", "START TRANSACTION", "COMMIT", "ROLLBACK")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// DefaultClassifier is the default SQL classifier instance.
var DefaultClassifier = NewClassifier()

// ClassifySQL is a convenience function using the default classifier.
func ClassifySQL(sql string) StatementType {
	return DefaultClassifier.Classify(sql)
}
