package db

import (
	"strings"

	"gorm.io/gorm"
)

// Dialect names as reported by the GORM dialectors in use.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// IsSQLite reports whether the connection runs on SQLite. The stores branch
// on this wherever a SQL expression has no portable spelling.
func IsSQLite(conn *gorm.DB) bool {
	return conn != nil && conn.Dialector != nil && conn.Dialector.Name() == DialectSQLite
}

// CaseInsensitiveLikeExpr builds the dialect's case-insensitive LIKE clause
// for a column. Pair it with NormalizeLikePattern for the bound pattern.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return "LOWER(" + column + ") LIKE ?"
	}
	return column + " ILIKE ?"
}

// NormalizeLikePattern lower-cases the pattern on SQLite, where the LOWER()
// comparison expects it; postgres ILIKE takes the pattern as given.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}

// JSONExtractTextExpr addresses one key of a JSON column as text: json_extract
// on SQLite, the ->> operator on postgres. The key is interpolated, so callers
// must restrict it to identifier characters.
func JSONExtractTextExpr(conn *gorm.DB, column, key string) string {
	if IsSQLite(conn) {
		return "json_extract(" + column + ", '$." + key + "')"
	}
	return column + "->>'" + key + "'"
}
