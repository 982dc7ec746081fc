package exec

import (
	"database/sql"
	"strings"

	"github.com/odbccore/engine/internal/types"
)

// odbcTypeOf maps a database/sql column's driver-reported type name onto the
// ODBC SQL_* codes spec §4.3 carries in row-buffer column metadata. This is
// necessarily approximate — database/sql's DatabaseTypeName is driver-
// specific text, not a standardized enum — but the engine only needs it to
// pick a wire encoding (spec §1 Non-goals: no driver-independent result
// semantics), not to reproduce the origin driver's exact SQL type.
func odbcTypeOf(ct *sql.ColumnType) int16 {
	name := strings.ToUpper(ct.DatabaseTypeName())
	switch {
	case strings.Contains(name, "TINYINT") || name == "BOOL" || name == "BOOLEAN":
		return types.SQLTinyint
	case strings.Contains(name, "SMALLINT"):
		return types.SQLSmallint
	case strings.Contains(name, "BIGINT"):
		return types.SQLBigint
	case name == "INT" || name == "INT4" || strings.Contains(name, "INTEGER") || name == "SERIAL":
		return types.SQLInteger
	case strings.Contains(name, "DECIMAL") || strings.Contains(name, "NUMERIC"):
		return types.SQLDecimal
	case name == "FLOAT4" || strings.Contains(name, "REAL"):
		return types.SQLReal
	case name == "FLOAT8" || strings.Contains(name, "DOUBLE") || strings.Contains(name, "FLOAT"):
		return types.SQLDouble
	case strings.Contains(name, "TIMESTAMP"):
		return types.SQLTypeTimestamp
	case name == "DATE":
		return types.SQLTypeDate
	case name == "TIME":
		return types.SQLTypeTime
	case strings.Contains(name, "DATETIME"):
		return types.SQLDatetime
	case strings.Contains(name, "BLOB") || strings.Contains(name, "BINARY") || strings.Contains(name, "BYTEA"):
		return types.SQLVarbinary
	case strings.Contains(name, "CHAR") || strings.Contains(name, "TEXT"):
		return types.SQLVarchar
	default:
		return types.SQLVarchar
	}
}
