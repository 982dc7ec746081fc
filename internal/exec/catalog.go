package exec

import (
	"context"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/types"
)

// TableInfo and ColumnInfo back the catalog-introspection feature
// supplemented in SPEC_FULL.md §D: the engine's C ABI exposes
// odbc_catalog_tables/odbc_catalog_columns so a host can build a schema
// browser without the engine ever parsing SQL itself — these queries target
// the ANSI INFORMATION_SCHEMA views that MySQL, Postgres, and most ODBC-
// fronted engines all expose, so no per-driver branching is needed.
type TableInfo struct {
	Schema string
	Name   string
	Kind   string // "TABLE" or "VIEW"
}

type ColumnInfo struct {
	Name       string
	ODBCType   int16
	Nullable   bool
	Position   int
}

// ListTables queries INFORMATION_SCHEMA.TABLES, optionally restricted to one
// schema (pass "" to list every schema the connection can see).
func ListTables(ctx context.Context, q Queryer, schema string) ([]TableInfo, error) {
	query := `SELECT table_schema, table_name, table_type FROM information_schema.tables`
	args := []interface{}{}
	if schema != "" {
		query += ` WHERE table_schema = ?`
		args = append(args, schema)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	defer rows.Close()

	var out []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.Kind); err != nil {
			return nil, dberr.Classify(err, dberr.KindQueryError)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	return out, nil
}

// ListColumns queries INFORMATION_SCHEMA.COLUMNS for one table.
func ListColumns(ctx context.Context, q Queryer, schema, table string) ([]ColumnInfo, error) {
	query := `SELECT column_name, data_type, is_nullable, ordinal_position
	          FROM information_schema.columns
	          WHERE table_name = ?`
	args := []interface{}{table}
	if schema != "" {
		query += ` AND table_schema = ?`
		args = append(args, schema)
	}
	query += ` ORDER BY ordinal_position`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var (
			name, dataType, isNullable string
			pos                        int
		)
		if err := rows.Scan(&name, &dataType, &isNullable, &pos); err != nil {
			return nil, dberr.Classify(err, dberr.KindQueryError)
		}
		out = append(out, ColumnInfo{
			Name:     name,
			ODBCType: odbcTypeFromDataType(dataType),
			Nullable: isNullable == "YES",
			Position: pos,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Classify(err, dberr.KindQueryError)
	}
	return out, nil
}

// RenderTablesAsRowBuffer renders ListTables' output through the same
// row-buffer wire format a normal query result uses (spec §4.3).
func RenderTablesAsRowBuffer(tables []TableInfo) codec.RowBuffer {
	rb := codec.RowBuffer{
		Columns: []codec.Column{
			{Name: "table_schema", ODBCType: types.SQLVarchar},
			{Name: "table_name", ODBCType: types.SQLVarchar},
			{Name: "table_type", ODBCType: types.SQLVarchar},
		},
	}
	for _, t := range tables {
		rb.Rows = append(rb.Rows, []interface{}{t.Schema, t.Name, t.Kind})
	}
	return rb
}

// RenderColumnsAsRowBuffer lets a catalog listing reuse the same row-buffer
// wire format (spec §4.3) as a normal query result, so the host's decode
// path does not need a second format for catalog data.
func RenderColumnsAsRowBuffer(cols []ColumnInfo) codec.RowBuffer {
	rb := codec.RowBuffer{
		Columns: []codec.Column{
			{Name: "column_name", ODBCType: types.SQLVarchar},
			{Name: "odbc_type", ODBCType: types.SQLInteger},
			{Name: "nullable", ODBCType: types.SQLBit},
			{Name: "position", ODBCType: types.SQLInteger},
		},
	}
	for _, c := range cols {
		nullable := int32(0)
		if c.Nullable {
			nullable = 1
		}
		rb.Rows = append(rb.Rows, []interface{}{c.Name, int32(c.ODBCType), nullable, int32(c.Position)})
	}
	return rb
}

// TypeInfo describes one ODBC type code this engine recognizes, the nearest
// thing to SQLGetTypeInfo() a driver-agnostic layer can offer without
// delegating to a specific driver's catalog function.
type TypeInfo struct {
	Name     string
	ODBCType int16
}

// ListTypeInfo returns the engine's static, driver-independent ODBC type
// table (spec §6.1 odbc_catalog_type_info). Unlike ListTables/ListColumns
// this never touches the connection — every registered driver maps onto
// the same fixed set of types.SQL* constants (internal/types), so there is
// nothing driver-specific left to query.
func ListTypeInfo() []TypeInfo {
	return []TypeInfo{
		{"CHAR", types.SQLChar},
		{"VARCHAR", types.SQLVarchar},
		{"LONGVARCHAR", types.SQLLongvarchar},
		{"DECIMAL", types.SQLDecimal},
		{"NUMERIC", types.SQLNumeric},
		{"INTEGER", types.SQLInteger},
		{"SMALLINT", types.SQLSmallint},
		{"TINYINT", types.SQLTinyint},
		{"BIGINT", types.SQLBigint},
		{"FLOAT", types.SQLFloat},
		{"REAL", types.SQLReal},
		{"DOUBLE", types.SQLDouble},
		{"BIT", types.SQLBit},
		{"BINARY", types.SQLBinary},
		{"VARBINARY", types.SQLVarbinary},
		{"LONGVARBINARY", types.SQLLongvarbinary},
		{"DATE", types.SQLTypeDate},
		{"TIME", types.SQLTypeTime},
		{"TIMESTAMP", types.SQLTypeTimestamp},
	}
}

// RenderTypeInfoAsRowBuffer renders ListTypeInfo through the row-buffer
// wire format.
func RenderTypeInfoAsRowBuffer(infos []TypeInfo) codec.RowBuffer {
	rb := codec.RowBuffer{
		Columns: []codec.Column{
			{Name: "type_name", ODBCType: types.SQLVarchar},
			{Name: "odbc_type", ODBCType: types.SQLInteger},
		},
	}
	for _, ti := range infos {
		rb.Rows = append(rb.Rows, []interface{}{ti.Name, int32(ti.ODBCType)})
	}
	return rb
}

func odbcTypeFromDataType(dataType string) int16 {
	// information_schema.columns.data_type is already a lowercase SQL
	// standard name (int, varchar, timestamp, ...), so this is a much
	// smaller mapping than odbcTypeOf's driver-reported-name handling.
	switch dataType {
	case "tinyint", "bool", "boolean":
		return types.SQLTinyint
	case "smallint":
		return types.SQLSmallint
	case "int", "integer", "serial":
		return types.SQLInteger
	case "bigint":
		return types.SQLBigint
	case "decimal", "numeric":
		return types.SQLDecimal
	case "real", "float4":
		return types.SQLReal
	case "double precision", "float8", "float":
		return types.SQLDouble
	case "timestamp", "timestamp without time zone", "timestamp with time zone", "datetime":
		return types.SQLTypeTimestamp
	case "date":
		return types.SQLTypeDate
	case "time":
		return types.SQLTypeTime
	default:
		return types.SQLVarchar
	}
}
