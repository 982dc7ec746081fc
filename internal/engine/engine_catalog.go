package engine

import (
	"context"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/exec"
)

// CatalogTables lists tables/views visible to connHandle, optionally
// restricted to one schema, rendered as a row-buffer (spec §6.1
// odbc_catalog_tables, a supplemented introspection feature the distilled
// spec leaves implicit in "the host can browse catalog metadata").
func (e *Engine) CatalogTables(ctx context.Context, connHandle uint32, schema string) (codec.RowBuffer, error) {
	c, err := e.getConnection(connHandle)
	if err != nil {
		return codec.RowBuffer{}, err
	}
	tables, err := exec.ListTables(ctx, c.raw, schema)
	if err != nil {
		return codec.RowBuffer{}, err
	}
	return exec.RenderTablesAsRowBuffer(tables), nil
}

// CatalogColumns lists a table's columns in ordinal position, rendered as a
// row-buffer (spec §6.1 odbc_catalog_columns).
func (e *Engine) CatalogColumns(ctx context.Context, connHandle uint32, schema, table string) (codec.RowBuffer, error) {
	c, err := e.getConnection(connHandle)
	if err != nil {
		return codec.RowBuffer{}, err
	}
	cols, err := exec.ListColumns(ctx, c.raw, schema, table)
	if err != nil {
		return codec.RowBuffer{}, err
	}
	return exec.RenderColumnsAsRowBuffer(cols), nil
}

// CatalogTypeInfo reports the engine's static ODBC type table (spec §6.1
// odbc_catalog_type_info). connHandle is accepted for ABI symmetry with the
// other catalog calls and to validate the handle is alive, but the result
// does not depend on which connection asks.
func (e *Engine) CatalogTypeInfo(connHandle uint32) (codec.RowBuffer, error) {
	if _, err := e.getConnection(connHandle); err != nil {
		return codec.RowBuffer{}, err
	}
	return exec.RenderTypeInfoAsRowBuffer(exec.ListTypeInfo()), nil
}
