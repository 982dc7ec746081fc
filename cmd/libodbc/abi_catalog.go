package main

// #include <stdint.h>
import "C"

import (
	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/engine"
)

// odbc_catalog_tables lists tables/views visible to connHandle, optionally
// restricted to one schema, rendered as a row-buffer (spec §6.1).
//
//export odbc_catalog_tables
func odbc_catalog_tables(connHandle C.uint32_t, schema *C.char, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		rb, err := engineOrInit().CatalogTables(bgCtx, uint32(connHandle), cString(schema))
		if err != nil {
			callErr = err
			return err
		}
		encoded, err = codec.Encode(rb)
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}

// odbc_catalog_columns lists one table's columns in ordinal position,
// rendered as a row-buffer (spec §6.1).
//
//export odbc_catalog_columns
func odbc_catalog_columns(connHandle C.uint32_t, schema *C.char, table *C.char, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		rb, err := engineOrInit().CatalogColumns(bgCtx, uint32(connHandle), cString(schema), cString(table))
		if err != nil {
			callErr = err
			return err
		}
		encoded, err = codec.Encode(rb)
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}

// odbc_catalog_type_info reports the engine's static ODBC type table,
// rendered as a row-buffer (spec §6.1).
//
//export odbc_catalog_type_info
func odbc_catalog_type_info(connHandle C.uint32_t, buf *C.uchar, bufLen C.size_t, written *C.size_t) C.int32_t {
	var encoded []byte
	var callErr error
	ok := engine.Guard(func() error {
		rb, err := engineOrInit().CatalogTypeInfo(uint32(connHandle))
		if err != nil {
			callErr = err
			return err
		}
		encoded, err = codec.Encode(rb)
		callErr = err
		return err
	})
	if !ok {
		return codeFromErr(callErr)
	}
	return writeBuffer(buf, bufLen, written, encoded)
}
