package main

import (
	"context"
	"fmt"
)

// withConnection opens dsn, checks out one pooled connection, runs fn, and
// tears both down afterward — the lifecycle every single-shot subcommand
// needs, factored out so query/exec/stream/tx/catalog don't each repeat it.
func withConnection(ctx context.Context, dsn string, fn func(connHandle uint32) error) error {
	dbHandle, driverName, err := eng.Connect(dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer eng.Disconnect(dbHandle)

	connHandle, err := eng.GetConnection(ctx, dbHandle)
	if err != nil {
		return fmt.Errorf("get connection (driver %s): %w", driverName, err)
	}
	defer eng.ReleaseConnection(connHandle)

	return fn(connHandle)
}
