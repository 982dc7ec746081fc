// Package bulk implements the Bulk Insert Pipeline of spec §4.10: a single
// multi-row INSERT built from a columnar BulkPayload, plus a parallel mode
// that partitions rows across a worker group. The worker-partitioning shape
// is adapted from the teacher's server/worker_pool.go fixed-size goroutine
// pool, modernized with golang.org/x/sync/errgroup in place of the teacher's
// hand-rolled WaitGroup+channel bookkeeping.
package bulk

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/dberr"
	"github.com/odbccore/engine/internal/obslog"
)

// Result is the outcome of one bulk insert call (array or parallel mode).
type Result struct {
	RowsInserted int64
	// FailedPartitions holds the zero-based partition indices that failed
	// in parallel mode; array mode never partially fails (single statement).
	FailedPartitions []int
}

// InsertArray runs one multi-row INSERT statement built from payload,
// spec §4.10's non-parallel mode: all-or-nothing within a single round trip.
func InsertArray(ctx context.Context, db *sql.DB, payload codec.BulkPayload) (Result, error) {
	if payload.RowCount == 0 {
		return Result{}, nil
	}

	stmtSQL, args, err := buildInsert(payload, 0, int(payload.RowCount))
	if err != nil {
		return Result{}, err
	}

	res, err := db.ExecContext(ctx, stmtSQL, args...)
	if err != nil {
		return Result{}, dberr.Classify(err, dberr.KindBulkValidation)
	}

	affected, _ := res.RowsAffected()
	return Result{RowsInserted: affected}, nil
}

// InsertParallel partitions payload's rows into partitionCount roughly-equal
// slices and inserts each slice with its own statement concurrently, via an
// errgroup-bounded worker set (spec §4.10). Per SPEC_FULL.md §E (Open
// Question), there is no cross-partition rollback: a failed partition is
// reported in Result.FailedPartitions while every partition that succeeded
// stays committed — bulk insert is at-least-once per partition, matching the
// spec's explicit statement that bulk_insert_parallel offers no atomicity
// across partitions.
func InsertParallel(ctx context.Context, db *sql.DB, payload codec.BulkPayload, partitionCount int) (Result, error) {
	if payload.RowCount == 0 {
		return Result{}, nil
	}
	if partitionCount <= 0 {
		partitionCount = 1
	}
	if partitionCount > int(payload.RowCount) {
		partitionCount = int(payload.RowCount)
	}

	bounds := partitionBounds(int(payload.RowCount), partitionCount)

	var (
		totalInserted int64
		failed        []int
		mu            sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(partitionCount)

	for i, b := range bounds {
		i, b := i, b
		g.Go(func() error {
			stmtSQL, args, err := buildInsert(payload, b.start, b.end)
			if err != nil {
				mu.Lock()
				failed = append(failed, i)
				mu.Unlock()
				return nil // do not cancel sibling partitions (no cross-partition rollback)
			}

			res, err := db.ExecContext(gctx, stmtSQL, args...)
			if err != nil {
				obslog.Component("bulk").Warn().Int("partition", i).Err(err).Msg("bulk insert partition failed")
				mu.Lock()
				failed = append(failed, i)
				mu.Unlock()
				return nil
			}

			affected, _ := res.RowsAffected()
			mu.Lock()
			totalInserted += affected
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // individual partition errors are recorded, never propagated

	return Result{RowsInserted: totalInserted, FailedPartitions: failed}, nil
}

type bound struct{ start, end int }

// partitionBounds splits [0, rowCount) into n contiguous, roughly-equal
// ranges — the first rowCount%n partitions get one extra row.
func partitionBounds(rowCount, n int) []bound {
	base := rowCount / n
	rem := rowCount % n
	bounds := make([]bound, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		bounds = append(bounds, bound{start: pos, end: pos + size})
		pos += size
	}
	return bounds
}

// buildInsert renders a multi-row "INSERT INTO table (cols) VALUES (...),(...)"
// statement and its flattened argument list for rows [start, end) of payload.
func buildInsert(payload codec.BulkPayload, start, end int) (string, []interface{}, error) {
	if len(payload.Columns) == 0 {
		return "", nil, dberr.New(dberr.KindBulkValidation, "bulk payload has no columns")
	}

	colNames := make([]string, len(payload.Columns))
	for i, c := range payload.Columns {
		colNames[i] = c.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", payload.Table, strings.Join(colNames, ", "))

	args := make([]interface{}, 0, (end-start)*len(payload.Columns))
	for r := start; r < end; r++ {
		if r > start {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range payload.Columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('?')
			v := payload.Data[c][r]
			if v == nil && !payload.Columns[c].Nullable {
				return "", nil, dberr.New(dberr.KindBulkValidation, "bulk column %q row %d is null but column is not nullable", payload.Columns[c].Name, r)
			}
			args = append(args, v)
		}
		sb.WriteByte(')')
	}

	return sb.String(), args, nil
}
