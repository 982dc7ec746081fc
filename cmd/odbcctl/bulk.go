package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/types"
)

var bulkParallelism int

var bulkCmd = &cobra.Command{
	Use:   "bulk <dsn> <table> <csv-file>",
	Short: "Bulk-insert a CSV file's rows into table (header row = column names)",
	Long: `Every CSV column is loaded as a text column (spec §4.10's BulkText tag)
— a development CLI has no schema to consult for narrower types the way a
host binding generating the payload itself would.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, table, csvPath := args[0], args[1], args[2]
		ctx := cmd.Context()

		payload, err := loadCSVAsBulkPayload(table, csvPath)
		if err != nil {
			return err
		}

		dbHandle, _, err := eng.Connect(dsn)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer eng.Disconnect(dbHandle)

		var inserted int64
		if bulkParallelism > 1 {
			result, err := eng.BulkInsertParallel(ctx, dbHandle, payload, bulkParallelism)
			if err != nil {
				return err
			}
			inserted = result.RowsInserted
			if len(result.FailedPartitions) > 0 {
				fmt.Printf("warning: partitions failed: %v\n", result.FailedPartitions)
			}
		} else {
			result, err := eng.BulkInsertArray(ctx, dbHandle, payload)
			if err != nil {
				return err
			}
			inserted = result.RowsInserted
		}
		fmt.Printf("rows inserted: %d\n", inserted)
		return nil
	},
}

func loadCSVAsBulkPayload(table, csvPath string) (codec.BulkPayload, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return codec.BulkPayload{}, fmt.Errorf("opening %s: %w", csvPath, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return codec.BulkPayload{}, fmt.Errorf("parsing %s: %w", csvPath, err)
	}
	if len(records) == 0 {
		return codec.BulkPayload{}, fmt.Errorf("%s has no rows", csvPath)
	}

	header := records[0]
	dataRows := records[1:]

	columns := make([]codec.BulkColumn, len(header))
	columnData := make([][]interface{}, len(header))
	for c, name := range header {
		columns[c] = codec.BulkColumn{Name: name, Tag: types.BulkText, Nullable: true}
		columnData[c] = make([]interface{}, len(dataRows))
		for r, row := range dataRows {
			if c < len(row) && row[c] != "" {
				columnData[c][r] = row[c]
			}
		}
	}

	return codec.BulkPayload{
		Table:    table,
		Columns:  columns,
		RowCount: uint32(len(dataRows)),
		Data:     columnData,
	}, nil
}

func init() {
	bulkCmd.Flags().IntVar(&bulkParallelism, "parallel", 1, "partition count for bulk_insert_parallel; 1 uses bulk_insert_array")
	rootCmd.AddCommand(bulkCmd)
}
