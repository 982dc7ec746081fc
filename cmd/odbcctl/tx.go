package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odbccore/engine/internal/types"
)

var txIsolation int

var txCmd = &cobra.Command{
	Use:   "tx <dsn> <sql> [sql...]",
	Short: "Run one or more statements inside a single transaction",
	Long: `Runs each statement in order inside one transaction, committing if all
succeed and rolling back on the first failure — a command-line version of
spec's "transaction_begin -> ... -> commit/rollback" flow (§4.9).`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, stmts := args[0], args[1:]
		ctx := cmd.Context()

		return withConnection(ctx, dsn, func(connHandle uint32) error {
			txnHandle, err := eng.TransactionBegin(ctx, connHandle, types.IsolationLevel(txIsolation), false)
			if err != nil {
				return err
			}

			for i, stmt := range stmts {
				affected, lastInsertID, err := eng.TransactionExec(ctx, txnHandle, stmt, nil)
				if err != nil {
					if rerr := eng.TransactionRollback(txnHandle); rerr != nil {
						return fmt.Errorf("statement %d failed (%w), rollback also failed: %v", i, err, rerr)
					}
					return fmt.Errorf("statement %d failed, transaction rolled back: %w", i, err)
				}
				fmt.Printf("statement %d: rows affected %d, last insert id %d\n", i, affected, lastInsertID)
			}

			if err := eng.TransactionCommit(txnHandle); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			fmt.Println("transaction committed")
			return nil
		})
	},
}

func init() {
	txCmd.Flags().IntVar(&txIsolation, "isolation", int(types.IsolationReadCommitted), "isolation level: 0=read-uncommitted 1=read-committed 2=repeatable-read 3=serializable")
	rootCmd.AddCommand(txCmd)
}
