package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var execParams []string

var execCmd = &cobra.Command{
	Use:   "exec <dsn> <sql>",
	Short: "Run an INSERT/UPDATE/DELETE/DDL statement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, sqlText := args[0], args[1]
		params := paramsFromStrings(execParams)

		return withConnection(cmd.Context(), dsn, func(connHandle uint32) error {
			affected, lastInsertID, err := eng.ExecStatement(cmd.Context(), connHandle, sqlText, params)
			if err != nil {
				return err
			}
			fmt.Printf("rows affected: %d, last insert id: %d\n", affected, lastInsertID)
			return nil
		})
	},
}

func init() {
	execCmd.Flags().StringSliceVar(&execParams, "param", nil, "statement parameter (repeatable, always bound as a string)")
	rootCmd.AddCommand(execCmd)
}
