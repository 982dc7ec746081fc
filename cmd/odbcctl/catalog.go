package main

import (
	"github.com/spf13/cobra"
)

var catalogSchema string

var catalogTablesCmd = &cobra.Command{
	Use:   "catalog-tables <dsn>",
	Short: "List tables/views visible to a connection (spec §6.1 odbc_catalog_tables)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := args[0]
		return withConnection(cmd.Context(), dsn, func(connHandle uint32) error {
			rb, err := eng.CatalogTables(cmd.Context(), connHandle, catalogSchema)
			if err != nil {
				return err
			}
			printRowBuffer(rb)
			return nil
		})
	},
}

var catalogColumnsCmd = &cobra.Command{
	Use:   "catalog-columns <dsn> <table>",
	Short: "List a table's columns (spec §6.1 odbc_catalog_columns)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, table := args[0], args[1]
		return withConnection(cmd.Context(), dsn, func(connHandle uint32) error {
			rb, err := eng.CatalogColumns(cmd.Context(), connHandle, catalogSchema, table)
			if err != nil {
				return err
			}
			printRowBuffer(rb)
			return nil
		})
	},
}

var catalogTypesCmd = &cobra.Command{
	Use:   "catalog-types <dsn>",
	Short: "List the engine's recognized ODBC types (spec §6.1 odbc_catalog_type_info)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := args[0]
		return withConnection(cmd.Context(), dsn, func(connHandle uint32) error {
			rb, err := eng.CatalogTypeInfo(connHandle)
			if err != nil {
				return err
			}
			printRowBuffer(rb)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{catalogTablesCmd, catalogColumnsCmd} {
		c.Flags().StringVar(&catalogSchema, "schema", "", "restrict to one schema (default: every schema visible)")
	}
	rootCmd.AddCommand(catalogTablesCmd, catalogColumnsCmd, catalogTypesCmd)
}
