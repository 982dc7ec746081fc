package main

import (
	"github.com/spf13/cobra"

	"github.com/odbccore/engine/internal/codec"
	"github.com/odbccore/engine/internal/types"
)

var queryParams []string

var queryCmd = &cobra.Command{
	Use:   "query <dsn> <sql>",
	Short: "Run a SELECT and print the result as a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, sqlText := args[0], args[1]
		params := paramsFromStrings(queryParams)

		return withConnection(cmd.Context(), dsn, func(connHandle uint32) error {
			rb, err := eng.ExecQueryParams(cmd.Context(), connHandle, sqlText, params)
			if err != nil {
				return err
			}
			printRowBuffer(rb)
			return nil
		})
	},
}

// paramsFromStrings treats every CLI-supplied parameter as a string param
// (spec §4.3's ParamString tag) — a development CLI has no type information
// beyond what the user typed, unlike a host binding that already knows its
// column types.
func paramsFromStrings(args []string) []codec.Param {
	if len(args) == 0 {
		return nil
	}
	out := make([]codec.Param, len(args))
	for i, a := range args {
		out[i] = codec.Param{Tag: types.ParamString, Value: []byte(a)}
	}
	return out
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryParams, "param", nil, "query parameter (repeatable, always bound as a string)")
	rootCmd.AddCommand(queryCmd)
}
