package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var poolMaxSize int

var poolStateCmd = &cobra.Command{
	Use:   "pool-state <dsn>",
	Short: "Open a sized pool and report its checkout state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := args[0]
		ctx := cmd.Context()

		dbHandle, err := eng.PoolCreate(dsn, poolMaxSize)
		if err != nil {
			return err
		}
		defer eng.Disconnect(dbHandle)

		checked, evicted, err := eng.PoolHealthCheck(ctx, dbHandle)
		if err != nil {
			return err
		}
		fmt.Printf("health check: checked=%d evicted=%d\n", checked, evicted)

		state, err := eng.PoolState(dbHandle)
		if err != nil {
			return err
		}
		fmt.Printf("pool state: max=%d idle=%d in_use=%d created=%d closed=%d checkouts=%d\n",
			state.MaxSize, state.IdleCount, state.InUseCount, state.TotalCreated, state.TotalClosed, state.TotalCheckouts)
		return nil
	},
}

func init() {
	poolStateCmd.Flags().IntVar(&poolMaxSize, "max-size", 5, "pool max size (spec §4.8 pool_create)")
	rootCmd.AddCommand(poolStateCmd)
}
