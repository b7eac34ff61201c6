package cmd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/embermesh/embermesh/core"
	"github.com/embermesh/embermesh/mock"
	"github.com/embermesh/embermesh/state"
	"github.com/spf13/cobra"
)

// simCmd represents the sim command
var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a five node in-process mesh simulation",
	Long: `Runs the built-in five node mesh on an in-process radio fabric. Two nodes
carry static router uplinks, so a gateway election plays out shortly after the
links come up. Useful for watching the coordination logic without hardware.`,
	Run: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		central, locals := mock.MockCfg()
		fabric := mock.NewFabric()
		states := make([]*state.State, len(locals))

		var wg sync.WaitGroup
		for i := range locals {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := core.Start(central, locals[i], level, fabric.Port(locals[i].Id), &states[i])
				if err != nil {
					panic(err)
				}
			}()
		}

		for i := range states {
			for states[i] == nil || !states[i].Started.Load() {
				time.Sleep(10 * time.Millisecond)
			}
			fabric.Register(locals[i].Id, states[i].Env)
		}
		for _, edge := range central.Edges {
			fabric.Connect(edge.V1, edge.V2)
		}

		wg.Wait()
	},
	GroupID: "mesh",
}

func init() {
	rootCmd.AddCommand(simCmd)

	simCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
