package cmd

import (
	"fmt"
	"os"

	"github.com/embermesh/embermesh/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate starter config files",
	Long:  `Writes an example mesh-global config and a node config for the first node.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		central := state.CentralCfg{
			Nodes: []state.NodeCfg{
				{Id: 10000, Name: "node-a"},
				{Id: 20000, Name: "node-b"},
			},
		}
		node := state.LocalCfg{
			Id: 10000,
			Gateway: state.GatewayCfg{
				Enabled:    true,
				RouterSSID: "my-router",
			},
		}

		for _, out := range []struct {
			path string
			val  any
		}{
			{centralConfigPath, central},
			{nodeConfigPath, node},
		} {
			if _, err := os.Stat(out.path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", out.path)
			}
			bytes, err := yaml.Marshal(out.val)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out.path, bytes, 0600); err != nil {
				return err
			}
			fmt.Println("wrote", out.path)
		}
		return nil
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(initCmd)
}
