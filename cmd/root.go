package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeConfigPath    = "node.yaml"
	centralConfigPath = "central.yaml"
	logPath           string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "embermesh",
	Short: "Embermesh Coordination CLI",
	Long: `Embermesh is the coordination core of a self-organizing wireless mesh.
It keeps segment topologies converged as links come and go, and elects the node
with the best router uplink as the mesh's shared Internet gateway.`,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Embermesh",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "mesh",
		Title: "Mesh Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&nodeConfigPath, "node-config", "n", nodeConfigPath, "node-specific config")
	rootCmd.PersistentFlags().StringVarP(&centralConfigPath, "central-config", "c", centralConfigPath, "mesh-global config")
	rootCmd.PersistentFlags().StringVarP(&logPath, "log-path", "l", logPath, "also write logs to this file")
}
