package cmd

import (
	"github.com/embermesh/embermesh/core"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an embermesh node",
	Long: `This will run an embermesh node on the current host using the configured
radio transport. Without one, the node coordinates locally but stays silent.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		core.Bootstrap(centralConfigPath, nodeConfigPath, logPath, nil, verbose)
	},
	GroupID: "mesh",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
