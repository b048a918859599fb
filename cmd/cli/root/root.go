package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "driverly",
	Short: "Driverly CLI",
	Long:  "Command line interface for the driverly incentive-program API",
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// GetRoot returns the root command so subcommand packages can attach themselves.
func GetRoot() *cobra.Command {
	return RootCmd
}
