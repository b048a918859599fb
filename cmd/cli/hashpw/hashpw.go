package hashpw

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/driverly/driverly/cmd/cli/root"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(hashpwCmd())
}

// hashpwCmd prints a bcrypt hash for a password, for manual account repair
// when seeding is not an option.
func hashpwCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hashpw <password>",
		Short: "Print a bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost factor")

	return cmd
}
