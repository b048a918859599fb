package users

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/driverly/driverly/cmd/cli/config"
	"github.com/driverly/driverly/cmd/cli/output"
	"github.com/driverly/driverly/cmd/cli/root"
	"github.com/driverly/driverly/internal/models"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts (admin token required)",
	}
	usersCmd.AddCommand(listUsersCmd())
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Long:  "List user accounts as a table or JSON. Requires an admin session token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users?limit=%d&offset=%d", config.APIURL(), limit, offset)
			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				return err
			}
			if token := config.LoadToken(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
			}

			var out struct {
				Items []models.PublicUser `json:"items"`
				Total int                 `json:"total"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			if asJSON {
				pretty, err := json.MarshalIndent(out.Items, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(pretty))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.Items))
			for _, u := range out.Items {
				lastLogin := "never"
				if u.LastLogin != nil {
					lastLogin = u.LastLogin.Format(time.RFC3339)
				}
				rows = append(rows, []interface{}{u.Username, u.Email, u.Role, lastLogin, u.CreatedAt.Format(time.RFC3339)})
			}
			output.RenderTable(os.Stdout, []string{"Username", "Email", "Role", "Last Login", "Created"}, rows)
			fmt.Printf("%d of %d users\n", len(out.Items), out.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of users to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset into the user list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON instead of a table")

	return cmd
}
