package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dairyerp/dairyclient/internal/domain/models"
)

func newLoginCmd(a **app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := (*a).sessions.Login(cmd.Context(), models.Credentials{
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", sess.FullName, sess.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, ok := (*a).sessions.Current(cmd.Context())
			if !ok {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s (%s), role %s, token expires %s\n",
				sess.FullName, sess.Username, sess.Role, sess.TokenExpiry.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newPingCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).transport.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Backend reachable.")
			return nil
		},
	}
}
