package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/session"
)

// NewSessionCmd создаёт группу команд для управления сессиями.
func NewSessionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage browser sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(clientFn, outputFn),
		newSessionLoginCmd(outputFn),
		newSessionDisconnectCmd(clientFn, outputFn),
	)

	return cmd
}

func newSessionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := clientFn().ListSessions()
			if err != nil {
				return err
			}

			headers := []string{"ACCOUNT", "PLATFORM", "PROFILE", "CONNECTED"}
			rows := make([][]string, len(sessions))
			for i, s := range sessions {
				rows[i] = []string{s.Account, s.Platform, s.ProfileDir, s.ConnectedAt}
			}

			outputFn().Print(headers, rows, sessions)
			return nil
		},
	}
}

func newSessionLoginCmd(outputFn func() *Output) *cobra.Command {
	var profilesDir string

	cmd := &cobra.Command{
		Use:   "login ACCOUNT PLATFORM",
		Short: "Mark an account profile as authorized",
		Long: "Marks the profile directory as authorized after a manual login.\n" +
			"Works on the local filesystem and must run on the worker host.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]
			platform := domain.Platform(args[1])
			switch platform {
			case domain.PlatformTwitter, domain.PlatformLinkedIn:
			default:
				return fmt.Errorf("unknown platform %q", args[1])
			}

			profileDir := filepath.Join(profilesDir, string(platform), account)
			if err := session.MarkAuthorized(profileDir, account, platform); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Profile authorized: %s", profileDir))
			return nil
		},
	}

	defaultDir := os.Getenv("PROFILES_DIR")
	if defaultDir == "" {
		defaultDir = "./profiles"
	}
	cmd.Flags().StringVar(&profilesDir, "profiles-dir", defaultDir, "Profiles root directory")

	return cmd
}

func newSessionDisconnectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect ACCOUNT PLATFORM",
		Short: "Ask workers to close a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DisconnectSession(args[0], args[1]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Disconnect requested: %s@%s", args[0], args[1]))
			return nil
		},
	}
}
