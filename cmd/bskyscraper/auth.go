package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"bskyscraper/pkg/auth"
	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var skipVerify bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bluesky app passwords",
	Long: `Manage stored Bluesky credentials.

Accounts are stored in:
  - the system keychain, when available
  - an AES-GCM encrypted file with a PBKDF2-derived key

BLUESKY_HANDLE and BLUESKY_APP_PASSWORD are read as a fallback but never written.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [handle]",
	Short: "Store an app password",
	Long: `Store a Bluesky handle and app password.

Create an app password at https://bsky.app/settings/app-passwords. Never use
your main account password. The password is checked against the server
before it is saved unless --skip-verify is given.`,
	Example: `  bskyscraper auth login
  bskyscraper auth login alice.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [handle]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store without checking the password against the server")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	var handle string
	if len(args) > 0 {
		handle = args[0]
	} else {
		fmt.Fprint(ui.Out, "Bluesky handle: ")
		input, _ := reader.ReadString('\n')
		handle = input
	}
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		ui.PrintError("Handle is required")
		return fmt.Errorf("handle is required")
	}

	if existing, _ := manager.Retrieve(handle); existing != nil {
		fmt.Fprintf(ui.Out, "Account '%s' already exists. Update it? (y/N): ", handle)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Fprint(ui.Out, "App password (hidden): ")
	password, err := readPassword(reader)
	fmt.Fprintln(ui.Out)
	if err != nil {
		ui.PrintError("Failed to read app password", err.Error())
		return err
	}
	if password == "" {
		ui.PrintError("App password is required")
		return fmt.Errorf("app password is required")
	}

	if !skipVerify {
		if err := verifyAccount(cmd.Context(), handle, password); err != nil {
			ui.PrintError("Login failed", err.Error())
			return err
		}
	}

	if err := manager.Store(&auth.Account{Handle: handle, AppPassword: password}); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", handle))
	fmt.Fprintf(ui.Out, "\n  $ bskyscraper search <query> --account %s\n", handle)
	return nil
}

// verifyAccount opens a session to check the credentials
func verifyAccount(ctx context.Context, handle, password string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := bluesky.NewClient(cfg.Bluesky.BaseURL, cfg.Bluesky.Timeout, logger.NewNopLogger())
	session, err := client.CreateSession(ctx, handle, password)
	if err != nil {
		return err
	}
	ui.PrintInfo("Verified", session.DID)
	return nil
}

func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	if len(args) == 1 {
		if err := manager.Delete(args[0]); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			return err
		}
		ui.PrintSuccess("Account removed: " + args[0])
		return nil
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintWarning("No stored accounts found")
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	fmt.Fprintln(ui.Out, "Select account to remove:")
	for i, account := range accounts {
		fmt.Fprintf(ui.Out, "  %d. %s\n", i+1, account.Handle)
	}
	fmt.Fprintf(ui.Out, "  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Fprint(ui.Out, "  0. Cancel\n\nChoice: ")

	input, _ := reader.ReadString('\n')
	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == len(accounts)+1:
		fmt.Fprint(ui.Out, "Remove ALL accounts? (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return nil
		}
		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove accounts", err.Error())
			return err
		}
		ui.PrintSuccess("All accounts removed")
	case choice > 0 && choice <= len(accounts):
		handle := accounts[choice-1].Handle
		if err := manager.Delete(handle); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			return err
		}
		ui.PrintSuccess("Account removed: " + handle)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts. Run 'bskyscraper auth login' to add one.")
		return nil
	}

	ui.PrintHighlight("Stored accounts")
	for i, account := range accounts {
		safe := auth.SanitizeAccount(account)
		marker := " "
		if i == 0 {
			marker = "*"
		}
		modified := "unknown"
		if !safe.LastModified.IsZero() {
			modified = safe.LastModified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(ui.Out, " %s %-30s %s  (updated %s)\n", marker, safe.Handle, safe.AppPassword, modified)
	}
	fmt.Fprintln(ui.Out, "\n* used when no account is specified")
	return nil
}
