package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hubexport/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage HubSpot access tokens",
	Long: `Manage stored HubSpot private app access tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - HUBSPOT_ACCESS_TOKEN environment variable (read-only)

Never share your tokens or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a HubSpot access token securely",
	Long: `Store a HubSpot private app access token in the system keychain or an
encrypted file. The token is read from a hidden prompt.

If no profile name is given the token is stored under "default". Use
profiles to keep tokens for several portals on one machine.`,
	Example: `  # Store the default token
  hubexport auth login

  # Store a token for a named portal
  hubexport auth login production`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored token profiles",
	Long:  `List all stored token profiles with masked token values.`,
	RunE:  runStatus,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored token",
	Long: `Remove a stored HubSpot access token. With no profile name the
"default" profile is removed.`,
	Example: `  # Remove the default token
  hubexport auth logout

  # Remove a named profile
  hubexport auth logout production`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	profile := "default"
	if len(args) > 0 {
		profile = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowTokenGuide()
	fmt.Println()

	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Printf("Profile '%s' already has a token. Replace it? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	var accessToken string
	for {
		fmt.Print("Access token (hidden): ")
		accessToken, err = readPassword()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		// Private app tokens start with pat- and are long
		if len(accessToken) < 20 || !strings.HasPrefix(accessToken, "pat-") {
			fmt.Println("\nThat doesn't look like a private app token.")
			fmt.Println("It should start with \"pat-\" and be a long string.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				return nil
			}
			continue
		}
		break
	}

	token := &auth.Token{
		Profile:      profile,
		AccessToken:  accessToken,
		LastModified: time.Now(),
	}

	if err := manager.Store(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("\nToken stored for profile '%s' (%s)\n", profile, auth.MaskToken(accessToken))
	fmt.Println("\nRun a full export with:")
	fmt.Println("  $ hubexport export")
	if profile != "default" {
		fmt.Printf("  $ hubexport export --profile %s\n", profile)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	tokens, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if envToken := os.Getenv("HUBSPOT_ACCESS_TOKEN"); envToken != "" {
		fmt.Printf("Environment: HUBSPOT_ACCESS_TOKEN is set (%s)\n", auth.MaskToken(envToken))
	}

	if len(tokens) == 0 {
		fmt.Println("No stored tokens. Use 'hubexport auth login' to add one.")
		return nil
	}

	fmt.Println("Stored profiles:")
	for _, token := range tokens {
		fmt.Printf("  %-16s %s  (modified %s)\n",
			token.Profile,
			auth.MaskToken(token.AccessToken),
			token.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	profile := "default"
	if len(args) > 0 {
		profile = args[0]
	}

	if err := manager.Delete(profile); err != nil {
		return err
	}

	fmt.Printf("Token removed for profile '%s'\n", profile)
	return nil
}

// readPassword reads a token from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after hidden input
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
