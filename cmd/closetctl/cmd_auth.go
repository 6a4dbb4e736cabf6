package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginPhone string

// loginCmd signs in with either a password or an SMS code, depending on the
// flags given.
var loginCmd = &cobra.Command{
	Use:   "login [account]",
	Short: "Sign in to the stylist backend",
	Long: `Sign in to the stylist backend and store the session locally.

With an account argument the password is read from the terminal. With
--phone an SMS code is requested and read from stdin instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "sign in with an SMS code sent to this phone number")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if loginPhone != "" {
		return loginWithSMS(cmd, a)
	}
	if len(args) == 0 {
		return fmt.Errorf("an account argument or --phone is required")
	}
	return loginWithPassword(cmd, a, args[0])
}

func loginWithPassword(cmd *cobra.Command, a *app, account string) error {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	user, err := a.sessionSvc.LoginPassword(cmd.Context(), account, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Nickname)
	return nil
}

func loginWithSMS(cmd *cobra.Command, a *app) error {
	if err := a.sessionSvc.SendCode(cmd.Context(), loginPhone); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Code sent to %s\nCode: ", loginPhone)
	var code string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &code); err != nil {
		return fmt.Errorf("reading code: %w", err)
	}

	user, err := a.sessionSvc.LoginSMS(cmd.Context(), loginPhone, strings.TrimSpace(code))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Nickname)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.sessionSvc.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	user, expired, err := a.sessionSvc.Current(cmd.Context())
	if err != nil {
		return err
	}
	if user == nil {
		if expired {
			fmt.Fprintln(cmd.OutOrStdout(), "Session expired, please sign in again")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		}
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s", user.Nickname)
	if user.Email != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " <%s>", user.Email)
	}
	if user.Pro {
		fmt.Fprint(cmd.OutOrStdout(), " (pro)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
