package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/internal/cart"
	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

var (
	authUsername string
	authPassword string
)

// sofreh login — authenticate and store the token pair.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store credentials locally (encrypted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		user, err := services.NewAuthService().Login(cmd.Context(), authUsername, password)
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s).\n", user.Username, user.Role)
		if storage.Exists(cart.Document) {
			fmt.Println("You have a guest cart from before logging in — run `sofreh cart merge` to carry it over.")
		}
		return nil
	},
}

// sofreh register — create an account and log in.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword()
		if err != nil {
			return err
		}

		user, err := services.NewAuthService().Register(cmd.Context(), authUsername, password)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s. You are now logged in.\n", user.Username)
		return nil
	},
}

// sofreh logout — drop the stored credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.NewAuthService().Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// sofreh whoami — show the current session.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if credentials.Pair().Empty() {
			fmt.Println("Not logged in (guest mode).")
			return nil
		}

		user, err := services.NewAuthService().Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)

		if exp, ok := credentials.AccessExpiresAt(); ok {
			fmt.Printf("Access token expires at %s\n", exp.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// resolvePassword takes --password when given, otherwise prompts without
// echoing.
func resolvePassword() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "account username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password (prompted if omitted)")
		c.MarkFlagRequired("username") //nolint:errcheck
	}
}
