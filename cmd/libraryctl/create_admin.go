package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"library/internal/models"
	"library/internal/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCreateAdminCmd() *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Create an admin account. The password is read from the terminal without echo, or from stdin when it is not a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.ErrOrStderr(), os.Stdin, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.accounts.CreateWithRole(cmd.Context(), "", services.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
			}, models.RoleAdmin)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", account.Username, account.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword masks input on a terminal and falls back to the first line
// of in otherwise.
func readPassword(prompt io.Writer, in *os.File, label string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, label)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return firstLine(in)
}

func firstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
