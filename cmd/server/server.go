// Package main is the entry point of the library-admin application.
// Without a subcommand it serves the web application.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-admin/internal"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		RunE: func(*cobra.Command, []string) error {
			return internal.Serve()
		},
	}

	rootCmd := &cobra.Command{
		Use:          "library-admin",
		Short:        "Library management back office",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(*cobra.Command, []string) error {
			return internal.Migrate()
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, newCreateUserCommand())
	return rootCmd
}

func newCreateUserCommand() *cobra.Command {
	request := &schemas.MemberRequest{}
	var userType string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user who can log in, prompts for the password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			request.Password = password
			request.UserType = schemas.MemberType(userType)

			v := utils.GetValidator()
			if err = v.SanitizeData(request); err != nil {
				return err
			}
			if err = v.Validate.Struct(request); err != nil {
				return err
			}

			userId, err := internal.CreateUser(request)
			if err != nil {
				return err
			}
			cmd.Printf("Created user %d (%s)\n", userId, request.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "full name")
	cmd.Flags().StringVar(&request.Email, "email", "", "login email")
	cmd.Flags().StringVar(&userType, "type", string(schemas.MemberTypeFaculty), "Student or Faculty")
	cmd.Flags().StringVar(&request.PhoneNumber, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword reads a password from the terminal without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(bytePassword)), nil
}
