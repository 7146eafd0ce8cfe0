package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/kuttab/kuttab/internal/auth"
	"github.com/kuttab/kuttab/internal/config"
	"github.com/kuttab/kuttab/internal/database"
	"github.com/kuttab/kuttab/internal/database/users"
)

// CreateUserCommand creates a user account without going through the HTTP
// setup flow. Useful for provisioning and for adding accounts after setup.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted interactively when omitted)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <address> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account from the command line.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	if cmd.Password == "" {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		cmd.Password = password
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id=%d)\n", user.Username, user.ID)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(password), nil
}
