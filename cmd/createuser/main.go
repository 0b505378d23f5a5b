// Command createuser creates a user of any role, admins included.
// Missing values are asked interactively. Password is read without echo when stdin is a terminal,
// otherwise it is read as plain lines from stdin.
// Existing user is updated (role, password, full name) after confirmation.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/db"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository/postgres"
	"github.com/nkiryanov/medify/internal/service/auth"
	"github.com/nkiryanov/medify/internal/service/user"
	"github.com/nkiryanov/medify/internal/service/validate"
)

// Replaced in tests to avoid touching the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errPasswordMismatch = errors.New("passwords do not match")

type options struct {
	DatabaseDSN string
	Email       string
	FullName    string
	Role        string
	Gender      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, in io.Reader, out io.Writer) error {
	opts, err := parseOptions(args, getenv)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	nu, err := prompt(opts, reader, out)
	if err != nil {
		return err
	}

	pool, err := db.ConnectAndMigrate(ctx, opts.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := user.NewService(auth.DefaultHasher, postgres.NewStorage(pool))

	existing, err := users.GetUserByEmail(ctx, nu.Email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		u, err := users.CreateUser(ctx, nu)
		if err != nil {
			return fmt.Errorf("can't create user: %w", err)
		}
		_, err = fmt.Fprintf(out, "User %s created with id=%d and role %s\n", u.Email, u.ID, u.Role)
		return err
	case err != nil:
		return fmt.Errorf("can't look up user: %w", err)
	}

	if _, err := fmt.Fprintf(out, "User %s already exists with id=%d and role %s\n", existing.Email, existing.ID, existing.Role); err != nil {
		return err
	}

	ok, err := confirm(reader, out, "Update role, password and full name? [y/N] ")
	if err != nil {
		return err
	}
	if !ok {
		_, err = fmt.Fprintln(out, "Skipped, user left unchanged")
		return err
	}

	u, err := users.UpdateUser(ctx, existing.ID, nu)
	if err != nil {
		return fmt.Errorf("can't update user: %w", err)
	}

	_, err = fmt.Fprintf(out, "User %s updated with role %s\n", u.Email, u.Role)
	return err
}

func parseOptions(args []string, getenv func(string) string) (options, error) {
	opts := options{
		DatabaseDSN: getenv("DATABASE_URL"),
		Role:        string(models.RolePatient),
	}

	fs := pflag.NewFlagSet("createuser", pflag.ContinueOnError)
	fs.StringVarP(&opts.DatabaseDSN, "database", "d", opts.DatabaseDSN, "Database connection string")
	fs.StringVar(&opts.Email, "email", "", "User email")
	fs.StringVar(&opts.FullName, "name", "", "User full name")
	fs.StringVar(&opts.Role, "role", opts.Role, "User role (PATIENT, DOCTOR, ADMIN)")
	fs.StringVar(&opts.Gender, "gender", "", "User gender (MALE, FEMALE, OTHER)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.DatabaseDSN == "" {
		return opts, errors.New("database connection string is required (--database or DATABASE_URL)")
	}

	opts.Role = strings.ToUpper(opts.Role)
	if !models.Role(opts.Role).Valid() {
		return opts, fmt.Errorf("unknown role %q", opts.Role)
	}

	opts.Gender = strings.ToUpper(opts.Gender)
	switch models.Gender(opts.Gender) {
	case "", models.GenderMale, models.GenderFemale, models.GenderOther:
	default:
		return opts, fmt.Errorf("unknown gender %q", opts.Gender)
	}

	return opts, nil
}

// Ask for values not given by flags and for the password (twice)
func prompt(opts options, reader *bufio.Reader, w io.Writer) (models.NewUser, error) {
	nu := models.NewUser{
		Email:    opts.Email,
		FullName: opts.FullName,
		Role:     models.Role(opts.Role),
	}
	if opts.Gender != "" {
		g := models.Gender(opts.Gender)
		nu.Gender = &g
	}

	var err error
	if nu.Email == "" {
		if nu.Email, err = readLine(reader, w, "Email: "); err != nil {
			return nu, err
		}
	}
	if nu.FullName == "" {
		if nu.FullName, err = readLine(reader, w, "Full name: "); err != nil {
			return nu, err
		}
	}
	if nu.Email == "" || nu.FullName == "" {
		return nu, errors.New("email and full name are required")
	}

	password, err := getPassword(reader, w, "Password: ")
	if err != nil {
		return nu, err
	}
	if err := validate.Password(password); err != nil {
		return nu, err
	}

	again, err := getPassword(reader, w, "Password (again): ")
	if err != nil {
		return nu, err
	}
	if again != password {
		return nu, errPasswordMismatch
	}

	nu.Password = password
	return nu, nil
}

func readLine(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// Empty answer or EOF means no
func confirm(reader *bufio.Reader, w io.Writer, label string) (bool, error) {
	answer, err := readLine(reader, w, label)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Read password without echo from terminal. Piped stdin is read line by line through reader
func getPassword(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		pw, err := readLine(reader, w, label)
		if err != nil {
			return "", fmt.Errorf("can't read password: %w", err)
		}
		return pw, nil
	}

	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}

	pw, err := readPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("can't read password: %w", err)
	}

	return string(pw), nil
}
