// Command createsuperuser registers a staff superuser directly in the database.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/metrics"
	"github.com/penshort/accounts/internal/repository"
	"github.com/penshort/accounts/internal/service"
)

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

type output struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Superuser email")
		username    = flag.String("username", "", "Superuser username")
		name        = flag.String("name", "", "Optional display name")
		hasherName  = flag.String("hasher", envOr("PASSWORD_HASHER", auth.HasherArgon2id), "Password hasher: argon2id or bcrypt")
		bcryptCost  = flag.Int("bcrypt-cost", 12, "bcrypt cost when -hasher=bcrypt")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		return 1
	}
	outputFormat, err := parseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	password := os.Getenv("SUPERUSER_PASSWORD")
	if password == "" {
		password, err = promptPassword(os.Stderr, int(os.Stdin.Fd()))
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
	}

	hasher, err := auth.NewHasher(*hasherName, *bcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		return 1
	}
	defer repo.Close()

	input := service.CreateUserInput{
		Email:    *email,
		Username: *username,
		Password: password,
	}
	if *name != "" {
		input.DisplayName = name
	}

	registry := service.NewRegistry(repo, hasher, metrics.NewNoop())
	user, err := registry.CreateSuperuser(ctx, input)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}

	if err := writeOutput(os.Stdout, outputFormat, output{ID: user.ID, Email: user.Email, Username: user.Username}); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		return 1
	}
	return 0
}

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case "plain", "json":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q; use plain or json", s)
	}
}

func writeOutput(w io.Writer, format string, out output) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprintln(w, out.ID)
	return err
}

// promptPassword reads the password twice without echo.
func promptPassword(w io.Writer, fd int) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if _, err := fmt.Fprint(w, "Password (again): "); err != nil {
		return "", err
	}
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// printError prints validation failures one field per line.
func printError(w io.Writer, err error) {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		fmt.Fprintln(w, "create superuser:", err)
		return
	}
	bw := bufio.NewWriter(w)
	for _, f := range verr.Fields {
		fmt.Fprintf(bw, "%s: %s\n", f.Field, f.Message)
	}
	_ = bw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
