// Command adminctl creates or updates an administrative user.
//
//	adminctl -id alice -role ADMIN
//
// The password is read from the terminal without echo, or from the first line of stdin when it is not a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dtroode/admin-session/internal/config"
	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
	"github.com/dtroode/admin-session/internal/password"
	"github.com/dtroode/admin-session/internal/repository/postgres"
)

// readPassword is replaced in tests.
var readPassword = func(stdin *os.File, w io.Writer) (string, error) {
	if !term.IsTerminal(int(stdin.Fd())) {
		return readLine(bufio.NewReader(stdin))
	}
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func main() {
	l := logger.New(0, logger.WithWriter(os.Stderr))

	cfg, err := config.NewDatabaseConfig(".env")
	if err != nil {
		l.Fatal("failed to parse config", "error", err)
	}

	ctx := context.Background()
	db, err := postgres.NewConnection(ctx, cfg.DSN)
	if err != nil {
		l.Fatal("failed to connect database", "error", err)
	}

	err = run(ctx, os.Args[1:], os.Stdin, os.Stdout, postgres.NewUserRepository(db))
	_ = db.Close()
	if err != nil {
		l.Fatal("adminctl failed", "error", err)
	}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer, users model.UserStore) error {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	fs.SetOutput(stdout)
	id := fs.String("id", "", "user id")
	role := fs.String("role", string(model.RoleGuest), "authority: ADMIN, MANAGER or GUEST")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == "" {
		return errors.New("-id is required")
	}
	authority := model.Role(strings.ToUpper(*role))
	if !authority.Valid() {
		return fmt.Errorf("unknown role %q", *role)
	}

	raw, err := readPassword(stdin, stdout)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	hash, err := password.Hash(raw)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := users.Save(ctx, model.User{ID: *id, PasswordHash: hash, Authority: authority})
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	fmt.Fprintf(stdout, "saved user %s with authority %s\n", user.ID, user.Authority)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
