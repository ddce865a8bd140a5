package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/term"

	"nexusaquarium/internal/client/api"
	"nexusaquarium/internal/client/config"
	"nexusaquarium/internal/client/securestore"
	"nexusaquarium/internal/client/session"
	"nexusaquarium/internal/client/viewmodel"
	"nexusaquarium/internal/logging"
)

const usage = `usage: client [flags] <command>

commands:
  register <email> [display name]   create an account and sign in
  login <email>                     sign in
  logout                            forget the stored session
  whoami                            print the signed-in user
  status                            print the session state
  rename <display name>             change the display name`

func main() {
	ctx := context.Background()

	cfg, args, err := config.Load(ctx, envconfig.OsLookuper(), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		log.Fatalf("creating data directory: %v", err)
	}
	store, err := securestore.Open(ctx, "file:"+filepath.Join(cfg.DataDir, "session.db"), []byte(cfg.DeviceSecret))
	if err != nil {
		log.Fatalf("opening session store: %v", err)
	}
	defer store.Close()

	vm := viewmodel.NewAuthViewModel(ctx, api.NewClient(cfg.ServerURL, cfg.Timeout), session.NewClient(store))
	<-vm.Ready()

	if err := run(ctx, vm, args, os.Stdout, terminalPassword); err != nil {
		fmt.Fprintln(os.Stderr, err)
		store.Close()
		os.Exit(1)
	}
}

// passwordReader prompts for a password on w.
type passwordReader func(w io.Writer) (string, error)

func terminalPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// run executes one command against an already restored view-model.
func run(ctx context.Context, vm *viewmodel.AuthViewModel, args []string, w io.Writer, readPassword passwordReader) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "register":
		if len(rest) < 1 {
			return fmt.Errorf("register needs an email")
		}
		var displayName *string
		if len(rest) > 1 {
			name := strings.Join(rest[1:], " ")
			displayName = &name
		}
		password, err := readPassword(w)
		if err != nil {
			return err
		}
		if err := vm.Register(ctx, rest[0], password, displayName); err != nil {
			return fmt.Errorf("registration failed: %s", vm.State.Get().Message)
		}
		printState(w, vm.State.Get())

	case "login":
		if len(rest) != 1 {
			return fmt.Errorf("login needs an email")
		}
		password, err := readPassword(w)
		if err != nil {
			return err
		}
		if err := vm.Login(ctx, rest[0], password); err != nil {
			return fmt.Errorf("login failed: %s", vm.State.Get().Message)
		}
		printState(w, vm.State.Get())

	case "logout":
		vm.Logout(ctx)
		printState(w, vm.State.Get())

	case "whoami":
		user := vm.CurrentUser()
		if user == nil {
			return fmt.Errorf("not logged in")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", user.ID, user.Email, displayNameOf(user))

	case "status":
		printState(w, vm.State.Get())

	case "rename":
		if len(rest) == 0 {
			return fmt.Errorf("rename needs a display name")
		}
		if err := vm.UpdateDisplayName(ctx, strings.Join(rest, " ")); err != nil {
			return fmt.Errorf("rename failed: %w", err)
		}
		printState(w, vm.State.Get())

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

func printState(w io.Writer, s viewmodel.State) {
	switch s.Status {
	case viewmodel.StatusLoggedIn:
		fmt.Fprintf(w, "%s as %s (%s)\n", s.Status, s.User.Email, displayNameOf(s.User))
	case viewmodel.StatusError:
		fmt.Fprintf(w, "%s: %s\n", s.Status, s.Message)
	default:
		fmt.Fprintln(w, s.Status)
	}
}

func displayNameOf(u *session.User) string {
	if u.DisplayName == nil {
		return "-"
	}
	return *u.DisplayName
}
