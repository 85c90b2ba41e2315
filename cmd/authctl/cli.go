package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrymomot/authcore/pkg/auth"
	"github.com/dmitrymomot/authcore/pkg/config"
	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

var (
	errUsage            = errors.New("usage: authctl <useradd|users|inspect|seed> [flags]")
	errPasswordMismatch = errors.New("passwords do not match")
	errMissingUsername  = errors.New("-u is required")
)

// Config is what authctl reads from the environment. It shares the user
// store and hashing settings with authd.
type Config struct {
	Log   logger.Config
	Auth  auth.Config
	Users userstore.Config
}

// readPassword reads without echo. Tests replace it.
var readPassword = func(fd int) ([]byte, error) { return term.ReadPassword(fd) }

type cli struct {
	svc    *auth.Service
	in     *bufio.Reader
	inFd   int
	tty    bool
	out    io.Writer
	errOut io.Writer
}

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"useradd": userAdd,
	"users":   listUsers,
	"inspect": inspect,
	"seed":    seed,
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	log := logger.New(append(logger.FromConfig(cfg.Log), logger.WithOutput(stderr))...)

	store, closeStore, err := userstore.Open(ctx, cfg.Users, userstore.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	c := newCLI(newService(store, cfg.Auth, log), stdin, stdout, stderr)
	return cmd(ctx, c, args[1:])
}

// newService builds a service for administration. It never issues
// credentials, so the session issuer is a placeholder.
func newService(store userstore.Store, cfg auth.Config, log *slog.Logger) *auth.Service {
	return auth.NewService(store, cfg.NewVerifier(),
		auth.NewSessionIssuer(session.New(nil), nil),
		auth.WithLogger(log),
	)
}

func newCLI(svc *auth.Service, stdin io.Reader, stdout, stderr io.Writer) *cli {
	c := &cli{
		svc:    svc,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}
	if f, ok := stdin.(*os.File); ok {
		c.inFd = int(f.Fd())
		c.tty = term.IsTerminal(c.inFd)
	}
	return c
}

// password prompts on stderr. Without a terminal it reads one line from
// stdin so passwords can be piped in.
func (c *cli) password(prompt string) (string, error) {
	if !c.tty {
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(c.errOut, prompt)
	pw, err := readPassword(c.inFd)
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func newFlagSet(name string, c *cli) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}
