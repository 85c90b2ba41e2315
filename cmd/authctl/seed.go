package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/authcore/pkg/auth"
)

// seedFile is the YAML accepted by `authctl seed -f`.
//
//	users:
//	  - username: alice
//	    password: secret
//	    email: alice@example.com
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

var errSeedFile = errors.New("invalid seed file")

func loadSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return seedFile{}, errors.Join(errSeedFile, err)
	}
	for i, u := range f.Users {
		if u.Username == "" {
			return seedFile{}, fmt.Errorf("%w: entry %d has no username", errSeedFile, i+1)
		}
	}
	return f, nil
}

func seed(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("seed", c)
	path := fs.String("f", "users.yaml", "seed file")
	workers := fs.Int("workers", 4, "concurrent hashes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := loadSeedFile(*path)
	if err != nil {
		return err
	}

	var created, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, u := range f.Users {
		g.Go(func() error {
			_, err := c.svc.CreateUser(gctx, u.Username, u.Email, u.Password)
			switch {
			case errors.Is(err, auth.ErrConflict):
				skipped.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("seed %q: %w", u.Username, err)
			}
			created.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "created %d, skipped %d existing\n", created.Load(), skipped.Load())
	return nil
}
