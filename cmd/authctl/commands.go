package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"
)

func userAdd(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("useradd", c)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errMissingUsername
	}

	pw, err := c.password("Password: ")
	if err != nil {
		return err
	}
	if c.tty {
		confirm, err := c.password("Repeat password: ")
		if err != nil {
			return err
		}
		if confirm != pw {
			return errPasswordMismatch
		}
	}

	id, err := c.svc.CreateUser(ctx, *username, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created %s (%s)\n", id.Username, id.UserID)
	return nil
}

func listUsers(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("users", c)
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := c.svc.ListUsers(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER_ID\tUSERNAME\tEMAIL\tPASSWORD_HASH\tCREATED_AT")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.UserID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "\n%d user(s)\n", len(users))
	return tw.Flush()
}

func inspect(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("inspect", c)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errMissingUsername
	}

	pw, err := c.password("Password to check: ")
	if err != nil {
		return err
	}
	report, err := c.svc.InspectUser(ctx, *username, pw)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "username:    %s\n", report.Username)
	fmt.Fprintf(c.out, "exists:      %t\n", report.Exists)
	if !report.Exists {
		return nil
	}
	scheme := string(report.Scheme)
	if scheme == "" {
		scheme = "unknown"
	}
	fmt.Fprintf(c.out, "scheme:      %s\n", scheme)
	fmt.Fprintf(c.out, "hash prefix: %s\n", report.HashPrefix)
	fmt.Fprintf(c.out, "match:       %t\n", report.Match)
	return nil
}
