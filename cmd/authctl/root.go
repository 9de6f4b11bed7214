package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/customer-auth/internal/importer"
)

// NewRootCmd creates the authctl command tree.  open is called lazily by the
// subcommands that need the database.
func NewRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "authctl",
		Short:        "Operator tool for the customer auth service",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd(open))
	cmd.AddCommand(newCreateUsersCmd(open))
	cmd.AddCommand(newIssueTokenCmd(open))
	cmd.AddCommand(newWhoamiCmd(open))
	return cmd
}

// withBackend opens a backend, runs fn and closes it.
func withBackend(cmd *cobra.Command, open opener, fn func(ctx context.Context, b backend) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	return fn(ctx, b)
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b backend) error {
				if err := b.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("schema is up to date")
				return nil
			})
		},
	}
}

func newCreateUsersCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "create-users FILE",
		Short: "Import users from a JSONL file (one JSON object per line)",
		Long: `Import users from a JSONL file. Each line holds customer_id, email,
country and optionally language, is_active and either password (plaintext,
hashed on import) or hashed_password plus salt. A missing or unsupported
language becomes "en". The whole file is imported in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			users, err := importer.ReadJSONL(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return withBackend(cmd, open, func(ctx context.Context, b backend) error {
				n, err := b.ImportUsers(ctx, users)
				if err != nil {
					return err
				}
				cmd.Printf("created %d users\n", n)
				return nil
			})
		},
	}
}

func newIssueTokenCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "issue-token CUSTOMER_ID",
		Short: "Print a session token for an existing customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b backend) error {
				token, exp, err := b.IssueToken(ctx, args[0])
				if err != nil {
					return err
				}
				cmd.Println(token)
				cmd.PrintErrf("expires %s\n", exp.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newWhoamiCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami TOKEN",
		Short: "Show the customer a session token belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b backend) error {
				u, err := b.Whoami(ctx, args[0])
				if err != nil {
					return err
				}
				if u == nil {
					return errors.New("token is invalid, expired or belongs to no customer")
				}
				out, err := json.MarshalIndent(u.View(), "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			})
		},
	}
}
