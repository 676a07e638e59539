package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/dwitter-backend/internal/app"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/dwitter-backend/internal/pkg/errors"
)

const (
	exitUsage    = 2
	exitNotFound = 3
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

// classify maps service errors onto exit codes.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case apperr.Is(err, apperr.ErrNotFound):
		return &exitErr{code: exitNotFound, err: err}
	case apperr.Is(err, apperr.ErrInvalidArgument), apperr.Is(err, apperr.ErrConflict):
		return &exitErr{code: exitUsage, err: err}
	default:
		return err
	}
}

type cli struct {
	configPath string
	out        io.Writer
	open       func(cfg app.Config) (*app.App, error)
}

func main() {
	root := newRootCmd(os.Stdout, app.New)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, open func(cfg app.Config) (*app.App, error)) *cobra.Command {
	c := &cli{out: out, open: open}

	root := &cobra.Command{
		Use:           "dwitter",
		Short:         "Administer dwitter accounts, profiles and follows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitErr{code: exitUsage, err: err}
	})
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML config file (default $"+app.ConfigPathEnv+")")

	root.AddCommand(
		c.migrateCmd(),
		c.accountCmd(),
		c.followCmd(),
		c.unfollowCmd(),
		c.listCmd("following", "List the profiles <username> follows", false),
		c.listCmd("followers", "List the profiles following <username>", true),
		c.statsCmd(),
	)
	return root
}

// withApp opens the app for one command and always closes it.
func (c *cli) withApp(fn func(a *app.App, dbc dbctx.Context) error) error {
	cfg, err := app.LoadConfig(c.configPath, nil)
	if err != nil {
		return err
	}
	a, err := c.open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		return err
	}
	return classify(fn(a, dbctx.Background()))
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the account, profile and follow tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, _ dbctx.Context) error {
				if err := a.Migrate(); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "migrated")
				return nil
			})
		},
	}
}

func (c *cli) accountCmd() *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Create, rename or delete accounts",
	}

	var password string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account and its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				acct, prof, err := a.Services.Accounts.Create(dbc, args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "created %s (account %s, profile %s)\n", acct.Username, acct.ID, prof.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&password, "password", "", "Password for the new account")
	_ = create.MarkFlagRequired("password")

	rename := &cobra.Command{
		Use:   "rename <username> <new-username>",
		Short: "Change an account's username",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				acct, err := a.Services.Accounts.GetByUsername(dbc, args[0])
				if err != nil {
					return err
				}
				renamed, err := a.Services.Accounts.Rename(dbc, acct.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "renamed %s to %s\n", args[0], renamed.Username)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account, its profile and every follow touching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				acct, err := a.Services.Accounts.GetByUsername(dbc, args[0])
				if err != nil {
					return err
				}
				if err := a.Services.Accounts.Delete(dbc, acct.ID); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "deleted %s\n", acct.Username)
				return nil
			})
		},
	}

	account.AddCommand(create, rename, del)
	return account
}

func (c *cli) followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <username> <target-username>",
		Short: "Make <username> follow <target-username>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				self, err := profileFor(a, dbc, args[0])
				if err != nil {
					return err
				}
				if err := a.Services.Follows.FollowUsername(dbc, self.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s follows %s\n", self, args[1])
				return nil
			})
		},
	}
}

func (c *cli) unfollowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <username> <target-username>",
		Short: "Make <username> stop following <target-username>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				self, err := profileFor(a, dbc, args[0])
				if err != nil {
					return err
				}
				target, err := profileFor(a, dbc, args[1])
				if err != nil {
					return err
				}
				if err := a.Services.Follows.Unfollow(dbc, self.ID, target.ID); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s no longer follows %s\n", self, target)
				return nil
			})
		},
	}
}

func (c *cli) listCmd(use, short string, followers bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				self, err := profileFor(a, dbc, args[0])
				if err != nil {
					return err
				}
				var rows []*types.Profile
				if followers {
					rows, err = a.Services.Follows.ListFollowers(dbc, self.ID)
				} else {
					rows, err = a.Services.Follows.ListFollowed(dbc, self.ID)
				}
				if err != nil {
					return err
				}
				for _, p := range rows {
					fmt.Fprintln(c.out, p)
				}
				return nil
			})
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <username>",
		Short: "Show follower and following counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App, dbc dbctx.Context) error {
				self, err := profileFor(a, dbc, args[0])
				if err != nil {
					return err
				}
				stats, err := a.Services.Follows.Stats(dbc, self.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "followers: %d\nfollowing: %d\n", stats.Followers, stats.Following)
				return nil
			})
		},
	}
}

func profileFor(a *app.App, dbc dbctx.Context, username string) (*types.Profile, error) {
	acct, err := a.Services.Accounts.GetByUsername(dbc, username)
	if err != nil {
		return nil, err
	}
	return a.Services.Accounts.GetProfile(dbc, acct.ID)
}
