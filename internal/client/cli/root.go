// Package cli implements gophauth-cli, a command-line client for the account
// service that talks to the server over gRPC.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/spf13/cobra"
)

// dial is a seam for tests.
var dial = func(addr string) (client.Client, error) {
	return client.NewGRPCClient(addr)
}

type options struct {
	server  string
	token   string
	timeout time.Duration
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "gophauth-cli",
		Short:         "Command-line client for the gophauth account service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("GOPHAUTH_SERVER", "localhost:50051"), "gRPC server address")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("GOPHAUTH_TOKEN"), "access token for authenticated commands")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")

	cmd.AddCommand(
		newSignupCmd(opts),
		newLoginCmd(opts),
		newTokenCmd(opts),
		newMeCmd(opts),
		newUsersCmd(opts),
		newUserCmd(opts),
	)

	return cmd
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newSignupCmd(opts *options) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if err := prompt(cmd, in, &username, "Username"); err != nil {
				return err
			}
			if err := prompt(cmd, in, &email, "Email"); err != nil {
				return err
			}
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				return c.Signup(ctx, username, email, password)
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password and print the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := prompt(cmd, bufio.NewReader(cmd.InOrStdin()), &email, "Email"); err != nil {
				return err
			}
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				return c.LoginByEmail(ctx, email, password)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	return cmd
}

func newTokenCmd(opts *options) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in with username and password and print the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := prompt(cmd, bufio.NewReader(cmd.InOrStdin()), &username, "Username"); err != nil {
				return err
			}
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				return c.LoginByUsername(ctx, username, password)
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	return cmd
}

func newMeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account the access token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.token == "" {
				return fmt.Errorf("an access token is required (--token or GOPHAUTH_TOKEN)")
			}
			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				c.SetAccessToken(opts.token)
				return c.WhoAmI(ctx)
			})
		},
	}
}

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all accounts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				return c.ListUsers(ctx)
			})
		},
	}
}

func newUserCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show one account by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return withClient(cmd, opts, func(ctx context.Context, c client.Client) (any, error) {
				return c.GetUser(ctx, id)
			})
		},
	}
}

// withClient dials the server, runs fn under the request timeout and prints
// its result as indented JSON.
func withClient(cmd *cobra.Command, opts *options, fn func(context.Context, client.Client) (any, error)) error {
	c, err := dial(opts.server)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	res, err := fn(ctx, c)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// prompt asks for a value on stdin when the flag was left empty.
func prompt(cmd *cobra.Command, in *bufio.Reader, dst *string, label string) error {
	if *dst != "" {
		return nil
	}
	v, err := GetSimpleText(in, label, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
