package main

import (
	"context"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

type loginOptions struct {
	*rootOptions
	username string
	school   string
	class    string
	roll     string
}

func newLoginCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &loginOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session with the API",
		Long: `Log in with a username or email, or as a student with school, class and roll number.
The password or PIN is prompted next.

The session token is kept in the data dir and sent with every later command.`,
		Example: `  nabha login -u meera
  nabha login --school 5c1f... --class 6A --roll 12`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		prompt := "Enter password:"
		if opts.username == "" {
			prompt = "Enter PIN:"
		}
		a.printf(prompt)
		secret, err := readPasswordFunc(int(syscall.Stdin))
		a.printf("\n")
		if err != nil {
			return err
		}

		var token string
		if opts.username != "" {
			token, err = a.remote.Login(ctx, opts.username, string(secret))
		} else {
			token, err = a.remote.LoginStudent(ctx, opts.school, opts.class, opts.roll, string(secret))
		}
		if err != nil {
			return err
		}
		acc, err := a.remote.Me(ctx)
		if err != nil {
			return err
		}
		if err := saveSession(opts.dataDir, session{Token: token, UserID: acc.ID, Username: acc.DisplayName()}); err != nil {
			return err
		}
		a.printf("logged in as %s (%s)\n", acc.DisplayName(), acc.ID)
		return nil
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.username, "username", "u", "", "username or email")
	flags.StringVar(&opts.school, "school", "", "school ID (student login)")
	flags.StringVar(&opts.class, "class", "", "class name (student login)")
	flags.StringVar(&opts.roll, "roll", "", "roll number (student login)")
	cmd.MarkFlagsRequiredTogether("school", "class", "roll")
	cmd.MarkFlagsOneRequired("username", "school")
	cmd.MarkFlagsMutuallyExclusive("username", "school")
	return cmd
}
