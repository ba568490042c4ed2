// Package main implements the entry point for the Quill API server, a
// multi-tenant content service in which API clients own private posts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Running the binary without a
// subcommand serves the API.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "quill-api",
		Short:         "Multi-tenant content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "migrate [up|down|status|version]",
		Short: "Apply or inspect database migrations",
		Args:  cobra.ExactArgs(1),
		ValidArgs: []string{
			migrateUp,
			migrateDown,
			migrateStatus,
			migrateVersion,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cobra.OnlyValidArgs(cmd, args); err != nil {
				return err
			}
			return runMigrate(cmd.Context(), args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every migration statement")
	return cmd
}
