// Package main is aqsctl, the operator CLI for a running gateway instance.
// It drives the admin HTTP API: cache invalidation, breaker inspection,
// backups and system status.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var addr string

	rootCmd := &cobra.Command{
		Use:     "aqsctl",
		Short:   "Operator CLI for the account aggregation gateway",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "Gateway base URL")

	rootCmd.AddCommand(statusCmd(&addr))
	rootCmd.AddCommand(breakersCmd(&addr))
	rootCmd.AddCommand(invalidateCmd(&addr))
	rootCmd.AddCommand(invalidateAllCmd(&addr))
	rootCmd.AddCommand(backupCmd(&addr))
	rootCmd.AddCommand(backupsCmd(&addr))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func statusCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show gateway system status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(newClient(*addr))
		},
	}
}

func breakersCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "breakers",
		Short: "Show circuit breaker states per backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreakers(newClient(*addr))
		},
	}
}

func invalidateCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate [accountID]",
		Short: "Remove one account's cache entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(newClient(*addr), args[0])
		},
	}
}

func invalidateAllCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate-all",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidateAll(newClient(*addr))
		},
	}
}

func backupCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Trigger a cache backup now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(newClient(*addr))
		},
	}
}

func backupsCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List stored cache backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackups(newClient(*addr))
		},
	}
}
