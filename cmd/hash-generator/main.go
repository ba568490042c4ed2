// Command hash-generator prints bcrypt hashes of master keys so the whitelist
// in QUILL_AUTH_MASTER_KEYS does not have to hold plaintext.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:          "hash-generator KEY [KEY...]",
		Short:        "Hash master keys for the whitelist",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			for _, key := range args {
				hash, err := hashKey(key, cost)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hash)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
	return cmd
}

func hashKey(key string, cost int) (string, error) {
	if key == "" {
		return "", fmt.Errorf("master key must not be empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hash), nil
}
