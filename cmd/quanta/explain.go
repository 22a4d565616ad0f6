package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quanta-dev/quanta/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <code>",
		Short: "Explain a quanta error code",
		Long: `Print the full description of a quanta error code.

Examples:
  quanta explain Q001
  quanta explain Q041`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, ok := errors.Lookup(code); !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", code)
			}
			fmt.Println(errors.New(code).Format())
			return nil
		},
	}
	return cmd
}
