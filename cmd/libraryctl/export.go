package main

import (
	"fmt"
	"io"
	"os"

	"library/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var accountID, outPath string
	cmd := &cobra.Command{
		Use:       "export purchases|loans",
		Short:     "Write an account's purchases or loans as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"purchases", "loans"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch args[0] {
			case "purchases":
				account, rows, err := a.reports.Purchases(cmd.Context(), accountID)
				if err != nil {
					return fmt.Errorf("load purchases: %w", err)
				}
				return export.Purchases(out, account, rows)
			default:
				account, rows, err := a.reports.Loans(cmd.Context(), accountID)
				if err != nil {
					return fmt.Errorf("load loans: %w", err)
				}
				return export.Loans(out, account, rows)
			}
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account id")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
