package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/boddenberg/finboard-bfa/internal/form"

	"github.com/spf13/cobra"
)

var (
	flagTo     string
	flagAmount string
	flagYes    bool
)

var transferCmd = &cobra.Command{
	Use:     "transfer",
	Short:   "Send a quick transfer to a dashboard contact",
	Example: "  finboard transfer --to contact1 --amount 250",
	Args:    cobra.NoArgs,
	RunE:    runTransfer,
}

func init() {
	transferCmd.Flags().StringVar(&flagTo, "to", "", "Recipient contact id")
	transferCmd.Flags().StringVar(&flagAmount, "amount", form.InitialTransferAmount, "Amount to send")
	transferCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(transferCmd)
}

func runTransfer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	// Recipients come from the dashboard contacts.
	if err := a.dashboard.Refetch(ctx); err != nil {
		return err
	}

	f := form.NewTransferForm(a.dashboard)
	if flagTo != "" {
		f.Select(flagTo)
	}
	f.SetAmount(flagAmount)

	if n, err := f.Submit(); err != nil {
		if n != nil {
			printNotification(cmd, *n)
		}
		return err
	}

	if !flagYes && !confirm(cmd, f) {
		f.Cancel()
		fmt.Fprintln(cmd.OutOrStdout(), "Transfer cancelled")
		return nil
	}

	n, transfer, err := f.Confirm(ctx, a.transfers)
	printNotification(cmd, n)
	if err != nil {
		return err
	}
	return printJSON(cmd, transfer)
}

func confirm(cmd *cobra.Command, f *form.TransferForm) bool {
	name := f.Selected()
	if c, ok := f.Recipient(); ok {
		name = c.Name
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Send $%s to %s? [y/N] ", f.Amount(), name)

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
