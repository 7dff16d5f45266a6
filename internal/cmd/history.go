package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded verdicts for an owner",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("owner", "", "Owner id (required)")
	historyCmd.Flags().String("kind", "website", "Record kind: website or payment")
	historyCmd.Flags().Int("limit", 0, "Maximum records to list")
	historyCmd.Flags().String("output", "table", "Output format: table, json, markdown")
	_ = historyCmd.MarkFlagRequired("owner")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ownerID, err := cmd.Flags().GetString("owner")
	if err != nil {
		return err
	}
	if strings.TrimSpace(ownerID) == "" {
		return errors.New("owner id is required")
	}

	kindValue, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}
	kind := core.RecordKind(kindValue)
	if !kind.Valid() {
		return fmt.Errorf("invalid kind: %s", kindValue)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, appConfig)
	if err != nil {
		return err
	}
	defer st.Close() // nolint:errcheck // best-effort cleanup

	records, err := st.ListRecords(ctx, ownerID, kind, limit)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatRecords(records)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Println(rendered)
	}

	return nil
}
