package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/core/store"
	"github.com/phishnix/phishnix/internal/observability"
	"github.com/phishnix/phishnix/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <link> [link...]",
	Short: "Analyze links for phishing and scam signals",
	Long: `Analyze one or more links using the configured reasoning engine.

Each link gets an independent safety verdict. With --owner, verdicts are
recorded in the local store and can be listed later with "history".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("payment", false, "Treat links as payment links")
	analyzeCmd.Flags().String("owner", "", "Owner id for verdict persistence")
	analyzeCmd.Flags().String("output", "table", "Output format: table, json, markdown")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	payment, err := cmd.Flags().GetBool("payment")
	if err != nil {
		return err
	}
	ownerID, err := cmd.Flags().GetString("owner")
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

	kind := core.RecordKindWebsite
	if payment {
		kind = core.RecordKindPayment
	}

	cfg := appConfig
	if cfg == nil {
		return errors.New("config not loaded")
	}

	orch, err := buildAnalyzer(cfg, observability.CLILogger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var writer *store.Writer
	if strings.TrimSpace(ownerID) != "" {
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		writer = &store.Writer{
			Store:  st,
			Logger: observability.CLILogger,
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	results := make([]*output.Result, len(args))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, link := range args {
		group.Go(func() error {
			outcome := core.HandleAnalysis(groupCtx, orch, core.AnalysisForm{
				Link: link,
				Kind: kind,
			})

			if outcome.Kind == core.OutcomeSuccess && writer != nil {
				normalized, err := core.NormalizeLink(link)
				if err == nil {
					writer.WriteAsync(ownerID, outcome.Verdict, normalized, kind)
				}
			}

			results[i] = &output.Result{
				Link:    link,
				Kind:    kind,
				Outcome: outcome,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	// Let in-flight record writes land before the process exits.
	if writer != nil {
		writer.Wait()
	}

	rendered, err := output.FormatResultList(format, results)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Println(rendered)
	}

	for _, r := range results {
		if r.Outcome.Kind == core.OutcomeEngineError {
			observability.CLILogger.Debug("Analysis ended with engine error",
				zap.String("link", r.Link))
		}
	}

	return nil
}
