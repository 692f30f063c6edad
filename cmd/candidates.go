package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/dashboard"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/storage"
)

const sinceLayout = "2006-01-02"

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Review completed interviews",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed interviews",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		listCandidates(cmd)
	},
}

var candidatesReportCmd = &cobra.Command{
	Use:   "report ID",
	Short: "Print or save the report of a completed interview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		candidateReport(cmd, args[0])
	},
}

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a completed interview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deleteCandidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.AddCommand(candidatesListCmd, candidatesReportCmd, candidatesDeleteCmd)

	candidatesListCmd.Flags().StringP("search", "s", "", "show candidates whose name or email contains the text")
	candidatesListCmd.Flags().Int("min-score", 0, "show candidates with at least this final score")
	candidatesListCmd.Flags().String("since", "", "show interviews completed on or after the date (YYYY-MM-DD)")
	candidatesListCmd.Flags().String("sort", string(dashboard.SortByDate), "sort by score, date or name")
	candidatesListCmd.Flags().String("order", string(dashboard.Descending), "sort order: asc or desc")

	candidatesReportCmd.Flags().StringP("out", "o", "", "write the report to a file instead of stdout")

	candidatesDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func candidatesSetup() (*zap.Logger, *storage.Store) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	return logger, store
}

func listCandidates(cmd *cobra.Command) {
	ctx := context.Background()
	logger, store := candidatesSetup()

	search, _ := cmd.Flags().GetString("search")
	minScore, _ := cmd.Flags().GetInt("min-score")
	sinceFlag, _ := cmd.Flags().GetString("since")
	sortFlag, _ := cmd.Flags().GetString("sort")
	orderFlag, _ := cmd.Flags().GetString("order")

	by, order, err := dashboard.ParseSort(sortFlag, orderFlag)
	if err != nil {
		logger.Fatal("parsing sort flags", zap.Error(err))
	}

	var since time.Time
	if sinceFlag != "" {
		since, err = time.ParseInLocation(sinceLayout, sinceFlag, time.Local)
		if err != nil {
			logger.Fatal("parsing --since", zap.Error(err))
		}
	}

	items, err := store.ListCompleted(ctx)
	if err != nil {
		logger.Fatal("loading completed interviews", zap.Error(err))
	}

	query := dashboard.Query{Search: search, MinScore: minScore, Since: since, SortBy: by, Order: order}
	for _, status := range dashboard.Describe(query.Filters()) {
		logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason), zap.Any("details", status.Details))
	}

	res, err := dashboard.List(ctx, logger, query, items)
	if err != nil {
		logger.Fatal("filtering completed interviews", zap.Error(err))
	}
	logger.Debug("completed interviews listed", zap.Int("total", len(items)), zap.Int("shown", len(res.Items)))

	if err := printCandidates(cmd.OutOrStdout(), res.Items); err != nil {
		logger.Fatal("printing candidates", zap.Error(err))
	}
}

func printCandidates(w io.Writer, items []interview.CompletedSession) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No completed interviews found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSCORE\tLEVEL\tCOMPLETED")
	for _, item := range items {
		score := item.FinalScoreValue()
		completed := "-"
		if item.CompletedAt != nil {
			completed = item.CompletedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			item.Profile.ID, item.Profile.Name, item.Profile.Email, score, report.PerformanceLevel(score), completed)
	}
	return tw.Flush()
}

func candidateReport(cmd *cobra.Command, id string) {
	logger, store := candidatesSetup()

	completed, err := store.GetCompleted(context.Background(), id)
	if err != nil {
		logger.Fatal("finding the interview", zap.String("id", id), zap.Error(err))
	}

	out, _ := cmd.Flags().GetString("out")
	if out = strings.TrimSpace(out); out != "" {
		path, err := writeReport(completed.Session, out)
		if err != nil {
			logger.Fatal("saving the report", zap.Error(err))
		}
		logger.Info("report saved", zap.String("file", path), zap.String("subject", report.Subject(completed.Session)))
		return
	}

	text, err := report.Render(completed.Session, time.Now())
	if err != nil {
		logger.Fatal("rendering the report", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
}

func deleteCandidate(cmd *cobra.Command, id string) {
	logger, store := candidatesSetup()
	ctx := context.Background()

	completed, err := store.GetCompleted(ctx, id)
	if err != nil {
		logger.Fatal("finding the interview", zap.String("id", id), zap.Error(err))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete the interview of %s", completed.Profile.Name),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				logger.Info("exiting", zap.String("reason", "deletion not confirmed"))
				return
			}
			logger.Fatal("confirming deletion", zap.Error(err))
		}
	}

	if err := store.DeleteCompleted(ctx, id); err != nil {
		logger.Fatal("deleting the interview", zap.String("id", id), zap.Error(err))
	}
	logger.Info("interview deleted", zap.String("id", id), zap.String("candidate", completed.Profile.Name))
}
