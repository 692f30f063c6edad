package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/orchestrator"
	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/resume"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/timer"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	PromptStart        = "Start the interview"
	PromptRestart      = "Restart"
	PromptQuit         = "Quit"
	PromptShowReport   = "Show report"
	PromptSaveReport   = "Save report to file"
	PromptNewInterview = "New interview"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a timed interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "plain text resume to prefill the candidate profile from")
	runCmd.Flags().Bool("fresh", false, "discard the saved interview and start a new one")
}

// run is the interactive interview command.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	logger.Info("starting the interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	scheduler, err := newScheduler(config, logger)
	if err != nil {
		logger.Fatal("preparing questions", zap.Error(err))
	}

	t := newTerminal(cmd.OutOrStdout(), os.Stdin)
	t.pace = config.Interview.Pace

	orch, err := orchestrator.New(ctx, orchestrator.Options{
		Store:          store,
		Questions:      scheduler,
		Scorer:         scoring.NewEngine(nil),
		Summarizer:     newSummarizer(ctx, config, logger),
		Clock:          timer.RealClock{},
		Tick:           config.Timer.Tick,
		SummaryTimeout: config.Summary.Timeout,
		Callbacks:      t.callbacks(),
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("creating the orchestrator", zap.Error(err))
	}
	defer orch.Close()
	t.orch = orch

	resumeFile, _ := cmd.Flags().GetString("resume")
	fresh, _ := cmd.Flags().GetBool("fresh")

	if err := t.run(ctx, resumeFile, fresh, logger); err != nil {
		if errors.Is(err, errExit) || errors.Is(err, context.Canceled) {
			logger.Info("exiting", zap.String("reason", "interview paused, run again to resume"))
			return
		}
		logger.Fatal("exiting", zap.Error(err))
	}
}

// run drives the orchestrator phase by phase until the user quits.
func (t *terminal) run(ctx context.Context, resumeFile string, fresh bool, logger *zap.Logger) error {
	phase := orchestrator.PhaseNoSession
	if !fresh {
		resumed, err := t.orch.Resume()
		switch {
		case errors.Is(err, orchestrator.ErrSessionNotFound):
		case err != nil:
			return err
		default:
			logger.Info("resuming the saved interview", zap.String("phase", string(resumed)))
			phase = resumed
		}
	}

	for {
		var err error
		switch phase {
		case orchestrator.PhaseNoSession:
			err = t.begin(resumeFile)
		case orchestrator.PhaseCollecting:
			err = t.collectProfile()
		case orchestrator.PhaseAwaitingStart:
			err = t.startGate(ctx)
		case orchestrator.PhaseInterview:
			_, err = t.interview(ctx)
		case orchestrator.PhaseCompleted:
			err = t.results(ctx)
		default:
			err = fmt.Errorf("unknown phase: %s", phase)
		}
		if err != nil {
			return promptError(err)
		}
		phase = t.orch.Phase()
	}
}

func (t *terminal) begin(resumeFile string) error {
	profile := interview.CandidateProfile{}
	if resumeFile != "" {
		parsed, err := resume.ParseFile(resumeFile)
		if err != nil {
			return fmt.Errorf("reading resume: %w", err)
		}
		profile = parsed
		fmt.Fprintf(t.out, "Read %s:\n%s\n", filepath.Base(resumeFile), resume.Preview(parsed.ResumeText, 3))
	}

	_, err := t.orch.Begin(profile)
	return err
}

func (t *terminal) collectProfile() error {
	snapshot, err := t.orch.Snapshot()
	if err != nil {
		return err
	}

	field := snapshot.Profile.MissingField()
	label := field.Prompt()
	for field != interview.FieldNone {
		input, err := (&promptui.Prompt{Label: label}).Run()
		if err != nil {
			return err
		}

		res, err := t.orch.SubmitProfileField(input)
		if err != nil {
			return err
		}
		field, label = res.Next, res.Message
	}
	return nil
}

func (t *terminal) startGate(ctx context.Context) error {
	snapshot, err := t.orch.Snapshot()
	if err != nil {
		return err
	}

	gate := promptui.Select{
		Label: fmt.Sprintf("Ready, %s? A warm-up question comes first, then the timed questions", snapshot.Profile.FirstName()),
		Items: []string{PromptStart, PromptRestart, PromptQuit},
	}
	_, action, err := gate.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptStart:
		fmt.Fprintln(t.out, "Get ready...")
		if err := utils.WaitFor(ctx, t.pace); err != nil {
			return err
		}
		return t.orch.ConfirmStart()
	case PromptRestart:
		return t.orch.Restart()
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (t *terminal) results(ctx context.Context) error {
	if err := t.settle(ctx); err != nil {
		return err
	}

	session, err := t.orch.Snapshot()
	if err != nil {
		return err
	}
	t.printResult(session)

	menu := promptui.Select{
		Label: "What next?",
		Items: []string{PromptShowReport, PromptSaveReport, PromptNewInterview, PromptQuit},
	}
	for {
		_, action, err := menu.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptShowReport:
			text, err := report.Render(session, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(t.out, text)
		case PromptSaveReport:
			if err := t.saveReport(session); err != nil {
				return err
			}
		case PromptNewInterview:
			return t.orch.Restart()
		case PromptQuit:
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func (t *terminal) saveReport(session interview.Session) error {
	file, err := (&promptui.Prompt{Label: "Report file", Default: reportFileName(session)}).Run()
	if err != nil {
		return err
	}

	path, err := writeReport(session, strings.TrimSpace(file))
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Report saved to %s\n", path)
	return nil
}

func writeReport(session interview.Session, path string) (string, error) {
	if path == "" {
		path = reportFileName(session)
	}

	text, err := report.Render(session, time.Now())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func reportFileName(session interview.Session) string {
	name := strings.Join(strings.Fields(strings.ToLower(session.Profile.Name)), "-")
	if name == "" {
		name = "candidate"
	}
	return fmt.Sprintf("report-%s.txt", name)
}

// promptError maps prompt cancellation to errExit.
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return errExit
	}
	return err
}
