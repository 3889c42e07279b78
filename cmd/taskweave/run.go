package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/continuation"
	"github.com/taskweave/taskweave/internal/generator"
	"github.com/taskweave/taskweave/internal/journal"
	"github.com/taskweave/taskweave/internal/manifest"
	"github.com/taskweave/taskweave/internal/orchestrator"
	"github.com/taskweave/taskweave/internal/planner"
	"github.com/taskweave/taskweave/internal/step"
	"github.com/taskweave/taskweave/internal/tasklist"
)

var (
	runAuto       bool
	runMaxRepairs int
	runWorkDir    string
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Run a request, decomposing it into tasks when needed",
	Long: `Run a request against the current workspace.

Simple requests execute as a single turn. Multi-step requests are broken
into an ordered task list and executed strictly one task at a time, with a
verification pass after each task.

Modes:
  default   Chain turns through the continuation controller: each task turn
            is followed by a verification turn before the next task starts.
  --auto    Drive the task list directly: plan, execute, verify, and repair
            each task in sequence without intermediate turns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRequest,
}

func init() {
	runCmd.Flags().BoolVar(&runAuto, "auto", false, "Execute the task list directly without turn chaining")
	runCmd.Flags().IntVar(&runMaxRepairs, "max-repairs", -1, "Repair attempts per task (-1 uses config)")
	runCmd.Flags().StringVar(&runWorkDir, "workdir", "", "Directory task steps execute in (default: current directory)")
}

// session bundles the wired components for one run.
type session struct {
	cfg        *config.Config
	gen        *generator.Client
	tasks      *tasklist.Service
	planner    *planner.Planner
	orch       *orchestrator.Orchestrator
	journal    *journal.Journal
	watcher    *manifest.Watcher
	maxRepairs int
}

func runRequest(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	p := s.planner
	if !p.ShouldDecompose(ctx, request) {
		return s.runSingle(ctx, request)
	}

	titles, err := p.GenerateTaskList(ctx, request)
	if err != nil || len(titles) == 0 {
		if err != nil {
			infoColor.Println("• could not build a task list, proceeding directly")
		}
		return s.runSingle(ctx, request)
	}

	if _, err := s.tasks.CreateTaskList(request, titles); err != nil {
		return err
	}
	fmt.Printf("Decomposed into %d task(s):\n", len(titles))
	for i, title := range titles {
		fmt.Printf("  %d. %s\n", i+1, title)
	}
	fmt.Println()

	if runAuto {
		err = s.runAutoMode(ctx, request)
	} else {
		err = s.runChained(ctx, request)
	}

	fmt.Println()
	fmt.Println(s.tasks.Summary())
	s.printUsage()
	return err
}

func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	gen, err := generator.NewClient(generator.ClientConfig{
		Model:         cfg.Models.Default,
		FastModel:     cfg.Models.Fast,
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, err
	}

	workDir := runWorkDir
	if workDir == "" {
		workDir = cfg.Run.WorkDir
	}
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	s := &session{
		cfg:        cfg,
		gen:        gen,
		tasks:      tasklist.NewService(),
		maxRepairs: cfg.Run.MaxRepairs,
	}
	if runMaxRepairs >= 0 {
		s.maxRepairs = runMaxRepairs
	}
	s.planner = planner.New(gen, s.tasks)

	if cfg.Journal.Enabled && cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		s.journal = j
		s.tasks.Subscribe(j.Listener())
	}

	// A missing manifest just means verification falls back to proposed
	// checks.
	m, err := manifest.Load(workDir)
	if err != nil && !errors.Is(err, manifest.ErrNoManifest) {
		s.close()
		return nil, err
	}

	exec := step.NewLocalExecutor(workDir)
	s.orch = orchestrator.New(gen, exec, m)

	if m != nil {
		w, err := m.Watch(func(reloaded *manifest.Manifest) {
			s.orch.SetManifest(reloaded)
			infoColor.Printf("• %s reloaded\n", reloaded.Source)
		})
		if err == nil {
			s.watcher = w
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.journal != nil {
		s.journal.Close()
	}
}

func (s *session) onEvent(ev orchestrator.Event) {
	printEvent(ev)
	if s.journal != nil {
		s.journal.RecordRunEvent(ev)
	}
}

// runSingle executes a request that needs no decomposition as one task.
func (s *session) runSingle(ctx context.Context, request string) error {
	if !s.orch.RunTask(ctx, request, request, s.onEvent, s.maxRepairs) {
		s.printUsage()
		return fmt.Errorf("request failed")
	}
	s.printUsage()
	return nil
}

// runAutoMode drives the task list directly: each task is planned, executed,
// verified, and repaired before the next starts. The first failure stops
// the run.
func (s *session) runAutoMode(ctx context.Context, request string) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}
		task, ok := s.tasks.StartCurrentTask()
		if !ok {
			return nil
		}

		infoColor.Printf("\n── task: %s ──\n", task.Title)
		if s.orch.RunTask(ctx, request, task.Title, s.onEvent, s.maxRepairs) {
			s.tasks.CompleteCurrentTask()
			continue
		}

		s.tasks.FailCurrentTask("verification failed")
		return fmt.Errorf("task failed: %s", task.Title)
	}
}

// runChained executes the task list through the continuation controller:
// every task turn is followed by a verification turn, and the controller
// resubmits the next task as a fresh turn.
func (s *session) runChained(ctx context.Context, request string) error {
	prompts := make(chan string, 8)
	submit := func(ctx context.Context, prompt string) error {
		select {
		case prompts <- prompt:
			return nil
		default:
			return fmt.Errorf("turn queue full")
		}
	}
	notify := func(msg string) { infoColor.Printf("• %s\n", msg) }

	ctrl := continuation.NewController(s.planner, s.tasks, submit, notify)

	task, ok := s.tasks.StartCurrentTask()
	if !ok {
		return fmt.Errorf("no task to start")
	}
	if err := submit(ctx, s.planner.BuildContinuationPrompt(task, request)); err != nil {
		return err
	}

	for ctrl.State() != continuation.StateDone {
		var prompt string
		select {
		case prompt = <-prompts:
		default:
			// Chain paused or stopped without finishing the list.
			return nil
		}

		cur := s.tasks.CurrentTask()
		title := prompt
		if cur != nil {
			title = cur.Title
		}
		ok := s.orch.RunTask(ctx, prompt, title, s.onEvent, s.maxRepairs)

		if err := ctx.Err(); err != nil {
			ctrl.HandleTurnFinished(ctx, continuation.FinishCancelled)
			return fmt.Errorf("run cancelled: %w", err)
		}
		if !ok {
			s.tasks.FailCurrentTask("turn failed")
			ctrl.HandleTurnFinished(ctx, continuation.FinishTruncated)
			return fmt.Errorf("task failed: %s", title)
		}
		if err := ctrl.HandleTurnFinished(ctx, continuation.FinishNatural); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) printUsage() {
	tracker := s.gen.Tracker()
	if tracker.Calls() == 0 {
		return
	}
	in, out := tracker.Total()
	fmt.Printf("tokens: %d in / %d out across %d call(s), est. $%.4f\n",
		in, out, tracker.Calls(), tracker.Cost())
}
