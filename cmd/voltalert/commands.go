package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/charging"
	"github.com/jask/voltalert/internal/config"
	"github.com/jask/voltalert/internal/console"
	"github.com/jask/voltalert/internal/database"
	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/events"
	"github.com/jask/voltalert/internal/service"
	"github.com/jask/voltalert/internal/tui"
)

func newRunCmd() *cobra.Command {
	var sessions int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the charging simulator in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("sessions") {
				sessions = cfg.Simulator.Sessions
			}

			logFile, err := tea.LogToFile(cfg.Log.File, "voltalert")
			if err != nil {
				return fmt.Errorf("log file: %w", err)
			}
			defer logFile.Close()

			rt, err := openRuntime(cfg, logFile)
			if err != nil {
				return err
			}
			defer rt.Close()

			presenter := tui.NewProgramPresenter(nil)
			m := rt.newManager(presenter)
			presenter.SetQueue(m)

			ctx, cancel := context.WithCancel(alert.NewContext(cmd.Context(), m))
			defer cancel()

			prog := tea.NewProgram(tui.New(ctx, m, rt.dict, cfg.UI.Accent), tea.WithAltScreen())
			presenter.Attach(prog)
			rt.bus.SubscribeAll(func(e events.Event) { presenter.Send(tui.QueueMsg{Pending: e.Pending}) })

			sim := rt.newSimulator()
			sim.OnUpdate = func(s charging.Session) { presenter.Send(tui.SessionMsg{Session: s}) }
			simDone := make(chan struct{})
			go func() {
				defer close(simDone)
				err := sim.Run(ctx, sessions)
				if err != nil && !errors.Is(err, context.Canceled) {
					rt.log.Errorf("simulator: %v", err)
				}
				presenter.Send(tui.SimDoneMsg{Err: err})
			}()

			_, err = prog.Run()
			cancel()
			<-simDone
			if err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&sessions, "sessions", 4, "number of concurrent charging sessions")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var (
		sessions int
		retry    bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the charging simulator headless, answering alerts automatically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("sessions") {
				sessions = cfg.Simulator.Sessions
			}
			rt, err := openRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			presenter := console.New(out, cfg.UI.Accent)
			presenter.Log = rt.log
			if retry {
				presenter.Choose = firstNonCancel
			}
			m := rt.newManager(presenter)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(alert.NewContext(ctx, m))
			defer cancel()

			answered := make(chan error, 1)
			go func() { answered <- presenter.Run(ctx, m) }()

			if err := rt.newSimulator().Run(ctx, sessions); err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			if err := console.WaitIdle(ctx, m, 0); err != nil {
				return err
			}
			cancel()
			<-answered
			fmt.Fprintf(out, "%d sessions finished\n", sessions)
			return nil
		},
	}
	cmd.Flags().IntVar(&sessions, "sessions", 4, "number of concurrent charging sessions")
	cmd.Flags().BoolVar(&retry, "retry", false, "press the first non-cancel button instead of the first button")
	return cmd
}

func firstNonCancel(d alert.Dialog) int {
	for i, b := range d.Buttons {
		if b.Style != alert.StyleCancel {
			return i
		}
	}
	return 0
}

func newHistoryCmd() *cobra.Command {
	var (
		kind  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded alert lifecycle events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			rt, err := openRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.journal.History(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no journal entries")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("TIME", "KIND", "TITLE", "MESSAGE", "BUTTON", "PENDING")
			for _, e := range entries {
				button := ""
				if e.Button >= 0 {
					button = strconv.Itoa(e.Button)
				}
				t.Row(e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.Title, e.Message, button, strconv.Itoa(e.Pending))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())

			counts, err := rt.journal.Summary(cmd.Context())
			if err != nil {
				return err
			}
			parts := make([]string, 0, len(events.Types))
			for _, k := range events.Types {
				parts = append(parts, fmt.Sprintf("%s=%d", k, counts[string(k)]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "totals: "+strings.Join(parts, " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show one event kind (alert_enqueued, alert_suppressed, alert_shown, alert_dismissed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newPruneCmd() *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than the retention period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("retention") {
				retention = cfg.Journal.Retention
			}
			rt, err := openRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			r := &service.Retention{DB: rt.db, Log: rt.log.With("retention")}
			res, err := r.Prune(cmd.Context(), retention, database.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries and %d sessions\n", res.Journal, res.Sessions)
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 30*24*time.Hour, "keep entries newer than this")
	return cmd
}

func newSessionsCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded charging sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			rt, err := openRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			var list []repository.ChargingSession
			if id != "" {
				s, err := rt.sessions.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get session: %w", err)
				}
				if s == nil {
					return fmt.Errorf("session %s not found", id)
				}
				list = append(list, *s)
			} else if list, err = rt.sessions.List(cmd.Context()); err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "SITE", "CONNECTOR", "STATE", "FAILURE", "KWH", "UPDATED")
			for _, s := range list {
				t.Row(s.ID, s.Site, strconv.Itoa(s.Connector), s.State, s.Failure,
					strconv.FormatFloat(float64(s.EnergyWh)/1000, 'f', 1, 64),
					s.UpdatedAt.Local().Format(time.DateTime))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "show a single session")
	return cmd
}
