package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thomascarr/claudeview/internal/config"
	"github.com/thomascarr/claudeview/internal/importer"
	"github.com/thomascarr/claudeview/internal/store"
	"github.com/thomascarr/claudeview/internal/watcher"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "claudeview",
		Short: "Import and inspect assistant conversation history",
		Long:  "claudeview imports conversation logs and plan documents into a local database for querying.",
	}

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(plansCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads config and opens the database, shared by all commands.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDBDir(); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Run one full import pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := importer.New(st, cfg).Run(); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			counts, err := st.Counts()
			if err != nil {
				return err
			}
			fmt.Printf("imported: %d projects, %d sessions, %d messages, %d tool uses, %d plans\n",
				counts["projects"], counts["project_sessions"], counts["messages"],
				counts["tool_uses"], counts["session_plans"])
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	var quiet time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import, then re-import whenever logs change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			imp := importer.New(st, cfg)
			runPass := func() {
				if err := imp.Run(); err != nil {
					fmt.Fprintf(os.Stderr, "import: %v\n", err)
				}
			}
			runPass()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println("watching for changes (ctrl-c to stop)")
			return watcher.Watch(ctx, []string{cfg.ProjectsDir, cfg.PlansDir}, quiet, runPass)
		},
	}

	cmd.Flags().DurationVar(&quiet, "quiet", 2*time.Second, "Quiet window before re-importing")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database row counts and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := st.Counts()
			if err != nil {
				return err
			}
			size, err := st.DBSizeBytes()
			if err != nil {
				return err
			}

			for _, table := range []string{
				"projects", "project_groups", "repositories", "folders",
				"project_sessions", "messages", "tool_uses", "session_plans",
			} {
				fmt.Printf("%-18s %d\n", table, counts[table])
			}
			fmt.Printf("%-18s %.1f MB\n", "db size", float64(size)/(1024*1024))
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	var projectPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.RecentSessions(projectPath, limit)
			if err != nil {
				return err
			}

			for _, s := range sessions {
				name := s.Summary
				if name == "" {
					name = "Session " + shortID(s.SessionID)
				}
				kind := "main"
				if s.IsSidechain {
					kind = "sidechain"
				}
				started := "-"
				if !s.StartedAt.IsZero() {
					started = s.StartedAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("%s  %-9s  %5d msgs  %7d in / %7d out  %s\n",
					started, kind, s.MessagesCount, s.TotalInput, s.TotalOutput, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "Only sessions of this project path")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list")
	return cmd
}

func plansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List imported plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			plans, err := st.ListPlans()
			if err != nil {
				return err
			}

			for _, p := range plans {
				linked := "unlinked"
				if p.SessionRowID.Valid {
					linked = fmt.Sprintf("session #%d", p.SessionRowID.Int64)
				}
				fmt.Printf("%-30s  %-10s  %s\n", p.Slug, linked, p.Title)
			}
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
