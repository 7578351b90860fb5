package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskclient/internal/app"
	"github.com/nhle/taskclient/internal/credential"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/session"
	"github.com/nhle/taskclient/internal/store"
	"github.com/nhle/taskclient/internal/theme"
)

var Version = "dev"

var (
	configPath string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskclient",
		Short:         "Terminal client for the task management API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to the config directory")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(devserverCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if debug {
		if err := os.MkdirAll(model.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		f, err := tea.LogToFile(filepath.Join(model.ConfigDir(), "debug.log"), "taskclient")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	theme.Apply(cfg.Display.Theme)

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}

	activity, err := store.NewSQLiteStore(cfg.ActivityDB)
	if err != nil {
		return err
	}
	defer activity.Close()

	m := app.New(app.Deps{
		Session:  sess,
		Activity: activity,
		Config:   *cfg,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// openSession builds a logged-out session over the configured keyring.
func openSession(cfg *model.AppConfig) (*session.Session, error) {
	creds, err := credential.Open(cfg.Credentials)
	if err != nil {
		return nil, err
	}
	return session.New(creds, cfg.APIURL, cfg.RequestTimeout()), nil
}

// loadSession loads the config and opens the session in one step.
func loadSession() (*model.AppConfig, *session.Session, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	sess, err := openSession(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sess, nil
}
