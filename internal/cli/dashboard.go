package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/ui"
)

var (
	dashboardText string
	dashboardFile string
)

func newDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui", "tui"},
		Short:   "Open the interactive due-diligence console",
		Long: `Open the terminal console: type or paste a pitch, attach a deck and
watch the agent terminal while the dossier fills in.

Keys:
  ctrl+r  analyze        ctrl+o  attach a file
  ctrl+x  clear file     tab     switch focus
  esc     quit`,
		Args: cobra.NoArgs,
		RunE: runDashboard,
	}

	cmd.Flags().StringVarP(&dashboardText, "text", "t", "", "prefill the description")
	cmd.Flags().StringVarP(&dashboardFile, "file", "f", "", "attach a file on start")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	// The alt screen owns the terminal; logs go to a file when verbose.
	logOut := io.Discard
	if isVerbose() {
		path := filepath.Join(os.TempDir(), "nexus-dashboard.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open dashboard log: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Logging to %s\n", path)
	}
	log := logger.NewWithWriter("dashboard", verboseFlag{}, logOut)

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	if dashboardText != "" {
		a.ctrl.SetText(dashboardText)
	}
	if dashboardFile != "" {
		if err := validateFilePath(dashboardFile); err != nil {
			return err
		}
		file, err := analyzer.LoadFileInput(dashboardFile)
		if err != nil {
			return err
		}
		a.ctrl.AttachFile(*file)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ui.RunDashboard(ctx, a.ctrl, ui.Options{ModelName: cfg.AI.Model})
}
