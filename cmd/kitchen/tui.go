package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kitchencalc/internal/notifier"
	"kitchencalc/internal/timer"
	"kitchencalc/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive calculator with timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chime := notifier.NewChime(notifier.NewBellPlayer(os.Stdout))
			defer chime.Unload()
			go func() { _ = chime.Prepare(context.Background()) }()

			n := notifier.New(chime, notifier.WithWindow(a.cfg.NotifyWindow))
			defer n.Dismiss()

			m := tui.NewModel(a.session, timer.New(a.cfg.TimerName, nil), n, a.cfg.TickInterval)
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
