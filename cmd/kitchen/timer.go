package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"kitchencalc/internal/notifier"
	"kitchencalc/internal/timer"
)

func newTimerCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "timer <duration>",
		Short: "Count down (90s, 4:30, 1h10m or minutes) and ring when done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := timer.ParseDuration(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				name = a.cfg.TimerName
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runCountdown(ctx, cmd.OutOrStdout(), name, d, a.cfg.TickInterval, a.cfg.NotifyWindow)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "label shown when the timer finishes")
	return cmd
}

func runCountdown(ctx context.Context, out io.Writer, name string, d, tick, window time.Duration) error {
	runner := timer.NewRunner(timer.New(name, nil), tick)
	defer runner.Close()

	chime := notifier.NewChime(notifier.NewBellPlayer(out))
	defer chime.Unload()
	// загружаем звук заранее, чтобы звонок не опоздал
	_ = chime.Prepare(ctx)

	n := notifier.New(chime, notifier.WithWindow(window))
	defer n.Dismiss()

	events := runner.Subscribe()
	runner.Start(d)

	live := isTerminal(out)
	redraw := time.NewTicker(time.Second)
	defer redraw.Stop()

	for {
		if live {
			fmt.Fprintf(out, "\r%s %s ", label(name), timer.FormatRemaining(runner.Timer().Remaining()))
		}
		select {
		case <-ctx.Done():
			runner.Reset()
			if live {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, "cancelled")
			return nil
		case c, ok := <-events:
			if !ok {
				return nil
			}
			n.Notify(ctx, c)
			if live {
				fmt.Fprint(out, "\r")
			}
			fmt.Fprintf(out, "⏰ %s is done\n", n.Overlay().Label)
			return nil
		case <-redraw.C:
		}
	}
}

func label(name string) string {
	if strings.TrimSpace(name) == "" {
		return notifier.FallbackLabel
	}
	return name
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(f.Fd())
}
