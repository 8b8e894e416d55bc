package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := a.ledger.Entries()
			if len(entries) == 0 {
				cmd.Println("no history")
				return nil
			}
			for _, e := range entries {
				at := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
				cmd.Printf("%s  %s  %s = %s\n", shortID(e.ID), at, e.Expression, e.Result)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove one entry (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveEntryID(a, args[0])
			if err != nil {
				return err
			}
			a.ledger.Remove(id)
			cmd.Println("removed")
			return nil
		},
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			a.ledger.ClearAll()
			cmd.Println("history cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing all history")
	cmd.AddCommand(clearCmd)

	return cmd
}

func resolveEntryID(a *app, prefix string) (string, error) {
	var found string
	for _, e := range a.ledger.Entries() {
		if e.ID == prefix {
			return e.ID, nil
		}
		if len(prefix) >= 4 && len(e.ID) >= len(prefix) && e.ID[:len(prefix)] == prefix {
			if found != "" {
				return "", errors.New("ambiguous id prefix")
			}
			found = e.ID
		}
	}
	if found == "" {
		return "", errors.New("no such entry")
	}
	return found, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
