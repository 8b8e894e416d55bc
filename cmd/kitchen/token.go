package main

import (
	"github.com/spf13/cobra"

	"kitchencalc/internal/auth"
	"kitchencalc/internal/config"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <device>",
		Short: "Issue a bearer token for a device (needs " + config.EnvAPISecret + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.New(a.cfg.APISecret).GenerateToken(args[0])
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
}
