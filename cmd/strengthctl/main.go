package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strengthctl",
		Short: "Evaluate password strength and manage service access",
		Long: `strengthctl runs the password strength evaluator locally and mints
operator tokens for the analytics endpoints of the strength service.

Available subcommands:
  evaluate - Score a candidate password
  scale    - Print the score to label/color table
  token    - Issue an operator JWT`,
		SilenceUsage: true,
	}

	root.AddCommand(newEvaluateCmd(), newScaleCmd(), newTokenCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
