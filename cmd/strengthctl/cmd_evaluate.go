package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enterprise/strength-service/internal/entropy"
	"github.com/enterprise/strength-service/internal/strength"
)

var errNoCandidate = errors.New("no password given on the command line or stdin")

func newEvaluateCmd() *cobra.Command {
	var asJSON bool
	var withEstimate bool

	cmd := &cobra.Command{
		Use:   "evaluate [password]",
		Short: "Score a candidate password",
		Long: `Score a candidate password from 0 to 4 and list what it is missing.

When the password argument is omitted the first line of stdin is used, which
keeps the candidate out of shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, err := readCandidate(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			assessment := strength.Assess(candidate)
			var estimate *entropy.Estimate
			if withEstimate {
				est := entropy.NewEstimator().Estimate(candidate)
				estimate = &est
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, assessment, estimate)
			}
			writeText(out, assessment, estimate)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assessment as JSON")
	cmd.Flags().BoolVar(&withEstimate, "estimate", false, "include the zxcvbn guess estimate")
	return cmd
}

func readCandidate(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", errNoCandidate
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeJSON(out io.Writer, a strength.Assessment, est *entropy.Estimate) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		strength.Assessment
		Estimate *entropy.Estimate `json:"estimate,omitempty"`
	}{a, est})
}

func writeText(out io.Writer, a strength.Assessment, est *entropy.Estimate) {
	bar := strings.Repeat("#", a.Segments) + strings.Repeat("-", a.MaxScore-a.Segments)
	fmt.Fprintf(out, "Score: %d/%d [%s] %s\n", a.Score, a.MaxScore, bar, a.Label)
	fmt.Fprintf(out, "Valid: %t\n", a.IsValid)

	fmt.Fprintln(out, "Requirements:")
	for _, item := range a.Checklist {
		mark := " "
		if item.Met {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %s\n", mark, item.Label)
	}

	if len(a.Feedback) > 0 {
		fmt.Fprintln(out, "Feedback:")
		for _, msg := range a.Feedback {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}

	if est != nil {
		fmt.Fprintf(out, "Estimate: zxcvbn score %d, %.1f bits, cracked in %s\n", est.Score, est.Entropy, est.CrackTime)
	}
}

func newScaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scale",
		Short: "Print the score to label/color table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, level := range strength.Scale() {
				fmt.Fprintf(out, "%d  %-9s  %s\n", level.Score, level.Label, level.Color)
			}
		},
	}
}
