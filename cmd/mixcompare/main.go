// Command mixcompare compares a mix against a reference track and
// prints the spectral, masking, resonance and dynamics differences
// with corrective EQ suggestions.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-mixcompare/compare"
	"github.com/cwbudde/algo-mixcompare/decoder"
)

var (
	jsonOutput   bool
	analysisRate float64
	maxSummary   int
	version      = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "mixcompare <your-mix> <reference>",
	Short: "Compare a mix against a reference track",
	Long: `mixcompare analyzes two audio files (WAV or FLAC) and reports how
your mix differs from the reference: frequency balance per band,
masking between critical bands, resonant peaks, loudness and
dynamics, plus concrete EQ and compression suggestions.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full comparison as JSON")
	rootCmd.Flags().Float64Var(&analysisRate, "rate", 22050, "analysis sample rate in Hz")
	rootCmd.Flags().IntVar(&maxSummary, "max-suggestions", 10, "cap on summary lines")

	rootCmd.SetVersionTemplate("mixcompare version {{.Version}}\n")
	rootCmd.Version = version
}

func runCompare(cmd *cobra.Command, args []string) error {
	yourMix, err := decoder.DecodeFile(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	reference, err := decoder.DecodeFile(args[1])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[1], err)
	}

	cmp, err := compare.New(
		compare.WithAnalysisRate(analysisRate),
		compare.WithMaxSummary(maxSummary),
	)
	if err != nil {
		return err
	}

	result, err := cmp.Compare(yourMix, reference)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	printResult(cmd, result)

	return nil
}

func printResult(cmd *cobra.Command, result *compare.Result) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Frequency balance (your mix vs reference):")

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  band\trange\tyours\treference\tdiff\tstatus")

	for _, band := range result.Bands {
		fmt.Fprintf(w, "  %s\t%.0f-%.0f Hz\t%.1f dB\t%.1f dB\t%+.1f dB\t%s\n",
			band.Name, band.LowHz, band.HighHz,
			band.YourLevelDB, band.ReferenceLevelDB, band.DifferenceDB, band.Status)
	}

	w.Flush()

	d := result.Dynamics
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Dynamics (your mix minus reference): RMS %+.1f dB, loudness %+.1f LU, crest %+.1f dB, PLR %+.1f dB\n",
		d.RMSDB, d.LUFS, d.CrestFactor, d.PLR)
	fmt.Fprintf(out, "Clarity delta: %+.1f (mix %.1f, reference %.1f)\n",
		result.Masking.ClarityDelta,
		result.YourMix.Masking.ClarityScore, result.Reference.Masking.ClarityScore)

	if len(result.EQAdjustments) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Suggested EQ moves:")

		for _, adj := range result.EQAdjustments {
			fmt.Fprintf(out, "  %s %+.1f dB at %.0f Hz (Q %.1f): %s\n",
				adj.Type, adj.GainDB, adj.FrequencyHz, adj.Q, adj.Reason)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")

	for _, line := range result.Summary {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}
