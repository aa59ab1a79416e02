package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrasnagy-data/voicelog/internal/components/calorie"
)

var (
	estimateMinutes   float64
	estimateDistance  float64
	estimateIntensity string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <activity>",
	Short: "Estimate calories burned for an activity",
	Example: `  voicelog estimate walking --minutes 30 --intensity moderate
  voicelog estimate running --distance 3.5`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().Float64Var(&estimateMinutes, "minutes", 0, "Duration in minutes")
	estimateCmd.Flags().Float64Var(&estimateDistance, "distance", 0, "Distance in miles")
	estimateCmd.Flags().StringVar(&estimateIntensity, "intensity", "", "light, moderate or intense")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	in := calorie.Input{ActivityType: args[0]}

	if cmd.Flags().Changed("minutes") {
		in.DurationMinutes = &estimateMinutes
	}
	if cmd.Flags().Changed("distance") {
		in.Distance = &estimateDistance
	}
	if estimateIntensity != "" {
		level := calorie.Intensity(estimateIntensity)
		if !level.Valid() {
			return fmt.Errorf("unknown intensity %q", estimateIntensity)
		}
		in.Intensity = &level
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", calorie.Estimate(in))
	return nil
}
