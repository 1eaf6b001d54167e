package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leainsurance/travelrisk/internal/risk"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var tripPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a trip",
		Example: `  riskctl analyze --trip trip.json
  echo '{"destination":"JP","activities":["skiing"]}' | riskctl analyze --trip -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			var trip risk.TripInput
			if err := readJSON(cmd, tripPath, &trip); err != nil {
				return err
			}

			analysis := cc.Engine.AnalyzeTrip(trip)
			cc.Logger.Debug("Trip analyzed",
				zap.Float64("risk_score", analysis.RiskScore),
				zap.String("risk_level", analysis.RiskLevel.String()))
			return writeJSON(cmd, analysis, cc.Pretty)
		},
	}

	cmd.Flags().StringVar(&tripPath, "trip", "", "trip JSON file, - for stdin (default: default trip)")
	return cmd
}
