package cli

import (
	"github.com/spf13/cobra"

	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
	"github.com/leainsurance/travelrisk/internal/risk"
)

// NewRankCmd creates the rank command.
func NewRankCmd() *cobra.Command {
	var plansPath, tripPath, analysisPath string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Re-rank insurance plans by fit to a trip's risk",
		Long: "Re-rank a JSON array of plans. The plans are scored against --analysis when\n" +
			"given, otherwise against a fresh analysis of --trip (or the default trip).",
		Example: "  riskctl rank --plans plans.json --trip trip.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if plansPath == stdinPath && (tripPath == stdinPath || analysisPath == stdinPath) {
				return apperrors.BadRequest("only one input can be read from stdin")
			}

			var plans []risk.PlanCandidate
			if err := readJSON(cmd, plansPath, &plans); err != nil {
				return err
			}
			if len(plans) == 0 {
				return apperrors.ValidationError("at least one plan is required")
			}

			var analysis risk.RiskAnalysis
			if analysisPath != "" {
				if err := readJSON(cmd, analysisPath, &analysis); err != nil {
					return err
				}
			} else {
				var trip risk.TripInput
				if err := readJSON(cmd, tripPath, &trip); err != nil {
					return err
				}
				analysis = cc.Engine.AnalyzeTrip(trip)
			}

			return writeJSON(cmd, risk.RankResponse{
				Plans:    risk.RankPlans(plans, analysis),
				Analysis: analysis,
			}, cc.Pretty)
		},
	}

	f := cmd.Flags()
	f.StringVar(&plansPath, "plans", "", "plans JSON array file, - for stdin")
	f.StringVar(&tripPath, "trip", "", "trip JSON file, - for stdin")
	f.StringVar(&analysisPath, "analysis", "", "previous analysis JSON file; skips trip analysis")
	_ = cmd.MarkFlagRequired("plans")
	cmd.MarkFlagsMutuallyExclusive("trip", "analysis")
	return cmd
}
