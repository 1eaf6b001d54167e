package cli

import (
	"github.com/spf13/cobra"

	"github.com/leainsurance/travelrisk/internal/risk"
)

// NewPersonaCmd creates the persona command.
func NewPersonaCmd() *cobra.Command {
	var tripPath string

	cmd := &cobra.Command{
		Use:   "persona <name>",
		Short: "Score a trip with advice for a traveller persona",
		Long: "Score a trip and add advice for one of the personas: adventure, family,\n" +
			"business, luxury, budget. Unknown names use the family profile.",
		Example: "  riskctl persona adventure --trip trip.json",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			var trip risk.TripInput
			if err := readJSON(cmd, tripPath, &trip); err != nil {
				return err
			}

			return writeJSON(cmd, cc.Engine.PersonaInsights(args[0], trip), cc.Pretty)
		},
	}

	cmd.Flags().StringVar(&tripPath, "trip", "", "trip JSON file, - for stdin (default: default trip)")
	return cmd
}

// NewPersonasCmd creates the personas command.
func NewPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List persona profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd, risk.Personas(), cc.Pretty)
		},
	}
}
