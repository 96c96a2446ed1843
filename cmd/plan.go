package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mouse-blink/sift/internal/domain"
	m "github.com/mouse-blink/sift/internal/model"
)

var planWorkersFlag int
var planMaxFilesFlag int
var planStaleDaysFlag int

// planCmd represents the plan command.
var planCmd = newPlanCmd()

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [paths...]",
		Short: "Scan directories and build a cleanup plan",
		Long:  planLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := parsePaths(args)
			if len(roots) == 0 {
				roots = []m.Path{"."}
			}

			return workflow.Plan(cmd.Context(), domain.PlanArgs{
				Roots:   roots,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Reports: m.Path(viper.GetString(outputFlagName)),
				Config:  engineConfig(),
			})
		},
	}

	configurePlanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func configurePlanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&planWorkersFlag, workersFlagName, "p", viper.GetInt(workersConfigKey), "number of parallel fingerprinting workers")
	bindFlagToConfig(cmd.Flags().Lookup(workersFlagName), workersConfigKey)

	cmd.Flags().IntVar(&planMaxFilesFlag, maxFilesFlagName, viper.GetInt(maxFilesConfigKey), "stop scanning after this many files (0 = unbounded)")
	bindFlagToConfig(cmd.Flags().Lookup(maxFilesFlagName), maxFilesConfigKey)

	cmd.Flags().IntVar(&planStaleDaysFlag, staleFlagName, viper.GetInt(staleDaysConfigKey), "days since modification before a file counts as stale")
	bindFlagToConfig(cmd.Flags().Lookup(staleFlagName), staleDaysConfigKey)
}
