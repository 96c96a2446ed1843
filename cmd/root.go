// Package cmd provides the root command and CLI setup for sift.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mouse-blink/sift/internal/adapter"
	"github.com/mouse-blink/sift/internal/controller"
	"github.com/mouse-blink/sift/internal/domain"
	m "github.com/mouse-blink/sift/internal/model"
)

var fsAdapter adapter.ScanFS
var planStore adapter.PlanStore
var ui controller.UI
var workflow domain.Workflow

// reportsOutputDirFlag is a root-level flag shared by commands that
// read/write plan reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters scanned files.
var excludePatterns []string

// verboseFlag switches logging to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	console := controller.NewConsoleUI(rootCmd)
	if controller.IsTTY(os.Stdout) {
		ui = controller.NewTTYUI(console, os.Stdout)
	} else {
		ui = console
	}

	fsAdapter = adapter.NewLocalScanFS()
	planStore = adapter.NewLocalPlanStore()
	workflow = domain.NewWorkflow(fsAdapter, planStore, ui)
}

const rootLongDescription = `Sift recommends keep/archive/delete actions for the files under a
directory tree. It fingerprints files to find exact and near duplicates,
scores them by staleness and location, and searches each duplicate
cluster for the cheapest safe set of actions.

Sift never touches your files: every run only writes a report that a
separate cleanup step can apply.`

const planLongDescription = `Scan the given directories (default: the current directory), build a
cleanup plan and save it under the reports directory.

The plan assigns every scanned file exactly one action and always keeps
at least one copy of each duplicate cluster.`

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sift",
		Short: "File cleanup decision engine",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for plan reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "enable debug logging")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env
// values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
