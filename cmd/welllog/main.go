package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uyouii/welllog/config"
	"github.com/uyouii/welllog/las"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
)

// app carries the global flags and the configuration loaded once per run.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "welllog",
		Short: "Inspect, summarize, plot and export LAS well logs",
		Long: `welllog loads a LAS 2.0 well log and derives views from it: summary
statistics, percentile thresholds, lithology classification, formation
boundaries, plots and flat-file exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.InitLogger(a.verbose); err != nil {
				return err
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			cmd.SetContext(utils.WithFields(cmd.Context(), zap.String("command", cmd.CommandPath())))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = utils.GetLogger(cmd.Context()).Sync()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(a.infoCmd())
	rootCmd.AddCommand(a.describeCmd())
	rootCmd.AddCommand(a.thresholdCmd())
	rootCmd.AddCommand(a.classifyCmd())
	rootCmd.AddCommand(a.boundariesCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.plotCmd())
	return rootCmd
}

// load reads the dataset once; commands pass it on by reference.
func (a *app) load(ctx context.Context, path string) (*model.LogDataset, *model.DerivedTable, error) {
	ds, err := las.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	table, err := model.ToDerivedTable(ds)
	if err != nil {
		return nil, nil, err
	}
	return ds, table, nil
}

func main() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		utils.GetLogger(ctx).Debug("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
