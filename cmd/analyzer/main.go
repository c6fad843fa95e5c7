package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvmarrod/peer-metrics/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		verbose    bool
		only       string
		database   string
		crawlID    int64
	)

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Topology and diversity metrics for P2P crawl databases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the per-network analyses over every configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyses(cmd.Context(), configPath, only)
		},
	}
	runCmd.Flags().StringVar(&only, "only", "", "Comma separated analyses to run (default all)")

	degreeCmd := &cobra.Command{
		Use:   "degree-distribution",
		Short: "Write the binned combined-degree distribution per network",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetail(cmd.Context(), configPath, database, crawlID, degreeDistribution)
		},
	}

	unreachableCmd := &cobra.Command{
		Use:   "unreachable",
		Short: "Write the reverse-degree histogram of unreachable neighbors for one crawl",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetail(cmd.Context(), configPath, database, crawlID, unreachable)
		},
	}

	ratioCmd := &cobra.Command{
		Use:   "neighbor-ratio",
		Short: "Write the direct-neighbor ratio per combined degree for one crawl",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetail(cmd.Context(), configPath, database, crawlID, neighborRatio)
		},
	}

	for _, c := range []*cobra.Command{degreeCmd, unreachableCmd, ratioCmd} {
		c.Flags().StringVar(&database, "database", "", "Database to analyze (default all configured)")
	}
	for _, c := range []*cobra.Command{unreachableCmd, ratioCmd} {
		c.Flags().Int64Var(&crawlID, "crawl", 0, "Crawl id (default first crawl)")
	}

	radarCmd := &cobra.Command{
		Use:   "radar",
		Short: "Merge the results files of a run into a metric by network matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRadar(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("peer-metrics", version.Version)
		},
	}

	rootCmd.AddCommand(runCmd, degreeCmd, unreachableCmd, ratioCmd, radarCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
