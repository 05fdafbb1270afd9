package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chazu/vertexgen/pkg/detector"
	"github.com/chazu/vertexgen/pkg/region"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config{}
	rootCmd := &cobra.Command{
		Use:   "vertexgen",
		Short: "uniform vertex generation in detector volumes",
		Long: "vertexgen draws points uniformly distributed in the volume of named " +
			"detector regions, built either from a built-in part or from a Lisp description.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			initLogger(cfg)
			log.Debugf("Config: %#v", cfg)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Detector, "detector", "", fmt.Sprintf("built-in part %v", detector.Names()))
	flags.StringVarP(&cfg.File, "file", "f", "", "Lisp detector description")
	flags.StringVar(&cfg.LoggingLevel, "log-level", "warn", "logging level")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "generate vertices in a region",
		Long:  "writes one x,y,z line per vertex, in mm, drawn uniformly in the region's volume",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, cfg)
		},
	}
	sampleCmd.Flags().StringVarP(&cfg.Region, "region", "r", "", "region name")
	sampleCmd.Flags().IntVarP(&cfg.Count, "count", "n", 1000, "number of vertices")
	sampleCmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	sampleCmd.Flags().IntVar(&cfg.Workers, "workers", 1, "number of sampling goroutines")
	_ = sampleCmd.MarkFlagRequired("region")

	volumesCmd := &cobra.Command{
		Use:   "volumes",
		Short: "list region entries with their weights and breakpoints",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumes(cmd, cfg)
		},
	}

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "tessellate region entries as JSON",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMesh(cmd, cfg)
		},
	}
	meshCmd.Flags().StringVarP(&cfg.Region, "region", "r", "", "region name, all regions when empty")

	rootCmd.AddCommand(sampleCmd, volumesCmd, meshCmd)
	return rootCmd
}

func initLogger(cfg config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.LoggingLevel)
	if err != nil {
		panic(err)
	}
	log.SetLevel(level)
}

func loadTables(app *App, cfg config) ([]*region.Table, error) {
	if cfg.Detector != "" {
		return app.LoadDetector(cfg.Detector)
	}
	src, err := cfg.source()
	if err != nil {
		return nil, err
	}
	return app.LoadSource(src)
}

func runSample(cmd *cobra.Command, cfg config) error {
	app := NewApp()
	tables, err := loadTables(app, cfg)
	if err != nil {
		return err
	}
	points, err := app.Sample(tables, cfg.Region, cfg.Count, cfg.Seed, cfg.Workers)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, p := range points {
		fmt.Fprintf(w, "%g,%g,%g\n", p.X, p.Y, p.Z)
	}
	return w.Flush()
}

func runVolumes(cmd *cobra.Command, cfg config) error {
	app := NewApp()
	tables, err := loadTables(app, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range app.Volumes(tables) {
		fmt.Fprintf(out, "%-14s %-14s %-12s %s=%-14.6g breakpoint=%.9f\n",
			r.Region, r.Entry, r.Mode, r.Measure, r.Weight, r.Breakpoint)
	}
	return nil
}

func runMesh(cmd *cobra.Command, cfg config) error {
	app := NewApp()
	var (
		result EvalResult
		err    error
	)
	if cfg.Detector != "" {
		var tables []*region.Table
		tables, err = app.LoadDetector(cfg.Detector)
		if err != nil {
			return err
		}
		result, err = app.Render(tables, cfg.Region)
	} else {
		var src string
		src, err = cfg.source()
		if err != nil {
			return err
		}
		result, err = app.EvaluateRegion(src, cfg.Region)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if err := enc.Encode(result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		e := result.Errors[0]
		return fmt.Errorf("%s:%d:%d: %s", cfg.File, e.Line, e.Col, e.Message)
	}
	return nil
}
