package main

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"framemill/internal/config"
	"framemill/internal/develop"
	"framemill/internal/logging"
)

type rootFlags struct {
	project             string
	configPath          string
	database            string
	logFile             string
	verbose             bool
	quiet               bool
	silent              bool
	jsonLogs            bool
	workers             int
	maxProcessingErrors int
	sample              string

	dateFormat          string
	includeDates        []string
	excludeDates        []string
	includeGroups       []string
	excludeGroups       []string
	groupOrdering       string
	whiteBalance        []float64
	chromaticAberration []float64
	medianFilter        int
	darkFrame           string
	excludePhotos       []string
}

func (f *rootFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()

	pf.StringVarP(&f.project, "project", "p", ".", "Project directory")
	pf.StringVarP(&f.configPath, "config", "c", "", "Root configuration file path")
	pf.StringVar(&f.database, "database", "", "Progress database path")
	pf.StringVar(&f.logFile, "log", "", "Log file path")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Log at debug level")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "Log warnings and errors only")
	pf.BoolVarP(&f.silent, "silent", "s", false, "Suppress console logging")
	pf.BoolVar(&f.jsonLogs, "json-logs", false, "Emit JSON console logs")
	pf.IntVarP(&f.workers, "workers", "w", 0, "Concurrent workers")
	pf.IntVar(&f.maxProcessingErrors, "max-processing-errors", 0, "Photo failures tolerated before halting")
	pf.StringVar(&f.sample, "sample", "", "Process only N photos (~N for a randomized sample, -1 to disable)")

	pf.StringVar(&f.dateFormat, "date-format", "", "Date directory format, e.g. yyyy-mm-dd")
	pf.StringSliceVar(&f.includeDates, "include-dates", nil, "Dates to scan even when excluded")
	pf.StringSliceVar(&f.excludeDates, "exclude-dates", nil, "Dates to skip")
	pf.StringSliceVar(&f.includeGroups, "include-groups", nil, "Groups (date/group) to scan even when excluded")
	pf.StringSliceVar(&f.excludeGroups, "exclude-groups", nil, "Groups (date/group) to skip")
	pf.StringVar(&f.groupOrdering, "group-ordering", "", "Group ordering policy: abc, num, or natural")
	pf.Float64SliceVar(&f.whiteBalance, "white-balance", nil, "White balance multipliers: red,green1,blue,green2")
	pf.Float64SliceVar(&f.chromaticAberration, "chromatic-aberration", nil, "Chromatic aberration multipliers: red,blue")
	pf.IntVar(&f.medianFilter, "median-filter", 0, "Median filter passes")
	pf.StringVar(&f.darkFrame, "dark-frame", "", "Dark frame file subtracted during development")
	pf.StringSliceVar(&f.excludePhotos, "exclude-photos", nil, "Photo file names to skip")
}

type commandContext struct {
	flags *rootFlags

	rootOnce sync.Once
	root     *config.Root
	rootErr  error

	logOnce sync.Once
	logger  *slog.Logger
	logErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureRoot(cmd *cobra.Command) (*config.Root, error) {
	c.rootOnce.Do(func() {
		overrides, err := c.buildOverrides(cmd)
		if err != nil {
			c.rootErr = err
			return
		}
		c.root, c.rootErr = config.LoadRoot(c.flags.project, overrides)
	})
	return c.root, c.rootErr
}

func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	root, err := c.ensureRoot(cmd)
	if err != nil {
		return nil, err
	}
	c.logOnce.Do(func() {
		opts := logging.Options{LogFile: root.LogFile}
		switch {
		case root.Verbose:
			opts.Verbosity = logging.VerbosityVerbose
		case root.Quiet:
			opts.Verbosity = logging.VerbosityQuiet
		case root.Silent:
			opts.Verbosity = logging.VerbositySilent
		}
		if c.flags.jsonLogs {
			opts.Format = logging.FormatJSON
		}
		c.logger, c.logErr = logging.New(opts)
	})
	return c.logger, c.logErr
}

func (c *commandContext) processor(converter string) develop.Processor {
	if converter != "" {
		return develop.NewCLI(develop.WithBinary(converter))
	}
	return develop.NewCLI()
}

func (c *commandContext) buildOverrides(cmd *cobra.Command) (config.RootOverrides, error) {
	f := c.flags
	changed := cmd.Flags().Changed

	overrides := config.RootOverrides{Config: f.configPath}
	if changed("database") {
		overrides.Database = &f.database
	}
	if changed("log") {
		overrides.LogFile = &f.logFile
	}
	if changed("verbose") {
		overrides.Verbose = &f.verbose
	}
	if changed("quiet") {
		overrides.Quiet = &f.quiet
	}
	if changed("silent") {
		overrides.Silent = &f.silent
	}
	if changed("workers") {
		overrides.Workers = &f.workers
	}
	if changed("max-processing-errors") {
		overrides.MaxProcessingErrors = &f.maxProcessingErrors
	}
	if changed("sample") {
		overrides.Sample = &f.sample
	}

	scan, err := c.buildScanLayer(cmd)
	if err != nil {
		return config.RootOverrides{}, err
	}
	overrides.Scan = scan
	return overrides, nil
}

func (c *commandContext) buildScanLayer(cmd *cobra.Command) (*config.Layer, error) {
	f := c.flags
	changed := cmd.Flags().Changed

	layer := &config.Layer{Source: "command line", Level: config.LevelOverride}
	set := false

	if changed("date-format") {
		layer.DateFormat = &f.dateFormat
		set = true
	}
	if changed("include-dates") {
		layer.IncludeDates = f.includeDates
		set = true
	}
	if changed("exclude-dates") {
		layer.ExcludeDates = f.excludeDates
		set = true
	}
	if changed("include-groups") {
		layer.IncludeGroups = f.includeGroups
		set = true
	}
	if changed("exclude-groups") {
		layer.ExcludeGroups = f.excludeGroups
		set = true
	}
	if changed("group-ordering") {
		ordering, ok := config.ParseOrdering(f.groupOrdering)
		if !ok {
			return nil, fmt.Errorf("unknown group ordering %q; expected abc, num, or natural", f.groupOrdering)
		}
		layer.GroupOrdering = &ordering
		set = true
	}
	if changed("white-balance") {
		if len(f.whiteBalance) != 4 {
			return nil, fmt.Errorf("white balance needs 4 multipliers (red,green1,blue,green2), got %d", len(f.whiteBalance))
		}
		layer.WhiteBalance = &config.WhiteBalanceLayer{
			Red:    &f.whiteBalance[0],
			Green1: &f.whiteBalance[1],
			Blue:   &f.whiteBalance[2],
			Green2: &f.whiteBalance[3],
		}
		set = true
	}
	if changed("chromatic-aberration") {
		if len(f.chromaticAberration) != 2 {
			return nil, fmt.Errorf("chromatic aberration needs 2 multipliers (red,blue), got %d", len(f.chromaticAberration))
		}
		layer.ChromaticAberration = &config.ChromaticAberrationLayer{
			Red:  &f.chromaticAberration[0],
			Blue: &f.chromaticAberration[1],
		}
		set = true
	}
	if changed("median-filter") {
		layer.MedianFilter = &f.medianFilter
		set = true
	}
	if changed("dark-frame") {
		layer.DarkFrame = &f.darkFrame
		set = true
	}
	if changed("exclude-photos") {
		layer.ExcludePhotos = f.excludePhotos
		set = true
	}

	if !set {
		return nil, nil
	}
	return layer, nil
}
