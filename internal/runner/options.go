package runner

import (
	"fmt"
	"os"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"

	"tcprank/pkg/version"
)

var au *aurora.Aurora

var DefaultTargetFile = envutil.GetEnvOrDefault("TCPRANK_TARGET_FILE", "ip.txt")

// Options contains the configuration options for a scan run.
type Options struct {
	Targets []string

	Number    int
	Time      int
	Port      int
	TimeoutMS int

	HTTPing     bool
	HTTPingHost string

	Display     int
	Output      string
	RandomCount int
	AvgUpperMS  int
	AvgLowerMS  int

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`tcprank measures TCP connect latency across address ranges (CIDR blocks, IPs, hostnames or target files) and reports the fastest endpoints`)

	flagSet.CreateGroup("input", "Input",
		flagSet.IntVarP(&options.RandomCount, "random-number", "rn", 0, "probe a random subset of N addresses (0 = all)"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Number, "number", "n", 200, "maximum concurrent probes"),
		flagSet.IntVar(&options.Time, "time", 4, "connect attempts per address"),
		flagSet.IntVarP(&options.Port, "port", "p", 443, "TCP port probed for every address"),
		flagSet.IntVar(&options.TimeoutMS, "timeout", 9999, "per-attempt timeout in milliseconds"),
		flagSet.BoolVar(&options.HTTPing, "httping", false, "time a GET / exchange instead of a bare connect"),
		flagSet.StringVarP(&options.HTTPingHost, "httping-host", "hh", "", "Host header to send in httping mode"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.IntVarP(&options.Display, "display", "d", 10, "ranked entries to display, 0 suppresses console ranking"),
		flagSet.StringVarP(&options.Output, "output", "o", "result.csv", "file to write results to"),
		flagSet.IntVar(&options.AvgUpperMS, "au", 9999, "ranked entries: average delay upper bound in ms"),
		flagSet.IntVar(&options.AvgLowerMS, "al", 0, "ranked entries: average delay lower bound in ms"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	au = aurora.New(aurora.WithColors(!options.NoColor))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	// remaining positional arguments are the targets
	options.Targets = flagSet.CommandLine.Args()
	if len(options.Targets) == 0 {
		options.Targets = []string{DefaultTargetFile}
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if options.Port < 1 || options.Port > 65535 {
		return fmt.Errorf("invalid port %d", options.Port)
	}
	if options.Number < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if options.Time < 1 {
		return fmt.Errorf("attempts per address must be at least 1")
	}
	if options.TimeoutMS < 1 {
		return fmt.Errorf("timeout must be at least 1ms")
	}
	if options.Display < 0 {
		return fmt.Errorf("display count cannot be negative")
	}
	return nil
}

// Timeout returns the per-attempt timeout.
func (options *Options) Timeout() time.Duration {
	return time.Duration(options.TimeoutMS) * time.Millisecond
}
