package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos/pcompress/capnslog"
	"github.com/coreos/pcompress/flagutil"
	"github.com/coreos/pcompress/internal/config"
	"github.com/coreos/pcompress/internal/metrics"
	"github.com/coreos/pcompress/stop"
)

var log = capnslog.NewPackageLogger("github.com/coreos/pcompress", "main")

var (
	algorithmFlag = flagutil.NewAlgorithmValue("huffman")
	configPath    string
	workers       int
	metricsAddr   string
	verbose       bool
	metricsStats  = &metrics.Stats{}
)

var rootCmd = &cobra.Command{
	Use:   "pcompress",
	Short: "A parallel byte-stream compressor/decompressor",
	Long: "pcompress splits standard input into chunks, compresses or\n" +
		"decompresses each chunk across a set of simulated worker ranks using\n" +
		"a selectable algorithm, and writes the result to standard output.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))
		if verbose {
			capnslog.MustRepoLogger("github.com/coreos/pcompress").SetGlobalLogLevel(capnslog.DEBUG)
		}
		if err := config.Apply(cmd.Flags(), configPath); err != nil {
			return err
		}
		log.Debugf("algorithm=%s workers=%d", algorithmFlag, workers)
		return nil
	},
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	flags := rootCmd.PersistentFlags()
	flags.VarP(algorithmFlag, "algorithm", "a", "compression algorithm: delta or huffman")
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.IntVarP(&workers, "workers", "w", 4, "number of simulated worker ranks (total ranks = workers + 1)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve chunk/byte counters at this address (e.g. 127.0.0.1:8080)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// withMetrics starts the optional metrics server for the duration of fn, if
// metricsAddr was set, folding its shutdown into a stop.Group so it always
// drains before the command returns.
func withMetrics(fn func() error) error {
	if metricsAddr == "" {
		return fn()
	}
	srv := metrics.NewServer(metricsAddr, metricsStats)
	if err := srv.Start(); err != nil {
		return err
	}
	group := stop.NewGroup()
	group.Add(srv)
	defer func() { <-group.Stop() }()
	return fn()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "pcompress:", err)
	os.Exit(1)
}

// Rank count for the dispatch protocol: the user's worker count plus the
// dispatcher itself.
func totalRanks() int {
	return workers + 1
}
