package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos/pcompress/internal/driver"
)

var decompressCmd = &cobra.Command{
	Use:     "decompress",
	Aliases: []string{"d"},
	Short:   "Decompress framed input from standard input, writing raw output to standard output",
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := driver.ParseAlgorithm(algorithmFlag.String())
		if err != nil {
			return err
		}
		opts := driver.Options{
			Action:    driver.Decompress,
			Algorithm: alg,
			Ranks:     totalRanks(),
			OnChunk:   metricsStats.AddChunk,
		}
		return withMetrics(func() error {
			return driver.Run(cmd.Context(), opts, os.Stdin, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(decompressCmd)
}
