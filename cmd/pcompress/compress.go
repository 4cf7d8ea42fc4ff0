package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos/pcompress/flagutil"
	"github.com/coreos/pcompress/internal/driver"
)

var chunkSizeFlag = flagutil.NewChunkSizeValue(0)

var compressCmd = &cobra.Command{
	Use:     "compress",
	Aliases: []string{"c"},
	Short:   "Compress standard input, writing framed output to standard output",
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := driver.ParseAlgorithm(algorithmFlag.String())
		if err != nil {
			return err
		}
		opts := driver.Options{
			Action:    driver.Compress,
			Algorithm: alg,
			ChunkSize: chunkSizeFlag.Int(),
			Ranks:     totalRanks(),
			OnChunk:   metricsStats.AddChunk,
		}
		return withMetrics(func() error {
			return driver.Run(cmd.Context(), opts, os.Stdin, os.Stdout)
		})
	},
}

func init() {
	compressCmd.Flags().VarP(chunkSizeFlag, "size", "s", "split input into N-byte chunks (0 means the whole input is one chunk)")
	rootCmd.AddCommand(compressCmd)
}
