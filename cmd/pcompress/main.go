// Command pcompress splits standard input into chunks, compresses or
// decompresses each chunk across a set of simulated worker ranks, and
// writes the result to standard output.
package main

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
