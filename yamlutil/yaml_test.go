package yamlutil

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestSetFlagsFromYamlFillsUnsetFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	algorithm := fs.String("algorithm", "delta", "")
	size := fs.Int("chunk-size", 0, "")

	raw := []byte("ALGORITHM: huffman\nCHUNK_SIZE: \"4096\"\n")
	if err := SetFlagsFromYaml(fs, raw); err != nil {
		t.Fatalf("SetFlagsFromYaml: %v", err)
	}

	if *algorithm != "huffman" {
		t.Errorf("algorithm = %q, want %q", *algorithm, "huffman")
	}
	if *size != 4096 {
		t.Errorf("chunk-size = %d, want 4096", *size)
	}
}

func TestSetFlagsFromYamlDoesNotOverrideExplicitFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	algorithm := fs.String("algorithm", "delta", "")
	if err := fs.Set("algorithm", "huffman"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw := []byte("ALGORITHM: delta\n")
	if err := SetFlagsFromYaml(fs, raw); err != nil {
		t.Fatalf("SetFlagsFromYaml: %v", err)
	}

	if *algorithm != "huffman" {
		t.Errorf("algorithm = %q, want %q (explicit flag should win)", *algorithm, "huffman")
	}
}

func TestSetFlagsFromYamlRejectsInvalidValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("chunk-size", 0, "")

	raw := []byte("CHUNK_SIZE: not-a-number\n")
	if err := SetFlagsFromYaml(fs, raw); err == nil {
		t.Fatal("expected error for invalid integer value")
	}
}
