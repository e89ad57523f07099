package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/jamesainslie/go-g2p/tokenizer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var encName string

	cmd := &cobra.Command{
		Use:   "g2p-clean INPUT OUTPUT",
		Short: "Prepare free text as sentence input for g2p-cli",
		Long: `g2p-clean lowercases every line of INPUT, replaces punctuation with
spaces, collapses whitespace and writes the non-empty results to OUTPUT.
Either file may be "-" for standard input or output.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			err := run(args[0], args[1], encName, stdin, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&encName, "encoding", "e", "UTF-8", "character set `ENC` of input and output")
	return cmd
}

func run(input, output, encName string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	enc, err := ianaindex.IANA.Encoding(encName)
	if err != nil || enc == nil {
		return fmt.Errorf("unknown encoding %q", encName)
	}

	r := stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }() // Read-only
		r = f
	}

	w := stdout
	if output != "-" {
		out, cerr := os.Create(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = out
	}

	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	n, err := tokenizer.CleanLines(transform.NewReader(r, enc.NewDecoder()), tw)
	err = errors.Join(err, tw.Close())
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "Processed %s -> %s (%d lines)\n", input, output, n)
	return nil
}
