package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"

	"github.com/jamesainslie/go-g2p"
	"github.com/jamesainslie/go-g2p/engine"
	"github.com/jamesainslie/go-g2p/inference"
	"github.com/jamesainslie/go-g2p/internal/bench"
	"github.com/jamesainslie/go-g2p/tokenizer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type options struct {
	sample         string
	fake           string
	model          string
	models         string
	vocabulary     string
	poolSize       int
	p2p            bool
	transpose      bool
	segmental      bool
	result         string
	sweep          bool
	sweepMin       float64
	sweepMax       float64
	sweepStep      float64
	variantsNumber int
	encoding       string

	enc encoding.Encoding
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "g2p-bench --sample FILE [flags]",
		Short: "Measure transcription accuracy against a pronunciation sample",
		Long: `g2p-bench translates every word of a test sample and reports the word
and symbol error rates against the closest reference pronunciation.

With --sweep it instead enumerates variants at a range of posterior mass
thresholds and reports how often a reference is among them.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd.Context(), &o, stdout)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&o.sample, "sample", "", "test sample `FILE` (LEFT:RIGHT files with -P)")
	f.StringVarP(&o.fake, "fake", "f", "", "evaluate a translation memory built from training sample `FILE`")
	f.StringVarP(&o.model, "model", "m", "", "ONNX G2P model `FILE`")
	f.StringVar(&o.models, "models", "", "comma-separated model paths to compare")
	f.StringVar(&o.vocabulary, "vocabulary", "", "symbol vocabulary `FILE` of the models")
	f.IntVar(&o.poolSize, "pool-size", runtime.NumCPU(), "ONNX sessions per model")
	f.StringVarP(&o.encoding, "encoding", "e", g2p.DefaultEncoding, "character set `ENC` of the sample files")
	f.BoolVarP(&o.p2p, "phoneme-to-phoneme", "P", false, "samples map one symbol sequence to another")
	f.BoolVarP(&o.transpose, "transpose", "t", false, "evaluate phoneme-to-grapheme conversion")
	f.BoolVar(&o.segmental, "segmental", false, "ignore syllable boundaries and stress marks")
	f.StringVar(&o.result, "result", "", "write per-word results to `FILE` as a table")
	f.BoolVar(&o.sweep, "sweep", false, "run a variant mass threshold sweep")
	f.Float64Var(&o.sweepMin, "sweep-min", 0.5, "sweep minimum mass")
	f.Float64Var(&o.sweepMax, "sweep-max", 1.0, "sweep maximum mass")
	f.Float64Var(&o.sweepStep, "sweep-step", 0.05, "sweep step size")
	f.IntVar(&o.variantsNumber, "variants-number", 0, "cap variants per word during a sweep")

	return cmd
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	if o.sample == "" {
		return errors.New("--sample required")
	}
	engines := 0
	for _, s := range []string{o.fake, o.model, o.models} {
		if s != "" {
			engines++
		}
	}
	if engines != 1 {
		return errors.New("exactly one of --fake, --model or --models required")
	}
	if o.fake == "" && o.vocabulary == "" {
		return errors.New("--vocabulary required with --model and --models")
	}
	if o.p2p && o.transpose {
		return errors.New("--phoneme-to-phoneme and --transpose are mutually exclusive")
	}

	enc, err := g2p.LookupEncoding(o.encoding)
	if err != nil {
		return err
	}
	o.enc = enc

	corpus, err := bench.LoadCorpus(o.sample, o.p2p, o.transpose, o.enc)
	if err != nil {
		return fmt.Errorf("loading sample: %w", err)
	}
	fmt.Fprintf(stdout, "Loaded %d words from %s\n\n", corpus.Words(), o.sample)

	cfg := bench.DefaultConfig()
	cfg.Segmental = o.segmental

	if o.models != "" {
		return runModelComparison(ctx, o, corpus, cfg, stdout)
	}

	t, closeFn, err := openTranslator(o, o.model)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }() // Cleanup error ignored in CLI

	if o.sweep {
		return runSweep(ctx, o, t, corpus, cfg, stdout)
	}
	return runSingle(ctx, o, t, corpus, cfg, stdout)
}

// openTranslator builds the engine under test: a memory trained on the fake
// sample, or the model at modelPath.
func openTranslator(o *options, modelPath string) (engine.Translator, func() error, error) {
	if o.fake != "" {
		sample, err := engine.LoadSampleFile(o.fake, o.p2p, o.enc)
		if err != nil {
			return nil, nil, fmt.Errorf("loading training sample: %w", err)
		}
		if o.transpose {
			sample = engine.Transpose(sample)
		}
		return engine.NewMemory(sample), func() error { return nil }, nil
	}

	tok, err := tokenizer.New(o.vocabulary)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	pool, err := inference.NewPool(modelPath, o.poolSize)
	if err != nil {
		_ = tok.Close()
		return nil, nil, fmt.Errorf("loading model %s: %w", modelPath, err)
	}
	closeFn := func() error { return errors.Join(pool.Close(), tok.Close()) }
	return engine.NewNeural(tok, pool), closeFn, nil
}

func runSingle(ctx context.Context, o *options, t engine.Translator, c *bench.Corpus, cfg bench.Config, stdout io.Writer) error {
	m, results, err := bench.Evaluate(ctx, t, c, cfg)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}
	if o.result != "" {
		if err := writeResults(o.result, results); err != nil {
			return err
		}
	}
	printMetrics(stdout, m)
	return nil
}

func runSweep(ctx context.Context, o *options, t engine.Translator, c *bench.Corpus, cfg bench.Config, stdout io.Writer) error {
	masses := bench.SweepMasses(o.sweepMin, o.sweepMax, o.sweepStep)
	if len(masses) == 0 {
		return fmt.Errorf("empty sweep range [%g, %g] step %g", o.sweepMin, o.sweepMax, o.sweepStep)
	}

	results, err := bench.Sweep(ctx, t, c, cfg, masses, o.variantsNumber)
	if err != nil {
		return fmt.Errorf("during sweep: %w", err)
	}

	fmt.Fprintln(stdout, "Variant Mass Sweep Results")
	fmt.Fprintln(stdout, strings.Repeat("-", 44))
	fmt.Fprintf(stdout, "%-8s %-10s %-12s %-8s\n", "Mass", "Coverage", "Variants", "Failed")

	// Print sorted by mass for readability
	for _, mass := range masses {
		for _, r := range results {
			if r.Mass == mass {
				fmt.Fprintf(stdout, "%-8.3f %-10.3f %-12.2f %-8d\n", r.Mass, r.Coverage, r.MeanVariants, r.Failures)
				break
			}
		}
	}

	fmt.Fprintln(stdout, strings.Repeat("-", 44))
	best := results[0]
	fmt.Fprintf(stdout, "Best: %.3f (Coverage: %.3f, %.2f variants/word)\n", best.Mass, best.Coverage, best.MeanVariants)
	return nil
}

func runModelComparison(ctx context.Context, o *options, c *bench.Corpus, cfg bench.Config, stdout io.Writer) error {
	fmt.Fprintln(stdout, "Model Comparison")
	fmt.Fprintln(stdout, strings.Repeat("-", 56))
	fmt.Fprintf(stdout, "%-30s %-8s %-8s %-8s\n", "Model", "WER", "SER", "Failed")

	for _, modelPath := range strings.Split(o.models, ",") {
		modelPath = strings.TrimSpace(modelPath)
		if modelPath == "" {
			continue
		}
		t, closeFn, err := openTranslator(o, modelPath)
		if err != nil {
			fmt.Fprintf(stdout, "%-30s error: %v\n", modelPath, err)
			continue
		}
		m, _, err := bench.Evaluate(ctx, t, c, cfg)
		_ = closeFn()
		if err != nil {
			fmt.Fprintf(stdout, "%-30s error: %v\n", modelPath, err)
			continue
		}
		fmt.Fprintf(stdout, "%-30s %-8.2f %-8.2f %-8d\n", modelPath, 100*m.WordErrorRate, 100*m.SymbolErrorRate, m.Failures)
	}
	return nil
}

func printMetrics(w io.Writer, m bench.Metrics) {
	fmt.Fprintf(w, "WER: %.2f%%  SER: %.2f%%\n", 100*m.WordErrorRate, 100*m.SymbolErrorRate)
	fmt.Fprintf(w, "(words: %d, word errors: %d, failures: %d, symbols: %d, symbol errors: %d)\n",
		m.Words, m.WordErrors, m.Failures, m.Symbols, m.SymbolErrors)
}

// writeResults writes one row per word: word, closest reference,
// hypothesis and edit count. Failed words have an empty hypothesis.
func writeResults(path string, results []bench.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "word\treference\thypothesis\terrors")
	for _, r := range results {
		hyp := strings.Join(r.Hypothesis, " ")
		if r.Failed {
			hyp = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Word, strings.Join(r.Reference, " "), hyp, r.Errors)
	}
	return w.Flush()
}
