package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	g2p "github.com/jamesainslie/go-g2p"
	"github.com/jamesainslie/go-g2p/engine"
	"github.com/jamesainslie/go-g2p/internal/config"
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

type options struct {
	apply          string
	word           string
	p2p            bool
	transpose      bool
	variantsMass   float64
	variantsNumber int
	separator      string
	encoding       string
	fake           string
	model          string
	vocabulary     string
	poolSize       int
	beam           int
	maxHypotheses  int
	configPath     string
	logLevel       string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "g2p-cli [flags]",
		Short: "Convert words and sentences into phoneme transcriptions",
		Long: `g2p-cli converts text into phonetic transcriptions.

With --apply every non-empty line of FILE is treated as a sentence and
written back as "sentence<TAB>phon1<SEP>phon2..."; with --word a single
word is converted. The engine is either a lookup table built from a
pronunciation sample (--fake) or an ONNX model (--model, --vocabulary).`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, &o, stdin, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&o.apply, "apply", "a", "", "apply conversion to sentences read from `FILE` (- for stdin)")
	f.StringVarP(&o.word, "word", "w", "", "apply conversion to a single `WORD`")
	f.BoolVarP(&o.p2p, "phoneme-to-phoneme", "P", false, "input lines are KEY SYM1 SYM2 ... symbol sequences")
	f.BoolVarP(&o.transpose, "transpose", "t", false, "input lines are KEY<TAB>SYM1 SYM2 ... (phoneme-to-grapheme)")
	f.Float64VarP(&o.variantsMass, "variants-mass", "V", 0, "generate variants until their posterior mass reaches `Q` (>= Q)")
	f.IntVar(&o.variantsNumber, "variants-number", 0, "generate up to `N` variants per word")
	f.StringVar(&o.separator, "sentence-separator", g2p.DefaultSeparator, "separator between word transcriptions in sentences")
	f.StringVarP(&o.encoding, "encoding", "e", g2p.DefaultEncoding, "character set `ENC` of input and output")
	f.StringVarP(&o.fake, "fake", "f", "", "use a translation memory read from sample `FILE` instead of a model")
	f.StringVarP(&o.model, "model", "m", "", "ONNX G2P model `FILE`")
	f.StringVar(&o.vocabulary, "vocabulary", "", "symbol vocabulary `FILE` of the model")
	f.IntVar(&o.poolSize, "pool-size", 0, "number of ONNX sessions (default: number of CPUs)")
	f.IntVar(&o.beam, "beam", 0, "candidate phonemes per output step when ranking variants")
	f.IntVar(&o.maxHypotheses, "max-hypotheses", 0, "upper bound on ranked hypotheses per word")
	f.StringVar(&o.configPath, "config", "", "YAML run configuration `FILE`; flags override it")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")

	return cmd
}

func run(cmd *cobra.Command, o *options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(cmd, o)
	if err != nil {
		return err
	}
	if o.apply == "" && o.word == "" {
		return errors.New("nothing to do: use --apply FILE or --word WORD")
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }() // Cleanup error ignored in CLI

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if o.apply != "" {
		if o.apply != "-" {
			logger.Info("processing input file", "file", o.apply, "encoding", encodingOf(cfg))
		}
		var stats g2p.Stats
		if o.apply == "-" {
			stats, err = conv.Apply(ctx, stdin, stdout)
		} else {
			stats, err = conv.ApplyFile(ctx, o.apply, stdout)
		}
		_ = stats.Report(stderr)
		_ = conv.ReportEngineStats(stderr)
		if err != nil {
			return err
		}
	}

	if o.word != "" {
		err := conv.ApplyWord(ctx, o.word, stdout)
		if errors.Is(err, engine.ErrTranslationFailure) {
			logger.Error("failed to convert word", "word", o.word, "err", err)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveConfig loads the configuration file, if any, and lays explicitly
// set flags over it.
func resolveConfig(cmd *cobra.Command, o *options) (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	switch {
	case o.p2p && o.transpose:
		return nil, errors.New("--phoneme-to-phoneme and --transpose are mutually exclusive")
	case o.p2p:
		cfg.Mode = tokenizer.ModePhonemeToPhoneme.String()
	case o.transpose:
		cfg.Mode = tokenizer.ModeTranspose.String()
	}
	if f.Changed("sentence-separator") || cfg.Separator == nil {
		sep := o.separator
		cfg.Separator = &sep
	}
	if f.Changed("encoding") || cfg.Encoding == "" {
		cfg.Encoding = o.encoding
	}
	if f.Changed("variants-mass") {
		cfg.Variants.Mass = o.variantsMass
	}
	if f.Changed("variants-number") {
		cfg.Variants.Number = o.variantsNumber
	}
	if f.Changed("fake") {
		cfg.Engine.Fake = o.fake
		cfg.Engine.Model = ""
	}
	if f.Changed("model") {
		cfg.Engine.Model = o.model
		cfg.Engine.Fake = ""
	}
	if f.Changed("vocabulary") {
		cfg.Engine.Vocabulary = o.vocabulary
	}
	if f.Changed("pool-size") {
		cfg.Engine.PoolSize = o.poolSize
	}
	if f.Changed("beam") {
		cfg.Engine.Beam = o.beam
	}
	if f.Changed("max-hypotheses") {
		cfg.Engine.MaxHypotheses = o.maxHypotheses
	}
	if f.Changed("log-level") {
		cfg.LogLevel = config.LogLevel(o.logLevel)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newConverter(cfg *config.Config, logger *slog.Logger) (*g2p.Converter, error) {
	mode, err := tokenizer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	opts := []g2p.Option{
		g2p.WithMode(mode),
		g2p.WithSeparator(*cfg.Separator),
		g2p.WithEncoding(cfg.Encoding),
		g2p.WithVariantsMass(cfg.Variants.Mass),
		g2p.WithVariantsNumber(cfg.Variants.Number),
		g2p.WithPoolSize(cfg.Engine.PoolSize),
		g2p.WithBeam(cfg.Engine.Beam),
		g2p.WithMaxHypotheses(cfg.Engine.MaxHypotheses),
		g2p.WithLogger(logger),
	}

	switch {
	case cfg.Engine.Fake != "":
		enc, err := g2p.LookupEncoding(encodingOf(cfg))
		if err != nil {
			return nil, err
		}
		sample, err := engine.LoadSampleFile(cfg.Engine.Fake, mode == tokenizer.ModePhonemeToPhoneme, enc)
		if err != nil {
			return nil, fmt.Errorf("loading translation memory: %w", err)
		}
		if mode == tokenizer.ModeTranspose {
			sample = engine.Transpose(sample)
		}
		mem := engine.NewMemory(sample)
		logger.Info("using translation memory", "file", cfg.Engine.Fake, "entries", mem.Len())
		return g2p.New(mem, opts...)
	case cfg.Engine.Model != "":
		return g2p.Open(cfg.Engine.Model, cfg.Engine.Vocabulary, opts...)
	}
	return nil, errors.New("no translator: use --fake FILE or --model FILE --vocabulary FILE")
}

func encodingOf(cfg *config.Config) string {
	if cfg.Encoding == "" {
		return g2p.DefaultEncoding
	}
	return cfg.Encoding
}
