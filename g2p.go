package g2p

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/encoding"

	"github.com/jamesainslie/go-g2p/engine"
	"github.com/jamesainslie/go-g2p/inference"
	"github.com/jamesainslie/go-g2p/internal/observe"
	"github.com/jamesainslie/go-g2p/tokenizer"
)

// Converter runs input text through a translation engine and writes
// transcriptions.
type Converter struct {
	translator engine.Translator
	mode       tokenizer.Mode
	separator  string
	variants   bool
	limits     Limits
	enc        encoding.Encoding
	logger     *slog.Logger
	metrics    *observe.Metrics
	closers    []io.Closer
}

// New creates a Converter around an existing translator. The caller keeps
// ownership of the translator.
func New(t engine.Translator, opts ...Option) (*Converter, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil translator", ErrInvalidOption)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newConverter(t, cfg, nil)
}

// Open creates a Converter backed by an ONNX G2P model and its symbol
// vocabulary. Close releases the model sessions.
func Open(modelPath, vocabPath string, opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Fail before loading the vocabulary when the model is missing.
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	tok, err := tokenizer.New(vocabPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrVocabularyFailed, vocabPath)
		}
		return nil, fmt.Errorf("%w: %w", ErrVocabularyFailed, err)
	}

	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		_ = tok.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	var neuralOpts []engine.NeuralOption
	if cfg.beam > 0 {
		neuralOpts = append(neuralOpts, engine.WithBeam(cfg.beam))
	}
	if cfg.maxHypotheses > 0 {
		neuralOpts = append(neuralOpts, engine.WithMaxHypotheses(cfg.maxHypotheses))
	}
	nt := engine.NewNeural(tok, pool, neuralOpts...)

	c, err := newConverter(nt, cfg, []io.Closer{pool, tok})
	if err != nil {
		_ = pool.Close()
		_ = tok.Close()
		return nil, err
	}
	return c, nil
}

func newConverter(t engine.Translator, cfg config, closers []io.Closer) (*Converter, error) {
	enc, err := LookupEncoding(cfg.encoding)
	if err != nil {
		return nil, err
	}

	metrics := observe.DefaultMetrics()
	if cfg.meterProvider != nil {
		if metrics, err = observe.NewMetrics(cfg.meterProvider); err != nil {
			return nil, fmt.Errorf("creating metrics: %w", err)
		}
	}

	return &Converter{
		translator: t,
		mode:       cfg.mode,
		separator:  cfg.separator,
		variants:   cfg.variants(),
		limits:     cfg.limits(),
		enc:        enc,
		logger:     cfg.logger,
		metrics:    metrics,
		closers:    closers,
	}, nil
}

// ApplyFile runs Apply over the named file.
func (c *Converter) ApplyFile(ctx context.Context, path string, w io.Writer) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer func() { _ = f.Close() }() // Read-only; close error carries no data loss

	return c.Apply(ctx, f, w)
}

// Apply reads r line by line, translates every word and writes the results
// to w in input order.
//
// Per-word translation failures and malformed lines are logged and counted
// but do not stop the run. A read error ends the run with
// ErrSourceUnreadable after the sentence in progress has been written; a
// cancelled context ends it immediately.
func (c *Converter) Apply(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	out := newOutput(w, c.enc)
	lines := tokenizer.NewLineReader(decode(r, c.enc))
	words := tokenizer.NewExtractor(lines, c.mode, c.logger)
	agg := newAggregator(out, c.separator, c.logger)
	tr := &tracker{metrics: c.metrics}

	err := c.run(ctx, words, agg, out, tr)
	if err == nil {
		err = agg.finish()
	}
	if err == nil && lines.Err() != nil {
		err = fmt.Errorf("%w: %w", ErrSourceUnreadable, lines.Err())
	}
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("writing output: %w", cerr)
	}

	stats := tr.finish(ctx, lines, agg.flushed)
	if err != nil {
		return stats, err
	}

	if stats.Mismatch() {
		c.logger.Warn("input line count does not match output line count",
			"input", stats.InputLines, "output", stats.OutputLines)
	} else if stats.InputLines > 0 {
		c.logger.Info("input and output line counts match", "lines", stats.InputLines)
	}
	return stats, nil
}

func (c *Converter) run(ctx context.Context, words *tokenizer.Extractor, agg *aggregator, out io.Writer, tr *tracker) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		it, ok := words.Next()
		if !ok {
			return nil
		}

		if it.Kind == tokenizer.KindFormatError {
			tr.formatError(ctx)
			continue
		}

		if it.SentenceID != "" {
			if err := agg.begin(it.SentenceID); err != nil {
				return err
			}
		}

		vs, err := c.translateWord(ctx, it, tr)
		if err != nil {
			return err
		}
		if len(vs) == 0 {
			continue
		}

		if it.SentenceID != "" {
			agg.add(it.SentenceID, it.Word, vs[0].Transcription())
			continue
		}
		if err := c.writeWord(out, it.Word, vs); err != nil {
			return err
		}
		tr.output()
	}
}

// translateWord runs the engine on one word. Recoverable failures are logged
// and counted and yield no variants; only a cancelled context is returned.
func (c *Converter) translateWord(ctx context.Context, it tokenizer.Item, tr *tracker) ([]Variant, error) {
	start := time.Now()
	vs, err := c.translate(ctx, it.Graphemes)
	elapsed := time.Since(start)
	if c.variants {
		tr.variants(ctx, len(vs))
	}

	if err == nil {
		tr.translated(ctx, elapsed)
		return vs, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	tr.failed(ctx, elapsed)
	if errors.Is(err, engine.ErrTranslationFailure) {
		c.logger.Warn("failed to convert word", "line", it.Line, "word", it.Word, "err", err)
	} else {
		c.logger.Error("error processing word", "line", it.Line, "word", it.Word, "err", err)
	}
	return nil, nil
}

// translate returns the best transcription as a single variant, or the
// selected variants when enumeration is on.
func (c *Converter) translate(ctx context.Context, graphemes []string) ([]Variant, error) {
	if c.variants {
		return SelectVariants(ctx, c.translator, graphemes, c.limits)
	}
	phonemes, err := c.translator.Translate(ctx, graphemes)
	if err != nil {
		return nil, err
	}
	return []Variant{{Rank: 0, Posterior: 1, Phonemes: phonemes}}, nil
}

func (c *Converter) writeWord(w io.Writer, word string, vs []Variant) error {
	for _, v := range vs {
		var err error
		if c.variants {
			_, err = fmt.Fprintf(w, "%s\t%d\t%f\t%s\n", word, v.Rank, v.Posterior, v.Transcription())
		} else {
			_, err = fmt.Fprintf(w, "%s\t%s\n", word, v.Transcription())
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

// ApplyWord translates a single word and writes its record to w. In
// phoneme-to-phoneme and transpose modes the word is a whitespace-separated
// symbol sequence. A failed translation returns an error wrapping
// engine.ErrTranslationFailure.
func (c *Converter) ApplyWord(ctx context.Context, word string, w io.Writer) (err error) {
	graphemes := tokenizer.Graphemes(word)
	if c.mode == tokenizer.ModePhonemeToPhoneme || c.mode == tokenizer.ModeTranspose {
		graphemes = tokenizer.Symbols(word)
	}

	vs, err := c.translate(ctx, graphemes)
	if err != nil {
		return err
	}

	out := newOutput(w, c.enc)
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("writing output: %w", cerr)
		}
	}()
	return c.writeWord(out, word, vs)
}

// ReportEngineStats writes the engine's own diagnostics to w when it keeps
// any.
func (c *Converter) ReportEngineStats(w io.Writer) error {
	if r, ok := c.translator.(engine.StatsReporter); ok {
		return r.ReportStats(w)
	}
	return nil
}

// Close releases the resources Open acquired. It is a no-op for Converters
// built with New.
func (c *Converter) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
