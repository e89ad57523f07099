// Package g2p converts text into phonetic transcriptions with a pluggable
// grapheme-to-phoneme translation engine.
//
// # Quick Start
//
//	conv, err := g2p.Open("g2p.onnx", "g2p.vocab")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	stats, err := conv.ApplyFile(ctx, "sentences.txt", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = stats.Report(os.Stderr)
//
// # Output
//
// In sentence mode every non-empty input line yields exactly one output line,
// the sentence followed by a tab and the transcriptions of its words joined by
// the sentence separator (default " # "). Words the engine cannot translate
// are left out of the joined transcription; the line is still written.
//
// Word modes write "word<TAB>phonemes", or with variants enabled one
// "word<TAB>rank<TAB>posterior<TAB>phonemes" line per hypothesis.
//
// # Engines
//
// Any [engine.Translator] can be passed to [New]. [Open] builds one from an
// ONNX CTC model and its symbol vocabulary, backed by a pool of ONNX
// sessions. A lookup-table translator built from a pronunciation sample is
// available as [engine.Memory].
//
// # Thread Safety
//
// A Converter may be shared, but each Apply call is a single sequential pass
// over its input.
package g2p
