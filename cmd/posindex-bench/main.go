// Package main provides posindex-bench, a synthetic-corpus benchmark tool
// for the posindex builder and reader.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/posindex/pkg/posindex"
)

// config holds every knob the benchmark accepts, mergeable from a JSONC
// file before CLI flags apply on top.
type config struct {
	Words    int    `json:"words"`
	Postings int    `json:"postings"`
	Capacity int    `json:"capacity"`
	Out      string `json:"out"`
	Seed     uint64 `json:"seed"`
	Samples  int    `json:"samples"`
}

func defaultConfig() config {
	return config{
		Words:    50_000,
		Postings: 5_000_000,
		Capacity: 1_000_000,
		Out:      filepath.Join(os.TempDir(), "posindex-bench.idx"),
		Seed:     1,
		Samples:  20,
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out, errOut *os.File) error {
	cfg := defaultConfig()

	flagSet := flag.NewFlagSet("posindex-bench", flag.ContinueOnError)

	configPath := flagSet.String("config", "", "path to a JSONC config file")
	words := flagSet.Int("words", cfg.Words, "distinct word count W")
	postings := flagSet.Int("postings", cfg.Postings, "total (word, position) pairs to generate")
	capacity := flagSet.Int("capacity", cfg.Capacity, "in-memory arena capacity N")
	outPath := flagSet.String("out", cfg.Out, "output index path")
	seed := flagSet.Uint64("seed", cfg.Seed, "deterministic PRNG seed")
	samples := flagSet.Int("samples", cfg.Samples, "random words to sample when timing reads")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		fileCfg, err := loadConfigFile(*configPath)
		if err != nil {
			return fmt.Errorf("load config %q: %w", *configPath, err)
		}

		cfg = mergeConfig(cfg, fileCfg)
	}

	if flagSet.Changed("words") {
		cfg.Words = *words
	}

	if flagSet.Changed("postings") {
		cfg.Postings = *postings
	}

	if flagSet.Changed("capacity") {
		cfg.Capacity = *capacity
	}

	if flagSet.Changed("out") {
		cfg.Out = *outPath
	}

	if flagSet.Changed("seed") {
		cfg.Seed = *seed
	}

	if flagSet.Changed("samples") {
		cfg.Samples = *samples
	}

	if cfg.Words <= 0 || cfg.Postings <= 0 || cfg.Capacity <= 0 {
		return fmt.Errorf("words, postings, and capacity must all be positive")
	}

	fmt.Fprintf(out, "building: words=%d postings=%d capacity=%d out=%s\n",
		cfg.Words, cfg.Postings, cfg.Capacity, cfg.Out)

	if err := build(out, cfg); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if err := sampleReads(out, cfg); err != nil {
		return fmt.Errorf("sample reads: %w", err)
	}

	return nil
}

// loadConfigFile parses a JSONC config the same way the rest of the
// corpus's tools do: hujson standardizes comments/trailing commas away,
// then the result is plain JSON.
func loadConfigFile(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// mergeConfig overlays non-zero fields of override onto base.
func mergeConfig(base, override config) config {
	if override.Words != 0 {
		base.Words = override.Words
	}

	if override.Postings != 0 {
		base.Postings = override.Postings
	}

	if override.Capacity != 0 {
		base.Capacity = override.Capacity
	}

	if override.Out != "" {
		base.Out = override.Out
	}

	if override.Seed != 0 {
		base.Seed = override.Seed
	}

	if override.Samples != 0 {
		base.Samples = override.Samples
	}

	return base
}

// build generates a synthetic, already position-ordered corpus and feeds
// it through a Builder, reporting throughput and the builder's own
// counters once Close returns.
func build(out *os.File, cfg config) error {
	b, err := posindex.Open(cfg.Out, cfg.Words, cfg.Capacity)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	start := time.Now()

	// Positions increase monotonically across the whole corpus, so every
	// word's substream is automatically non-decreasing without any extra
	// bookkeeping here — the same property spec.md's corpus assumption
	// relies on.
	for p := 0; p < cfg.Postings; p++ {
		w := rng.IntN(cfg.Words)

		if err := b.Add(w, int64(p)); err != nil {
			_ = b.Close()

			return fmt.Errorf("add(%d, %d): %w", w, p, err)
		}

		if p > 0 && p%1_000_000 == 0 {
			elapsed := time.Since(start)
			fmt.Fprintf(out, "  %d postings (%.0f/s)\n", p, float64(p)/elapsed.Seconds())
		}
	}

	if err := b.Close(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	stats := b.Stats()

	fmt.Fprintf(out, "built in %s (%.0f postings/s): word_total=%d non_dup_total=%d blocks=%d\n",
		elapsed, float64(cfg.Postings)/elapsed.Seconds(), stats.WordTotal, stats.NonDupTotal, stats.BlockCount)

	return nil
}

// sampleReads opens the finished index and times random single-word
// lookups, the operation spec.md's external interface is built around.
func sampleReads(out *os.File, cfg config) error {
	r, err := posindex.OpenIndex(cfg.Out)
	if err != nil {
		return err
	}
	defer r.Close()

	rng := rand.New(rand.NewPCG(cfg.Seed+1, cfg.Seed+1))

	start := time.Now()

	var total int

	for range cfg.Samples {
		w := rng.IntN(r.WordCount())

		n, err := r.Len(w)
		if err != nil {
			return fmt.Errorf("len(%d): %w", w, err)
		}

		total += n
	}

	elapsed := time.Since(start)

	fmt.Fprintf(out, "sampled %d words in %s (%.1fus/lookup), %d positions total\n",
		cfg.Samples, elapsed, float64(elapsed.Microseconds())/float64(cfg.Samples), total)

	return nil
}
