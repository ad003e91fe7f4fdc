/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/doctran/internal"
	"github.com/valpere/doctran/internal/aggregator"
	"github.com/valpere/doctran/internal/detector"
	"github.com/valpere/doctran/internal/executor"
	"github.com/valpere/doctran/internal/format"
	"github.com/valpere/doctran/internal/glossary"
	"github.com/valpere/doctran/internal/markdown"
	"github.com/valpere/doctran/internal/planner"
	"github.com/valpere/doctran/internal/store"
	"github.com/valpere/doctran/internal/tokenizer"
	"github.com/valpere/doctran/internal/translator"
)

var (
	inputFile    string
	outputFile   string
	sourceLang   string
	targetLang   string
	serviceName  string
	modelName    string
	temperature  float32
	glossaryPath string
	apiKey       string
	baseURL      string
	credentials  string

	maxTokens    int
	maxWorkers   int
	maxRetries   int
	retryBackoff time.Duration
	timeout      time.Duration

	dbPath    string
	noHistory bool

	quiet        bool
	keepMarkdown bool
	noIndent     bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a document in token-bounded chunks",
	Long: `Translate a document by splitting it into balanced chunks that fit
within a token budget, translating the chunks concurrently, and writing
the reassembled result to the output file.

Available services:
  - openai   OpenAI chat models (requires OPENAI_API_KEY or --api-key)
  - ollama   Ollama LLM (self-hosted, --base-url)
  - google   Google Translate (requires credentials)

A glossary JSON file ([{"term": ..., "translation": ...}]) pins the
translation of domain terms across all chunks.

Exit codes: 0 clean, 1 fatal error before translation, 2 output written
but one or more chunks failed.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		// .env is optional; flags and real env vars win over it.
		_ = godotenv.Load()

		raw, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		text := string(raw)
		if markdown.IsMarkdownFile(inputFile) && !keepMarkdown {
			text = markdown.ToPlainText(raw)
		}

		ctx := context.Background()

		if sourceLang == "auto" {
			det := detector.New()
			if detected, ok := det.DetectISO(text); ok {
				sourceLang = detected
				logf("Detected source language: %s\n", sourceLang)
			}
		}

		var glossaryText string
		if glossaryPath != "" {
			gl, err := glossary.Load(glossaryPath)
			if err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
			glossaryText = gl.Format()
			logf("Loaded glossary with %d terms\n", gl.Len())
		}

		counter, err := tokenizer.New()
		if err != nil {
			logf("Token encoding unavailable (%v), using character estimate\n", err)
			counter = tokenizer.NewEstimator()
		}

		lines := planner.SplitLines(text, counter)
		totalTokens := 0
		for _, ln := range lines {
			totalTokens += ln.Tokens
		}

		chunks, err := planner.Plan(lines, viper.GetInt("max-tokens"))
		if err != nil {
			return fmt.Errorf("failed to plan chunks: %w", err)
		}
		if len(chunks) == 0 {
			return fmt.Errorf("input file is empty")
		}
		logf("Planned %d chunks from %d tokens\n", len(chunks), totalTokens)

		tcfg := translator.Config{
			Model:       viper.GetString("model"),
			Temperature: temperature,
			Glossary:    glossaryText,
			SourceLang:  sourceLang,
			TargetLang:  targetLang,
			APIKey:      viper.GetString("api-key"),
			BaseURL:     viper.GetString("base-url"),
			Credentials: credentials,
			Timeout:     timeout,
		}

		svc, err := buildTranslator(viper.GetString("service"), tcfg)
		if err != nil {
			return err
		}

		var reporter executor.Reporter
		if !quiet {
			reporter = executor.NewLogReporter(os.Stderr)
		}

		agg := aggregator.New()
		exec := executor.New(svc, executor.Config{
			MaxWorkers:   viper.GetInt("max-workers"),
			MaxRetries:   maxRetries,
			RetryBackoff: retryBackoff,
		}, tcfg, reporter)

		outcomes := exec.Run(ctx, chunks, agg)

		var sb strings.Builder
		if err := agg.Assemble(&sb); err != nil {
			return fmt.Errorf("failed to assemble output: %w", err)
		}
		output := sb.String()
		if !noIndent {
			output = format.Indent(output)
		}

		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		metrics := agg.Metrics()
		fmt.Printf("Translated %d/%d chunks in %s\n",
			metrics.Successes, len(chunks), metrics.Duration.Round(time.Millisecond))

		for _, o := range agg.Failed() {
			fmt.Fprintf(os.Stderr, "Chunk %d failed after %d attempts: %v\n", o.Index+1, o.Attempts, o.Err)
		}

		if !noHistory {
			saveHistory(ctx, outcomes, chunks, metrics, totalTokens, tcfg)
		}

		if metrics.Failures > 0 {
			return fmt.Errorf("%d of %d chunks failed: %w", metrics.Failures, len(chunks), errPartialFailure)
		}
		return nil
	},
}

// saveHistory records the run in the history database. History is
// reporting only, so failures here warn instead of failing the run.
func saveHistory(ctx context.Context, outcomes []executor.Outcome, chunks []planner.Chunk, metrics aggregator.Metrics, totalTokens int, tcfg translator.Config) {
	db, err := store.New(viper.GetString("db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history database: %v\n", err)
		return
	}
	defer db.Close()

	run := internal.RunRecord{
		ID:          uuid.New().String(),
		InputFile:   inputFile,
		OutputFile:  outputFile,
		SourceLang:  tcfg.SourceLang,
		TargetLang:  tcfg.TargetLang,
		Service:     viper.GetString("service"),
		Model:       tcfg.Model,
		TotalTokens: totalTokens,
		TotalChunks: len(chunks),
		Successes:   metrics.Successes,
		Failures:    metrics.Failures,
		DurationMS:  metrics.Duration.Milliseconds(),
		Timestamp:   time.Now(),
	}

	records := make([]internal.ChunkRecord, len(chunks))
	for i, c := range chunks {
		state := "success"
		if outcomes[i].Err != nil {
			state = "failed"
		}
		records[i] = internal.ChunkRecord{
			RunID:      run.ID,
			ChunkIndex: c.Index,
			Tokens:     c.Tokens,
			Attempts:   outcomes[i].Attempts,
			State:      state,
		}
		if outcomes[i].Err != nil {
			records[i].Error = outcomes[i].Err.Error()
		}
	}

	if err := db.RecordRun(ctx, run, records); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record run history: %v\n", err)
	}
}

func logf(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translation (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")

	translateCmd.Flags().StringVar(&serviceName, "service", "openai", "Translation service (openai, ollama, google)")
	translateCmd.Flags().StringVar(&modelName, "model", "", "Model name (service default if empty)")
	translateCmd.Flags().Float32Var(&temperature, "temperature", 1.0, "Sampling temperature for LLM services")
	translateCmd.Flags().StringVar(&glossaryPath, "glossary", "", "Glossary JSON file path")
	translateCmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or OPENAI_API_KEY env var)")
	translateCmd.Flags().StringVar(&baseURL, "base-url", "", "Service base URL override")
	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials")

	translateCmd.Flags().IntVar(&maxTokens, "max-tokens", 8000, "Maximum tokens per chunk")
	translateCmd.Flags().IntVar(&maxWorkers, "max-workers", executor.DefaultMaxWorkers, "Concurrent translation workers (1-10)")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", executor.DefaultMaxRetries, "Retries per chunk after a transient failure")
	translateCmd.Flags().DurationVar(&retryBackoff, "retry-backoff", 0, "Fixed delay between retry attempts")
	translateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Per-request timeout")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/doctran.db", "Run history database path")
	translateCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")

	translateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	translateCmd.Flags().BoolVar(&keepMarkdown, "keep-markdown", false, "Do not strip Markdown markup from .md inputs")
	translateCmd.Flags().BoolVar(&noIndent, "no-indent", false, "Do not indent the output text")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("target")

	// Bound flags can also come from .doctran.yaml or DOCTRAN_* env vars.
	viper.BindPFlag("service", translateCmd.Flags().Lookup("service"))
	viper.BindPFlag("model", translateCmd.Flags().Lookup("model"))
	viper.BindPFlag("api-key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("base-url", translateCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("max-tokens", translateCmd.Flags().Lookup("max-tokens"))
	viper.BindPFlag("max-workers", translateCmd.Flags().Lookup("max-workers"))
	viper.BindPFlag("db", translateCmd.Flags().Lookup("db"))
}
