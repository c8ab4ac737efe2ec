// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/groundit"
	"github.com/poiesic/groundit/ai"
	"github.com/poiesic/groundit/api"
	"github.com/poiesic/groundit/ingest"
	badgerqueue "github.com/poiesic/groundit/queue/badger"
	"github.com/poiesic/groundit/reindex"
	"github.com/poiesic/groundit/retrieval"
)

func main() {
	app := &cli.App{
		Name:  "groundit",
		Usage: "Database-less document question answering pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"GROUNDIT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data directory",
				Value:   "./groundit-data",
				EnvVars: []string{"GROUNDIT_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible service host URL (embeddings and generation)",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"GROUNDIT_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "embeddinggemma",
				EnvVars: []string{"GROUNDIT_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "generation-model",
				Usage:   "Answer generation model name",
				Value:   "qwen2.5:3b",
				EnvVars: []string{"GROUNDIT_GENERATION_MODEL"},
			},
			&cli.StringFlag{
				Name:    "ai-token",
				Usage:   "API token for the AI services",
				Value:   "none",
				EnvVars: []string{"GROUNDIT_AI_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload documents and enqueue them for ingestion",
				ArgsUsage: "FILE [FILE...]",
				Action:    uploadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Store a single file under this key instead of its base name",
					},
				},
			},
			{
				Name:   "worker",
				Usage:  "Run the ingestion worker until interrupted",
				Action: workerCommand,
				Flags: append(queueFlags(),
					&cli.DurationFlag{
						Name:    "poll-interval",
						Usage:   "How long to sleep when the queue is empty",
						Value:   500 * time.Millisecond,
						EnvVars: []string{"GROUNDIT_POLL_INTERVAL"},
					},
					&cli.IntFlag{
						Name:    "chunk-size",
						Usage:   "Target chunk size in characters",
						Value:   512,
						EnvVars: []string{"GROUNDIT_CHUNK_SIZE"},
					},
					&cli.IntFlag{
						Name:    "chunk-overlap",
						Usage:   "Overlap between adjacent chunks in characters",
						Value:   64,
						EnvVars: []string{"GROUNDIT_CHUNK_OVERLAP"},
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the indexed documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Usage:   "Number of passages fed to the generator",
						Value:   4,
						EnvVars: []string{"GROUNDIT_TOP_K"},
					},
					&cli.DurationFlag{
						Name:    "generation-timeout",
						Usage:   "Upper bound on the generation call",
						Value:   30 * time.Second,
						EnvVars: []string{"GROUNDIT_GENERATION_TIMEOUT"},
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the answer API over HTTP",
				Action: serveCommand,
				Flags: append(queueFlags(),
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						Value:   ":8080",
						EnvVars: []string{"GROUNDIT_LISTEN_ADDR"},
					},
					&cli.IntFlag{
						Name:    "top-k",
						Usage:   "Number of passages fed to the generator",
						Value:   4,
						EnvVars: []string{"GROUNDIT_TOP_K"},
					},
					&cli.DurationFlag{
						Name:    "generation-timeout",
						Usage:   "Upper bound on the generation call",
						Value:   30 * time.Second,
						EnvVars: []string{"GROUNDIT_GENERATION_TIMEOUT"},
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every committed document with the current embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// queueFlags are shared by commands that open the ingestion queue for
// consumption.
func queueFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "max-delivery-attempts",
			Usage:   "Deliveries before a message is dead-lettered",
			Value:   1,
			EnvVars: []string{"GROUNDIT_MAX_DELIVERY_ATTEMPTS"},
		},
		&cli.DurationFlag{
			Name:    "lease-duration",
			Usage:   "Visibility timeout for received messages",
			Value:   5 * time.Minute,
			EnvVars: []string{"GROUNDIT_LEASE_DURATION"},
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithToken(c.String("ai-token")),
	)
}

func openSystem(c *cli.Context, opts ...groundit.SystemOption) (*groundit.System, error) {
	opts = append([]groundit.SystemOption{
		groundit.WithAIConfig(aiConfigFromFlags(c)),
	}, opts...)

	sys, err := groundit.Open(c.String("data"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory %s: %w", c.String("data"), err)
	}
	return sys, nil
}

func queueOptionsFromFlags(c *cli.Context) groundit.SystemOption {
	return groundit.WithQueueOptions(
		badgerqueue.WithMaxDeliveryAttempts(c.Int("max-delivery-attempts")),
		badgerqueue.WithLeaseDuration(c.Duration("lease-duration")),
	)
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if c.String("key") != "" && c.NArg() > 1 {
		return fmt.Errorf("--key can only be used with a single file")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		key := c.String("key")
		if key == "" {
			key = filepath.Base(path)
		}

		etag, err := sys.Upload(ctx, key, data)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		fmt.Printf("uploaded %s as %s (etag %s)\n", path, key, etag)
	}
	return nil
}

func workerCommand(c *cli.Context) error {
	sys, err := openSystem(c, queueOptionsFromFlags(c))
	if err != nil {
		return err
	}
	defer sys.Close()

	worker, err := sys.NewWorker(
		ingest.WithPollInterval(c.Duration("poll-interval")),
		ingest.WithChunkSize(c.Int("chunk-size")),
		ingest.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	defer worker.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return worker.Run(ctx)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	answerer, err := sys.NewAnswerer(
		retrieval.WithTopK(c.Int("top-k")),
		retrieval.WithGenerationTimeout(c.Duration("generation-timeout")),
	)
	if err != nil {
		return fmt.Errorf("failed to create answerer: %w", err)
	}

	answer := answerer.Answer(context.Background(), question)

	out, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func serveCommand(c *cli.Context) error {
	sys, err := openSystem(c, queueOptionsFromFlags(c))
	if err != nil {
		return err
	}
	defer sys.Close()

	answerer, err := sys.NewAnswerer(
		retrieval.WithTopK(c.Int("top-k")),
		retrieval.WithGenerationTimeout(c.Duration("generation-timeout")),
	)
	if err != nil {
		return fmt.Errorf("failed to create answerer: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.String("listen"),
	}, answerer, sys.Queue(), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return server.Shutdown()
	}
}

func reindexCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	config := &reindex.Config{
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := sys.NewReindexer(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", c.String("data"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
