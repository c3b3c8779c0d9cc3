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
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/crawlit"
	"github.com/poiesic/crawlit/ai"
	"github.com/poiesic/crawlit/config"
	"github.com/poiesic/crawlit/crawl"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "crawlit",
		Usage: "Crawl documentation sites into a searchable document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "crawlit.yaml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "crawl",
				Usage:     "Crawl URLs and ingest their content",
				ArgsUsage: "[URL ...]",
				Action:    crawlCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "sitemap",
						Usage: "Sitemap URL to expand into page URLs",
					},
					&cli.IntFlag{
						Name:  "max-concurrent",
						Usage: "Number of URLs fetched concurrently",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in bytes",
					},
					&cli.BoolFlag{
						Name:  "readability",
						Usage: "Extract main article content before chunking",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Completion model name",
					},
					&cli.IntFlag{
						Name:  "embedding-dim",
						Usage: "Embedding vector dimensionality",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Retrieve chunks relevant to a query",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of chunks to retrieve",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
				),
			},
			{
				Name:   "count",
				Usage:  "Print the number of stored chunks",
				Action: countCommand,
				Flags:  storeFlags(),
			},
			{
				Name:   "reset",
				Usage:  "Delete all stored chunks",
				Action: resetCommand,
				Flags:  storeFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
		},
		&cli.StringFlag{
			Name:  "fallback-dir",
			Usage: "Flat-file store directory used when the primary store is unavailable",
		},
	}
}

// loadConfig merges the YAML config with command-line overrides.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if c.IsSet("fallback-dir") {
		cfg.Store.FallbackDir = c.String("fallback-dir")
	}
	if c.IsSet("max-concurrent") {
		cfg.Crawl.MaxConcurrent = c.Int("max-concurrent")
	}
	if c.IsSet("chunk-size") {
		cfg.Crawl.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("readability") {
		cfg.Crawl.Readability = c.Bool("readability")
	}
	if c.IsSet("embedding-host") {
		cfg.AI.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("completion-host") {
		cfg.AI.CompletionHost = c.String("completion-host")
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("completion-model") {
		cfg.AI.CompletionModel = c.String("completion-model")
	}
	if c.IsSet("embedding-dim") {
		cfg.AI.EmbeddingDim = c.Int("embedding-dim")
	}

	return cfg, nil
}

func newCorpus(cfg *config.AppConfig) (*crawlit.Corpus, error) {
	token := os.Getenv(cfg.AI.APIKeyEnv)
	if token == "" {
		token = "none"
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithCompletionHost(cfg.AI.CompletionHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithCompletionModel(cfg.AI.CompletionModel),
		ai.WithAPIToken(token),
		ai.WithEmbeddingDim(cfg.AI.EmbeddingDim),
	)

	return crawlit.NewCorpus(cfg.Store.Path,
		crawlit.WithAIConfig(aiConfig),
		crawlit.WithFallbackDir(cfg.Store.FallbackDir),
		crawlit.WithEmbeddingCacheSize(cfg.AI.CacheSize),
	)
}

func crawlCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := newCorpus(cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	client := &http.Client{Timeout: time.Duration(cfg.Crawl.TimeoutSecs) * time.Second}

	urls := c.Args().Slice()
	if sitemap := c.String("sitemap"); sitemap != "" {
		urls = append(urls, crawl.SitemapURLs(c.Context, client, sitemap)...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to crawl: pass URLs as arguments or use --sitemap")
	}

	crawlOpts := []crawl.Option{
		crawl.WithMaxConcurrent(cfg.Crawl.MaxConcurrent),
		crawl.WithChunkSize(cfg.Crawl.ChunkSize),
		crawl.WithHTTPClient(client),
		crawl.WithEmbeddingDim(cfg.AI.EmbeddingDim),
		crawl.WithReadability(cfg.Crawl.Readability),
	}
	if cfg.Crawl.UserAgent != "" {
		crawlOpts = append(crawlOpts, crawl.WithUserAgent(cfg.Crawl.UserAgent))
	}

	crawler, err := corpus.NewCrawler(crawlOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Crawling %d URLs into %s\n", len(urls), cfg.Store.Path)

	snap, err := crawler.CrawlWithMonitor(c.Context, urls, newProgressMonitor(os.Stderr))
	if err != nil {
		return err
	}

	if snap.FailedURLs > 0 && snap.SuccessfulURLs == 0 {
		return fmt.Errorf("all %d URLs failed", snap.FailedURLs)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no query given")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := newCorpus(cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	searcher, err := corpus.NewSearcher()
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	context, err := searcher.RetrieveContext(c.Context, query, c.Int("max-hits"))
	if err != nil {
		return err
	}

	fmt.Println(context)
	return nil
}

func countCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := newCorpus(cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	count, err := corpus.Store().Count(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("%d chunks stored\n", count)
	return nil
}

func resetCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := newCorpus(cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if err := corpus.Store().Reset(c.Context); err != nil {
		return err
	}

	fmt.Println("store reset")
	return nil
}

func setup(c *cli.Context) error {
	// Optional .env for API keys; absence is not an error
	_ = godotenv.Load()

	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
