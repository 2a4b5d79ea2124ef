// Package main is the Mitsuke CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/mitsuke/internal/cli"
	"github.com/hyperjump/mitsuke/internal/config"
	"github.com/hyperjump/mitsuke/internal/embedding"
	"github.com/hyperjump/mitsuke/internal/ingest"
	"github.com/hyperjump/mitsuke/internal/models"
	"github.com/hyperjump/mitsuke/internal/search"
	"github.com/hyperjump/mitsuke/internal/server"
	"github.com/hyperjump/mitsuke/internal/store"
	"github.com/hyperjump/mitsuke/internal/watcher"
	"github.com/hyperjump/mitsuke/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/mitsuke/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "mitsuke server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("mitsuke version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, file events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	fileIng := ingest.NewFileIngestor(components.Ingestor)
	exts := cfg.Watch.Extensions
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := fileIng.IngestFile(context.Background(), path); err != nil {
				logger.Warn("watch ingest file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if _, err := fileIng.RemoveFile(context.Background(), path); err != nil {
				logger.Warn("watch remove by path failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Engine,
		components.Ingestor,
		components.Store,
		&cfg.Server,
		components.Info,
		logger,
	)
	srv.EnableWatch(watchSvc, cfg, resolvedConfigPath)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	components.Snapshot(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: mitsuke search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
A query is either text or an image, never both.
  • Positional arguments form a text query.
  • Use --image with a file path, URL, or base64 string to search by image.
  • Use --filter key=value (repeatable) to require exact metadata matches.

Examples:
  mitsuke search sunset over water
  mitsuke search "sunset over water"            # same as above
  mitsuke search --image ./photo.jpg            # find items similar to an image
  mitsuke search --filter category=art beaches
  mitsuke search --top-k 20 --output json city skyline
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "mitsuke search \"query\" -top-k 5"
// would otherwise leave -top-k unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// filterFlags collects repeated --filter key=value pairs.
type filterFlags map[string]string

func (f filterFlags) String() string { return "" }

func (f filterFlags) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("filter must be key=value, got %q", value)
	}
	f[k] = v
	return nil
}

// imageQueryArg resolves an --image argument. A path to an existing file is
// read and base64-encoded; anything else (URL, base64, data URI) is passed
// through for the server to resolve.
func imageQueryArg(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		content, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("read image: %w", err)
		}
		return base64.StdEncoding.EncodeToString(content), nil
	}
	return arg, nil
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	topK := fs.Int("top-k", 10, "number of results (1-100)")
	imageArg := fs.String("image", "", "image query: file path, URL, or base64 string")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	filters := filterFlags{}
	fs.Var(filters, "filter", "metadata filter key=value (repeatable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" && *imageArg == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		QueryText: queryStr,
		TopK:      *topK,
	}
	if *imageArg != "" {
		img, err := imageQueryArg(*imageArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Image query failed: %v\n", err)
			os.Exit(1)
		}
		searchQuery.QueryImage = img
	}
	if len(filters) > 0 {
		searchQuery.FilterMetadata = make(map[string]any, len(filters))
		for k, v := range filters {
			searchQuery.FilterMetadata[k] = v
		}
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids concurrent SQLite access).
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Search(context.Background(), searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	StoreBackend        string `json:"store_backend"`
	EmbeddingBackend    string `json:"embedding_backend"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
}

// statusResponse is the shape of the GET /status response.
type statusResponse struct {
	Records          int                   `json:"records"`
	WatchDirectories []string              `json:"watch_directories,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		count, err := components.Store.Count(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count records failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Records: count,
			Config: &statusConfigResponse{
				StoreBackend:        components.Info.Backend,
				EmbeddingBackend:    components.Info.EmbeddingBackend,
				EmbeddingDimensions: components.Info.Dimensions,
			},
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("records:            %d   # count of stored vector records\n", status.Records)
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("store_backend:      %s\n", status.Config.StoreBackend)
			fmt.Printf("embedding_backend:  %s\n", status.Config.EmbeddingBackend)
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:     %d\n", status.Config.EmbeddingDimensions)
			}
		}
		for _, d := range status.WatchDirectories {
			fmt.Printf("watching:           %s\n", d)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	textArg := fs.String("text", "", "ingest a text string instead of a file")
	imageArg := fs.String("image", "", "ingest an image: file path, URL, or base64 string")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 && *textArg == "" && *imageArg == "" {
		fmt.Println("Usage: mitsuke ingest [flags] <file-or-directory>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()

	// Inline item ingestion via flags.
	if *textArg != "" || *imageArg != "" {
		item := &models.Item{Text: *textArg}
		if *imageArg != "" {
			img, err := imageQueryArg(*imageArg)
			if err != nil {
				fmt.Printf("Image input failed: %v\n", err)
				os.Exit(1)
			}
			item.Image = img
		}
		resp, err := components.Ingestor.Ingest(ctx, item)
		if err != nil {
			fmt.Printf("Ingestion failed: %v\n", err)
			os.Exit(1)
		}
		components.Snapshot(logger)
		fmt.Printf("Item ingested: entity %s, %d record(s)\n", resp.EntityID, len(resp.IDs))
		return
	}

	path := fs.Arg(0)
	fileIng := ingest.NewFileIngestor(components.Ingestor)
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := fileIng.IngestDirectory(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		components.Snapshot(logger)
		fmt.Printf("Ingested %d file(s) from %s\n", n, path)
		return
	}
	resp, err := fileIng.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	components.Snapshot(logger)
	fmt.Printf("File ingested: entity %s, %d record(s)\n", resp.EntityID, len(resp.IDs))
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: mitsuke watch <add|remove|list> [path]")
		fmt.Println("  mitsuke watch add <path>     Add directory to watch")
		fmt.Println("  mitsuke watch remove <path>  Remove directory from watch")
		fmt.Println("  mitsuke watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mitsuke watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]any{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mitsuke watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: mitsuke delete [flags] <record-id> [record-id...]")
		os.Exit(1)
	}
	ids := fs.Args()

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	removed, err := components.Ingestor.Delete(context.Background(), &models.DeleteRequest{IDs: ids})
	if err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	components.Snapshot(logger)
	fmt.Printf("Deleted %d of %d record(s)\n", removed, len(ids))
}

// Components holds initialized services.
type Components struct {
	Store    store.VectorStore
	Gateway  *embedding.Gateway
	Engine   *search.Engine
	Ingestor *ingest.Ingestor
	Info     server.StoreInfo

	snapshotPath string
}

func (c *Components) Close() {
	c.Snapshot(nil)
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Gateway != nil {
		_ = c.Gateway.Close()
	}
}

// Snapshot persists the memory backend to its snapshot file. Other backends
// persist on write, so this is a no-op for them.
func (c *Components) Snapshot(logger *zap.Logger) {
	ms, ok := c.Store.(*store.MemoryStore)
	if !ok || c.snapshotPath == "" {
		return
	}
	if err := ms.Save(c.snapshotPath); err != nil && logger != nil {
		logger.Warn("snapshot save failed", zap.String("path", c.snapshotPath), zap.Error(err))
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		if cfg.Embedding.Backend == config.EmbeddingBackendCLIP {
			// Model files missing is the common case in development.
			logger.Warn("embedding backend unavailable, falling back to mock", zap.Error(err))
			embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		} else {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	}

	gateway := embedding.NewGateway(
		embedder,
		cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.FetchTimeoutSeconds)*time.Second,
	)

	vs, err := store.NewVectorStore(&cfg.Store, gateway.Dimensions())
	if err != nil {
		_ = gateway.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Info("vector store initialized",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("dimensions", gateway.Dimensions()),
	)

	ingestor := ingest.NewIngestor(gateway, vs, logger)
	engine := search.NewEngine(gateway, vs, logger)

	snapshotPath := ""
	if cfg.Store.Backend == config.StoreBackendMemory {
		snapshotPath = cfg.Store.SnapshotPath
	}
	return &Components{
		Store:    vs,
		Gateway:  gateway,
		Engine:   engine,
		Ingestor: ingestor,
		Info: server.StoreInfo{
			Backend:          cfg.Store.Backend,
			EmbeddingBackend: cfg.Embedding.Backend,
			Dimensions:       gateway.Dimensions(),
		},
		snapshotPath: snapshotPath,
	}, nil
}

func printUsage() {
	fmt.Println(`mitsuke - Multimodal semantic search for text and images

Usage:
  mitsuke server [flags]           Start the HTTP server
  mitsuke search [flags] <query>   Search by text (or --image)
  mitsuke ingest [flags] <path>    Ingest a file or directory
  mitsuke delete [flags] <id>...   Delete records by id
  mitsuke status [flags]           Show store/embedding status
  mitsuke watch <add|remove|list>  Manage watched directories
  mitsuke version                  Show version
  mitsuke help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/mitsuke/config.yaml)
  --debug            Enable debug logging (requests, file events, etc.)

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --top-k int        Number of results, 1-100 (default: 10)
  --image string     Image query: file path, URL, or base64 string
  --filter key=value Metadata filter, repeatable
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --text string      Ingest a text string instead of a file
  --image string     Ingest an image: file path, URL, or base64 string

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  mitsuke server
  mitsuke search "sunset over the ocean"
  mitsuke search --image ./photo.jpg
  mitsuke search --filter category=art --top-k 20 beaches
  mitsuke ingest ./documents
  mitsuke ingest --text "a red bicycle" --image ./bike.jpg
  mitsuke delete 5f4ac7f2-1f6e-5c3a-9f0d-2a94c1e07b3d
  mitsuke status --output json
  mitsuke watch add /path/to/media`)
}
