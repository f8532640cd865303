package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/testgen/internal/bank"
	"github.com/pavelanni/testgen/internal/handler"
	appI18n "github.com/pavelanni/testgen/internal/i18n"
	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/quiz"
	"github.com/pavelanni/testgen/internal/workspace"
)

//go:generate templ generate -path ../..

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "testgen",
		Short: "Multiple-choice test generator and scorer",
	}

	serve := serveCmd()
	root.AddCommand(serve, sampleCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `testgen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP test server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "UI language (en, es, or auto to follow the browser)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.IntP("num-questions", "n", 5, "Default number of questions in the generation form")
	f.Int("max-questions", 20, "Maximum number of questions per test")
	f.Int("max-upload-mb", 10, "Maximum size of an uploaded question bank in MiB")
	f.Duration("workspace-ttl", 2*time.Hour, "Discard browser workspaces idle for this long")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a test from a question bank and print it as JSON",
		RunE:  runSample,
	}
	f := cmd.Flags()
	f.StringP("file", "f", "", "Question bank (.csv or .xlsx)")
	f.StringP("topic", "t", "", "Topic to draw from")
	f.StringP("difficulty", "d", "", "Difficulty to draw from")
	f.IntP("num-questions", "n", 5, "Number of questions (0 = all matching)")
	f.Uint64("seed", 0, "Random seed for a reproducible draw (0 = random)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
// Variables from a .env file in the working directory are loaded first and
// never override the real environment.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("TESTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("testgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/testgen")
	v.AddConfigPath("/etc/testgen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang, err := appI18n.Resolve(v.GetString("lang"))
	if err != nil {
		return fmt.Errorf("resolve language: %w", err)
	}
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	maxUploadMB := v.GetInt("max-upload-mb")
	if maxUploadMB <= 0 {
		return fmt.Errorf("max-upload-mb must be positive, got %d", maxUploadMB)
	}
	cfg := model.Config{
		DefaultQuestions: v.GetInt("num-questions"),
		MaxQuestions:     v.GetInt("max-questions"),
		MaxUploadBytes:   int64(maxUploadMB) << 20,
		BasePath:         v.GetString("base-path"),
		SecureCookies:    v.GetBool("secure-cookies"),
		WorkspaceTTL:     v.GetDuration("workspace-ttl"),
	}
	if cfg.WorkspaceTTL <= 0 {
		return fmt.Errorf("workspace-ttl must be positive, got %s", cfg.WorkspaceTTL)
	}

	registry := workspace.NewRegistry()
	stopJanitor, err := workspace.StartJanitor(registry, cfg.WorkspaceTTL, janitorInterval(cfg.WorkspaceTTL))
	if err != nil {
		return fmt.Errorf("start workspace janitor: %w", err)
	}
	defer stopJanitor()

	h, err := handler.New(registry, quiz.NewSelector(nil), cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Mount(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"num_questions", cfg.DefaultQuestions,
		"max_questions", cfg.MaxQuestions,
		"max_upload_mb", maxUploadMB,
		"workspace_ttl", cfg.WorkspaceTTL,
		"base_path", cfg.BasePath,
	)
	return http.ListenAndServe(addr, r)
}

// janitorInterval sweeps a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}

func runSample(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	path := v.GetString("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()

	tbl, err := bank.Load(filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	var src rand.Source
	if seed := v.GetUint64("seed"); seed != 0 {
		src = rand.NewPCG(seed, seed)
	}
	sel := quiz.NewSelector(src)

	filter := model.Filter{
		Topic:      v.GetString("topic"),
		Difficulty: v.GetString("difficulty"),
	}
	n := v.GetInt("num-questions")
	questions, err := sel.Select(tbl, filter, n)
	if err != nil && !errors.Is(err, quiz.ErrNoMatch) {
		return fmt.Errorf("select questions: %w", err)
	}
	if errors.Is(err, quiz.ErrNoMatch) {
		slog.Warn("no questions match filter", "topic", filter.Topic, "difficulty", filter.Difficulty)
	}

	export := model.SampleExport{
		Source:    tbl.Source,
		Filter:    filter,
		Requested: n,
		Available: len(quiz.Matching(tbl, filter)),
		Questions: questions,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
		w = out
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}
