package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/testgen/internal/handler/views"
	appI18n "github.com/pavelanni/testgen/internal/i18n"
	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/quiz"
	"github.com/pavelanni/testgen/internal/report"
	"github.com/pavelanni/testgen/internal/workspace"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	workspaces *workspace.Registry
	selector   *quiz.Selector
	config     model.Config
	now        func() time.Time
}

// New creates a new Handler.
func New(reg *workspace.Registry, sel *quiz.Selector, cfg model.Config) (*Handler, error) {
	if reg == nil || sel == nil {
		return nil, errors.New("handler: registry and selector are required")
	}
	if cfg.MaxQuestions <= 0 {
		return nil, errors.New("handler: max questions must be positive")
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		cfg.BasePath = "/" + cfg.BasePath
	}
	if cfg.DefaultQuestions <= 0 || cfg.DefaultQuestions > cfg.MaxQuestions {
		cfg.DefaultQuestions = min(5, cfg.MaxQuestions)
	}
	return &Handler{workspaces: reg, selector: sel, config: cfg, now: time.Now}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(h.limitBody)
		r.Use(h.workspaceMiddleware)
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleIndex)
		r.Post("/upload", h.handleUpload)
		r.Post("/test", h.handleGenerate)
		r.Get("/test", h.handleTestPage)
		r.Post("/test/submit", h.handleSubmit)
		r.Get("/results", h.handleResults)
		r.Get("/results/export.{format}", h.handleExport)
		r.Get("/results/chart/{kind}.png", h.handleChart)
	})
}

// Mount registers the routes on r, under the configured base path if any.
func (h *Handler) Mount(r chi.Router) {
	basePath := h.config.BasePath
	if basePath == "" {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
		return
	}
	r.Route(basePath, func(sub chi.Router) {
		sub.Use(h.BasePathMiddleware)
		h.Routes(sub)
	})
	r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) indexData(tbl *model.Table) views.IndexData {
	d := views.IndexData{
		Table:    tbl,
		Count:    h.config.DefaultQuestions,
		MaxCount: h.config.MaxQuestions,
	}
	if tbl != nil {
		d.TopicCount = make(map[string]int)
		for _, q := range tbl.Questions {
			d.TopicCount[q.Topic]++
		}
	}
	return d
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ws := workspace.FromContext(r.Context())
	d := h.indexData(ws.Table())
	if s := ws.Session(); s != nil {
		d.Filter = s.Filter
		d.UserName = s.UserName
		if n := s.Len(); n > 0 {
			d.Count = min(n, h.config.MaxQuestions)
		}
	}
	render(w, r, http.StatusOK, views.IndexPage(d, nil))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspace.FromContext(ctx)
	tbl := ws.Table()

	f := model.Filter{
		Topic:      strings.TrimSpace(r.FormValue("topic")),
		Difficulty: strings.TrimSpace(r.FormValue("difficulty")),
	}
	userName := strings.TrimSpace(r.FormValue("user_name"))
	d := h.indexData(tbl)
	d.Filter, d.UserName = f, userName

	if tbl == nil {
		render(w, r, http.StatusBadRequest, views.IndexPage(d, views.ErrorFlash(appI18n.T(ctx, "NoBank"))))
		return
	}
	count, err := strconv.Atoi(r.FormValue("count"))
	if err != nil || count < 1 || count > h.config.MaxQuestions {
		msg := appI18n.Td(ctx, "InvalidCount", map[string]any{"Max": h.config.MaxQuestions})
		render(w, r, http.StatusBadRequest, views.IndexPage(d, views.ErrorFlash(msg)))
		return
	}
	d.Count = count
	if f.Topic == "" {
		render(w, r, http.StatusBadRequest, views.IndexPage(d, views.ErrorFlash(appI18n.T(ctx, "TopicRequired"))))
		return
	}
	if !tbl.HasDifficulty {
		f.Difficulty = ""
	} else if f.Difficulty == "" {
		render(w, r, http.StatusBadRequest, views.IndexPage(d, views.ErrorFlash(appI18n.T(ctx, "DifficultyRequired"))))
		return
	}

	questions, err := h.selector.Select(tbl, f, count)
	if errors.Is(err, quiz.ErrNoMatch) {
		ws.StartSession(nil)
		slog.Info("no questions match filter", "topic", f.Topic, "difficulty", f.Difficulty)
		render(w, r, http.StatusOK, views.IndexPage(d, views.InfoFlash(appI18n.T(ctx, "NoMatch"))))
		return
	}
	if err != nil {
		slog.Error("failed to select questions", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s := quiz.NewSession(userName, f, questions)
	ws.StartSession(s)
	slog.Info("generated test",
		"session", s.ID,
		"topic", f.Topic,
		"difficulty", f.Difficulty,
		"requested", count,
		"questions", s.Len(),
	)
	http.Redirect(w, r, h.path("/test"), http.StatusSeeOther)
}

func (h *Handler) handleTestPage(w http.ResponseWriter, r *http.Request) {
	ws := workspace.FromContext(r.Context())
	var buf bytes.Buffer
	// Render under the lock: the page reads recorded answers.
	err := ws.WithSession(func(s *quiz.Session) error {
		return views.TestPage(s, nil).Render(r.Context(), &buf)
	})
	switch {
	case errors.Is(err, workspace.ErrNoSession):
		render(w, r, http.StatusOK, views.TestPage(nil, nil))
	case err != nil:
		slog.Error("failed to render test page", "error", err)
		http.Error(w, "failed to render test", http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			slog.Warn("failed to write test page", "error", err)
		}
	}
}

// formOptions reads the q<ID> radio values of every question in the test.
// An empty value clears the question.
func formOptions(r *http.Request, s *quiz.Session) (map[int]int, error) {
	opts := make(map[int]int, len(s.Questions))
	for _, q := range s.Questions {
		v := r.FormValue("q" + strconv.Itoa(q.ID))
		if v == "" {
			opts[q.ID] = 0
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("question %d answer %q: %w", q.ID, v, quiz.ErrInvalidOption)
		}
		opts[q.ID] = n
	}
	return opts, nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspace.FromContext(ctx)

	var rep *model.Report
	err := ws.WithSession(func(s *quiz.Session) error {
		opts, err := formOptions(r, s)
		if err != nil {
			return err
		}
		if err := s.RecordAll(opts); err != nil {
			return err
		}
		entries, sum, err := s.Score()
		if err != nil {
			return err
		}
		built := report.New(s.UserName, s.Filter, entries, sum, h.now())
		rep = &built
		slog.Info("scored test",
			"session", s.ID,
			"total", sum.Total,
			"correct", sum.Correct,
			"incorrect", sum.Incorrect,
			"omitted", sum.Omitted,
		)
		return nil
	})
	switch {
	case errors.Is(err, workspace.ErrNoSession):
		http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
		return
	case errors.Is(err, quiz.ErrInvalidOption), errors.Is(err, quiz.ErrUnknownQuestion):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("failed to score test", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ws.SetReport(rep)
	http.Redirect(w, r, h.path("/results"), http.StatusSeeOther)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ws := workspace.FromContext(r.Context())
	render(w, r, http.StatusOK, views.ResultsPage(ws.Report()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rep := workspace.FromContext(r.Context()).Report()
	if rep == nil {
		http.Error(w, "no results to export", http.StatusNotFound)
		return
	}
	format, err := report.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	data, err := report.Render(format, *rep, views.Labels(r.Context()))
	if err != nil {
		slog.Error("export failed", "format", format, "error", err)
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	name := report.Filename("results", rep.UserName, format, rep.GeneratedAt)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write export", "format", format, "error", err)
	}
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	rep := workspace.FromContext(r.Context()).Report()
	if rep == nil {
		http.Error(w, "no results", http.StatusNotFound)
		return
	}
	kind := chi.URLParam(r, "kind")
	if kind != report.ChartProportion && kind != report.ChartMagnitude {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	err := report.RenderChart(&buf, kind, rep.Summary, views.Labels(r.Context()))
	if errors.Is(err, report.ErrNoData) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("chart failed", "kind", kind, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
