package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/pavelanni/testgen/internal/bank"
	"github.com/pavelanni/testgen/internal/handler/views"
	appI18n "github.com/pavelanni/testgen/internal/i18n"
	"github.com/pavelanni/testgen/internal/workspace"
)

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspace.FromContext(ctx)

	fail := func(msg string) {
		render(w, r, http.StatusBadRequest, views.IndexPage(h.indexData(ws.Table()), views.ErrorFlash(msg)))
	}

	file, header, err := r.FormFile("questions_file")
	if err != nil {
		fail(appI18n.T(ctx, "UploadMissingFile"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !bank.Supported(name) {
		slog.Info("rejected upload", "filename", name, "reason", "unsupported format")
		fail(appI18n.T(ctx, "UploadUnsupported"))
		return
	}

	tbl, err := bank.Load(name, file)
	if err != nil {
		slog.Info("rejected upload", "filename", name, "error", err)
		if errors.Is(err, bank.ErrUnsupportedFormat) {
			fail(appI18n.T(ctx, "UploadUnsupported"))
			return
		}
		fail(appI18n.Td(ctx, "UploadFailed", map[string]any{"Error": err.Error()}))
		return
	}

	ws.SetTable(tbl)
	slog.Info("uploaded question bank", "filename", name, "questions", tbl.Len(), "difficulty", tbl.HasDifficulty)

	msg := appI18n.Td(ctx, "BankLoaded", map[string]any{"Count": tbl.Len(), "Source": tbl.Source})
	render(w, r, http.StatusOK, views.IndexPage(h.indexData(tbl), views.InfoFlash(msg)))
}
