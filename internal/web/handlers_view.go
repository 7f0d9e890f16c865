package web

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/deeptable/internal/logging"
	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/view"
)

// createSessionRequest holds the optional settings of a new session.
type createSessionRequest struct {
	PageSize int         `json:"pageSize"`
	Flags    *view.Flags `json:"flags"`
}

// createSessionResponse is the id of the new session and its first page.
type createSessionResponse struct {
	ID   string    `json:"id"`
	Page view.Page `json:"page"`
}

// handleHealth reports liveness and the number of open sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleListColumns returns the column definitions of the dataset.
func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Columns)
}

// handleCreateSession opens a view over the current dataset.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	pageSize := s.cfg.View.PageSize
	if req.PageSize != 0 {
		pageSize = req.PageSize
	}

	sess := newSession()
	table, err := view.New(s.data.Columns, s.data.Records(), view.Config{
		Flags:    req.Flags,
		PageSize: pageSize,
		Locale:   s.cfg.LocaleTag(),
		Hooks:    sess.hooks(),
		Logger:   slog.Default().With("session", sess.ID),
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	sess.table = table

	if err := s.sessions.Add(sess); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("session opened",
		"session", sess.ID,
		"rows", table.RawRowCount(),
		"open", s.sessions.Len(),
	)

	page, _ := sess.Do(func(*view.Table) error { return nil })
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: sess.ID, Page: page})
}

// handleSnapshot returns the current page of a session.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(*view.Table) error { return nil })
}

// handleCloseSession removes a session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Remove(id); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	logging.FromContext(r.Context()).Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSetSearch sets the search term of a column.
func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if err := decodeBody(w, r, &req, false); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	columnID := chi.URLParam(r, "columnID")
	s.mutate(w, r, func(t *view.Table) error {
		return t.SetSearchTerm(columnID, req.Term)
	})
}

// handleSetFilter sets the filter of a column. A null value unsets it.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value any `json:"value"`
	}
	if err := decodeBody(w, r, &req, false); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	columnID := chi.URLParam(r, "columnID")
	s.mutate(w, r, func(t *view.Table) error {
		return t.SetFilterValue(columnID, req.Value)
	})
}

// handleClearFilter unsets the filter of a column.
func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	s.mutate(w, r, func(t *view.Table) error {
		return t.SetFilterValue(columnID, nil)
	})
}

// handleCandidates returns the values offered by a column's filter.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	columnID := chi.URLParam(r, "columnID")
	var values []any
	sess.View(func(t *view.Table) {
		values, err = t.FilterCandidates(columnID)
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"column": columnID,
		"values": values,
	})
}

// handleToggleSort advances the sort cycle of a column.
func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	s.mutate(w, r, func(t *view.Table) error {
		return t.ToggleSort(columnID)
	})
}

// handleClear removes every refinement.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(t *view.Table) error {
		t.ClearRefinements()
		return nil
	})
}

// handleSetPage moves to a page; out-of-range pages are clamped.
func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if err := decodeBody(w, r, &req, false); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	s.mutate(w, r, func(t *view.Table) error {
		t.SetPage(req.Page)
		return nil
	})
}

// handleSetPageSize changes the page size.
func (s *Server) handleSetPageSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := decodeBody(w, r, &req, false); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	s.mutate(w, r, func(t *view.Table) error {
		return t.SetPageSize(req.Size)
	})
}

// batchRequest lists mutations applied with one recomputation. They run in
// field order: clear, search, filter, sort toggles, page size, page. Search
// and filter columns are applied in id order.
type batchRequest struct {
	Clear    bool              `json:"clear"`
	Search   map[string]string `json:"search"`
	Filter   map[string]any    `json:"filter"`
	Sort     []string          `json:"sort"`
	PageSize int               `json:"pageSize"`
	Page     int               `json:"page"`
}

// apply queues the request on b.
func (req batchRequest) apply(b *view.Batch) error {
	if req.Clear {
		b.ClearRefinements()
	}
	for _, id := range slices.Sorted(maps.Keys(req.Search)) {
		if err := b.SetSearchTerm(id, req.Search[id]); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(req.Filter)) {
		if err := b.SetFilterValue(id, req.Filter[id]); err != nil {
			return err
		}
	}
	for _, id := range req.Sort {
		if err := b.ToggleSort(id); err != nil {
			return err
		}
	}
	if req.PageSize != 0 {
		if err := b.SetPageSize(req.PageSize); err != nil {
			return err
		}
	}
	if req.Page != 0 {
		b.SetPage(req.Page)
	}
	return nil
}

// handleBatch applies several mutations at once. On error none of them
// take effect.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	s.mutate(w, r, func(t *view.Table) error {
		return t.Batch(req.apply)
	})
}

// handleReload re-reads the dataset from its source and swaps it into the
// session. The dataset is only updated when the session accepts the new
// records, so later sessions never start from an invalid set.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if s.data.Loader == nil {
		respondError(w, r, errNoLoader, statusFor(errNoLoader))
		return
	}

	logger := logging.WithFields(r.Context(), "session", sess.ID)

	records, err := s.load(r.Context())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		respondError(w, r, err, status)
		return
	}

	page, err := sess.Do(func(t *view.Table) error {
		return t.ReplaceRecords(records)
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.data.setRecords(records)

	logger.Info("dataset reloaded", "rows", len(records), "displayed", page.TotalRows)
	writeJSON(w, http.StatusOK, page)
}

// load reads the source within the load limiter and timeout.
func (s *Server) load(ctx context.Context) ([]record.Record, error) {
	if err := s.loads.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.loads.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Source.LoadTimeout)
	defer cancel()

	records, err := s.data.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}
	return records, nil
}
