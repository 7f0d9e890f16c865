package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/logging"
	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/source"
	"github.com/JonMunkholm/deeptable/internal/view"
)

// handleRow returns one displayed record.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	index, err := rowIndex(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	var row record.Record
	sess.View(func(t *view.Table) {
		row, err = t.Row(index)
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleAddRow notifies the add hook. Records are never changed by the
// server; the event tells the caller what to act on.
func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	s.notify(w, r, func(t *view.Table) error {
		t.OnAdd()
		return nil
	})
}

// handleEditRow notifies the edit hook with a displayed row.
func (s *Server) handleEditRow(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.notify(w, r, func(t *view.Table) error {
		return t.OnEdit(index)
	})
}

// handleDeleteRow notifies the delete hook with a displayed row.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.notify(w, r, func(t *view.Table) error {
		return t.OnDelete(index)
	})
}

// notify runs a hook on the session named in the URL and answers 202 with
// the event.
func (s *Server) notify(w http.ResponseWriter, r *http.Request, fn func(t *view.Table) error) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	event, err := sess.Notify(fn)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logger := logging.WithFields(r.Context(), "session", sess.ID, "action", event.Action)
	if event.Index != nil {
		logger = logger.With("index", *event.Index)
	}
	logger.Info("row action requested")

	writeJSON(w, http.StatusAccepted, event)
}

// handleExport downloads every displayed row of the visible columns as CSV,
// in display order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	var cols []column.Column
	var rows []record.Record
	sess.View(func(t *view.Table) {
		for _, c := range t.Columns() {
			if c.Visible() {
				cols = append(cols, c)
			}
		}
		rows = t.Displayed()
	})

	// Buffer so a write failure can still become an error response.
	var buf bytes.Buffer
	if err := source.WriteCSV(&buf, cols, rows); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("view_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())

	logging.FromContext(r.Context()).Info("view exported",
		"session", sess.ID,
		"rows", len(rows),
		"columns", len(cols),
	)
}
