package web

// handlers_common.go contains shared helpers used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/deeptable/internal/view"
)

// MaxBodySize bounds request bodies; none carries more than a few refinements.
const MaxBodySize = 64 * 1024

// decodeBody decodes a JSON request body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// session returns the session named in the URL.
func (s *Server) session(r *http.Request) (*Session, error) {
	return s.sessions.Get(chi.URLParam(r, "sessionID"))
}

// rowIndex parses the {index} URL parameter. Anything that is not a
// displayed index reports ErrRowOutOfRange.
func rowIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &view.MutationError{Op: "row " + strconv.Quote(raw), Err: view.ErrRowOutOfRange}
	}
	return i, nil
}

// mutate applies fn to the session named in the URL and writes the
// resulting page.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(t *view.Table) error) {
	sess, err := s.session(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	page, err := sess.Do(fn)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}
