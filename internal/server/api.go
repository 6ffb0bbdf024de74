package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/quote"
)

type quoteResponse struct {
	Session string     `json:"session"`
	Moved   *bool      `json:"moved,omitempty"`
	View    quote.View `json:"view"`
}

type linkResponse struct {
	Link string `json:"link"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Field string      `json:"field,omitempty"`
	View  *quote.View `json:"view,omitempty"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (s *Server) apiGetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := s.openVisit(ctx, r)
	if err != nil {
		s.internalError(w, "failed to load session", err)
		return
	}
	defer v.release()
	s.respondQuote(w, r, v, nil)
}

// apiSetFields applies fields in form order, so a vehicle type lands before
// the selects whose options it drives. Any field may be set regardless of the
// current step; the referral code is rejected.
func (s *Server) apiSetFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	v, ok := s.requireVisit(w, r)
	if !ok {
		return
	}
	defer v.release()

	for _, name := range s.formOrder(req.Fields) {
		f := quote.Field(name)
		if err := v.ctrl.SetField(f, s.clean(f, req.Fields[name])); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, quote.ErrUnknownField) || errors.Is(err, quote.ErrReadOnlyField) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err.Error(), name)
			return
		}
	}
	s.respondQuote(w, r, v, nil)
}

// formOrder lists the keys of fields in step placement order. Keys the form
// does not place follow in name order.
func (s *Server) formOrder(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	placed := make(map[string]struct{}, len(fields))
	for _, step := range s.def.Steps() {
		for _, f := range step.Fields {
			if _, ok := fields[string(f)]; ok {
				names = append(names, string(f))
				placed[string(f)] = struct{}{}
			}
		}
	}
	rest := make([]string, 0, len(fields)-len(names))
	for name := range fields {
		if _, ok := placed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func (s *Server) apiAdvance(w http.ResponseWriter, r *http.Request) {
	s.apiMove(w, r, (*quote.Controller).Advance)
}

func (s *Server) apiRetreat(w http.ResponseWriter, r *http.Request) {
	s.apiMove(w, r, (*quote.Controller).Retreat)
}

func (s *Server) apiMove(w http.ResponseWriter, r *http.Request, move func(*quote.Controller) bool) {
	v, ok := s.requireVisit(w, r)
	if !ok {
		return
	}
	defer v.release()
	s.settle(r.Context(), v)
	moved := move(v.ctrl)
	s.respondQuote(w, r, v, &moved)
}

func (s *Server) apiSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, ok := s.requireVisit(w, r)
	if !ok {
		return
	}
	defer v.release()
	s.settle(ctx, v)

	link, err := v.ctrl.Submit(ctx)
	if errors.Is(err, quote.ErrSubmitBlocked) {
		view := v.ctrl.View()
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), View: &view})
		return
	}
	if err != nil {
		s.internalError(w, "submit failed", err)
		return
	}
	s.endVisit(ctx, w, v)
	writeJSON(w, http.StatusOK, linkResponse{Link: link})
}

func (s *Server) apiContact(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller()
	defer ctrl.Close()
	link, err := ctrl.Contact(r.Context())
	if err != nil {
		s.internalError(w, "contact failed", err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{Link: link})
}

func (s *Server) requireVisit(w http.ResponseWriter, r *http.Request) (*visit, bool) {
	v, err := s.loadVisit(r.Context(), r)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return nil, false
	}
	if err != nil {
		s.internalError(w, "failed to load session", err)
		return nil, false
	}
	return v, true
}

func (s *Server) respondQuote(w http.ResponseWriter, r *http.Request, v *visit, moved *bool) {
	if err := s.saveVisit(r.Context(), w, v); err != nil {
		s.internalError(w, "failed to save session", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Session: v.id, Moved: moved, View: v.ctrl.View()})
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}
