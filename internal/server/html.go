package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/quote"
	"github.com/goliatone/go-quoteform/pkg/render"
)

const (
	noticeStale   = "stale"
	noticeExpired = "expired"
)

var noticeText = map[string]string{
	noticeStale:   "O formulário mudou em outra aba. Confira esta etapa antes de continuar.",
	noticeExpired: "Sua sessão expirou. Recomeçamos a cotação.",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := s.openVisit(ctx, r)
	if err != nil {
		s.logger.Error("failed to load session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer v.release()

	if err := s.saveVisit(ctx, w, v); err != nil {
		s.logger.Error("failed to save session", "session_id", v.id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var notices []string
	if text, ok := noticeText[r.URL.Query().Get("notice")]; ok {
		notices = append(notices, text)
	}
	s.renderPage(ctx, w, v.ctrl.View(), notices)
}

func (s *Server) renderPage(ctx context.Context, w http.ResponseWriter, view quote.View, notices []string) {
	body, err := s.renderer.Render(ctx, view, render.RenderOptions{
		Action:       "/step",
		ContactURL:   "/contact",
		Hidden:       render.HiddenFields(render.StepField(view.Step)),
		Notices:      notices,
		ThemeVariant: s.themeVariant,
	})
	if err != nil {
		s.logger.Error("failed to render form", "renderer", s.renderer.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleStep applies the posted fields of the current step, then the
// requested action, and redirects back to the page.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	v, err := s.loadVisit(ctx, r)
	if errors.Is(err, session.ErrNotFound) {
		redirectNotice(w, r, noticeExpired)
		return
	}
	if err != nil {
		s.logger.Error("failed to load session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer v.release()

	posted, err := strconv.Atoi(r.PostForm.Get("_step"))
	if err != nil || posted != v.ctrl.Step() {
		s.logger.Info("stale step submission", "session_id", v.id, "posted", r.PostForm.Get("_step"), "step", v.ctrl.Step())
		redirectNotice(w, r, noticeStale)
		return
	}

	s.applyStep(v, r.PostForm)
	s.settle(ctx, v)

	switch action := r.PostForm.Get("action"); action {
	case "next":
		v.ctrl.Advance()
	case "back":
		v.ctrl.Retreat()
	case "submit":
		link, err := v.ctrl.Submit(ctx)
		if err == nil {
			s.endVisit(ctx, w, v)
			http.Redirect(w, r, link, http.StatusSeeOther)
			return
		}
		if !errors.Is(err, quote.ErrSubmitBlocked) {
			s.logger.Error("submit failed", "session_id", v.id, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	case "update", "":
	default:
		s.logger.Debug("ignoring unknown form action", "action", action)
	}

	if err := s.saveVisit(ctx, w, v); err != nil {
		s.logger.Error("failed to save session", "session_id", v.id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyStep writes posted values for the fields placed on the current step.
// Unchanged values are skipped so an untouched postal code does not restart
// its lookup.
func (s *Server) applyStep(v *visit, form url.Values) {
	step, ok := s.def.Step(v.ctrl.Step())
	if !ok {
		return
	}
	for _, f := range step.Fields {
		if _, posted := form[string(f)]; !posted {
			continue
		}
		value := s.clean(f, form.Get(string(f)))
		if v.ctrl.Get(f) == value {
			continue
		}
		if err := v.ctrl.SetField(f, value); err != nil {
			s.logger.Warn("rejected form field", "session_id", v.id, "field", f, "error", err)
		}
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller()
	defer ctrl.Close()
	link, err := ctrl.Contact(r.Context())
	if err != nil {
		s.logger.Error("contact failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}

func redirectNotice(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}
