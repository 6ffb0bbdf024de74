package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-quoteform/internal/session"
	"github.com/goliatone/go-quoteform/pkg/quote"
)

// visit is one request's view of a session: the id, a controller restored
// from the store, and the stripe lock held until release.
type visit struct {
	id     string
	ctrl   *quote.Controller
	unlock func()
}

func (v *visit) release() {
	v.ctrl.Close()
	if v.unlock != nil {
		v.unlock()
	}
}

// loadVisit restores the session named by the request cookie. It returns
// session.ErrNotFound when the cookie is missing, malformed or expired.
func (s *Server) loadVisit(ctx context.Context, r *http.Request) (*visit, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || !session.ValidID(cookie.Value) {
		return nil, session.ErrNotFound
	}
	id := cookie.Value
	unlock := s.locks.lock(id)

	snap, err := s.store.Get(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	ctrl := s.controller()
	ctrl.Restore(snap)
	return &visit{id: id, ctrl: ctrl, unlock: unlock}, nil
}

// newVisit starts a session seeded with referral.
func (s *Server) newVisit(referral string) *visit {
	id := session.NewID()
	ctrl := s.controller()
	ctrl.Seed(referral)
	s.logger.Info("session started", "session_id", id, "referral", referral != "")
	return &visit{id: id, ctrl: ctrl, unlock: s.locks.lock(id)}
}

// openVisit resumes the cookie session, or starts one when the request
// carries a ref query parameter or no usable session.
func (s *Server) openVisit(ctx context.Context, r *http.Request) (*visit, error) {
	query := r.URL.Query()
	if _, ok := query["ref"]; ok {
		return s.newVisit(query.Get("ref")), nil
	}
	v, err := s.loadVisit(ctx, r)
	if errors.Is(err, session.ErrNotFound) {
		return s.newVisit(""), nil
	}
	return v, err
}

// settle waits, bounded by lookupWait, for in-flight postal lookups so their
// merge is part of the saved snapshot.
func (s *Server) settle(ctx context.Context, v *visit) {
	if !v.ctrl.Pending() {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.lookupWait)
	defer cancel()
	if err := v.ctrl.Await(waitCtx); err != nil {
		s.logger.Warn("postal lookup still pending at save", "session_id", v.id, "error", err)
	}
}

func (s *Server) saveVisit(ctx context.Context, w http.ResponseWriter, v *visit) error {
	s.settle(ctx, v)
	if err := s.store.Save(ctx, v.id, v.ctrl.Snapshot()); err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(v.id))
	return nil
}

// endVisit deletes the session after a successful submission.
func (s *Server) endVisit(ctx context.Context, w http.ResponseWriter, v *visit) {
	if err := s.store.Delete(ctx, v.id); err != nil {
		s.logger.Warn("failed to delete session", "session_id", v.id, "error", err)
	}
	expired := s.cookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)
}

func (s *Server) cookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if s.sessionTTL > 0 {
		c.MaxAge = int(s.sessionTTL.Seconds())
	}
	return c
}
