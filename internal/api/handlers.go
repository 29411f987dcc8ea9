package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pedigree/pkg/buildinfo"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/httputil"
	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/selection"
	"github.com/matzehuels/pedigree/pkg/session"
)

type createRequest struct {
	Owner string `json:"owner"`
	Root  string `json:"root"`
}

type rootRequest struct {
	Root string `json:"root"`
}

type clickRequest struct {
	ID   string             `json:"id"`
	Type selection.NodeType `json:"type"`
}

type dragRequest struct {
	ID string   `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

type sceneResponse struct {
	ID    string                           `json:"id"`
	Owner string                           `json:"owner"`
	Scene *render.Scene[record.Attributes] `json:"scene"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Build    buildinfo.Info `json:"build"`
	Sessions int            `json:"sessions"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Build:    buildinfo.Current(),
		Sessions: s.sessions.Len(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Owner == "" {
		req.Owner = s.defaultOwner
	}
	if err := pederrors.ValidateOwner(req.Owner); err != nil {
		httputil.WriteError(w, err)
		return
	}

	engine, err := s.runner.Open(r.Context(), req.Owner, req.Root)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// The first pass writes the position cache; finish it before sharing.
	scene := engine.Scene()
	sess := session.New(req.Owner, engine)
	s.sessions.Set(sess)
	s.logger.Info("session opened", "session", sess.ID, "owner", req.Owner, "root", req.Root)

	httputil.WriteJSON(w, http.StatusCreated, sceneResponse{
		ID:    sess.ID,
		Owner: sess.Owner,
		Scene: scene,
	})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*session.Session[record.Attributes]) error { return nil })
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	var req rootRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := pederrors.ValidateIndividualID(req.Root); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session[record.Attributes]) error {
		sess.Engine.SetRoot(req.Root)
		return nil
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := pederrors.ValidateIndividualID(req.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Type == "" {
		req.Type = selection.TypeIndividual
	}
	if req.Type != selection.TypeIndividual && req.Type != selection.TypeGroup {
		httputil.WriteError(w, pederrors.New(pederrors.ErrCodeInvalidInput,
			"node type must be %q or %q, got %q", selection.TypeIndividual, selection.TypeGroup, req.Type))
		return
	}
	s.withSession(w, r, func(sess *session.Session[record.Attributes]) error {
		if err := inScene(sess, req.ID); err != nil {
			return err
		}
		sess.Engine.NodeClicked(req.ID, req.Type)
		return nil
	})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := pederrors.ValidateIndividualID(req.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		httputil.WriteError(w, pederrors.New(pederrors.ErrCodeInvalidInput, "x and y are required"))
		return
	}
	s.withSession(w, r, func(sess *session.Session[record.Attributes]) error {
		if err := inScene(sess, req.ID); err != nil {
			return err
		}
		sess.Engine.NodeDragged(req.ID, *req.X, *req.Y)
		return nil
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormats([]string{format}); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess, err := s.session(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess.Lock()
	result, err := s.runner.Render(r.Context(), sess.Engine, []string{format})
	sess.Unlock()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+result.SceneHash+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := s.sessions.Delete(id)
	if sess == nil {
		httputil.WriteError(w, sessionNotFound(id))
		return
	}

	sess.Lock()
	err := s.runner.Save(r.Context(), sess.Owner, sess.Engine)
	sess.Unlock()
	if err != nil {
		s.logger.Warn("save positions", "session", id, "err", err)
		httputil.WriteError(w, err)
		return
	}
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// withSession runs fn with the session locked and responds with the
// resulting scene.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session[record.Attributes]) error) {
	sess, err := s.session(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess.Lock()
	err = fn(sess)
	var scene *render.Scene[record.Attributes]
	if err == nil {
		scene = sess.Engine.Scene()
	}
	sess.Unlock()

	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sceneResponse{ID: sess.ID, Owner: sess.Owner, Scene: scene})
}

func (s *Server) session(r *http.Request) (*session.Session[record.Attributes], error) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		return nil, pederrors.New(pederrors.ErrCodeInvalidID, "invalid session id %q", id)
	}
	sess, err := s.sessions.Get(id)
	switch {
	case errors.Is(err, session.ErrExpired):
		return nil, pederrors.Wrap(pederrors.ErrCodeSessionNotFound, err, "session %q expired", id)
	case err != nil:
		return nil, sessionNotFound(id)
	}
	return sess, nil
}

// inScene fails with NOT_FOUND unless id is a node of the session's current
// scene. The caller holds the session lock.
func inScene(sess *session.Session[record.Attributes], id string) error {
	if _, ok := sess.Engine.Scene().Node(id); !ok {
		return pederrors.New(pederrors.ErrCodeNotFound, "node %q is not in the scene", id)
	}
	return nil
}

func sessionNotFound(id string) error {
	return pederrors.New(pederrors.ErrCodeSessionNotFound, "session %q not found", id)
}
