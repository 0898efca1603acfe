package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/errors"
	grapherr "github.com/teranos/atomspace/graph/error"
	"github.com/teranos/atomspace/version"
)

// chaseResponse is the body of /api/chase
type chaseResponse struct {
	Start   atom.Handle   `json:"start"`
	Type    string        `json:"type"`
	From    int           `json:"from"`
	To      int           `json:"to"`
	Matches []chase.Match `json:"matches"`
}

// HandleHealth reports liveness and the running version
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	info := version.Get()
	_ = writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Short(),
	})
}

// HandleGraph answers GET /api/graph?q=<query> with a neighbourhood graph.
// Failed queries still return a graph body, carrying the error in its meta.
func (s *Server) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	_, _, builder := s.bind(r.Context())
	g, err := builder.BuildFromQuery(r.Context(), r.URL.Query().Get("q"))
	status := http.StatusOK
	if err != nil {
		status = graphStatus(err)
		s.logger.Debugw("Graph query failed", "status", status, "error", err)
	}
	if err := writeJSON(w, status, g); err != nil {
		s.logger.Warnw("Failed to write graph", "error", err)
	}
}

// HandleChase answers GET /api/chase?atom=&type=&from=&to= with every match.
// from and to default to 0 and 1.
func (s *Server) HandleChase(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	params := r.URL.Query()
	resp, err := s.chase(r.Context(), params.Get("atom"), params.Get("type"), params.Get("from"), params.Get("to"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	_ = writeJSON(w, http.StatusOK, resp)
}

func (s *Server) chase(ctx context.Context, ref, typeName, fromParam, toParam string) (*chaseResponse, error) {
	if ref == "" || typeName == "" {
		return nil, errors.NewInvalidRequestError("atom and type are required")
	}
	linkType, err := atom.ParseType(typeName)
	if err != nil {
		return nil, err
	}
	if !linkType.IsLink() {
		return nil, errors.NewInvalidRequestError("%s is not a link type", linkType)
	}
	from, err := position(fromParam, chase.First)
	if err != nil {
		return nil, err
	}
	to, err := position(toParam, chase.Second)
	if err != nil {
		return nil, err
	}

	store, chaser, _ := s.bind(ctx)
	start, err := atom.ResolveRef(store, ref)
	if err != nil {
		return nil, err
	}
	matches, err := chaser.Collect(start, linkType, from, to)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []chase.Match{}
	}
	return &chaseResponse{Start: start, Type: linkType.String(), From: from, To: to, Matches: matches}, nil
}

func position(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewInvalidRequestError("bad position %q", raw)
	}
	return n, nil
}

// graphStatus picks the HTTP status for a failed graph query
func graphStatus(err error) int {
	ge, ok := grapherr.From(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch {
	case ge.IsCategory(grapherr.CategoryParse):
		return http.StatusBadRequest
	case ge.IsSubcategory(grapherr.SubcategoryQueryUnknownAtom):
		return http.StatusNotFound
	case ge.IsSubcategory(grapherr.SubcategoryQueryTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
