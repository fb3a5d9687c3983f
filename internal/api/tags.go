package api

import (
	"net/http"
)

type createTagRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}

	out := make([]TagResponse, 0, len(snap.Tags))
	for _, t := range snap.Tags {
		out = append(out, toTagResponse(t))
	}
	Success(w, out, s.logger)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decode(r, &req); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	t, err := s.store.CreateTag(r.Context(), req.Name)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Created(w, toTagResponse(*t), s.logger)
}
