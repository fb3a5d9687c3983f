package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
)

type createHangRequest struct {
	DateContacted FlexDate `json:"date_contacted"`
	FriendIDs     []string `json:"friend_ids"`
	Notes         string   `json:"notes"`
}

type updateHangRequest struct {
	DateContacted *FlexDate `json:"date_contacted"`
	FriendIDs     *[]string `json:"friend_ids"`
	Notes         *string   `json:"notes"`
}

// handleListHangs returns hangs newest first, optionally only those
// including ?friend=
func (s *Server) handleListHangs(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}

	friendID := r.URL.Query().Get("friend")
	out := []HangResponse{}
	for _, h := range snap.Hangs {
		if friendID != "" && !includes(h.FriendIDs, friendID) {
			continue
		}
		out = append(out, toHangResponse(h))
	}
	Success(w, out, s.logger)
}

// location is where plain dates from clients are anchored: the zone of the
// clock cadence figures are computed against.
func (s *Server) location() *time.Location {
	return s.now().Location()
}

func includes(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Server) handleCreateHang(w http.ResponseWriter, r *http.Request) {
	var req createHangRequest
	if err := decode(r, &req); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	h, err := s.store.CreateHang(r.Context(), db.HangInput{
		DateContacted: req.DateContacted.At(s.location()),
		FriendIDs:     req.FriendIDs,
		Notes:         req.Notes,
	})
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	s.logger.Info("hang recorded", "hang_id", h.ID, "friends", len(h.FriendIDs))

	Created(w, toHangResponse(*h), s.logger)
}

func (s *Server) handleUpdateHang(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateHangRequest
	if err := decode(r, &req); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	patch := db.HangPatch{FriendIDs: req.FriendIDs, Notes: req.Notes}
	if req.DateContacted != nil {
		date := req.DateContacted.At(s.location())
		patch.DateContacted = &date
	}
	if err := s.store.UpdateHang(r.Context(), id, patch); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	h, ok := snap.Hang(id)
	if !ok {
		HandleError(w, domainerrors.NotFoundf("hang %s not found", id), s.logger)
		return
	}
	Success(w, toHangResponse(h), s.logger)
}

func (s *Server) handleDeleteHang(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteHang(r.Context(), id); err != nil {
		HandleError(w, err, s.logger)
		return
	}
	NoContent(w)
}
