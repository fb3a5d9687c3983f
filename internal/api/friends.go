package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
)

// tagFilter turns ?tag= names into tags. Tags filter by name, so an
// unknown name matches nobody.
func tagFilter(names []string) []db.Tag {
	var tags []db.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags = append(tags, db.Tag{Name: name})
	}
	return tags
}

// handleListFriends returns friends filtered by ?q= and ?tag=, most overdue
// first.
func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}

	query := r.URL.Query()
	filtered := cadence.FilterByQueryAndTags(snap.Contacts, query.Get("q"), tagFilter(query["tag"]))

	now := s.now()
	ranked, err := cadence.Ranked(filtered, now)
	if err != nil {
		HandleError(w, domainerrors.Wrap(err, domainerrors.CodeInternal, "ranking friends"), s.logger)
		return
	}

	out := make([]FriendResponse, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, toFriendResponse(c, now, false))
	}
	Success(w, out, s.logger)
}

func (s *Server) handleGetFriend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}

	c, ok := snap.Contact(id)
	if !ok {
		HandleError(w, domainerrors.NotFoundf("friend %s not found", id), s.logger)
		return
	}
	Success(w, toFriendResponse(c, s.now(), true), s.logger)
}

func (s *Server) handleCreateFriend(w http.ResponseWriter, r *http.Request) {
	var in db.ContactInput
	if err := decode(r, &in); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	created, err := s.store.CreateContact(r.Context(), in)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	s.logger.Info("friend created", "friend_id", created.ID)

	s.respondWithFriend(w, r, created.ID, http.StatusCreated)
}

func (s *Server) handleUpdateFriend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch db.ContactPatch
	if err := decode(r, &patch); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	if err := s.store.UpdateContact(r.Context(), id, patch); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	s.respondWithFriend(w, r, id, http.StatusOK)
}

func (s *Server) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteContact(r.Context(), id); err != nil {
		HandleError(w, err, s.logger)
		return
	}
	s.logger.Info("friend deleted", "friend_id", id)
	NoContent(w)
}

// respondWithFriend re-reads a friend so the response carries joined tags
// and hangs.
func (s *Server) respondWithFriend(w http.ResponseWriter, r *http.Request, id string, status int) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	c, ok := snap.Contact(id)
	if !ok {
		HandleError(w, domainerrors.NotFoundf("friend %s not found", id), s.logger)
		return
	}
	JSON(w, status, toFriendResponse(c, s.now(), true), s.logger)
}
