package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/store"
	"github.com/gorilla/mux"
)

const maxFreeSlotDays = 60

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type assistantRequest struct {
	Text                string       `json:"text"`
	ConversationHistory []ai.Message `json:"conversationHistory"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	answer := s.svc.Ask(r.Context(), userID(r), req.Text, req.ConversationHistory)
	s.metrics.answers.WithLabelValues(string(answer.Intent), answer.Source).Inc()
	if answer.Fallback {
		s.metrics.fallbacks.Inc()
	}
	writeJSON(w, http.StatusOK, answer.Response)
}

func (s *Server) handleFreeSlots(w http.ResponseWriter, r *http.Request) {
	engine := s.svc.Engine()
	days := engine.Options().SlotWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxFreeSlotDays {
			writeError(w, http.StatusBadRequest, "days must be between 1 and "+strconv.Itoa(maxFreeSlotDays))
			return
		}
		days = n
	}

	events, err := s.svc.Events(r.Context(), userID(r), days)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	slots := assistant.FindFreeSlots(events, s.svc.Today(), days, engine.Options().CandidateTimes)
	if slots == nil {
		slots = []assistant.FreeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	today := s.svc.Today()
	from := today.Format(assistant.DateLayout)
	to := today.AddDate(0, 0, s.svc.Engine().Options().AnalysisWindowDays).Format(assistant.DateLayout)

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *string
	}{{"from", &from}, {"to", &to}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		if _, err := time.Parse(assistant.DateLayout, v); err != nil {
			writeError(w, http.StatusBadRequest, p.name+" must be YYYY-MM-DD")
			return
		}
		*p.dst = v
	}

	events, err := s.db.EventsForUser(r.Context(), userID(r), from, to)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

type createEventRequest struct {
	GroupID   string               `json:"group_id"`
	EventData assistant.EventDraft `json:"eventData"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GroupID == "" {
		writeError(w, http.StatusBadRequest, "group_id is required")
		return
	}

	e, err := s.svc.ConfirmDraft(r.Context(), userID(r), req.GroupID, req.EventData)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.logger.Info("event created", "id", e.ID, "group", e.GroupID, "user", e.CreatedBy, "date", e.Date)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.db.DeleteEvent(r.Context(), id, userID(r)); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.db.GroupsForUser(r.Context(), userID(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if groups == nil {
		groups = []store.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := s.db.CreateGroup(r.Context(), req.Name, userID(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// handleAddMember lets an existing member invite another user.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ok, err := s.db.IsMember(r.Context(), groupID, userID(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	if err := s.db.AddMember(r.Context(), groupID, req.UserID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
