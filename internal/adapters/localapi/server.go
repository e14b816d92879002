package localapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rideshare-app/rideshare-client/internal/app/lifecycle"
	"github.com/rideshare-app/rideshare-client/internal/app/session"
	"github.com/rideshare-app/rideshare-client/internal/app/suggest"
	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
)

type field string

const (
	originField      field = "origin"
	destinationField field = "destination"
)

// Server exposes the orchestration core to presentation layers: read-only
// snapshots plus commands. It holds no state of its own.
type Server struct {
	sessions    *session.Service
	control     *lifecycle.Controller
	origin      *suggest.Fetcher
	destination *suggest.Fetcher
	log         logger.Logger
}

func NewServer(sessions *session.Service, control *lifecycle.Controller, origin, destination *suggest.Fetcher, log logger.Logger) *Server {
	return &Server{
		sessions:    sessions,
		control:     control,
		origin:      origin,
		destination: destination,
		log:         log,
	}
}

func (s *Server) fetcher(f field) *suggest.Fetcher {
	if f == originField {
		return s.origin
	}
	return s.destination
}

type coordDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type matchDTO struct {
	ID          int64  `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Gender      string `json:"gender"`
	Time        string `json:"time"`
}

type draftDTO struct {
	OriginName       string     `json:"origin_name"`
	DestinationName  string     `json:"destination_name"`
	Origin           *coordDTO  `json:"origin,omitempty"`
	Destination      *coordDTO  `json:"destination,omitempty"`
	RouteCoordinates []coordDTO `json:"route_coordinates,omitempty"`
	DurationText     string     `json:"duration_text,omitempty"`
	ScheduledTime    string     `json:"scheduled_time,omitempty"`
}

type stateDTO struct {
	State      string     `json:"state"`
	TripStatus string     `json:"trip_status"`
	TripID     int64      `json:"trip_id,omitempty"`
	Draft      draftDTO   `json:"draft"`
	Matches    []matchDTO `json:"matches"`
	LastError  string     `json:"last_error,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.control.Snapshot()

	dto := stateDTO{
		State:      string(snap.State),
		TripStatus: string(snap.TripStatus),
		TripID:     int64(snap.TripID),
		LastError:  snap.LastError,
		Matches:    make([]matchDTO, 0, len(snap.Matches)),
	}
	dto.Draft = draftDTO{
		OriginName:      snap.Draft.OriginName,
		DestinationName: snap.Draft.DestinationName,
		DurationText:    snap.Draft.DurationText,
	}
	if snap.Draft.Origin != nil {
		dto.Draft.Origin = &coordDTO{Latitude: snap.Draft.Origin.Latitude, Longitude: snap.Draft.Origin.Longitude}
	}
	if snap.Draft.Destination != nil {
		dto.Draft.Destination = &coordDTO{Latitude: snap.Draft.Destination.Latitude, Longitude: snap.Draft.Destination.Longitude}
	}
	for _, c := range snap.Draft.RouteCoordinates {
		dto.Draft.RouteCoordinates = append(dto.Draft.RouteCoordinates, coordDTO{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	if snap.Draft.ScheduledTime != nil {
		dto.Draft.ScheduledTime = snap.Draft.ScheduledTime.Format(time.RFC3339)
	}
	for _, m := range snap.Matches {
		dto.Matches = append(dto.Matches, matchDTO{
			ID:          m.ID,
			Origin:      m.Origin,
			Destination: m.Destination,
			Gender:      m.Gender,
			Time:        m.Time.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Age      int    `json:"age"`
		Gender   string `json:"gender"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	err := s.sessions.Register(r.Context(), session.RegisterInput{
		Email:    in.Email,
		Age:      in.Age,
		Gender:   in.Gender,
		Password: in.Password,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.control.Authenticated()
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := s.sessions.Login(r.Context(), in.Email, in.Password); err != nil {
		writeAppError(w, r, err)
		return
	}
	s.control.Authenticated()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		writeAppError(w, r, err)
		return
	}
	s.control.Deauthenticated()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(f field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		if !decode(w, r, &in) {
			return
		}
		s.fetcher(f).QueryChanged(in.Text)
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) handleSuggestions(f field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.fetcher(f).Snapshot()

		out := struct {
			Query       string              `json:"query"`
			Fetching    bool                `json:"fetching"`
			Suggestions []domain.Suggestion `json:"suggestions"`
		}{
			Query:       snap.Query,
			Fetching:    snap.Fetching,
			Suggestions: snap.Suggestions,
		}
		if out.Suggestions == nil {
			out.Suggestions = []domain.Suggestion{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleSelect(f field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if !decode(w, r, &in) {
			return
		}
		coord := domain.Coord{Latitude: in.Latitude, Longitude: in.Longitude}
		if f == originField {
			s.control.SelectOrigin(in.Name, coord)
		} else {
			s.control.SelectDestination(in.Name, coord)
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Time string `json:"time"`
	}
	if !decode(w, r, &in) {
		return
	}
	when, err := time.Parse(time.RFC3339, in.Time)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid time", map[string]any{"time": "must be RFC 3339"})
		return
	}
	s.control.SubmitTrip(when)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.control.CancelTrip()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	s.control.JoinTrip()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleNewDraft(w http.ResponseWriter, r *http.Request) {
	s.control.NewDraft()
	w.WriteHeader(http.StatusAccepted)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
