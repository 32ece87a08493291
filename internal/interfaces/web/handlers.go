package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/application/usecases"
	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/internaltypes"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type stateResponse struct {
	booking.FormState
	Dates []string `json:"dates"`
	Times []string `json:"times"`
}

func newStateResponse(s booking.FormState) stateResponse {
	times := []string{}
	if s.Selection.Date != "" {
		times = s.Map.DisplayTimes(s.Selection.Date)
	}
	return stateResponse{FormState: s, Dates: s.Map.Dates(), Times: times}
}

type submitResponse struct {
	Outcome    string `json:"outcome"`
	BookingRef string `json:"bookingRef,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// form resolves the caller's Form, loading slots the first time it is seen.
func (s *Server) form(w http.ResponseWriter, r *http.Request) (*usecases.Form, bool) {
	id, err := s.Sessions.ID(w, r)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return nil, false
	}
	f, created := s.Forms.Get(id)
	if created {
		// failures are visible as an empty map; GET /api/availability retries
		_, _ = f.Load(r.Context())
	}
	return f, true
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := s.Sessions.ID(w, r)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	f, _ := s.Forms.Get(id)

	var st booking.FormState
	if tz := r.URL.Query().Get("timezone"); tz != "" {
		st, err = f.SetTimezone(r.Context(), tz)
	} else {
		st, err = f.Load(r.Context())
	}
	if err != nil {
		writeErr(w, errors.New("could not load available slots"), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	f, ok := s.form(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(f.State()))
}

func (s *Server) handleSelectDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	f, ok := s.form(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(f.SelectDate(body.Date)))
}

func (s *Server) handleSelectTime(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Time string `json:"time"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	f, ok := s.form(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(f.SelectTime(body.Time)))
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	fields := booking.EmptyForm()
	if err := decodeBody(r, &fields); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	f, ok := s.form(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(f.UpdateForm(fields)))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// an empty body submits the fields already stored on the form
	var fields *booking.FormFields
	ff := booking.EmptyForm()
	switch err := decodeBody(r, &ff); {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeErr(w, err, http.StatusBadRequest)
		return
	default:
		fields = &ff
	}

	f, ok := s.form(w, r)
	if !ok {
		return
	}
	displayTime := f.State().Selection.Time

	o, err := f.Submit(r.Context(), fields)
	var ve *booking.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Code: string(ve.Code)})
		return
	case errors.Is(err, booking.ErrSubmissionInFlight):
		writeErr(w, err, http.StatusConflict)
		return
	case err != nil:
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	switch o.Kind {
	case booking.OutcomeSuccess:
		writeJSON(w, http.StatusCreated, submitResponse{
			Outcome:    o.Kind.String(),
			BookingRef: o.BookingRef,
			Message:    "Booking confirmed for " + displayTime,
		})
	case booking.OutcomeServerRejection:
		writeJSON(w, http.StatusBadGateway, submitResponse{Outcome: o.Kind.String(), Error: o.Message})
	default:
		s.Logger.Warn("booking backend unreachable", zap.Error(o.Cause))
		writeJSON(w, http.StatusServiceUnavailable, submitResponse{
			Outcome: o.Kind.String(),
			Error:   "booking service unavailable, please try again",
		})
	}
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if s.Log == nil {
		writeErr(w, fmt.Errorf("booking log: %w", internaltypes.ErrNotFound), http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, errors.New("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.Log.List(r.Context(), limit)
	if err != nil {
		s.Logger.Error("list bookings failed", zap.Error(err))
		writeErr(w, errors.New("could not list bookings"), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []booking.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
