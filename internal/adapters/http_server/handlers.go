package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type Handlers struct{ Svc *app.BookingService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// bookingDTO is the wire shape; dates travel as ISO-8601 calendar days.
type bookingDTO struct {
	ID      int64  `json:"id"`
	RoomID  int64  `json:"room_id"`
	GuestID int64  `json:"guest_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Status  string `json:"status"`
}

func toDTO(b domain.Booking) bookingDTO {
	return bookingDTO{
		ID:      b.ID,
		RoomID:  b.RoomID,
		GuestID: b.GuestID,
		Start:   b.Range.StartISO(),
		End:     b.Range.EndISO(),
		Status:  string(b.Status),
	}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/rooms/{roomID}/availability", h.checkAvailability)
	s.mux.Get("/v1/bookings", h.listBookings)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Post("/v1/bookings/{id}/cancel", h.cancelBooking)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeBookingErr maps the ledger error taxonomy onto HTTP statuses.
func writeBookingErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeProblem(w, http.StatusBadRequest, "Invalid Range", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Room Not Available", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled):
		writeProblem(w, http.StatusConflict, "Already Cancelled", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Store Unavailable", "please retry later")
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "roomID must be a number")
		return
	}
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	free, err := h.Svc.CheckAvailability(r.Context(), roomID, start, end)
	if err != nil {
		writeBookingErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": free})
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	var roomID *int64
	if rs := r.URL.Query().Get("room_id"); rs != "" {
		id, err := strconv.ParseInt(rs, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "room_id must be a number")
			return
		}
		roomID = &id
	}

	bs, err := h.Svc.ListBookings(r.Context(), roomID)
	if err != nil {
		writeBookingErr(w, err)
		return
	}
	out := make([]bookingDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type createBookingReq struct {
	RoomID  int64  `json:"room_id"`
	GuestID int64  `json:"guest_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be JSON")
		return
	}

	b, err := h.Svc.CreateBooking(r.Context(), req.RoomID, req.GuestID, req.Start, req.End)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRange):
			observability.ObserveReservation("invalid")
		case errors.Is(err, domain.ErrConflict):
			observability.ObserveReservation("conflict")
		case errors.Is(err, domain.ErrUnavailable):
			observability.ObserveReservation("unavailable")
		default:
			observability.ObserveReservation("error")
		}
		writeBookingErr(w, err)
		return
	}
	observability.ObserveReservation("confirmed")
	writeJSON(w, http.StatusCreated, toDTO(b))
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	b, err := h.Svc.CancelBooking(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			observability.ObserveCancellation("not_found")
		case errors.Is(err, domain.ErrAlreadyCancelled):
			observability.ObserveCancellation("already_cancelled")
		default:
			observability.ObserveCancellation("error")
		}
		writeBookingErr(w, err)
		return
	}
	observability.ObserveCancellation("cancelled")
	writeJSON(w, http.StatusOK, toDTO(b))
}
