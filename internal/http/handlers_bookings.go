package http

import (
	"net/http"

	"bookings/internal/dashboard"
)

func (s *Server) handleNewBooking(w http.ResponseWriter, r *http.Request) {
	form := s.dash.ShowAddBookingForm(QueryDate(r, "date"))
	s.writeFragment(w, NewHTMXResponse(), "bookingForm", form)
}

func (s *Server) handleEditBooking(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		BadRequestError("invalid id").Write(w)
		return
	}
	form, ok := s.dash.EditBooking(id)
	if !ok {
		NewHTMXResponse().Status(http.StatusNoContent).Write(w)
		return
	}
	s.writeFragment(w, NewHTMXResponse(), "bookingForm", form)
}

func (s *Server) handleRemainingPreview(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	preview := dashboard.RemainingPreview(body.Get("totalAmount"), body.Get("deposit"))
	s.writeFragment(w, NewHTMXResponse(), "remainingPreview", preview)
}

func (s *Server) handleSaveBooking(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	ui := newHTMXUI(r, body)
	err := s.dash.SaveBooking(r.Context(), ui, dashboard.BookingInput{
		ID:            body.Get("id"),
		Date:          body.Get("date"),
		CustomerName:  body.Get("customerName"),
		Phone:         body.Get("phone"),
		TotalAmount:   body.Get("totalAmount"),
		Deposit:       body.Get("deposit"),
		Insurance:     body.Get("insurance"),
		PaymentStatus: body.Get("paymentStatus"),
		Notes:         body.Get("notes"),
	})
	s.writeUI(w, ui, err)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.writeUI(w, ui, s.dash.DeleteBooking(r.Context(), ui, id))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.writeUI(w, ui, s.dash.RecordPayment(r.Context(), ui, id))
}

func (s *Server) handleRemind(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.dash.Remind(r.Context(), ui, id)
	s.writeUI(w, ui, nil)
}
