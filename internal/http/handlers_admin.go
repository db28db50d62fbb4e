package http

import (
	"net/http"

	"bookings/internal/core"
	"bookings/internal/dashboard"
)

// idRequest parses the {id} segment and the body of a record action.
func (s *Server) idRequest(w http.ResponseWriter, r *http.Request) (*htmxUI, core.ID, bool) {
	id, err := PathID(r)
	if err != nil {
		BadRequestError("invalid id").Write(w)
		return nil, 0, false
	}
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return nil, 0, false
	}
	return newHTMXUI(r, body), id, true
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	ui := newHTMXUI(r, body)
	err := s.dash.AddExpense(r.Context(), ui, dashboard.ExpenseInput{
		Date:        body.Get("date"),
		Description: body.Get("description"),
		Amount:      body.Get("amount"),
		Category:    body.Get("category"),
		Notes:       body.Get("notes"),
	})
	s.writeUI(w, ui, err)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.writeUI(w, ui, s.dash.DeleteExpense(r.Context(), ui, id))
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	ui := newHTMXUI(r, body)
	err := s.dash.AddUser(r.Context(), ui, dashboard.UserInput{
		Username: body.Get("username"),
		PIN:      body.Get("pin"),
		FullName: body.Get("fullName"),
		Email:    body.Get("email"),
		Role:     body.Get("role"),
	})
	s.writeUI(w, ui, err)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.writeUI(w, ui, s.dash.DeleteUser(r.Context(), ui, id))
}

func (s *Server) handleEditUser(w http.ResponseWriter, r *http.Request) {
	ui, id, ok := s.idRequest(w, r)
	if !ok {
		return
	}
	s.dash.EditUser(r.Context(), ui, id)
	s.writeUI(w, ui, nil)
}

func (s *Server) handleGeneralSettings(w http.ResponseWriter, r *http.Request) {
	s.saveSettings(w, r, core.SettingFacilityName, core.SettingCurrency)
}

func (s *Server) handleWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	s.saveSettings(w, r, core.SettingDefaultPhone, core.SettingWhatsAppTemplate)
}

// saveSettings writes the submitted keys in the given order.
func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request, keys ...string) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid form").Write(w)
		return
	}
	var settings []dashboard.Setting
	for _, k := range keys {
		if body.Has(k) {
			settings = append(settings, dashboard.Setting{Key: k, Value: body.Get(k)})
		}
	}
	ui := newHTMXUI(r, body)
	s.writeUI(w, ui, s.dash.UpdateSettings(r.Context(), ui, settings...))
}
