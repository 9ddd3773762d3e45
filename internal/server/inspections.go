package server

import (
	"net/http"

	"github.com/wolfeidau/inspect/internal/service"
)

func (s *Server) createInspection(w http.ResponseWriter, r *http.Request) {
	var req service.NewInspection
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	inspection, err := s.svc.Inspections.Create(r.Context(), authContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Inspection created successfully.", inspection)
}

func (s *Server) listMyInspections(w http.ResponseWriter, r *http.Request) {
	inspections, err := s.svc.Inspections.ListMine(r.Context(), authContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, inspections)
}

func (s *Server) getInspection(w http.ResponseWriter, r *http.Request) {
	inspectionID, err := idParam(r, "inspectionId", "inspection")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inspection, err := s.svc.Inspections.Get(r.Context(), authContext(r), inspectionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", inspection)
}

func (s *Server) listOrganizationInspections(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inspections, err := s.svc.Inspections.ListByOrganization(r.Context(), authContext(r), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, inspections)
}
