package server

import (
	"net/http"

	"github.com/wolfeidau/inspect/internal/lifecycle"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/service"
)

type signInRequest struct {
	Name     string `json:"organizationname"`
	Password string `json:"password"`
}

func (s *Server) organizationSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Organizations.SignIn(r.Context(), req.Name, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Organization login successful.", session)
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req service.NewOrganization
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.svc.Organizations.Create(r.Context(), authContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Organization created successfully.", created)
}

func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.svc.Organizations.List(r.Context(), authContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, orgs)
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	org, err := s.svc.Organizations.Get(r.Context(), authContext(r), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", org)
}

type organizationUpdateRequest struct {
	Name          *string                     `json:"organizationname"`
	Password      *string                     `json:"password"`
	ContactPerson *models.ContactPerson       `json:"contactPerson"`
	Contact       *models.OrganizationContact `json:"organization"`
	Active        *bool                       `json:"status"`
}

// organizationChange reports how many members a deactivation forced inactive.
type organizationChange struct {
	Organization     *models.Organization `json:"organization"`
	DeactivatedUsers int64                `json:"deactivatedUsers"`
}

func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req organizationUpdateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	change, err := s.svc.Organizations.Update(r.Context(), authContext(r), orgID, lifecycle.OrganizationUpdate{
		Name:          req.Name,
		Password:      req.Password,
		ContactPerson: req.ContactPerson,
		Contact:       req.Contact,
		Active:        req.Active,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Organization updated successfully.", organizationChange{
		Organization:     change.Organization,
		DeactivatedUsers: change.Deactivated,
	})
}

func (s *Server) toggleOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	change, err := s.svc.Organizations.ToggleActive(r.Context(), authContext(r), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	message := "Organization deactivated successfully."
	if change.Organization.Active {
		message = "Organization activated successfully."
	}
	writeData(w, http.StatusOK, message, organizationChange{
		Organization:     change.Organization,
		DeactivatedUsers: change.Deactivated,
	})
}

type organizationDeleted struct {
	DeletedUsers int64 `json:"deletedUsers"`
}

func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	removed, err := s.svc.Organizations.Delete(r.Context(), authContext(r), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Organization and all its associated users have been permanently deleted.",
		organizationDeleted{DeletedUsers: removed})
}
