package server

import (
	"net/http"

	"github.com/wolfeidau/inspect/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Login successful.", session)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Users.Profile(r.Context(), authContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Profile fetched successfully.", profile)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.svc.Users.UpdateProfile(r.Context(), authContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Profile updated successfully.", user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req service.PasswordChange
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Users.ChangePassword(r.Context(), authContext(r), req); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Password changed successfully.", nil)
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req service.NewUser
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.svc.Users.Register(r.Context(), authContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "User registered successfully.", created)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req service.NewUser
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.svc.Users.CreateInOrganization(r.Context(), authContext(r), orgID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "User created successfully.", created)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	users, err := s.svc.Users.ListInOrganization(r.Context(), authContext(r), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, users)
}

type memberStatus struct {
	Active bool `json:"isActive"`
}

func (s *Server) toggleMember(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := idParam(r, "userId", "user")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.svc.Users.ToggleActive(r.Context(), authContext(r), orgID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	message := "User deactivated successfully."
	if user.Active {
		message = "User activated successfully."
	}
	writeData(w, http.StatusOK, message, memberStatus{Active: user.Active})
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgId", "organization")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := idParam(r, "userId", "user")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Users.Delete(r.Context(), authContext(r), orgID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "User permanently deleted.", nil)
}
