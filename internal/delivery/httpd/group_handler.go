package httpd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coursedeck/submission-service/internal/models"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		req.GroupID = r.FormValue("account")
		req.Password = r.FormValue("password")
	}

	if req.GroupID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "group_id and password are required")
		return
	}

	group, err := h.groupService.Authenticate(r.Context(), req.GroupID, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, group)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req := &models.ChangePasswordRequest{
		GroupID:     r.FormValue("groupId"),
		OldPassword: r.FormValue("oldPassword"),
		NewPassword: r.FormValue("newPassword"),
	}

	if req.GroupID == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "groupId and newPassword are required")
		return
	}

	if err := h.groupService.ChangePassword(r.Context(), req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// UpdateProfile takes the change-info form: a project name plus up to four
// member fields, blanks dropped.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	groupID := r.FormValue("groupId")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "groupId is required")
		return
	}

	members := []string{
		r.FormValue("headMan"),
		r.FormValue("member1"),
		r.FormValue("member2"),
		r.FormValue("member3"),
	}

	req := &models.UpdateProfileRequest{
		GroupID: groupID,
		Project: r.FormValue("project"),
		Members: members,
	}

	if err := h.groupService.UpdateProfile(r.Context(), req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, nil)
}

func (h *Handler) ResetAdmin(w http.ResponseWriter, r *http.Request) {
	currentUsername := r.FormValue("origin")
	req := &models.ResetAdminRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	if currentUsername == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "origin, username and password are required")
		return
	}

	if err := h.adminService.Reset(r.Context(), currentUsername, req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, nil)
}
