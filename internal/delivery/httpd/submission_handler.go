package httpd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/coursedeck/submission-service/internal/models"
)

// Upload receives the multipart submission form: a group_id field plus up to
// five named file parts. Missing parts are fine; present ones overwrite the
// group's previous upload of that slot.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	groupID := r.FormValue("group_id")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "group_id is required")
		return
	}

	var artifacts []models.Artifact
	var closers []interface{ Close() error }
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, kind := range models.AllArtifactKinds() {
		file, header, err := r.FormFile(string(kind))
		if err != nil {
			continue // slot not filled
		}
		closers = append(closers, file)
		artifacts = append(artifacts, models.Artifact{
			Kind:    kind,
			Content: file,
			Size:    header.Size,
		})
	}

	response, err := h.submissionService.Record(r.Context(), groupID, artifacts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/courses/%d/submissions", response.CourseID), http.StatusSeeOther)
}

func (h *Handler) RemoveSubmission(w http.ResponseWriter, r *http.Request) {
	groupID := r.FormValue("group_id")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "group_id is required")
		return
	}

	group, err := h.groupService.GetByID(r.Context(), groupID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if err := h.submissionService.Retract(r.Context(), groupID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/courses/%d/roster", group.CourseID), http.StatusSeeOther)
}

func (h *Handler) SubmissionStatus(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")
	if groupID == "" {
		groupID = r.FormValue("groupId")
	}
	if groupID == "" {
		writeBool(w, false)
		return
	}

	submitted, err := h.submissionService.HasSubmitted(r.Context(), groupID)
	if err != nil {
		writeBool(w, false)
		return
	}

	writeBool(w, submitted)
}

func (h *Handler) CourseSubmissions(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDURLParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		limit, _ = strconv.Atoi(value)
	}

	submissions, err := h.submissionService.ListByCourse(r.Context(), courseID, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submissions)
}
