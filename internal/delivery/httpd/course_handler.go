package httpd

import (
	"net/http"

	"github.com/coursedeck/submission-service/internal/models"
)

func (h *Handler) InsertCourse(w http.ResponseWriter, r *http.Request) {
	req := &models.CreateCourseRequest{
		Name:       r.FormValue("courseName"),
		SchoolYear: r.FormValue("schoolYear"),
		Term:       r.FormValue("term"),
		Grade:      r.FormValue("grade"),
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "courseName is required")
		return
	}

	if _, err := h.courseService.Create(r.Context(), req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) InsertCourseList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, _, err := r.FormFile("courseList")
	if err != nil {
		writeError(w, http.StatusBadRequest, "courseList file is required")
		return
	}
	defer file.Close()

	if _, err := h.courseService.ImportCourses(r.Context(), file); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) ChangeCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	req := &models.UpdateCourseRequest{
		CourseID:   courseID,
		Name:       r.FormValue("courseName"),
		SchoolYear: r.FormValue("schoolYear"),
		Term:       r.FormValue("term"),
		Grade:      r.FormValue("grade"),
	}

	if err := h.courseService.Update(r.Context(), req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) RemoveCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	if err := h.courseService.Remove(r.Context(), courseID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	parts := deadlinePartsFromForm(r)
	if err := h.courseService.SetDeadline(r.Context(), courseID, parts); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

// ImportRoster replaces a course's roster from the uploaded CSV and arms the
// deadline. A malformed file gets a descriptive 400, with prior state intact.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	file, _, err := r.FormFile("stuListFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "stuListFile is required")
		return
	}
	defer file.Close()

	parts := deadlinePartsFromForm(r)
	if _, err := h.courseService.ImportRoster(r.Context(), courseID, file, parts); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeBool(w, false)
		return
	}

	imported, err := h.courseService.RosterImported(r.Context(), courseID)
	if err != nil {
		writeBool(w, false)
		return
	}

	writeBool(w, imported)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, courses)
}

func (h *Handler) CourseRoster(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDURLParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	roster, err := h.courseService.ListRoster(r.Context(), courseID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, roster)
}

func deadlinePartsFromForm(r *http.Request) models.DeadlineParts {
	return models.DeadlineParts{
		Year:   formInt(r, "year"),
		Month:  formInt(r, "month"),
		Day:    formInt(r, "day"),
		Hour:   formInt(r, "hour"),
		Minute: formInt(r, "minute"),
	}
}
