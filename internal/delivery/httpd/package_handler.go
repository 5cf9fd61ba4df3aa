package httpd

import (
	"fmt"
	"net/http"
)

// RequestPackage dispatches the archive build and answers immediately: true
// when the build was dispatched (or coalesced into a running one), false when
// the courseId is missing. Clients poll /packStatus for completion.
func (h *Handler) RequestPackage(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeBool(w, false)
		return
	}

	h.packageService.RequestBuild(courseID)
	writeBool(w, true)
}

func (h *Handler) PackageStatus(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeBool(w, false)
		return
	}

	packaged, err := h.packageService.Status(r.Context(), courseID)
	if err != nil {
		writeBool(w, false)
		return
	}

	writeBool(w, packaged)
}

func (h *Handler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	if err := h.packageService.Delete(r.Context(), courseID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	redirectBack(w, r, "/courses")
}

func (h *Handler) DownloadPackage(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	packaged, err := h.packageService.Status(r.Context(), courseID)
	if err != nil || !packaged {
		writeError(w, http.StatusNotFound, "No archive available for this course")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%d.zip"`, courseID))
	http.ServeFile(w, r, h.packageService.ArchivePath(courseID))
}
