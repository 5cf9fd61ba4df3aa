package httpd

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/service"
)

type Handler struct {
	submissionService service.SubmissionService
	courseService     service.CourseService
	packageService    service.PackageService
	groupService      service.GroupService
	adminService      service.AdminService
	maxUploadSize     int64
	logger            zerolog.Logger
}

func NewHandler(
	submissionService service.SubmissionService,
	courseService service.CourseService,
	packageService service.PackageService,
	groupService service.GroupService,
	adminService service.AdminService,
	maxUploadSize int64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		submissionService: submissionService,
		courseService:     courseService,
		packageService:    packageService,
		groupService:      groupService,
		adminService:      adminService,
		maxUploadSize:     maxUploadSize,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	// Submission lifecycle
	router.Post("/upload", h.Upload)
	router.Post("/remove", h.RemoveSubmission)
	router.Get("/subStatus", h.SubmissionStatus)
	router.Post("/subStatus", h.SubmissionStatus)

	// Archive packaging
	router.Get("/package", h.RequestPackage)
	router.Post("/package", h.RequestPackage)
	router.Get("/packStatus", h.PackageStatus)
	router.Post("/packStatus", h.PackageStatus)
	router.Post("/delPackage", h.DeletePackage)
	router.Get("/package/download", h.DownloadPackage)

	// Course management
	router.Post("/insert_course", h.InsertCourse)
	router.Post("/listin_course", h.InsertCourseList)
	router.Post("/changeCourse", h.ChangeCourse)
	router.Post("/removeCourse", h.RemoveCourse)
	router.Post("/set_deadline", h.SetDeadline)
	router.Post("/import", h.ImportRoster)
	router.Get("/importStatus", h.ImportStatus)
	router.Post("/importStatus", h.ImportStatus)
	router.Get("/courses", h.ListCourses)
	router.Get("/courses/{id}/roster", h.CourseRoster)
	router.Get("/courses/{id}/submissions", h.CourseSubmissions)

	// Group principal
	router.Post("/login", h.Login)
	router.Post("/reset", h.ChangePassword)
	router.Post("/resetInfo", h.UpdateProfile)

	// Admin account
	router.Post("/resetAdmin", h.ResetAdmin)
}

func courseIDParam(r *http.Request) (int64, bool) {
	value := r.URL.Query().Get("courseId")
	if value == "" {
		value = r.FormValue("courseId")
	}
	if value == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func courseIDURLParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func formInt(r *http.Request, key string) int {
	value, _ := strconv.Atoi(r.FormValue(key))
	return value
}
