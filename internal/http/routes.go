package httpx

import (
	"log/slog"
	"net/http"

	"github.com/cscs/firecrest-ui-api/config"
	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
	"github.com/cscs/firecrest-ui-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          *service.AuthService
	Notifications *service.NotificationService

	Status     *firecrest.StatusAPI
	Compute    *firecrest.ComputeAPI
	Filesystem *firecrest.FilesystemAPI
	Transfer   *firecrest.TransferAPI

	Cfg      *config.AppConfig
	Reporter errtrack.Reporter
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router. Logging and panic
// recovery are applied by the caller so they cover every route uniformly.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	cookies := &CookieManager{
		Secret: []byte(services.Cfg.Session.Secret),
		Domain: services.Cfg.HTTP.CookieDomain,
	}

	authHandlers := &AuthHandlers{
		Svc:       services.Auth,
		Cookies:   cookies,
		LogoutURL: services.Auth.LogoutURL(),
		Logger:    services.Logger,
	}
	statusHandlers := &StatusHandlers{Svc: services.Status, Reporter: services.Reporter}
	computeHandlers := &ComputeHandlers{Svc: services.Compute, Reporter: services.Reporter}
	fsHandlers := &FilesystemHandlers{
		Ops:               services.Filesystem,
		Transfer:          services.Transfer,
		Reporter:          services.Reporter,
		ListPaginateLimit: services.Cfg.UI.ListPaginateLimit,
		UploadLimit:       services.Cfg.UI.FileUploadLimit,
		DownloadLimit:     services.Cfg.UI.FileDownloadLimit,
	}
	notificationHandlers := &NotificationHandlers{Svc: services.Notifications}
	configHandler := &ConfigHandler{Cfg: services.Cfg}

	withToken := RequireToken(services.Auth, cookies)
	withSession := RequireSession(services.Auth, cookies)

	registerAuthRoutes(mux, authHandlers)
	registerStatusRoutes(mux, statusHandlers, withToken)
	registerComputeRoutes(mux, computeHandlers, withToken)
	registerFilesystemRoutes(mux, fsHandlers, withToken)
	registerNotificationRoutes(mux, notificationHandlers, withSession)

	mux.HandleFunc("GET /healthz", Healthz)
	mux.HandleFunc("HEAD /healthz", Healthz)
	mux.HandleFunc("GET /api/config", configHandler.Get)

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerStatusRoutes(mux *http.ServeMux, h *StatusHandlers, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/status/systems", wrap(http.HandlerFunc(h.ListSystems)))
	mux.Handle("GET /api/status/systems/{name}", wrap(http.HandlerFunc(h.GetSystem)))
}

func registerComputeRoutes(mux *http.ServeMux, h *ComputeHandlers, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/compute/jobs", wrap(http.HandlerFunc(h.ListJobsAcrossSystems)))
	mux.Handle("GET /api/compute/{system}/jobs", wrap(http.HandlerFunc(h.ListJobs)))
	mux.Handle("POST /api/compute/{system}/jobs", wrap(http.HandlerFunc(h.SubmitJob)))
	mux.Handle("GET /api/compute/{system}/jobs/{jobId}", wrap(http.HandlerFunc(h.GetJob)))
	mux.Handle("GET /api/compute/{system}/jobs/{jobId}/metadata", wrap(http.HandlerFunc(h.GetJobMetadata)))
	mux.Handle("DELETE /api/compute/{system}/jobs/{jobId}", wrap(http.HandlerFunc(h.CancelJob)))
}

func registerFilesystemRoutes(mux *http.ServeMux, h *FilesystemHandlers, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/filesystems/{system}/ops/ls", wrap(http.HandlerFunc(h.ListFiles)))
	mux.Handle("GET /api/filesystems/{system}/ops/tail", wrap(http.HandlerFunc(h.Tail)))
	mux.Handle("GET /api/filesystems/{system}/ops/checksum", wrap(http.HandlerFunc(h.Checksum)))
	mux.Handle("POST /api/filesystems/{system}/ops/symlink", wrap(http.HandlerFunc(h.CreateSymlink)))
	mux.Handle("POST /api/filesystems/{system}/ops/mkdir", wrap(http.HandlerFunc(h.MakeDirectory)))
	mux.Handle("POST /api/filesystems/{system}/ops/upload", wrap(http.HandlerFunc(h.UploadFile)))
	mux.Handle("PUT /api/filesystems/{system}/ops/chown", wrap(http.HandlerFunc(h.Chown)))
	mux.Handle("PUT /api/filesystems/{system}/ops/chmod", wrap(http.HandlerFunc(h.Chmod)))
	mux.Handle("DELETE /api/filesystems/{system}/ops/rm", wrap(http.HandlerFunc(h.Remove)))

	mux.Handle("POST /api/filesystems/{system}/transfer/cp", wrap(http.HandlerFunc(h.Copy)))
	mux.Handle("POST /api/filesystems/{system}/transfer/mv", wrap(http.HandlerFunc(h.Move)))
	mux.Handle("POST /api/filesystems/{system}/transfer/download", wrap(http.HandlerFunc(h.TransferDownload)))
	mux.Handle("POST /api/filesystems/{system}/transfer/upload", wrap(http.HandlerFunc(h.TransferUpload)))

	// Browser-facing binary passthrough. Lives outside /api so an expired
	// session redirects to login instead of answering with a JSON envelope.
	mux.Handle("GET /fs/filesystems/{system}/ops/download", wrap(http.HandlerFunc(h.DownloadPassthrough)))
}

func registerNotificationRoutes(mux *http.ServeMux, h *NotificationHandlers, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/notifications", wrap(http.HandlerFunc(h.Consume)))
	mux.Handle("POST /api/notifications", wrap(http.HandlerFunc(h.Push)))
}
