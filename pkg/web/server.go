package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scanmyride/config"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	svc        service.IServiceManager
	log        logger.ILogger
	apiBase    string
	publicBase string
	service    string

	engine *gin.Engine
	http   *http.Server
}

func New(cfg config.Config, svc service.IServiceManager, log logger.ILogger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"upper": strings.ToUpper,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(requestID(), accessLog(log), recovery(log))

	s := &Server{
		svc:        svc,
		log:        log,
		apiBase:    cfg.APIBaseURL,
		publicBase: cfg.PublicBaseURL,
		service:    cfg.ServiceName,
		engine:     r,
	}

	r.GET("/", s.home)
	r.GET("/healthz", s.health)
	r.GET("/p/:uniqueId", s.publicProfile)
	r.POST("/p/:uniqueId/guestbook", s.signGuestbook)
	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "unavailable.html", gin.H{"Message": "Page not found."})
	})

	// The public page blocks while the backend wakes up, so the write
	// timeout has to outlast the whole retry budget.
	budget := time.Duration(cfg.PublicFetchMaxAttempts) * (cfg.PublicFetchInterval + cfg.APITimeout)
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      budget + 30*time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run() error {
	s.log.Info("🌐 public web listening", logger.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Service": s.service})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.service})
}

func (s *Server) publicProfile(c *gin.Context) {
	view, ok := s.loadPublic(c)
	if !ok {
		return
	}
	snap := view.Snapshot()
	c.HTML(http.StatusOK, "profile.html", newProfilePage(*snap.Profile, s.apiBase, s.publicBase))
}

func (s *Server) signGuestbook(c *gin.Context) {
	view, ok := s.loadPublic(c)
	if !ok {
		return
	}
	name, message := c.PostForm("name"), c.PostForm("message")

	_, err := view.SignGuestbook(c.Request.Context(), name, message)
	snap := view.Snapshot()
	page := newProfilePage(*snap.Profile, s.apiBase, s.publicBase)
	switch {
	case err == nil:
		page.Signed = true
		c.HTML(http.StatusOK, "profile.html", page)
	case errors.Is(err, service.ErrEmptyMessage):
		page.FormName, page.FormError = name, "Please write a message."
		c.HTML(http.StatusBadRequest, "profile.html", page)
	default:
		s.log.Error("failed to sign guestbook",
			logger.String("request_id", c.GetString("request_id")),
			logger.String("unique_id", c.Param("uniqueId")),
			logger.Error(err))
		page.FormName, page.FormMessage = name, message
		page.FormError = "Could not sign the guestbook, please try again."
		c.HTML(http.StatusBadGateway, "profile.html", page)
	}
}

// loadPublic runs the fetch with retries and renders the terminal error page
// itself. ok is false when the handler has nothing left to do.
func (s *Server) loadPublic(c *gin.Context) (*service.PublicView, bool) {
	view := s.svc.Public(c.Param("uniqueId"))
	err := view.Load(c.Request.Context())
	if err == nil {
		return view, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.Abort()
		return nil, false
	}
	snap := view.Snapshot()
	status := http.StatusServiceUnavailable
	if snap.Message == service.MsgProfileNotFound {
		status = http.StatusNotFound
	}
	c.HTML(status, "unavailable.html", gin.H{"Message": snap.Message, "Accent": models.DefaultThemeColor})
	return nil, false
}
