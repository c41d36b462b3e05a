package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quillpost/internal/service"
	"quillpost/internal/storage"
)

// Options carries the collaborators of a Handler.
type Options struct {
	Users    service.UserService
	Sessions service.SessionService
	Posts    service.PostService
	Comments service.CommentService
	// Images is nil when header image uploads are disabled.
	Images       storage.Service
	Metrics      *Metrics
	Health       func(ctx context.Context) error
	CookieSecure bool
	Logger       logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	sessions     service.SessionService
	posts        service.PostService
	comments     service.CommentService
	images       storage.Service
	metrics      *Metrics
	health       func(ctx context.Context) error
	cookieSecure bool
	log          logrus.FieldLogger
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Handler{
		users:        opts.Users,
		sessions:     opts.Sessions,
		posts:        opts.Posts,
		comments:     opts.Comments,
		images:       opts.Images,
		metrics:      opts.Metrics,
		health:       opts.Health,
		cookieSecure: opts.CookieSecure,
		log:          opts.Logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(parseTemplates())
	router.Use(requestLogger(h.log, h.metrics), h.identify())

	router.GET("/", h.listPosts)
	router.GET("/about", h.about)
	router.GET("/contact", h.contact)
	router.GET("/users", h.listUsers)

	router.GET("/register", h.registerPage)
	router.POST("/register", h.register)
	router.GET("/login", h.loginPage)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)

	router.GET("/post/:id", h.showPost)
	router.POST("/post/:id", h.addComment)

	owner := router.Group("/", h.requireOwner())
	{
		owner.GET("/new-post", h.newPostPage)
		owner.POST("/new-post", h.createPost)
		owner.GET("/edit-post/:id", h.editPostPage)
		owner.POST("/edit-post/:id", h.updatePost)
		owner.GET("/delete/:id", h.deletePost)
	}

	router.GET("/healthz", h.healthz)
	router.GET("/metrics", h.metrics.handler())
	router.NoRoute(h.notFound)
}

// requireOwner rejects every caller but the owner before the handler runs.
func (h *Handler) requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireOwner(currentIdentity(c)); err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) about(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (h *Handler) contact(c *gin.Context) {
	h.render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
