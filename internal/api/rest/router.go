package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"device-inspector/internal/logger"
)

// RouterOptions настройки HTTP-слоя.
type RouterOptions struct {
	AllowOrigins  []string
	MaxUploadSize int64
	HistoryLimit  int
	// LiveFeed обработчик /ws; без него маршрут не регистрируется
	LiveFeed http.HandlerFunc
}

func NewRouter(inspector Inspector, opts RouterOptions, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors(opts.AllowOrigins))
	if opts.MaxUploadSize > 0 {
		r.Use(limitBody(opts.MaxUploadSize))
	}

	h := NewInspectionHandler(inspector, opts.HistoryLimit, log)
	r.GET("/health", h.Health)

	if opts.LiveFeed != nil {
		r.GET("/ws", gin.WrapF(opts.LiveFeed))
	}

	api := r.Group("/api")
	{
		api.POST("/inspect", h.Inspect)
		api.GET("/inspections", h.List)
		api.GET("/inspections/:id", h.Get)
	}

	return r
}

func cors(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{"GET", "POST", "OPTIONS"}, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
