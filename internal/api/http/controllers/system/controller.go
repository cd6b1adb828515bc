package system

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidcalc/internal/ports"
)

// Controller — системные маршруты: liveness, readiness, healthcheck.
type Controller struct {
	repo ports.ICalculationRepository
	log  *zap.Logger
	now  func() time.Time
}

// New создаёт системный контроллер.
func New(repo ports.ICalculationRepository, log *zap.Logger) *Controller {
	return &Controller{repo: repo, log: log, now: time.Now}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/liveness", c.live)
	r.GET("/readiness", c.ready)
	r.GET("/healthcheck", c.healthcheck)
}

// HealthResponse — ответ /healthcheck.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Controller) live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (c *Controller) ready(ctx *gin.Context) {
	if err := c.repo.Ping(ctx.Request.Context()); err != nil {
		c.log.Warn("ready check failed", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// healthcheck не трогает хранилище: процесс жив и отвечает.
func (c *Controller) healthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: c.now().UTC()})
}
