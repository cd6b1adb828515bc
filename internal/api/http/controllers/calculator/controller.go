package calculator

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidcalc/internal/api/http/middlewares"
	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

// Controller — маршруты калькулятора: расчёт, история, очистка истории.
type Controller struct {
	uc  ports.ICalculatorUseCase
	log *zap.Logger
}

// New создаёт контроллер калькулятора.
func New(uc ports.ICalculatorUseCase, log *zap.Logger) *Controller {
	return &Controller{uc: uc, log: log}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/calculations", c.performCalculation)
	api.GET("/calculations", c.history)
	api.DELETE("/calculations", c.clearHistory)
	api.GET("/calculations/stats", c.operationStats)
}

// @Summary Выполнить вычисление
// @Description Принимает два числа и операцию (add, subtract, multiply, divide), сохраняет запись в историю.
// @Tags calculator
// @Accept json
// @Produce json
// @Param request body PerformCalculationRequest true "Параметры вычисления"
// @Success 200 {object} PerformCalculationResponse "Результат и сохранённая запись"
// @Failure 400 {object} ErrorResponse "Невалидный запрос или неизвестная операция"
// @Failure 422 {object} ErrorResponse "Деление на ноль или результат вне диапазона float64"
// @Failure 503 {object} ErrorResponse "Хранилище недоступно"
// @Router /api/v1/calculations [post]
func (c *Controller) performCalculation(ctx *gin.Context) {
	var req PerformCalculationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.log.Warn("calculate bind failed", zap.Error(err))
		c.writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	first, second, op, err := req.Parse()
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	res, err := c.uc.PerformCalculation(ctx.Request.Context(), first, second, op)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, PerformCalculationResponse{Result: res.Result, Calculation: toDTO(res.Calculation)})
}

// @Summary Получить историю расчётов
// @Description Возвращает все сохранённые расчёты, новые сначала
// @Tags calculator
// @Produce json
// @Success 200 {array} CalculationDTO "Список расчётов"
// @Failure 503 {object} ErrorResponse "Хранилище недоступно"
// @Router /api/v1/calculations [get]
func (c *Controller) history(ctx *gin.Context) {
	list, err := c.uc.History(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	items := make([]CalculationDTO, len(list))
	for i, calc := range list {
		items[i] = toDTO(calc)
	}
	ctx.JSON(http.StatusOK, items)
}

// @Summary Очистить историю
// @Tags calculator
// @Produce json
// @Success 200 {object} ClearHistoryResponse
// @Failure 503 {object} ErrorResponse "Хранилище недоступно"
// @Router /api/v1/calculations [delete]
func (c *Controller) clearHistory(ctx *gin.Context) {
	out, err := c.uc.ClearHistory(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ClearHistoryResponse{Success: out.Success, Message: out.Message})
}

// @Summary Статистика по операциям
// @Description Число расчётов по каждой операции из ClickHouse
// @Tags calculator
// @Produce json
// @Success 200 {object} OperationStatsResponse
// @Failure 404 {object} ErrorResponse "Аналитика не подключена"
// @Failure 503 {object} ErrorResponse "ClickHouse недоступен"
// @Router /api/v1/calculations/stats [get]
func (c *Controller) operationStats(ctx *gin.Context) {
	counts, err := c.uc.OperationStats(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, OperationStatsResponse{Counts: counts})
}

// respondError переводит доменную ошибку в HTTP-статус и код.
func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOperation):
		c.log.Warn("calculate bad operation", zap.Error(err))
		c.writeError(ctx, http.StatusBadRequest, CodeInvalidOperation, err.Error())
	case errors.Is(err, domain.ErrDivisionByZero):
		c.log.Warn("calculate division by zero", zap.Error(err))
		c.writeError(ctx, http.StatusUnprocessableEntity, CodeDivisionByZero, err.Error())
	case errors.Is(err, domain.ErrResultOutOfRange):
		c.log.Warn("calculate result out of range", zap.Error(err))
		c.writeError(ctx, http.StatusUnprocessableEntity, CodeResultOutOfRange, err.Error())
	case errors.Is(err, domain.ErrAnalyticsDisabled):
		c.writeError(ctx, http.StatusNotFound, CodeAnalyticsDisabled, err.Error())
	case errors.Is(err, domain.ErrStorage):
		c.log.Error("storage failed", zap.Error(err))
		c.writeError(ctx, http.StatusServiceUnavailable, CodeStorageFailure, err.Error())
	default:
		c.log.Error("request failed", zap.Error(err))
		c.writeError(ctx, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func (c *Controller) writeError(ctx *gin.Context, status int, code, msg string) {
	middlewares.SetErrorCode(ctx, code)
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: middlewares.RequestIDFrom(ctx),
	}})
}
