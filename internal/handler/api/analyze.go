package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"TradeScope/internal/domain/models"
	domainrepo "TradeScope/internal/domain/repository"
	xhttp "TradeScope/pkg/http"
	xlogger "TradeScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisRunner is the slice of the orchestrator the handler needs.
type AnalysisRunner interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (models.AnalysisResult, error)
}

// SweepRunner triggers one watchlist evaluation sweep.
type SweepRunner interface {
	RunSweep(ctx context.Context)
}

// AnalyzeHandler exposes the analysis pipeline over HTTP.
type AnalyzeHandler struct {
	logger   *xlogger.Logger
	analyzer AnalysisRunner
	sweeper  SweepRunner
	income   domainrepo.IncomeStore
}

// NewAnalyzeHandler creates the handler. The sweeper and income store are
// optional; without them the evaluate endpoint reports unavailable and the
// health endpoint reports only process liveness.
func NewAnalyzeHandler(logger *xlogger.Logger, analyzer AnalysisRunner, sweeper SweepRunner, income domainrepo.IncomeStore) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger, analyzer: analyzer, sweeper: sweeper, income: income}
}

func (h *AnalyzeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stock")
	g.GET("/analyze", h.Analyze)
	g.POST("/evaluate", h.Evaluate)
	e.GET("/healthz", h.Health)
}

// Analyze runs the full analysis for one ticker.
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.errorResponse(c, req.Ticker, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Evaluate triggers a watchlist sweep outside the cron schedule. The sweep
// runs in the background; the response only acknowledges the trigger.
func (h *AnalyzeHandler) Evaluate(c echo.Context) error {
	if h.sweeper == nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "evaluator disabled")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		h.sweeper.RunSweep(ctx)
	}()

	h.logger.Info("manual evaluation sweep triggered")
	return xhttp.DataResponse(c, http.StatusAccepted, "evaluation started")
}

// Health reports process liveness and, when wired, database connectivity.
func (h *AnalyzeHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.income != nil {
		if err := h.income.Health(c.Request().Context()); err != nil {
			h.logger.Warn("health check: income store unreachable", xlogger.Error(err))
			status["income_store"] = "unreachable"
		} else {
			status["income_store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

// errorResponse maps the pipeline error taxonomy onto HTTP statuses:
// caller errors are 400, upstream and predictor failures are 502,
// anything unclassified is 500.
func (h *AnalyzeHandler) errorResponse(c echo.Context, ticker string, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return xhttp.BadRequestResponse(c, err.Error())
	case errors.Is(err, models.ErrRateLimitExhausted),
		errors.Is(err, models.ErrUpstreamData),
		errors.Is(err, models.ErrParse),
		errors.Is(err, models.ErrInsufficientHistory),
		errors.Is(err, models.ErrPredictionService):
		h.logger.Error("analysis upstream failure",
			xlogger.String("ticker", ticker),
			xlogger.Error(err),
		)
		return xhttp.BadGatewayResponse(c, err.Error())
	default:
		h.logger.Error("analysis failed",
			xlogger.String("ticker", ticker),
			xlogger.Error(err),
		)
		return xhttp.InternalServerErrorResponse(c)
	}
}
