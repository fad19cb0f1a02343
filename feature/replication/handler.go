package replication

import (
	"context"
	"errors"

	"bucket-diff/core/diff"
	"bucket-diff/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for replication rounds.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the replication routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/replication")
	group.Get("/status", h.HandleStatus)
	group.Get("/preflight", h.HandlePreflight)
	group.Post("/round", h.HandleRound)
	group.Post("/run", h.HandleRun)
	group.Delete("/checkpoint", h.HandleReset)
}

// applyOptions reads ?apply=true&dry_run=true. Applying requires an explicit apply=true.
func applyOptions(c *fiber.Ctx) ApplyOptions {
	return ApplyOptions{
		Confirmed: c.QueryBool("apply", false),
		DryRun:    c.QueryBool("dry_run", false),
	}
}

// errorStatus maps round errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrPairFailed), diff.IsFatal(err):
		return fiber.StatusConflict
	case diff.IsRetryable(err), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleStatus returns the checkpoint of the pair.
// @Summary Replication Status
// @Description Returns the progress of the configured bucket pair: round number, cursor, leftover groups and the last error.
// @Tags replication
// @Produce json
// @Success 200 {object} Status "Pair Status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /replication/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	status, err := h.service.Status(c.Context())
	if err != nil {
		l.Error("Status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(status)
}

// HandlePreflight checks both buckets and the checkpoint table.
// @Summary Preflight Check
// @Description Verifies that both buckets exist and that the checkpoint table has the expected columns.
// @Tags replication
// @Produce json
// @Success 200 {object} PreflightReport "Preflight Report"
// @Failure 412 {object} PreflightReport "Preflight Failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /replication/preflight [get]
func (h *Handler) HandlePreflight(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Preflight(c.Context())
	if err != nil {
		l.Error("Preflight failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.OK {
		l.Warn("Preflight check did not pass",
			zap.String("first", report.First.Error),
			zap.String("second", report.Second.Error),
			zap.Strings("missing_columns", report.MissingColumns))
		return c.Status(fiber.StatusPreconditionFailed).JSON(report)
	}
	return c.JSON(report)
}

// HandleRound runs the next diff round.
// @Summary Run One Round
// @Description Fetches the next page(s), classifies keys and saves the new checkpoint. With apply=true the planned copies and deletes are executed before the checkpoint is saved.
// @Tags replication
// @Produce json
// @Param apply query boolean false "Execute the plan"
// @Param dry_run query boolean false "Plan only, even if apply is set"
// @Success 200 {object} RoundResult "Round Result"
// @Failure 409 {object} map[string]string "Pair stopped by a fatal error"
// @Failure 503 {object} map[string]string "Transient listing failure"
// @Router /replication/round [post]
func (h *Handler) HandleRound(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	res, err := h.service.Round(c.Context(), applyOptions(c))
	if err != nil {
		l.Error("Round failed", zap.Error(err))
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleRun runs rounds until the diff completes.
// @Summary Run To Completion
// @Description Runs rounds until both listings are exhausted or max_rounds is reached. This operation may take a long time.
// @Tags replication
// @Produce json
// @Param max_rounds query int false "Stop after this many rounds (0 = no limit)"
// @Param apply query boolean false "Execute the plans"
// @Param dry_run query boolean false "Plan only, even if apply is set"
// @Param actions query boolean false "Include planned actions in the response"
// @Success 200 {object} RunReport "Run Report"
// @Failure 409 {object} map[string]string "Pair stopped by a fatal error"
// @Failure 503 {object} map[string]string "Transient listing failure"
// @Router /replication/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	maxRounds := c.QueryInt("max_rounds", 0)
	l.Info("Starting replication run", zap.Int("max_rounds", maxRounds))

	report, err := h.service.RunToCompletion(c.Context(), maxRounds, applyOptions(c), c.QueryBool("actions", false))
	if err != nil {
		l.Error("Run failed", zap.Int("rounds", report.Rounds), zap.Error(err))
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}

	l.Info("Replication run finished",
		zap.Int("rounds", report.Rounds),
		zap.Bool("done", report.Done),
		zap.Int("executed", report.Executed))
	return c.JSON(report)
}

// HandleReset deletes the checkpoint of the pair.
// @Summary Reset Checkpoint
// @Description Deletes the saved progress so that the next round starts a new diff. Also clears a recorded fatal error.
// @Tags replication
// @Produce json
// @Success 200 {object} map[string]string "Reset"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /replication/checkpoint [delete]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Reset(c.Context()); err != nil {
		l.Error("Checkpoint reset failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "reset", "pair_key": h.service.PairKey()})
}
