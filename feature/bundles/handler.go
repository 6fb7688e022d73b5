package bundles

import (
	"content-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for bundles.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the bundle routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/bundles")
	group.Get("/", h.HandleList)
	group.Post("/rebuild", h.HandleRebuild)
	group.Get("/:owner", h.HandleGet)
}

// HandleList lists published bundles.
// @Summary List Bundles
// @Description Lists the descriptors of every published bundle.
// @Tags bundles
// @Produce json
// @Success 200 {array} pipeline.Descriptor
// @Router /bundles [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleGet returns the bundle of one owner.
// @Summary Get Bundle
// @Description Returns the bundle descriptor of an owner. Owners whose last build failed are not available.
// @Tags bundles
// @Produce json
// @Param owner path string true "Owner id"
// @Success 200 {object} pipeline.Descriptor
// @Failure 404 {object} map[string]string "Not available"
// @Router /bundles/{owner} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	d, ok := h.service.Get(c.Params("owner"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not available"})
	}
	return c.JSON(d)
}

// HandleRebuild rebuilds every owner.
// @Summary Rebuild Bundles
// @Description Discovers plugins and rebuilds the bundles whose content changed.
// @Tags bundles
// @Produce json
// @Success 200 {object} pipeline.Report
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /bundles/rebuild [post]
func (h *Handler) HandleRebuild(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering bundle rebuild")

	report, err := h.service.Rebuild(c.UserContext())
	if err != nil {
		l.Error("Bundle rebuild failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
