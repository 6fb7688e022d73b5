package structures

import (
	"errors"
	"math/rand/v2"
	"strconv"

	"content-manager/core/logger"
	"content-manager/core/pool"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for structure pools.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RandomResponse is the result of a weighted draw.
type RandomResponse struct {
	Pool      string     `json:"pool"`
	Resolved  bool       `json:"resolved"`
	Structure *Schematic `json:"structure"`
}

// RegisterRoutes registers the structure routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/structures")
	group.Get("/", h.HandleList)
	group.Get("/:pool/random", h.HandleRandom)
	group.Get("/:pool/:key", h.HandleByKey)
}

// HandleList lists the pools.
// @Summary List Structure Pools
// @Description Lists the declared structure pools with their keys and load statistics.
// @Tags structures
// @Produce json
// @Success 200 {array} PoolInfo
// @Router /structures [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleRandom draws a weighted random structure.
// @Summary Draw Random Structure
// @Description Draws a structure by weight among the entries that are not quarantined. An exhausted pool answers with the empty structure and resolved=false.
// @Tags structures
// @Produce json
// @Param pool path string true "Pool name"
// @Param seed query integer false "Seed for a reproducible draw"
// @Success 200 {object} RandomResponse
// @Failure 400 {object} map[string]string "Invalid seed"
// @Failure 404 {object} map[string]string "Unknown pool"
// @Router /structures/{pool}/random [get]
func (h *Handler) HandleRandom(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	name := c.Params("pool")

	var rng pool.Rand
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "seed must be an unsigned integer"})
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	sch, ok, err := h.service.Random(c.UserContext(), name, rng)
	if err != nil {
		return h.poolError(c, err)
	}
	if !ok {
		l.Warn("Structure pool exhausted", zap.String("pool", name))
	}
	return c.JSON(RandomResponse{Pool: name, Resolved: ok, Structure: sch})
}

// HandleByKey resolves a structure by key.
// @Summary Get Structure
// @Description Resolves one structure of a pool by key.
// @Tags structures
// @Produce json
// @Param pool path string true "Pool name"
// @Param key path string true "Entry key"
// @Success 200 {object} Schematic
// @Failure 404 {object} map[string]string "Unknown pool, unknown key or quarantined entry"
// @Router /structures/{pool}/{key} [get]
func (h *Handler) HandleByKey(c *fiber.Ctx) error {
	sch, ok, err := h.service.ByKey(c.UserContext(), c.Params("pool"), c.Params("key"))
	if err != nil {
		return h.poolError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not available"})
	}
	return c.JSON(sch)
}

func (h *Handler) poolError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrUnknownPool) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.logger, c).Error("Structure request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
