package geography

import (
	"errors"
	"strconv"

	"geo-manager/core/logger"
	"geo-manager/core/normalize"
	"geo-manager/feature/geography/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for the geographic hierarchy.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the geography routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/geography/:kind")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
}

// ContinentRequest is the payload for creating or updating a continent.
type ContinentRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CountryRequest is the payload for creating or updating a country.
type CountryRequest struct {
	ContinentID     uint    `json:"continent_id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	Flag            string  `json:"flag"`
	Population      int64   `json:"population"`
	HealthcareIndex float64 `json:"healthcare_index"`
}

// ProvinceRequest is the payload for creating or updating a province.
type ProvinceRequest struct {
	CountryID uint   `json:"country_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	FlagImage string `json:"flag_image"`
	Region    string `json:"region"`
}

// CityRequest is the payload for creating or updating a city.
type CityRequest struct {
	ProvinceID uint    `json:"province_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	FlagImage  string  `json:"flag_image"`
}

// HandleList lists entities of one kind.
// @Summary List Entities
// @Description List all entities of a kind, optionally scoped to a parent.
// @Tags geography
// @Produce json
// @Param kind path string true "Entity kind (continent, country, province, city)"
// @Param parent_id query int false "Scope the listing to one parent"
// @Success 200 {array} object "Entities"
// @Failure 400 {object} map[string]string "Unknown kind"
// @Router /geography/{kind} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	kind, err := models.ParseKind(c.Params("kind"))
	if err != nil {
		return badRequest(c, err)
	}
	parentID := uint(c.QueryInt("parent_id"))

	list, err := h.service.List(c.Context(), kind, parentID)
	if err != nil {
		return h.internalError(c, "listing entities failed", err)
	}
	return c.JSON(list)
}

// HandleGet returns one entity.
// @Summary Get Entity
// @Description Get a single entity by id.
// @Tags geography
// @Produce json
// @Param kind path string true "Entity kind"
// @Param id path int true "Entity id"
// @Success 200 {object} object "Entity"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /geography/{kind}/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	kind, id, err := kindAndID(c)
	if err != nil {
		return badRequest(c, err)
	}

	entity, err := h.service.Get(c.Context(), kind, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	if err != nil {
		return h.internalError(c, "loading entity failed", err)
	}
	return c.JSON(entity)
}

// HandleCreate creates one entity.
// @Summary Create Entity
// @Description Create a new entity under its parent. The name must be unique within the parent scope.
// @Tags geography
// @Accept json
// @Produce json
// @Param kind path string true "Entity kind"
// @Success 201 {object} object "Created entity"
// @Failure 409 {object} map[string]string "Name already taken within the parent scope"
// @Router /geography/{kind} [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	kind, err := models.ParseKind(c.Params("kind"))
	if err != nil {
		return badRequest(c, err)
	}

	model, err := h.parseBody(c, kind, 0)
	if err != nil {
		return badRequest(c, err)
	}

	err = h.service.Create(c.Context(), model)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "an entity with this name already exists under the same parent",
		})
	}
	if err != nil {
		return h.internalError(c, "creating entity failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(model)
}

// HandleUpdate replaces one entity.
// @Summary Update Entity
// @Description Replace the fields of an existing entity.
// @Tags geography
// @Accept json
// @Produce json
// @Param kind path string true "Entity kind"
// @Param id path int true "Entity id"
// @Success 200 {object} object "Updated entity"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /geography/{kind}/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	kind, id, err := kindAndID(c)
	if err != nil {
		return badRequest(c, err)
	}

	if _, err := h.service.Get(c.Context(), kind, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	} else if err != nil {
		return h.internalError(c, "loading entity failed", err)
	}

	model, err := h.parseBody(c, kind, id)
	if err != nil {
		return badRequest(c, err)
	}

	err = h.service.Update(c.Context(), model)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "an entity with this name already exists under the same parent",
		})
	}
	if err != nil {
		return h.internalError(c, "updating entity failed", err)
	}
	return c.JSON(model)
}

// HandleDelete deletes one entity unless it has dependents.
// @Summary Delete Entity
// @Description Delete an entity. Refused with 409 when dependents exist.
// @Tags geography
// @Produce json
// @Param kind path string true "Entity kind"
// @Param id path int true "Entity id"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]interface{} "Entity has dependents"
// @Router /geography/{kind}/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	kind, id, err := kindAndID(c)
	if err != nil {
		return badRequest(c, err)
	}

	decision, err := h.service.Delete(c.Context(), kind, id)
	if err != nil {
		return h.internalError(c, "deleting entity failed", err)
	}
	if !decision.OK {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "entity has dependents and cannot be deleted",
			"dependents": decision.Dependents,
			"child_kind": string(decision.ChildKind),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseBody decodes the kind's typed request and builds the model. The id
// is zero on create. NameKey is always derived here; clients never send it.
func (h *Handler) parseBody(c *fiber.Ctx, kind models.Kind, id uint) (any, error) {
	switch kind {
	case models.KindContinent:
		var req ContinentRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, err
		}
		return &models.Continent{ID: id, Name: req.Name, NameKey: normalize.Key(req.Name), Code: req.Code}, nil
	case models.KindCountry:
		var req CountryRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, err
		}
		return &models.Country{
			ID:              id,
			ContinentID:     req.ContinentID,
			Name:            req.Name,
			NameKey:         normalize.Key(req.Name),
			Code:            req.Code,
			Flag:            req.Flag,
			Population:      req.Population,
			HealthcareIndex: req.HealthcareIndex,
		}, nil
	case models.KindProvince:
		var req ProvinceRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, err
		}
		return &models.Province{
			ID:        id,
			CountryID: req.CountryID,
			Name:      req.Name,
			NameKey:   normalize.Key(req.Name),
			Code:      req.Code,
			FlagImage: req.FlagImage,
			Region:    req.Region,
		}, nil
	default:
		var req CityRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, err
		}
		return &models.City{
			ID:         id,
			ProvinceID: req.ProvinceID,
			Name:       req.Name,
			NameKey:    normalize.Key(req.Name),
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
			FlagImage:  req.FlagImage,
		}, nil
	}
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func kindAndID(c *fiber.Ctx) (models.Kind, uint, error) {
	kind, err := models.ParseKind(c.Params("kind"))
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return "", 0, err
	}
	return kind, uint(id), nil
}
