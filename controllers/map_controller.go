package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type MapController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMapController(db *gorm.DB, logger *log.Logger) *MapController {
	return &MapController{
		DB:     db,
		Logger: logger,
	}
}

type mapPointInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Category    string  `json:"category" validate:"omitempty,max=50"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
}

// CreateMapPoint pins a place on the community map.
func (mc *MapController) CreateMapPoint(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input mapPointInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	point := models.MapPoint{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedBy:   user.ID,
	}

	if err := mc.DB.Create(&point).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create map point", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(point))
}

// GetMapPoints lists the pins, narrowed by the optional q and category
// query parameters.
func (mc *MapController) GetMapPoints(c *fiber.Ctx) error {
	var points []models.MapPoint
	if err := mc.DB.Find(&points).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load map points", err)
	}

	filtered := utils.FilterMapPoints(points, c.Query("q"), c.Query("category"))

	return c.JSON(utils.SuccessResponse(filtered))
}

// DeleteMapPoint removes a pin. Creators may delete their own; admins
// may delete any.
func (mc *MapController) DeleteMapPoint(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	pointID := utils.ParseUint(c.Params("id"))

	var point models.MapPoint
	if err := mc.DB.First(&point, pointID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Map point not found", nil)
	}
	if point.CreatedBy != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot delete this map point", nil)
	}

	if err := mc.DB.Delete(&point).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete map point", err)
	}

	return c.JSON(fiber.Map{"message": "Map point deleted"})
}
