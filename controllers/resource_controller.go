package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type ResourceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewResourceController(db *gorm.DB, logger *log.Logger) *ResourceController {
	return &ResourceController{
		DB:     db,
		Logger: logger,
	}
}

type resourceInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	FileURL     string   `json:"file_url" validate:"required,url"`
	FileType    string   `json:"file_type" validate:"omitempty,max=20"`
	Category    string   `json:"category" validate:"omitempty,max=50"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
}

// CreateResource publishes a document to the shared library.
func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input resourceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	resource := models.Resource{
		Title:       input.Title,
		Description: input.Description,
		FileURL:     input.FileURL,
		FileType:    input.FileType,
		Category:    input.Category,
		Tags:        input.Tags,
		AuthorID:    user.ID,
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create resource", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(resource))
}

// GetResources lists the library newest first, narrowed by the optional
// q and category query parameters.
func (rc *ResourceController) GetResources(c *fiber.Ctx) error {
	var resources []models.Resource
	if err := rc.DB.Preload("Author").Order("created_at desc").Find(&resources).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load resources", err)
	}

	filtered := utils.FilterResources(resources, c.Query("q"), c.Query("category"))

	return c.JSON(utils.SuccessResponse(filtered))
}

// DeleteResource removes a library entry. Authors may delete their own;
// admins may delete any.
func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	resourceID := utils.ParseUint(c.Params("id"))

	var resource models.Resource
	if err := rc.DB.First(&resource, resourceID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", nil)
	}
	if resource.AuthorID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot delete this resource", nil)
	}

	if err := rc.DB.Delete(&resource).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete resource", err)
	}

	return c.JSON(fiber.Map{"message": "Resource deleted"})
}
