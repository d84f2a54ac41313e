package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type FamilyController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewFamilyController(db *gorm.DB, logger *log.Logger) *FamilyController {
	return &FamilyController{
		DB:     db,
		Logger: logger,
	}
}

type familyMemberInput struct {
	Name string `json:"name" form:"name" validate:"required,max=100"`
	// Free-form, matching how people describe ages ("7", "72 years")
	Age          string `json:"age" form:"age" validate:"omitempty,max=20"`
	Relationship string `json:"relationship" form:"relationship" validate:"omitempty,max=100"`
}

func (in familyMemberInput) apply(member *models.FamilyMember) {
	member.Name = in.Name
	member.Age = in.Age
	member.Relationship = in.Relationship
}

// memberCircle loads the circle and checks the caller belongs to it.
func (fc *FamilyController) memberCircle(c *fiber.Ctx, userID uint) (*models.Circle, error) {
	circleID := utils.ParseUint(c.Params("circleId"))

	var circle models.Circle
	if err := fc.DB.Preload("Members").First(&circle, circleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
		}
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle", err)
	}
	if !utils.IsJoined(userID, circle) {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this circle", nil)
	}
	return &circle, nil
}

// AddFamilyMember adds a person to the circle's family roster. Accepts
// multipart form data so a photo can be attached in the same request.
func (fc *FamilyController) AddFamilyMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	circle, err := fc.memberCircle(c, user.ID)
	if circle == nil {
		return err
	}

	var input familyMemberInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	member := models.FamilyMember{CircleID: circle.ID}
	input.apply(&member)

	photoURL, err := utils.SavePhoto(c, "photo", "family-photos")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if photoURL != "" {
		member.PhotoURL = &photoURL
	}

	if err := fc.DB.Create(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add family member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

// GetFamilyMembers lists the circle's family roster.
func (fc *FamilyController) GetFamilyMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	circle, err := fc.memberCircle(c, user.ID)
	if circle == nil {
		return err
	}

	var members []models.FamilyMember
	if err := fc.DB.Where("circle_id = ?", circle.ID).Order("name asc").Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load family members", err)
	}

	return c.JSON(utils.SuccessResponse(members))
}

// UpdateFamilyMember edits a roster entry, optionally replacing the photo.
func (fc *FamilyController) UpdateFamilyMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	circle, err := fc.memberCircle(c, user.ID)
	if circle == nil {
		return err
	}

	memberID := utils.ParseUint(c.Params("memberId"))

	var member models.FamilyMember
	if err := fc.DB.Where("id = ? AND circle_id = ?", memberID, circle.ID).First(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Family member not found", nil)
	}

	var input familyMemberInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	input.apply(&member)

	photoURL, err := utils.SavePhoto(c, "photo", "family-photos")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if photoURL != "" {
		member.PhotoURL = &photoURL
	}

	if err := fc.DB.Save(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update family member", err)
	}

	return c.JSON(utils.SuccessResponse(member))
}

// DeleteFamilyMember removes a roster entry.
func (fc *FamilyController) DeleteFamilyMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	circle, err := fc.memberCircle(c, user.ID)
	if circle == nil {
		return err
	}

	memberID := utils.ParseUint(c.Params("memberId"))

	result := fc.DB.Where("id = ? AND circle_id = ?", memberID, circle.ID).Delete(&models.FamilyMember{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete family member", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Family member not found", nil)
	}

	return c.JSON(fiber.Map{"message": "Family member deleted"})
}
