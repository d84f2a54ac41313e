package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type ProfileController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProfileController(db *gorm.DB, logger *log.Logger) *ProfileController {
	return &ProfileController{
		DB:     db,
		Logger: logger,
	}
}

type updateProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Tribe    *string `json:"tribe" validate:"omitempty,max=100"`
	Location *string `json:"location" validate:"omitempty,max=200"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Timezone string  `json:"timezone" validate:"omitempty,max=60"`
	Language string  `json:"language" validate:"omitempty,max=10"`
}

func profileResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":             user.ID,
		"email":          user.Email,
		"email_verified": user.EmailVerified,
		"name":           user.Name,
		"photo_url":      user.PhotoURL,
		"tribe":          user.Tribe,
		"location":       user.Location,
		"bio":            user.Bio,
		"timezone":       user.Timezone,
		"language":       user.Language,
		"created_at":     user.CreatedAt,
	}
}

// GetProfile returns the caller's profile.
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(utils.SuccessResponse(profileResponse(user)))
}

// UpdateProfile patches the fields present in the body; omitted fields
// keep their current value.
func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input updateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Name != nil {
		user.Name = input.Name
	}
	if input.Tribe != nil {
		user.Tribe = input.Tribe
	}
	if input.Location != nil {
		user.Location = input.Location
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Timezone != "" {
		user.Timezone = input.Timezone
	}
	if input.Language != "" {
		user.Language = input.Language
	}

	if err := pc.DB.Save(user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", err)
	}

	return c.JSON(utils.SuccessResponse(profileResponse(user)))
}

// UploadProfilePhoto stores a new profile photo and records its URL.
func (pc *ProfileController) UploadProfilePhoto(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	photoURL, err := utils.SavePhoto(c, "photo", "profile-photos")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if photoURL == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No photo uploaded", nil)
	}

	user.PhotoURL = &photoURL
	if err := pc.DB.Save(user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save photo", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"photo_url": photoURL}))
}
