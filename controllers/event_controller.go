package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type EventController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEventController(db *gorm.DB, logger *log.Logger) *EventController {
	return &EventController{
		DB:     db,
		Logger: logger,
	}
}

type eventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"omitempty"`
	EndTime     string `json:"end_time" validate:"omitempty"`
	Location    string `json:"location" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	CircleID    *uint  `json:"circle_id"`

	RepeatFrequency  string   `json:"repeat_frequency" validate:"omitempty,oneof=none daily weekly monthly"`
	RepeatInterval   int      `json:"repeat_interval" validate:"omitempty,min=1"`
	RepeatDays       []string `json:"repeat_days" validate:"omitempty,dive,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	RepeatDayOfMonth int      `json:"repeat_day_of_month" validate:"omitempty,min=1,max=31"`
}

func (in *eventInput) normalize() error {
	if _, err := time.Parse(utils.DateLayout, in.Date); err != nil {
		return fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	for _, clock := range []string{in.StartTime, in.EndTime} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse("15:04", clock); err != nil {
			return fmt.Errorf("times must be formatted as HH:MM")
		}
	}
	if in.RepeatFrequency == "" {
		in.RepeatFrequency = models.RepeatNone
	}
	if in.RepeatInterval == 0 {
		in.RepeatInterval = 1
	}
	if in.RepeatFrequency == models.RepeatWeekly && len(in.RepeatDays) == 0 {
		return fmt.Errorf("weekly events need at least one repeat day")
	}
	if in.RepeatFrequency == models.RepeatMonthly && in.RepeatDayOfMonth == 0 {
		return fmt.Errorf("monthly events need a repeat day of month")
	}
	return nil
}

func (ec *EventController) apply(evt *models.Event, in eventInput) {
	evt.Title = in.Title
	evt.Date = in.Date
	evt.StartTime = in.StartTime
	evt.EndTime = in.EndTime
	evt.Location = in.Location
	evt.Description = in.Description
	evt.RepeatFrequency = in.RepeatFrequency
	evt.RepeatInterval = in.RepeatInterval
	evt.RepeatDays = in.RepeatDays
	evt.RepeatDayOfMonth = in.RepeatDayOfMonth
}

// CreateEvent creates a personal event, or a circle event when circle_id
// is set. Circle events require membership and announce themselves to the
// circle.
func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input eventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := input.normalize(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if input.CircleID != nil {
		var circle models.Circle
		if err := ec.DB.Preload("Members").First(&circle, *input.CircleID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
		}
		if !utils.IsJoined(user.ID, circle) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this circle", nil)
		}
	}

	event := models.Event{
		UserID:   user.ID,
		CircleID: input.CircleID,
	}
	ec.apply(&event, input)

	if err := ec.DB.Create(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create event", err)
	}

	if event.CircleID != nil {
		message := fmt.Sprintf("New event: %s on %s", event.Title, event.Date)
		if err := CreateCircleNotification(ec.DB, *event.CircleID, message); err != nil {
			// The event exists; fan-out is best-effort
			ec.Logger.Printf("Failed to create event notification for circle %d: %v", *event.CircleID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(event))
}

// visibleEvents loads the user's own events plus events of joined circles.
func (ec *EventController) visibleEvents(userID uint) ([]models.Event, error) {
	var circles []models.Circle
	if err := ec.DB.Preload("Members").Find(&circles).Error; err != nil {
		return nil, err
	}
	joined := utils.JoinedCircleIDs(userID, circles)

	var events []models.Event
	query := ec.DB.Where("user_id = ?", userID)
	if len(joined) > 0 {
		query = query.Or("circle_id IN ?", joined)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvents lists every event visible to the user.
func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	events, err := ec.visibleEvents(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load events", err)
	}

	return c.JSON(utils.SuccessResponse(events))
}

// GetEvent returns one event if the user can see it.
func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	eventID := utils.ParseUint(c.Params("id"))

	event, status, err := ec.loadVisibleEvent(user.ID, eventID)
	if err != nil {
		return utils.ErrorResponse(c, status, err.Error(), nil)
	}

	return c.JSON(utils.SuccessResponse(event))
}

// UpdateEvent overwrites an event. Allowed for the event owner, the
// circle owner, and circle editors.
func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	eventID := utils.ParseUint(c.Params("id"))

	var input eventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := input.normalize(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	event, status, err := ec.loadVisibleEvent(user.ID, eventID)
	if err != nil {
		return utils.ErrorResponse(c, status, err.Error(), nil)
	}
	if !ec.canEdit(user.ID, event) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot edit this event", nil)
	}

	ec.apply(event, input)
	// A changed date or rule invalidates any pending reminder stamp
	event.RemindedFor = ""

	if err := ec.DB.Save(event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update event", err)
	}

	return c.JSON(utils.SuccessResponse(event))
}

// DeleteEvent removes an event.
func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	eventID := utils.ParseUint(c.Params("id"))

	event, status, err := ec.loadVisibleEvent(user.ID, eventID)
	if err != nil {
		return utils.ErrorResponse(c, status, err.Error(), nil)
	}
	if !ec.canEdit(user.ID, event) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot delete this event", nil)
	}

	if err := ec.DB.Delete(event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete event", err)
	}

	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// GetCalendar returns the month grid with repeat rules expanded: each
// visible day mapped to the events occurring on it.
func (ec *EventController) GetCalendar(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "month must be between 1 and 12", nil)
	}

	events, err := ec.visibleEvents(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load events", err)
	}

	grid := utils.MonthGrid(year, time.Month(month))
	occurrences := utils.ExpandOccurrences(events, grid)

	days := make([]string, len(grid))
	for i, d := range grid {
		if !d.IsZero() {
			days[i] = d.Format(utils.DateLayout)
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"year":        year,
		"month":       month,
		"days":        days,
		"occurrences": occurrences,
	}))
}

func (ec *EventController) loadVisibleEvent(userID, eventID uint) (*models.Event, int, error) {
	var event models.Event
	if err := ec.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound, errors.New("Event not found")
		}
		return nil, fiber.StatusInternalServerError, errors.New("Failed to load event")
	}

	if event.UserID == userID {
		return &event, 0, nil
	}
	if event.CircleID != nil {
		var circle models.Circle
		if err := ec.DB.Preload("Members").First(&circle, *event.CircleID).Error; err == nil &&
			utils.IsJoined(userID, circle) {
			return &event, 0, nil
		}
	}
	return nil, fiber.StatusNotFound, errors.New("Event not found")
}

// canEdit: the creator always may; members of the event's circle may when
// they hold the owner or editor role.
func (ec *EventController) canEdit(userID uint, event *models.Event) bool {
	if event.UserID == userID {
		return true
	}
	if event.CircleID == nil {
		return false
	}
	var circle models.Circle
	if err := ec.DB.Preload("Members").First(&circle, *event.CircleID).Error; err != nil {
		return false
	}
	return canManageInvites(userID, circle)
}
