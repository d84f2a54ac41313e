package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

// maxEmailAttempts is the point at which we stop retrying an invite email.
const maxEmailAttempts = 5

// InviteWorker retries invite emails that were never delivered, so that a
// flaky SMTP server at circle-creation time does not strand the invite.
type InviteWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewInviteWorker(db *gorm.DB, logger *log.Logger) *InviteWorker {
	return &InviteWorker{
		DB:     db,
		Logger: logger,
	}
}

func (iw *InviteWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	iw.Logger.Println("Invite worker started")

	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			iw.Logger.Println("Invite worker shutting down...")
			return
		case <-ticker.C:
			iw.processPendingInvites()
		}
	}
}

func (iw *InviteWorker) processPendingInvites() {
	var invites []models.CircleInvite
	err := iw.DB.Preload("Circle").
		Where("status = ? AND email_sent_at IS NULL AND email_attempts < ?",
			models.InviteStatusPending, maxEmailAttempts).
		Limit(50).
		Find(&invites).Error
	if err != nil {
		iw.Logger.Printf("Error fetching pending invites: %v", err)
		return
	}

	for _, invite := range invites {
		if err := iw.deliverInvite(invite); err != nil {
			iw.Logger.Printf("Error delivering invite %d: %v", invite.ID, err)
		}
	}
}

func (iw *InviteWorker) deliverInvite(invite models.CircleInvite) error {
	if err := checkmail.ValidateFormat(invite.Email); err != nil {
		// The address can never receive mail; stop retrying
		return iw.DB.Model(&invite).Updates(map[string]interface{}{
			"email_attempts": maxEmailAttempts,
			"last_error":     fmt.Sprintf("invalid email address: %v", err),
		}).Error
	}

	sendErr := utils.SendCircleInviteEmail(invite.Email, invite.Circle.Name, invite.Token, "")
	if sendErr != nil {
		attempts := invite.EmailAttempts + 1
		if attempts >= maxEmailAttempts {
			sentry.CaptureException(fmt.Errorf("invite %d email permanently failed: %w", invite.ID, sendErr))
		}
		return iw.DB.Model(&invite).Updates(map[string]interface{}{
			"email_attempts": attempts,
			"last_error":     sendErr.Error(),
		}).Error
	}

	now := time.Now()
	return iw.DB.Model(&invite).Updates(map[string]interface{}{
		"email_sent_at":  &now,
		"email_attempts": invite.EmailAttempts + 1,
		"last_error":     "",
	}).Error
}
