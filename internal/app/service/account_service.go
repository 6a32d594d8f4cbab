package service

import (
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/mailer"
)

// AccountService hosts the periodic user lifecycle jobs: reminding
// inactive users and deactivating dormant accounts.
type AccountService interface {
	SendInactivityReminders(now time.Time) (int, error)
	DeactivateDormantAccounts(now time.Time) (int64, error)
}

type accountService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	cfg      config.MaintenanceConfig
}

func NewAccountService(
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	cfg config.MaintenanceConfig,
) AccountService {
	return &accountService{
		userRepo: userRepo,
		mail:     mail,
		cfg:      cfg,
	}
}

// SendInactivityReminders emails every active user whose last login is
// older than the reminder cutoff.
func (s *accountService) SendInactivityReminders(now time.Time) (int, error) {
	threshold := now.Add(-s.cfg.InactiveReminderAfter)

	users, err := s.userRepo.FindInactiveSince(threshold)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		if s.mail == nil {
			break
		}
		subject, body := mailer.InactivityReminder(user.Name)
		if err := s.mail.Send(user.Email, subject, body); err != nil {
			logger.Error("Failed to send inactivity reminder", err, map[string]interface{}{
				"user_id": user.ID,
				"email":   user.Email,
			})
			continue
		}
		sent++
	}

	logger.Info("Inactivity reminders finished", map[string]interface{}{
		"candidates": len(users),
		"sent":       sent,
	})
	return sent, nil
}

// DeactivateDormantAccounts disables non-admin accounts whose last login
// is older than the dormancy cutoff.
func (s *accountService) DeactivateDormantAccounts(now time.Time) (int64, error) {
	threshold := now.Add(-s.cfg.DeactivateAfter)

	deactivated, err := s.userRepo.DeactivateInactiveSince(threshold)
	if err != nil {
		return 0, err
	}

	logger.Info("Dormant account deactivation finished", map[string]interface{}{
		"deactivated": deactivated,
	})
	return deactivated, nil
}
