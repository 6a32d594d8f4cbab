package scheduler

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/service"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ErrTaskNotFound is returned by RunTask for an unknown task name.
var ErrTaskNotFound = errors.New("task not found")

// Task names accepted by RunTask and used in logs.
const (
	TaskSyncAvailability = "sync_availability"
	TaskSweepOrders      = "sweep_orders"
	TaskRecomputeRatings = "recompute_ratings"
	TaskCleanupReviews   = "cleanup_reviews"
	TaskSalesReport      = "sales_report"
	TaskSendReminders    = "send_reminders"
	TaskDeactivate       = "deactivate_accounts"
	TaskActivityReport   = "activity_report"
)

// MaintenanceScheduler runs the periodic housekeeping jobs: stock and
// availability sync, order lifecycle sweeps, rating recomputation,
// review cleanup, account upkeep and report generation.
type MaintenanceScheduler struct {
	cron        *cron.Cron
	maintenance service.MaintenanceService
	accounts    service.AccountService
	reports     service.ReportService
	cfg         config.MaintenanceConfig
	tasks       map[string]func() error
}

func NewMaintenanceScheduler(
	maintenance service.MaintenanceService,
	accounts service.AccountService,
	reports service.ReportService,
	cfg config.MaintenanceConfig,
) *MaintenanceScheduler {
	s := &MaintenanceScheduler{
		cron:        cron.New(),
		maintenance: maintenance,
		accounts:    accounts,
		reports:     reports,
		cfg:         cfg,
	}
	s.tasks = map[string]func() error{
		TaskSyncAvailability: s.runSyncAvailability,
		TaskSweepOrders:      s.runSweepOrders,
		TaskRecomputeRatings: s.runRecomputeRatings,
		TaskCleanupReviews:   s.runCleanupReviews,
		TaskSalesReport:      s.runSalesReport,
		TaskSendReminders:    s.runSendReminders,
		TaskDeactivate:       s.runDeactivate,
		TaskActivityReport:   s.runActivityReport,
	}
	return s
}

// Start registers every job with its configured cron spec and starts
// the scheduler.
func (s *MaintenanceScheduler) Start() error {
	jobs := []struct {
		name string
		spec string
	}{
		{TaskSyncAvailability, s.cfg.AvailabilitySpec},
		{TaskSweepOrders, s.cfg.OrderSweepSpec},
		{TaskRecomputeRatings, s.cfg.RatingSpec},
		{TaskCleanupReviews, s.cfg.ReviewCleanupSpec},
		{TaskSalesReport, s.cfg.SalesReportSpec},
		{TaskSendReminders, s.cfg.ReminderSpec},
		{TaskDeactivate, s.cfg.DeactivationSpec},
		{TaskActivityReport, s.cfg.ActivityReportSpec},
	}

	for _, job := range jobs {
		name := job.name
		run := s.tasks[name]
		_, err := s.cron.AddFunc(job.spec, func() {
			if err := run(); err != nil {
				logger.Error("Scheduled task failed", err, map[string]interface{}{
					"task": name,
				})
			}
		})
		if err != nil {
			logger.Error("Failed to register cron job", err, map[string]interface{}{
				"task": name,
				"spec": job.spec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"jobs": len(jobs),
	})
	return nil
}

// Stop halts the scheduler. Running jobs finish before Stop returns.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

// TaskNames lists the runnable task names in stable order.
func (s *MaintenanceScheduler) TaskNames() []string {
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunTask executes a single job immediately by name.
func (s *MaintenanceScheduler) RunTask(name string) error {
	run, ok := s.tasks[name]
	if !ok {
		return ErrTaskNotFound
	}
	return run()
}

func (s *MaintenanceScheduler) runSyncAvailability() error {
	hidden, restored, err := s.maintenance.SyncAvailability()
	if err != nil {
		return err
	}
	logger.Info("Availability synced", map[string]interface{}{
		"hidden":   hidden,
		"restored": restored,
	})
	return nil
}

func (s *MaintenanceScheduler) runSweepOrders() error {
	moved, err := s.maintenance.SweepOrders(time.Now())
	if err != nil {
		return err
	}
	logger.Info("Order sweep finished", map[string]interface{}{
		"transitioned": moved,
	})
	return nil
}

func (s *MaintenanceScheduler) runRecomputeRatings() error {
	cached, err := s.maintenance.RecomputeRatings(context.Background())
	if err != nil {
		return err
	}
	logger.Info("Product ratings recomputed", map[string]interface{}{
		"products": cached,
	})
	return nil
}

func (s *MaintenanceScheduler) runCleanupReviews() error {
	removed, err := s.maintenance.CleanupReviews()
	if err != nil {
		return err
	}
	logger.Info("Review cleanup finished", map[string]interface{}{
		"removed": removed,
	})
	return nil
}

func (s *MaintenanceScheduler) runSalesReport() error {
	path, err := s.reports.GenerateSalesReport(time.Now())
	if err != nil {
		return err
	}
	logger.Info("Sales report written", map[string]interface{}{
		"path": path,
	})
	return nil
}

func (s *MaintenanceScheduler) runSendReminders() error {
	sent, err := s.accounts.SendInactivityReminders(time.Now())
	if err != nil {
		return err
	}
	logger.Info("Inactivity reminders sent", map[string]interface{}{
		"sent": sent,
	})
	return nil
}

func (s *MaintenanceScheduler) runDeactivate() error {
	deactivated, err := s.accounts.DeactivateDormantAccounts(time.Now())
	if err != nil {
		return err
	}
	logger.Info("Dormant accounts deactivated", map[string]interface{}{
		"deactivated": deactivated,
	})
	return nil
}

func (s *MaintenanceScheduler) runActivityReport() error {
	path, err := s.reports.GenerateActivityReport(time.Now())
	if err != nil {
		return err
	}
	logger.Info("Activity report written", map[string]interface{}{
		"path": path,
	})
	return nil
}
