package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ReportService writes the periodic XLSX reports to the configured
// report directory and returns the path of each generated file.
type ReportService interface {
	GenerateSalesReport(now time.Time) (string, error)
	GenerateActivityReport(now time.Time) (string, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	cfg       config.MaintenanceConfig
}

func NewReportService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cfg config.MaintenanceConfig,
) ReportService {
	return &reportService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		cfg:       cfg,
	}
}

func (s *reportService) reportPath(name string, now time.Time) (string, error) {
	if err := os.MkdirAll(s.cfg.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return filepath.Join(s.cfg.ReportDir, fmt.Sprintf("%s-%s.xlsx", name, now.Format("2006-01-02"))), nil
}

// GenerateSalesReport covers the previous calendar day of placed
// orders, followed by the top categories by units sold.
func (s *reportService) GenerateSalesReport(now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := dayStart.AddDate(0, 0, -1)
	rows, err := s.orderRepo.SalesBetween(since, dayStart)
	if err != nil {
		return "", err
	}
	topCategories, err := s.orderRepo.CategoryUnitsBetween(since, dayStart, 5)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Date", "Orders", "Items", "Revenue"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{row.Day, row.OrderCount, row.ItemCount, row.Revenue}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", fmt.Errorf("failed to write sales row: %w", err)
			}
		}
	}

	// Top categories go below the daily rows, separated by a blank line.
	categoryStart := len(rows) + 3
	for j, header := range []string{"Category", "Units sold"} {
		cell, _ := excelize.CoordinatesToCellName(j+1, categoryStart)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return "", fmt.Errorf("failed to write category header: %w", err)
		}
	}
	for i, row := range topCategories {
		values := []interface{}{row.CategoryName, row.Units}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, categoryStart+i+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", fmt.Errorf("failed to write category row: %w", err)
			}
		}
	}

	path, err := s.reportPath("sales", now)
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save sales report: %w", err)
	}

	logger.Info("Sales report generated", map[string]interface{}{
		"path":       path,
		"days":       len(rows),
		"categories": len(topCategories),
	})
	return path, nil
}

// GenerateActivityReport writes the user activity counters: totals, new
// registrations over 30 days, logins over 7 days and the active share
// of the user base.
func (s *reportService) GenerateActivityReport(now time.Time) (string, error) {
	stats, err := s.userRepo.GetActivityStats(now)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total users", stats.TotalUsers},
		{"New users (30 days)", stats.NewUsers30d},
		{"Active users (7 days)", stats.ActiveUsers7d},
		{"Active percent", stats.ActivePercent},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", fmt.Errorf("failed to write activity row: %w", err)
			}
		}
	}

	path, err := s.reportPath("activity", now)
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save activity report: %w", err)
	}

	logger.Info("Activity report generated", map[string]interface{}{
		"path":           path,
		"total_users":    stats.TotalUsers,
		"active_percent": stats.ActivePercent,
	})
	return path, nil
}
