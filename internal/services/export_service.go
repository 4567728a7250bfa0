package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportUserResults renders every stored answer result for a user as an xlsx
// workbook, newest first as returned by the repository.
func (s *exportService) ExportUserResults(ctx context.Context, userID string) ([]byte, error) {
	records, err := s.repo.Result().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close export workbook", "error", err)
		}
	}()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("Failed to remove default sheet", "error", err)
	}

	headers := []string{
		"Session ID", "Question ID", "Attempt", "Correct",
		"Points", "Currency", "Elapsed (ms)", "Hints Used", "Recorded At",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, record := range records {
		values := []interface{}{
			record.SessionID,
			record.QuestionID,
			record.AttemptNumber,
			record.IsCorrect,
			record.PointsDelta,
			record.CurrencyDelta,
			record.ElapsedMs,
			record.HintsUsed,
			record.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Exported user results", "user_id", userID, "rows", len(records))
	return buf.Bytes(), nil
}
