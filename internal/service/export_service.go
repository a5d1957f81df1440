package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/ai-quiz-api/internal/domain/entity"
)

// exportSheetName — имя листа в выгрузке лидерборда
const exportSheetName = "Leaderboard"

// ExportService формирует XLSX-выгрузку лидерборда
type ExportService struct {
	sessions *SessionService
}

// NewExportService создает новый сервис выгрузки
func NewExportService(sessions *SessionService) *ExportService {
	return &ExportService{sessions: sessions}
}

// LeaderboardXLSX возвращает XLSX-файл с топом пользователей
func (s *ExportService) LeaderboardXLSX(limit int) (*bytes.Buffer, error) {
	users, err := s.sessions.Leaderboard(limit)
	if err != nil {
		return nil, err
	}
	return buildLeaderboardWorkbook(users)
}

func buildLeaderboardWorkbook(users []entity.User) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать лист: %w", err)
	}
	f.SetActiveSheet(sheet)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("не удалось удалить лист по умолчанию: %w", err)
	}

	headers := []string{"Место", "Никнейм", "Правильных", "Отвечено", "Попыток", "Последний визит"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for row, u := range users {
		values := []interface{}{
			row + 1,
			u.Nickname,
			u.TotalCorrect,
			u.TotalAnswered,
			u.Attempts,
			u.LastSeenAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(exportSheetName, "B", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheetName, "F", "F", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("не удалось сериализовать книгу: %w", err)
	}
	return buf, nil
}
