package services

import (
	"bytes"
	"fmt"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders review results as spreadsheet reports
type ExportService struct{}

// NewExportService creates a new ExportService
func NewExportService() *ExportService {
	return &ExportService{}
}

var findingHeaders = []string{"Severity", "Category", "Title", "Description", "File", "Line", "Suggestion"}

// ExportFindings writes one xlsx row per finding of a review, with a
// summary block at the top
func (s *ExportService) ExportFindings(review *models.Review, findings []*models.Finding) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Findings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "Pull Request")
	f.SetCellValue(sheet, "B1", fmt.Sprintf("#%d %s", review.PullRequestNumber, review.Title))
	f.SetCellValue(sheet, "A2", "Status")
	f.SetCellValue(sheet, "B2", string(review.Status))
	f.SetCellValue(sheet, "A3", "Quality Score")
	if review.QualityScore != nil {
		f.SetCellValue(sheet, "B3", *review.QualityScore)
	}
	f.SetCellValue(sheet, "A4", "Total Issues")
	f.SetCellValue(sheet, "B4", review.TotalIssuesCount)

	headerRow := 6
	for col, header := range findingHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, header)
	}

	for i, finding := range findings {
		row := headerRow + 1 + i
		values := []interface{}{
			string(finding.Severity),
			string(finding.Category),
			finding.Title,
			finding.Description,
			finding.FilePath,
			nil,
			nil,
		}
		if finding.LineNumber != nil {
			values[5] = *finding.LineNumber
		}
		if finding.Suggestion != nil {
			values[6] = *finding.Suggestion
		}

		for col, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f.WriteToBuffer()
}
