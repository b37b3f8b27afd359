package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
)

var ErrExportGenerateFail = errors.New("failed to generate spreadsheet")

const hoursSheet = "Hours"

// ExportService spreadsheet exports
type ExportService interface {
	// ExportHours writes the hours roster of active students as .xlsx
	ExportHours(ctx context.Context, schedule string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	course *CourseCalendar
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, course *CourseCalendar, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, course: course, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportHours
// ═══════════════════════════════════════════════════════════
//
// One sheet, one row per active student (optionally one cohort):
//   | ID | Name | Email | Cohort | Sessions | Hours | Remaining | Completed |

func (s *exportService) ExportHours(ctx context.Context, schedule string) (*bytes.Buffer, string, error) {
	students, err := s.repo.Student.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active students failed", zap.Error(err))
		return nil, "", err
	}
	if schedule != "" {
		filtered := students[:0]
		for _, st := range students {
			if st.SetSchedule == schedule {
				filtered = append(filtered, st)
			}
		}
		students = filtered
	}

	progress, err := buildProgress(ctx, s.repo, students, s.course.RequiredHours)
	if err != nil {
		s.logger.Error("load attendance for export failed", zap.Error(err))
		return nil, "", err
	}
	emails := make(map[int64]string, len(students))
	for _, st := range students {
		emails[st.StudentID] = st.Email
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hoursSheet); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	f.SetColWidth(hoursSheet, "A", "A", 8)
	f.SetColWidth(hoursSheet, "B", "C", 28)
	f.SetColWidth(hoursSheet, "D", "D", 30)
	f.SetColWidth(hoursSheet, "E", "H", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	hoursStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00

	headers := []string{"ID", "Name", "Email", "Cohort", "Sessions", "Hours", "Remaining", "Completed"}
	for i, h := range headers {
		f.SetCellValue(hoursSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(hoursSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, p := range progress {
		completed := "No"
		if p.Completed {
			completed = "Yes"
		}
		values := []interface{}{
			p.StudentID, p.FullName, emails[p.StudentID], p.SetSchedule,
			p.Sessions, p.TotalHours, p.RemainingHours, completed,
		}
		for i, v := range values {
			f.SetCellValue(hoursSheet, cell(colName(i), row), v)
		}
		row++
	}
	if row > 2 {
		f.SetCellStyle(hoursSheet, cell("F", 2), cell("G", row-1), hoursStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write spreadsheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := "hours.xlsx"
	if schedule != "" {
		filename = fmt.Sprintf("hours_%s.xlsx", schedule)
	}
	return buf, filename, nil
}

// colName maps a 0-based index to a column letter
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
