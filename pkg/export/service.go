package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jordanlanch/clientintel/pkg/dailyplan"
	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

const sheetName = "Plan del día"

var headers = []string{
	"Posición", "Cliente", "Empresa", "Estatus", "Teléfono", "Score", "Prioridad",
	"Accionabilidad", "Disposición", "Acción", "Enfoque", "Canal", "Razón",
	"Días sin contacto", "Días vencido",
}

// ParseFormat validates a requested format. Empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatExcel:
		return FormatExcel, nil
	}
	return "", domain.NewValidationError("invalid format: must be csv or excel")
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for a plan.
func (f Format) Filename(plan *dailyplan.Plan) string {
	ext := "csv"
	if f == FormatExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("plan-del-dia-%s.%s", plan.Date, ext)
}

// Service renders daily plans as downloadable files.
type Service struct{}

// NewService creates a new export service
func NewService() *Service {
	return &Service{}
}

// Write renders plan in format f to w.
func (s *Service) Write(w io.Writer, f Format, plan *dailyplan.Plan) error {
	switch f {
	case FormatCSV:
		return s.generateCSV(w, plan.Entries)
	case FormatExcel:
		return s.generateExcel(w, plan.Entries)
	}
	return domain.NewValidationError("invalid format: must be csv or excel")
}

func row(e dailyplan.Entry) []string {
	return []string{
		strconv.Itoa(e.Position),
		e.Name,
		e.Company,
		string(e.Status),
		e.Phone,
		strconv.FormatFloat(e.CompositeScore, 'f', 1, 64),
		strconv.Itoa(e.PriorityScore),
		strconv.Itoa(e.ActionabilityScore),
		string(e.Disposition),
		string(e.RecommendedAction),
		string(e.Approach),
		e.Channel,
		e.SelectionReason,
		daysCell(e.DaysSinceContact),
		strconv.Itoa(e.DaysOverdue),
	}
}

// daysCell leaves the cell empty for clients never contacted.
func daysCell(days int) string {
	if days == models.NeverDays {
		return ""
	}
	return strconv.Itoa(days)
}

// generateCSV writes entries as CSV with a header row.
func (s *Service) generateCSV(w io.Writer, entries []dailyplan.Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write(row(e)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// generateExcel writes entries as a single-sheet XLSX workbook.
func (s *Service) generateExcel(w io.Writer, entries []dailyplan.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, e := range entries {
		r := rowIdx + 2 // after header
		values := []any{
			e.Position, e.Name, e.Company, string(e.Status), e.Phone,
			e.CompositeScore, e.PriorityScore, e.ActionabilityScore,
			string(e.Disposition), string(e.RecommendedAction), string(e.Approach),
			e.Channel, e.SelectionReason, daysCell(e.DaysSinceContact), e.DaysOverdue,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheetName, "A", lastCol, 15)
	f.SetColWidth(sheetName, "M", "M", 45) // selection reason

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
