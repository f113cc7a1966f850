package export

import (
	"fmt"

	"github.com/Joseda-hg/bildschema/internal/model"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Schedule"

func (e *Exporter) XLSX(activities []model.Activity) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := make([][]any, 0, len(activities)+3)
	rows = append(rows, []any{tableHeader[0], tableHeader[1], tableHeader[2]})
	for _, activity := range activities {
		activity = activity.Normalize()
		rows = append(rows, []any{activity.Name, activity.Minutes, completedLabel(activity.Done)})
	}
	rows = append(rows, nil, []any{e.Credit()})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 32); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
