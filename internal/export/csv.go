package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/Joseda-hg/bildschema/internal/model"
)

var tableHeader = []string{"Activity", "Duration (min)", "Completed"}

func (e *Exporter) CSV(activities []model.Activity) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	records := make([][]string, 0, len(activities)+3)
	records = append(records, tableHeader)
	for _, activity := range activities {
		activity = activity.Normalize()
		records = append(records, []string{
			activity.Name,
			strconv.Itoa(activity.Minutes),
			completedLabel(activity.Done),
		})
	}
	records = append(records, []string{}, []string{e.Credit()})

	if err := writer.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
