package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Joseda-hg/bildschema/internal/model"
)

// Document is the JSON export layout. Field order is the key order on disk.
type Document struct {
	App        string           `json:"app"`
	Version    string           `json:"version"`
	Author     string           `json:"author"`
	Exported   string           `json:"exported"`
	Activities []ActivityRecord `json:"activities"`
}

type ActivityRecord struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Done    bool   `json:"done"`
	Icon    string `json:"icon"`
}

func (e *Exporter) JSON(activities []model.Activity) ([]byte, error) {
	doc := Document{
		App:        e.appLabel,
		Version:    e.version,
		Author:     e.author,
		Exported:   e.now().Local().Format(time.RFC3339),
		Activities: make([]ActivityRecord, 0, len(activities)),
	}
	for _, activity := range activities {
		activity = activity.Normalize()
		doc.Activities = append(doc.Activities, ActivityRecord{
			Name:    activity.Name,
			Minutes: activity.Minutes,
			Done:    activity.Done,
			Icon:    activity.Icon,
		})
	}
	return EncodeDocument(doc)
}

func EncodeDocument(doc Document) ([]byte, error) {
	if doc.Activities == nil {
		doc.Activities = []ActivityRecord{}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeJSON parses an export. Missing activity fields take their zero value.
func DecodeJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse export: %w", err)
	}
	for i := range doc.Activities {
		if doc.Activities[i].Minutes < 0 {
			doc.Activities[i].Minutes = 0
		}
	}
	return doc, nil
}

// ActivityList converts decoded records back into schedule activities.
func (d Document) ActivityList() []model.Activity {
	result := make([]model.Activity, 0, len(d.Activities))
	for _, record := range d.Activities {
		result = append(result, model.Activity{
			Name:    record.Name,
			Minutes: record.Minutes,
			Done:    record.Done,
			Icon:    record.Icon,
		})
	}
	return result
}
