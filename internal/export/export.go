// Package export turns a schedule snapshot into CSV, JSON, XLSX and PDF
// documents. Exporter methods never mutate the activities they receive.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/bildschema/internal/model"
)

const (
	AppLabel = "Bildschema"
	Author   = "Daniel Nylander"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q", value)
	}
}

func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

type Config struct {
	AppLabel string
	Version  string
	Author   string
	Now      func() time.Time
	Backend  Backend
}

type Exporter struct {
	appLabel string
	version  string
	author   string
	now      func() time.Time
	backend  Backend
}

func New(cfg Config) *Exporter {
	e := &Exporter{
		appLabel: cfg.AppLabel,
		version:  cfg.Version,
		author:   cfg.Author,
		now:      cfg.Now,
		backend:  cfg.Backend,
	}
	if e.appLabel == "" {
		e.appLabel = AppLabel
	}
	if e.author == "" {
		e.author = Author
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.backend == nil {
		e.backend = &FPDFBackend{}
	}
	return e
}

// Credit is the "<label> v<version> — <author>" line used in footers.
func (e *Exporter) Credit() string {
	return fmt.Sprintf("%s v%s — %s", e.appLabel, e.version, e.author)
}

// Encode renders the byte-oriented formats. PDF is written through PDF.
func (e *Exporter) Encode(format Format, activities []model.Activity) ([]byte, error) {
	switch format {
	case FormatCSV:
		return e.CSV(activities)
	case FormatJSON:
		return e.JSON(activities)
	case FormatXLSX:
		return e.XLSX(activities)
	default:
		return nil, fmt.Errorf("format %s is not byte encoded", format)
	}
}

// DefaultFilename is the suggested save name, e.g. bildschema_20260101.csv.
func DefaultFilename(format Format, now time.Time) string {
	return fmt.Sprintf("bildschema_%s.%s", now.Format("20060102"), format)
}

func completedLabel(done bool) string {
	if done {
		return "Yes"
	}
	return "No"
}
