package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "schedule"

// Unicode fonts commonly present on Linux, macOS and Windows installs.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/noto/NotoSans-Regular.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// FPDFBackend draws with go-pdf/fpdf. It needs a Unicode TrueType font; with
// none configured or installed the backend reports itself unavailable.
type FPDFBackend struct {
	FontPath   string
	Candidates []string
}

func (b *FPDFBackend) fontPath() string {
	if b.FontPath != "" {
		if fileExists(b.FontPath) {
			return b.FontPath
		}
		return ""
	}
	candidates := b.Candidates
	if candidates == nil {
		candidates = fontCandidates
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func (b *FPDFBackend) NewCanvas(width, height float64) (Canvas, error) {
	font := b.fontPath()
	if font == "" {
		return nil, ErrBackendUnavailable
	}

	data, err := os.ReadFile(font)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", font, err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddUTF8FontFromBytes(fontFamily, "", data)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font %s: %w", font, err)
	}
	return &fpdfCanvas{pdf: pdf, fontSize: 12}, nil
}

type fpdfCanvas struct {
	pdf      *fpdf.Fpdf
	fontSize float64
}

func (c *fpdfCanvas) AddPage() {
	c.pdf.AddPage()
	c.pdf.SetFont(fontFamily, "", c.fontSize)
}

func (c *fpdfCanvas) SetFontSize(size float64) {
	c.fontSize = size
	c.pdf.SetFontSize(size)
}

func (c *fpdfCanvas) SetTextColor(color Color) {
	r, g, b := rgb(color)
	c.pdf.SetTextColor(r, g, b)
}

// Text drops runes outside the Basic Multilingual Plane, which the fpdf font
// subsetter cannot index. Most emoji icons fall there and are skipped.
func (c *fpdfCanvas) Text(x, y float64, text string) {
	text = drawableText(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	c.pdf.Text(x, y, text)
}

func (c *fpdfCanvas) Image(path string, x, y, w, h float64) {
	c.pdf.ImageOptions(path, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
}

func (c *fpdfCanvas) Line(x1, y1, x2, y2, width float64, color Color) {
	r, g, b := rgb(color)
	c.pdf.SetDrawColor(r, g, b)
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
}

// Save renders into memory first so a failed document never leaves a
// partial file behind.
func (c *fpdfCanvas) Save(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render pdf: %v", r)
		}
	}()

	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func drawableText(text string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF || unicode.Is(unicode.Variation_Selector, r) {
			return -1
		}
		return r
	}, text)
}

func rgb(color Color) (int, int, int) {
	return channel(color.R), channel(color.G), channel(color.B)
}

func channel(value float64) int {
	return int(math.Round(math.Max(0, math.Min(1, value)) * 255))
}
