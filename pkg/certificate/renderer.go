package certificate

import (
	"fmt"
	"image/jpeg"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	canvasWidth  = 1200
	canvasHeight = 850

	platformCaption   = "BitTutor"
	titleCaption      = "Certificate of Completion"
	awardedCaption    = "Awarded to"
	completionCaption = "for successfully completing the course"
	legalDisclaimer   = "This certificate is issued by the BitTutor platform and does not constitute an accredited qualification."

	// Course titles wrap once the running line length reaches this count.
	titleWrapLimit = 30

	lineSpacing = 52.0
)

// Renderer rasterizes completion certificates onto a background template.
type Renderer struct {
	templatePath string
}

// NewRenderer builds a renderer. templatePath may be empty, in which case a
// plain parchment background is drawn instead.
func NewRenderer(templatePath string) *Renderer {
	return &Renderer{templatePath: templatePath}
}

// Render draws the certificate for the given user/course/date and writes it as
// a JPEG to outPath.
func (r *Renderer) Render(userName, courseTitle string, completedAt time.Time, outPath string) error {
	dc, err := r.newCanvas()
	if err != nil {
		return err
	}

	headingFace, err := loadFace(gobold.TTF, 56)
	if err != nil {
		return err
	}
	captionFace, err := loadFace(goregular.TTF, 30)
	if err != nil {
		return err
	}
	nameFace, err := loadFace(gobold.TTF, 44)
	if err != nil {
		return err
	}
	smallFace, err := loadFace(goregular.TTF, 18)
	if err != nil {
		return err
	}

	cx := float64(dc.Width()) / 2
	y := float64(dc.Height()) * 0.16

	dc.SetRGB(0.15, 0.15, 0.25)

	dc.SetFontFace(captionFace)
	dc.DrawStringAnchored(platformCaption, cx, y, 0.5, 0.5)
	y += lineSpacing

	dc.SetFontFace(headingFace)
	dc.DrawStringAnchored(titleCaption, cx, y, 0.5, 0.5)
	y += lineSpacing * 1.5

	dc.SetFontFace(captionFace)
	dc.DrawStringAnchored(awardedCaption, cx, y, 0.5, 0.5)
	y += lineSpacing

	dc.SetFontFace(nameFace)
	dc.DrawStringAnchored(userName, cx, y, 0.5, 0.5)
	y += lineSpacing * 1.5

	dc.SetFontFace(captionFace)
	dc.DrawStringAnchored(completionCaption, cx, y, 0.5, 0.5)
	y += lineSpacing

	dc.SetFontFace(nameFace)
	for _, line := range WrapTitle(courseTitle) {
		dc.DrawStringAnchored(line, cx, y, 0.5, 0.5)
		y += lineSpacing
	}
	y += lineSpacing * 0.5

	dc.SetFontFace(captionFace)
	dc.DrawStringAnchored(completedAt.Format("January 2, 2006"), cx, y, 0.5, 0.5)
	y += lineSpacing * 1.5

	dc.SetFontFace(smallFace)
	dc.DrawStringAnchored(legalDisclaimer, cx, y, 0.5, 0.5)

	return writeJPEG(dc, outPath)
}

// WrapTitle splits a course title into display lines. Words are appended to
// the running line until its length reaches the wrap limit, at which point the
// line is flushed.
func WrapTitle(title string) []string {
	words := strings.Fields(title)
	lines := make([]string, 0, 1)
	var line string
	for _, word := range words {
		if line == "" {
			line = word
		} else {
			line += " " + word
		}
		if len(line) >= titleWrapLimit {
			lines = append(lines, line)
			line = ""
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (r *Renderer) newCanvas() (*gg.Context, error) {
	if r.templatePath != "" {
		img, err := gg.LoadImage(r.templatePath)
		if err != nil {
			return nil, fmt.Errorf("load certificate template: %w", err)
		}
		return gg.NewContextForImage(img), nil
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetRGB(0.98, 0.96, 0.90)
	dc.Clear()
	dc.SetRGB(0.55, 0.45, 0.20)
	dc.SetLineWidth(6)
	dc.DrawRectangle(30, 30, float64(canvasWidth-60), float64(canvasHeight-60))
	dc.Stroke()
	return dc, nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

func writeJPEG(dc *gg.Context, outPath string) error {
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create certificate file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if err := jpeg.Encode(file, dc.Image(), &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encode certificate: %w", err)
	}
	return nil
}
