package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AttachmentName is the file name leaderboard images are attached under.
const AttachmentName = "mostthanked.png"

// Layout of the leaderboard image in pixels.
const (
	MaxRows = 10

	canvasWidth  = 900
	topMargin    = 90
	bottomMargin = 48
	rowHeight    = 76

	titleX = 40
	titleY = 24

	avatarSize = 64
	avatarX    = 40
	avatarDY   = -8

	textX    = 120
	nameDY   = -18
	countDY  = 12
	barX     = 420
	barWidth = canvasWidth - barX - 80
	barDY    = 20
	barH     = 10

	maxBarFraction = 0.85

	titleSize = 36
	nameSize  = 28
	subSize   = 22
)

var (
	colorBackground = color.RGBA{22, 27, 34, 255}
	colorTitle      = color.RGBA{210, 240, 240, 255}
	colorAccent     = color.RGBA{0, 200, 180, 255}
	colorGold       = color.RGBA{255, 193, 7, 255}
	colorNeutral    = color.RGBA{200, 200, 200, 255}
	colorSub        = color.RGBA{170, 180, 190, 255}
	colorTrack      = color.RGBA{60, 70, 80, 255}
)

var counts = message.NewPrinter(language.English)

// Fonts holds the parsed typefaces. A Fonts value is safe for concurrent use;
// faces derived from it are created per draw.
type Fonts struct {
	bold    *opentype.Font
	regular *opentype.Font
}

// LoadFonts parses the embedded Go fonts.
func LoadFonts() (*Fonts, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	return &Fonts{bold: bold, regular: regular}, nil
}

type faces struct {
	title font.Face
	name  font.Face
	sub   font.Face
}

func (f *Fonts) faces() (*faces, error) {
	newFace := func(typeface *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(typeface, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	title, err := newFace(f.bold, titleSize)
	if err != nil {
		return nil, err
	}

	name, err := newFace(f.bold, nameSize)
	if err != nil {
		return nil, err
	}

	sub, err := newFace(f.regular, subSize)
	if err != nil {
		return nil, err
	}

	return &faces{title: title, name: name, sub: sub}, nil
}

func (f *faces) Close() {
	_ = f.title.Close()
	_ = f.name.Close()
	_ = f.sub.Close()
}

// Height returns the canvas height for the given number of rows.
func Height(rows int) int {
	return topMargin + min(rows, MaxRows)*rowHeight + bottomMargin
}

// Draw lays out the leaderboard. It performs no I/O; missing avatars are
// simply not drawn. Ranks start at startRank for the first entry.
func Draw(fonts *Fonts, title string, entries []Entry, startRank int) (*image.RGBA, error) {
	entries = entries[:min(len(entries), MaxRows)]

	ff, err := fonts.faces()
	if err != nil {
		return nil, fmt.Errorf("failed to create font faces: %w", err)
	}
	defer ff.Close()

	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, Height(len(entries))))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	drawText(img, ff.title, colorTitle, titleX, titleY, title)

	var maxCount int64
	for _, entry := range entries {
		maxCount = max(maxCount, entry.Count)
	}

	for j, entry := range entries {
		y := topMargin + j*rowHeight
		rank := startRank + j

		if entry.Avatar != nil {
			dst := image.Rect(avatarX, y+avatarDY, avatarX+avatarSize, y+avatarDY+avatarSize)
			draw.CatmullRom.Scale(img, dst, entry.Avatar, entry.Avatar.Bounds(), draw.Over, nil)
		}

		drawText(img, ff.name, rankColor(rank), textX, y+nameDY, fmt.Sprintf("#%d • %s", rank, entry.Label))
		drawText(img, ff.sub, colorSub, textX, y+countDY, CountLabel(entry.Count))

		by := y + barDY
		fillRect(img, image.Rect(barX, by, barX+barWidth, by+barH), colorTrack)

		if fill := int(float64(barWidth) * barFraction(entry.Count, maxCount)); fill > 0 {
			fillRect(img, image.Rect(barX, by, barX+fill, by+barH), colorAccent)
		}
	}

	return img, nil
}

// Encode serializes the image as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// CountLabel formats a thank count with thousands separators.
func CountLabel(count int64) string {
	return counts.Sprintf("%d thanks", count)
}

// barFraction returns the filled share of the bar track.
func barFraction(count, maxCount int64) float64 {
	if maxCount <= 0 {
		return 0
	}

	return min(1, float64(count)/float64(maxCount)) * maxBarFraction
}

// rankColor highlights only the absolute first place.
func rankColor(rank int) color.RGBA {
	if rank == 1 {
		return colorGold
	}

	return colorNeutral
}

// drawText draws s with its top-left corner at (x, y).
func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}
