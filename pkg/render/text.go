package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/lineage/pkg/family"
)

const (
	fontCharWidth = 0.55
	fontSizeMin   = 8.0
	fontSizeMax   = 16.0
	fontWidthFill = 0.85
)

// fontSize picks a size that fits text of n characters into width.
func fontSize(width float64, n int) float64 {
	n = max(1, n)
	byWidth := width * fontWidthFill / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, byWidth))
}

// truncate shortens label to what fits in width at size.
func truncate(label string, width, size float64) string {
	runes := []rune(label)
	maxChars := max(3, int(width*fontWidthFill/(size*fontCharWidth)))
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

// lifespan formats the known years of p: "1901-1980", "b. 1901", "d. 1980".
func lifespan(p *family.Person) string {
	birth, death := p.BirthYear(), p.DeathYear()
	switch {
	case family.KnownYear(birth) && family.KnownYear(death):
		return fmt.Sprintf("%d-%d", birth, death)
	case family.KnownYear(birth):
		return fmt.Sprintf("b. %d", birth)
	case family.KnownYear(death):
		return fmt.Sprintf("d. %d", death)
	default:
		return ""
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
