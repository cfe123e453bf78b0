package media

import (
	"fmt"
	"strings"
)

// Style configures how burned subtitles are rendered.
type Style struct {
	FontFamily      string
	FontSize        int
	FontColor       string
	OutlineColor    string
	BackgroundColor string // "none" disables the caption background box
	Position        string // "bottom" or "top-center"
}

// Quality configures the encode of the burned output.
type Quality struct {
	CRF    int
	Preset string
}

// assColors maps color names to ASS &HBBGGRR& hex values.
var assColors = map[string]string{
	"white":  "&HFFFFFF&",
	"yellow": "&H00FFFF&",
	"black":  "&H000000&",
	"green":  "&H00FF00&",
	"cyan":   "&HFFFF00&",
	"gray":   "&H808080&",
}

// assColor resolves a color name, defaulting to white.
func assColor(name string) string {
	if hex, ok := assColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return hex
	}
	return assColors["white"]
}

// assAlignment maps a position name to an ASS alignment code.
func assAlignment(position string) string {
	if strings.ToLower(strings.TrimSpace(position)) == "top-center" {
		return "8"
	}
	return "2"
}

// ForceStyle renders the ASS force_style expression for the subtitles
// video filter.
func (s Style) ForceStyle() string {
	components := []string{
		fmt.Sprintf("FontSize=%d", s.FontSize),
		fmt.Sprintf("FontName=%s", s.FontFamily),
		fmt.Sprintf("PrimaryColour=%s", assColor(s.FontColor)),
		fmt.Sprintf("OutlineColour=%s", assColor(s.OutlineColor)),
		"MarginL=50",
		"MarginR=50",
		"MarginV=20",
		"Outline=1",
		"Shadow=1",
		fmt.Sprintf("Alignment=%s", assAlignment(s.Position)),
	}

	background := strings.ToLower(strings.TrimSpace(s.BackgroundColor))
	if background == "" || background == "none" {
		components = append(components, "BorderStyle=1")
	} else {
		components = append(components,
			fmt.Sprintf("BackColour=%s", assColor(background)),
			"BorderStyle=3",
		)
	}

	return strings.Join(components, ",")
}
