package prompt

import (
	"fmt"

	"pkt.systems/pinosh/schema"
)

type rgb struct {
	r int
	g int
	b int
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// Theme holds the prompt and banner colors.
type Theme struct {
	Name   schema.ThemeName
	User   rgb
	Dir    rgb
	Insert rgb
	Normal rgb
	Error  rgb
	Git    rgb
	Timer  rgb
	Lang   rgb
	Node   rgb
	Rust   rgb
	Banner []rgb
}

var themes = map[schema.ThemeName]Theme{
	"outrun": {
		Name:   "outrun",
		User:   rgb{r: 110, g: 136, b: 255},
		Dir:    rgb{r: 240, g: 241, b: 255},
		Insert: rgb{r: 0, g: 229, b: 255},
		Normal: rgb{r: 255, g: 214, b: 10},
		Error:  rgb{r: 255, g: 107, b: 107},
		Git:    rgb{r: 112, g: 214, b: 255},
		Timer:  rgb{r: 154, g: 163, b: 178},
		Lang:   rgb{r: 255, g: 91, b: 189},
		Node:   rgb{r: 120, g: 220, b: 120},
		Rust:   rgb{r: 255, g: 140, b: 80},
		Banner: []rgb{
			{r: 0, g: 229, b: 255},
			{r: 110, g: 136, b: 255},
			{r: 154, g: 110, b: 255},
			{r: 200, g: 100, b: 230},
			{r: 255, g: 91, b: 189},
		},
	},
	"gruvbox": {
		Name:   "gruvbox",
		User:   rgb{r: 131, g: 165, b: 152},
		Dir:    rgb{r: 235, g: 219, b: 178},
		Insert: rgb{r: 142, g: 192, b: 124},
		Normal: rgb{r: 250, g: 189, b: 47},
		Error:  rgb{r: 251, g: 73, b: 52},
		Git:    rgb{r: 131, g: 165, b: 152},
		Timer:  rgb{r: 146, g: 131, b: 116},
		Lang:   rgb{r: 211, g: 134, b: 155},
		Node:   rgb{r: 184, g: 187, b: 38},
		Rust:   rgb{r: 214, g: 93, b: 14},
		Banner: []rgb{
			{r: 250, g: 189, b: 47},
			{r: 254, g: 128, b: 25},
			{r: 214, g: 93, b: 14},
			{r: 204, g: 36, b: 29},
			{r: 177, g: 98, b: 134},
		},
	},
	"tokyo-midnight": {
		Name:   "tokyo-midnight",
		User:   rgb{r: 122, g: 162, b: 247},
		Dir:    rgb{r: 192, g: 202, b: 245},
		Insert: rgb{r: 125, g: 207, b: 255},
		Normal: rgb{r: 224, g: 175, b: 104},
		Error:  rgb{r: 247, g: 118, b: 142},
		Git:    rgb{r: 122, g: 162, b: 247},
		Timer:  rgb{r: 127, g: 133, b: 163},
		Lang:   rgb{r: 187, g: 154, b: 247},
		Node:   rgb{r: 158, g: 206, b: 106},
		Rust:   rgb{r: 255, g: 158, b: 100},
		Banner: []rgb{
			{r: 125, g: 207, b: 255},
			{r: 122, g: 162, b: 247},
			{r: 157, g: 124, b: 216},
			{r: 187, g: 154, b: 247},
			{r: 247, g: 118, b: 142},
		},
	},
}

// ThemeFor returns the named theme, falling back to the default.
func ThemeFor(name schema.ThemeName) Theme {
	if normalized, ok := schema.NormalizeThemeName(string(name)); ok {
		return themes[normalized]
	}
	return themes[schema.DefaultTheme]
}

// BannerColors returns the banner gradient stops as "#rrggbb".
func (t Theme) BannerColors() []string {
	out := make([]string, 0, len(t.Banner))
	for _, c := range t.Banner {
		out = append(out, c.hex())
	}
	return out
}

func fg(c rgb) Style { return Style{FG: c.hex()} }

func bold(c rgb) Style { return Style{FG: c.hex(), Bold: true} }
