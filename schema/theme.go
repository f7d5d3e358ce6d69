package schema

import "strings"

// DefaultTheme is used when the config names no theme or an unknown one.
const DefaultTheme ThemeName = "outrun"

// themeAliases maps accepted spellings, lower case with dashes, to themes.
var themeAliases = map[string]ThemeName{
	"outrun":          "outrun",
	"outrun-electric": "outrun",
	"gruvbox":         "gruvbox",
	"tokyo-midnight":  "tokyo-midnight",
	"tokyo":           "tokyo-midnight",
}

// AvailableThemes lists the prompt themes in display order.
func AvailableThemes() []ThemeName {
	return []ThemeName{"outrun", "gruvbox", "tokyo-midnight"}
}

// NormalizeThemeName resolves name ignoring case and accepting underscores
// for dashes.
func NormalizeThemeName(name string) (ThemeName, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	theme, ok := themeAliases[key]
	return theme, ok
}
