package pinosh

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"pkt.systems/pinosh/internal/prompt"
)

//go:embed assets/banner.txt
var bannerArt string

// BannerSuppressed reports whether the banner is off for logMode, the
// value of LOG_MODE.
func BannerSuppressed(logMode string, noBanner bool) bool {
	mode := strings.ToLower(strings.TrimSpace(logMode))
	return noBanner || mode == "json" || mode == "structured"
}

// StartupBanner writes the banner art, one gradient stop per line band.
func StartupBanner(w io.Writer, theme prompt.Theme, profile termenv.Profile) error {
	lines := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")
	colors := theme.BannerColors()
	var sb strings.Builder
	sb.WriteString("\n")
	for i, line := range lines {
		style := profile.String(line)
		if len(colors) > 0 {
			style = style.Foreground(profile.Color(colors[i*len(colors)/len(lines)]))
		}
		sb.WriteString(style.String())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	_, err := fmt.Fprint(w, sb.String())
	return err
}
