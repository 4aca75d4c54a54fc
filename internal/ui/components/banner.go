package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/ui/theme"
)

const bannerArt = ` ███╗   ███╗██╗     ███╗   ███╗ █████╗ ████████╗██╗  ██╗██████╗
 ████╗ ████║██║     ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║██╔══██╗
 ██╔████╔██║██║     ██╔████╔██║███████║   ██║   ███████║██████╔╝
 ██║╚██╔╝██║██║     ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║██╔══██╗
 ██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║██║  ██║
 ╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝`

const bannerCompact = "M L M A T H R"

// BannerWidth is the column width of the block-letter banner.
const BannerWidth = 64

// Banner returns the block-letter title in the given color, or a spaced
// one-line fallback when width cannot fit it.
func Banner(width int, fg lipgloss.Style) string {
	if width < BannerWidth {
		return fg.Render(bannerCompact)
	}
	return fg.Render(bannerArt)
}

// BannerStyle is the default bold banner style.
func BannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
}
