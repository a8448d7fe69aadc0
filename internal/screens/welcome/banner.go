package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██████╗ ██████╗ ███████╗██████╗ ███████╗████████╗
 ██╔════╝██╔═══██╗██╔══██╗██╔════╝██╔══██╗██╔════╝╚══██╔══╝
 ██║     ██║   ██║██║  ██║█████╗  ██████╔╝█████╗     ██║
 ██║     ██║   ██║██║  ██║██╔══╝  ██╔═══╝ ██╔══╝     ██║
 ╚██████╗╚██████╔╝██████╔╝███████╗██║     ███████╗   ██║
  ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝╚═╝     ╚══════╝   ╚═╝`

const bannerCompact = "C O D E P E T"

// BannerWidth is the widest line of the block banner.
const BannerWidth = 60

// RenderBanner returns the block-letter banner in the given colour, or a
// spaced-out fallback when width cannot fit it.
func RenderBanner(width int) string {
	return renderBanner(width, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true))
}

// RenderArcadeBanner is RenderBanner in the home screen's yellow.
func RenderArcadeBanner(width int) string {
	return renderBanner(width, lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true))
}

func renderBanner(width int, style lipgloss.Style) string {
	if width < BannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
