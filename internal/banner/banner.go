// Package banner renders the startup banner.
package banner

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
)

const art = `                 _             _
 _ __ _   _ ___| |_ ___ _   _| |__
| '__| | | / __| __/ __| | | | '_ \
| |  | |_| \__ \ |_\__ \ |_| | |_) |
|_|   \__,_|___/\__|___/\__,_|_.__/
`

// Banner returns the banner followed by the version line. Colors are
// dropped when the terminal does not support them.
func Banner(version string) string {
	var b strings.Builder
	b.WriteString(color.New(color.FgLightRed, color.OpBold).Render(art))
	fmt.Fprintf(&b, "  %s %s\n\n",
		color.FgDarkGray.Render("r/rust vs r/playrust classifier"),
		color.FgYellow.Render(version))
	return b.String()
}
