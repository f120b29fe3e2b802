package planner

import (
	"fmt"
	"strings"

	"github.com/backmassage/tripmaster/internal/config"
)

// VideoFilter returns the video filter chain for p, or "" when neither
// scaling nor denoising applies. The denoise expression is used verbatim
// and runs before scaling.
func VideoFilter(p config.Profile) string {
	var filters []string
	if p.Denoise != "" {
		filters = append(filters, p.Denoise)
	}
	if p.Resolution != "" {
		filters = append(filters, fmt.Sprintf("scale=%s:flags=%s", p.Resolution, p.Scaler))
	}
	return strings.Join(filters, ",")
}

// FilterGraph builds the -filter_complex value for n inputs:
//
//	[0:v]<f>[v0]; [1:v]<f>[v1]; [v0][0:a][v1][1:a]concat=n=2:v=1:a=1[v][a]
//
// When filter is empty each input passes through "null" so the [v<i>] pads
// always exist.
func FilterGraph(n int, filter string) string {
	if filter == "" {
		filter = "null"
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:v]%s[v%d]; ", i, filter, i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[v%d][%d:a]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[v][a]", n)
	return b.String()
}
