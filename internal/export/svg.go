package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/viz"
)

const background = "#0a0a0a"

func hex(c scene.RGB) string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	if scale <= 0 {
		scale = 4
	}
	dw, dh := canvas.Dots()
	var sb strings.Builder
	header(&sb, int(math.Ceil(float64(dw)*scale)), int(math.Ceil(float64(dh)*scale)))

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			fill := "#ffffff"
			if c := canvas.Colors[y/4][x/2]; c != (scene.RGB{}) {
				fill = hex(c)
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, r, fill)
		}
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// SceneToSVG draws the wireframe of nodes as vector lines, far to near.
// Edge opacity follows the node's emissive glow.
func SceneToSVG(nodes []scene.Node, cam *viz.Camera, width, height int, th viz.Theme) string {
	w := viz.NewWireframe()
	w.AddNodes(nodes)
	w.Recolor(th.Tint)

	proj := make([]viz.ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		if pe, ok := cam.ProjectEdge(e, width, height); ok {
			proj = append(proj, pe)
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<g stroke-linecap="round" stroke-width="1.2">` + "\n")
	for _, e := range proj {
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="1" fill="%s"/>
`, e.X1, e.Y1, hex(e.Color))
			continue
		}
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>
`, e.X1, e.Y1, e.X2, e.Y2, hex(e.Color))
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// SeriesToSVG plots values left to right as one polyline.
func SeriesToSVG(values []float64, width, height int, stroke string) string {
	pts := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			pts = append(pts, v)
		}
	}
	if len(pts) < 2 {
		return ""
	}

	lo, hi := pts[0], pts[0]
	for _, v := range pts {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, v := range pts {
		x := float64(i) / float64(len(pts)-1) * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
