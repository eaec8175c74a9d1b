// latticeview renders the band structure and Brillouin zone in a native
// window. Purely a consumer of the physics package: it computes once and
// draws the returned arrays.
package main

import (
	"flag"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"latticelab/core"
	"latticelab/physics"
)

const (
	screenW = 1100
	screenH = 640
)

func main() {
	var (
		t1     = flag.Float64("t1", 2.8, "NN hopping (eV)")
		t2     = flag.Float64("t2", 0.1, "NNN hopping (eV)")
		lambda = flag.Float64("so", 0, "Spin-orbit strength (eV)")
		onsite = flag.Float64("onsite", 0, "Onsite energy (eV)")
		n      = flag.Int("n", 300, "k-path points")
	)
	flag.Parse()

	params := core.TightBindingParameters{T1: *t1, T2: *t2, LambdaSO: *lambda, Onsite: *onsite}
	bands := physics.CalculateBandStructure(params, *n)
	bz := physics.GetBrillouinZoneData()

	rl.InitWindow(screenW, screenH, "latticelab - band structure")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		drawBands(bands)
		drawZone(bz)
		rl.EndDrawing()
	}
}

// drawBands plots valence and conduction against the cumulative path
// coordinate in the left panel.
func drawBands(b core.BandStructureResult) {
	const (
		x0, y0 = 60, 40
		w, h   = 640, 560
	)
	eMin, eMax := b.Valence[0], b.Conduction[0]
	for i := range b.Valence {
		if b.Valence[i] < eMin {
			eMin = b.Valence[i]
		}
		if b.Conduction[i] > eMax {
			eMax = b.Conduction[i]
		}
	}
	span := eMax - eMin
	if span == 0 {
		span = 1
	}
	dMax := b.Path.Distances[len(b.Path.Distances)-1]

	toScreen := func(d, e float64) rl.Vector2 {
		return rl.Vector2{
			X: float32(x0 + d/dMax*w),
			Y: float32(y0 + (eMax-e)/span*h),
		}
	}

	rl.DrawRectangleLines(x0, y0, w, h, rl.LightGray)
	for _, label := range b.Path.Labels {
		p := toScreen(label.Position, eMin)
		rl.DrawLineV(toScreen(label.Position, eMin), toScreen(label.Position, eMax), rl.LightGray)
		rl.DrawText(label.Name, int32(p.X)-4, y0+h+8, 18, rl.DarkGray)
	}
	for i := 1; i < len(b.Valence); i++ {
		rl.DrawLineV(toScreen(b.Path.Distances[i-1], b.Valence[i-1]),
			toScreen(b.Path.Distances[i], b.Valence[i]), rl.Blue)
		rl.DrawLineV(toScreen(b.Path.Distances[i-1], b.Conduction[i-1]),
			toScreen(b.Path.Distances[i], b.Conduction[i]), rl.Red)
	}
	rl.DrawText(fmt.Sprintf("E range: %.2f .. %.2f eV", eMin, eMax), x0, 12, 18, rl.DarkGray)
}

// drawZone draws the hexagonal zone boundary, the sampled path and the
// high-symmetry points in the right panel.
func drawZone(bz core.BrillouinZoneData) {
	const (
		cx, cy = 890, 320
		scale  = 90
	)
	toScreen := func(k core.KPoint) rl.Vector2 {
		return rl.Vector2{
			X: float32(cx + k.Kx/physics.GammaK*scale),
			Y: float32(cy - k.Ky/physics.GammaK*scale),
		}
	}

	for i := 1; i < len(bz.Hexagon); i++ {
		rl.DrawLineV(toScreen(bz.Hexagon[i-1]), toScreen(bz.Hexagon[i]), rl.DarkGray)
	}
	for i := 1; i < len(bz.Path); i++ {
		rl.DrawLineV(toScreen(bz.Path[i-1]), toScreen(bz.Path[i]), rl.SkyBlue)
	}
	for i := 1; i < len(bz.IrreducibleWedge); i++ {
		rl.DrawLineV(toScreen(bz.IrreducibleWedge[i-1]), toScreen(bz.IrreducibleWedge[i]), rl.Orange)
	}

	points := []struct {
		name string
		k    core.KPoint
	}{
		{"Γ", bz.Gamma}, {"K", bz.K}, {"K'", bz.KPrime}, {"M", bz.M},
	}
	for _, p := range points {
		pos := toScreen(p.k)
		rl.DrawCircleV(pos, 4, rl.Maroon)
		rl.DrawText(p.name, int32(pos.X)+6, int32(pos.Y)-6, 16, rl.Maroon)
	}
	rl.DrawText("Brillouin zone", cx-60, 40, 18, rl.DarkGray)
}
