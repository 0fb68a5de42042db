package world

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"voxelterrain/internal/block"
	"voxelterrain/internal/light"
)

const (
	previewTileWidth    = 16
	previewTileHeight   = 8
	previewBlockHeight  = 8
	previewAmbientLight = 0.15
)

type blockPreview struct {
	pos   LocalPosition
	id    block.ID
	light float64 // 0..1
	tint  [3]float64
}

// SaveChunkPreview renders an isometric PNG of the visible blocks of c, shaded
// by the light field, into outputDir and returns the file path.
func SaveChunkPreview(c *Chunk, outputDir string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chunk is nil")
	}
	if outputDir == "" {
		return "", fmt.Errorf("output directory is empty")
	}

	img := RenderChunkPreview(c)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create preview directory: %w", err)
	}
	p := c.Position()
	path := filepath.Join(outputDir, fmt.Sprintf("chunk_%d_%d_%d.png", p.X, p.Y, p.Z))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

// RenderChunkPreview draws the chunk with y up, x to the lower right and z to
// the lower left.
func RenderChunkPreview(c *Chunk) *image.NRGBA {
	width := 2*ChunkSize*previewTileWidth/2 + previewTileWidth
	height := 2*ChunkSize*previewTileHeight/2 + ChunkSize*previewBlockHeight + previewTileHeight
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	blocks := collectPreviewBlocks(c)
	// painter's order: back to front, bottom to top
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i].pos, blocks[j].pos
		if da, db := a.X+a.Z, b.X+b.Z; da != db {
			return da < db
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	offsetX := ChunkSize * previewTileWidth / 2
	offsetY := ChunkSize * previewBlockHeight
	for _, info := range blocks {
		screenX := (info.pos.X - info.pos.Z) * previewTileWidth / 2
		screenY := (info.pos.X+info.pos.Z)*previewTileHeight/2 - info.pos.Y*previewBlockHeight
		base := resolveBlockColor(c.registry.Get(info.id))
		renderBlockPreview(img, offsetX+screenX, offsetY+screenY, base, info)
	}
	return img
}

// collectPreviewBlocks keeps solid blocks with at least one open side; the
// rest can never be seen.
func collectPreviewBlocks(c *Chunk) []blockPreview {
	var out []blockPreview
	for i := 0; i < ChunkVolume; i++ {
		pos := LocalFromIndex(i)
		id := c.blocks.Block(pos)
		if id == block.Air {
			continue
		}
		info := blockPreview{pos: pos, id: id}
		visible := false
		for f := Face(0); f < faceCount; f++ {
			n, inside := pos.Neighbor(f)
			if !inside {
				visible = true
				continue
			}
			if c.registry.IsOpaque(c.blocks.Block(n)) {
				continue
			}
			visible = true
			shadeFrom(&info, c.light.Emitted(n), c.light.Sky(n))
		}
		if c.registry.Emits(id) {
			shadeFrom(&info, light.RGB(c.registry.Emission(id)), light.NoSky)
		}
		if visible {
			out = append(out, info)
		}
	}
	return out
}

func shadeFrom(info *blockPreview, emitted light.Emitted, sky light.Sky) {
	r, g, b := emitted.Channels()
	channels := [3]float64{float64(r) / light.MaxValue, float64(g) / light.MaxValue, float64(b) / light.MaxValue}
	for i, v := range channels {
		info.tint[i] = math.Max(info.tint[i], v)
		info.light = math.Max(info.light, v)
	}
	info.light = math.Max(info.light, float64(sky)/light.MaxValue)
}

func renderBlockPreview(img *image.NRGBA, baseX, baseY int, base color.NRGBA, info blockPreview) {
	lit := tint(base, info.tint)
	topColor := applyLighting(lit, previewAmbientLight+0.85*info.light)
	leftColor := applyLighting(lit, previewAmbientLight+0.6*info.light)
	rightColor := applyLighting(lit, previewAmbientLight+0.45*info.light)

	top := []image.Point{
		{X: baseX, Y: baseY - previewBlockHeight},
		{X: baseX + previewTileWidth/2, Y: baseY - previewBlockHeight + previewTileHeight/2},
		{X: baseX, Y: baseY - previewBlockHeight + previewTileHeight},
		{X: baseX - previewTileWidth/2, Y: baseY - previewBlockHeight + previewTileHeight/2},
	}
	left := []image.Point{
		{X: baseX - previewTileWidth/2, Y: baseY - previewBlockHeight + previewTileHeight/2},
		{X: baseX, Y: baseY - previewBlockHeight + previewTileHeight},
		{X: baseX, Y: baseY + previewTileHeight},
		{X: baseX - previewTileWidth/2, Y: baseY + previewTileHeight/2},
	}
	right := []image.Point{
		{X: baseX + previewTileWidth/2, Y: baseY - previewBlockHeight + previewTileHeight/2},
		{X: baseX, Y: baseY - previewBlockHeight + previewTileHeight},
		{X: baseX, Y: baseY + previewTileHeight},
		{X: baseX + previewTileWidth/2, Y: baseY + previewTileHeight/2},
	}

	fillPolygon(img, left, leftColor)
	fillPolygon(img, right, rightColor)
	fillPolygon(img, top, topColor)
}

func resolveBlockColor(def block.Definition) color.NRGBA {
	if col, ok := parseHexColor(def.Color); ok {
		return col
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(trimmed[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		rgb[i] = uint8(v)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, true
}

// tint pulls base towards white in proportion to coloured light hitting it.
func tint(base color.NRGBA, t [3]float64) color.NRGBA {
	mix := func(c uint8, f float64) uint8 {
		return uint8(math.Round(float64(c) + (255-float64(c))*0.35*f))
	}
	return color.NRGBA{R: mix(base.R, t[0]), G: mix(base.G, t[1]), B: mix(base.B, t[2]), A: 255}
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = math.Min(math.Max(factor, 0), 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	minY := pts[0].Y
	maxY := pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	bounds := img.Bounds()
	minY = max(minY, bounds.Min.Y)
	maxY = min(maxY, bounds.Max.Y-1)

	xs := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for i := range pts {
			j := (i + 1) % len(pts)
			x1, y1 := pts[i].X, pts[i].Y
			x2, y2 := pts[j].X, pts[j].Y
			if y1 == y2 || y < min(y1, y2) || y >= max(y1, y2) {
				continue
			}
			xs = append(xs, x1+(y-y1)*(x2-x1)/(y2-y1))
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xStart, xEnd := xs[i], xs[i+1]
			if xEnd < bounds.Min.X || xStart >= bounds.Max.X {
				continue
			}
			xStart = max(xStart, bounds.Min.X)
			xEnd = min(xEnd, bounds.Max.X-1)
			for x := xStart; x <= xEnd; x++ {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}
