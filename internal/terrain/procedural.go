package terrain

import (
	"math"
	"math/rand"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// NoiseBasis selects the gradient noise behind procedural terrain.
type NoiseBasis string

const (
	NoiseSimplex NoiseBasis = "simplex"
	NoisePerlin  NoiseBasis = "perlin"
)

// Procedural generates Earth-like terrain from seeded spherical noise. Every
// row gets Earth's land fraction and hypsometry for its latitude; the noise
// only decides which columns are land and how high they sit.
type Procedural struct {
	Seed  int64
	Basis NoiseBasis
}

func (p Procedural) Name() string {
	if p.Basis == NoisePerlin {
		return "procedural_perlin"
	}
	return "procedural"
}

// sampler returns noise in [0, 1].
type sampler interface {
	Eval3(x, y, z float64) float64
}

type perlinSampler struct{ p *perlin.Perlin }

func (s perlinSampler) Eval3(x, y, z float64) float64 {
	// Noise3D is roughly symmetric around zero with |v| < 1.
	return math.Max(0, math.Min(1, 0.5+0.5*s.p.Noise3D(x, y, z)))
}

func (p Procedural) newSampler(seed int64) sampler {
	if p.Basis == NoisePerlin {
		return perlinSampler{perlin.NewPerlin(2, 2, 3, seed)}
	}
	return opensimplex.NewNormalized(seed)
}

const sphereBaseScale = 2.0

func fbm(s sampler, x, y, z float64, octaves int) float64 {
	val, amp, freq, norm := 0.0, 0.5, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		k := freq * sphereBaseScale
		val += amp * s.Eval3(x*k, y*k, z*k)
		norm += amp
		freq *= 2
		amp *= 0.5
	}
	return val / norm
}

func ridge(octaves []sampler, x, y, z float64) float64 {
	val, amp, freq, prev, norm := 0.0, 0.5, 1.0, 1.0, 0.0
	for _, s := range octaves {
		k := freq * sphereBaseScale
		n := 1 - math.Abs(2*s.Eval3(x*k, y*k, z*k)-1)
		n *= n
		val += n * amp * prev
		norm += amp
		prev = n
		freq *= 2
		amp *= 0.5
	}
	return val / norm
}

type ranked struct {
	idx int
	val float64
}

func (p Procedural) Mask(rows, cols int) (core.Mask, error) {
	seed := p.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	continents := p.newSampler(seed)
	ridges := make([]sampler, 6)
	for i := range ridges {
		ridges[i] = p.newSampler(seed + 300 + int64(i)*13)
	}
	warpX := p.newSampler(seed + 900)
	warpY := p.newSampler(seed + 901)
	warp := p.newSampler(seed + 902)

	n := rows * cols
	raw := make([]float64, n)
	for r := 0; r < rows; r++ {
		latRad := (90 - float64(r)/float64(max(1, rows-1))*180) * math.Pi / 180
		cosLat, sinLat := math.Cos(latRad), math.Sin(latRad)
		for c := 0; c < cols; c++ {
			lonRad := (-180 + float64(c)/float64(cols)*360) * math.Pi / 180
			nx := cosLat * math.Cos(lonRad)
			ny := sinLat
			nz := cosLat * math.Sin(lonRad)

			qx := fbm(warpX, nx, ny, nz, 2)
			qy := fbm(warpY, ny, nz, nx, 2)
			h := fbm(continents, nx, ny, nz, 6)*0.6 +
				ridge(ridges, nx, ny, nz)*0.3 +
				fbm(warp, nx+qx, ny+qy, nz, 4)*0.1
			raw[r*cols+c] = h
		}
	}

	mask := core.Mask{Elevation: make([]float64, n), IsLand: make([]bool, n)}
	row := make([]ranked, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			row[c] = ranked{idx: i, val: raw[i]}
		}
		sort.SliceStable(row, func(a, b int) bool { return row[a].val < row[b].val })
		landFrac, bins := LatitudeStats(90 - float64(r)/float64(max(1, rows-1))*180)
		assignRow(mask, row, landFrac, bins)
	}
	return mask, nil
}

// assignRow floods the lowest-ranked cells of a row and spreads the rest over
// the hypsometric bins.
func assignRow(mask core.Mask, row []ranked, landFrac float64, bins [binCount]float64) {
	cols := len(row)
	seaCount := int(math.Floor((1 - landFrac) * float64(cols)))
	seaCount = max(0, min(cols, seaCount))
	landCount := cols - seaCount

	seaLevel := row[cols-1].val + 0.05
	if seaCount < cols {
		seaLevel = row[seaCount].val
	}
	for _, it := range row[:seaCount] {
		d := math.Max(0, seaLevel-it.val)
		mask.IsLand[it.idx] = false
		mask.Elevation[it.idx] = -10 - math.Pow(d*4, 1.2)*6000
	}
	if landCount == 0 {
		return
	}

	start := 0
	for b := 0; b < binCount; b++ {
		share := 0.0
		if landFrac > 0.0001 {
			share = bins[b] / landFrac
		}
		count := int(math.Floor(share * float64(landCount)))
		if b == binCount-1 {
			count = landCount - start
		}
		lo, hi := binRanges[b][0], binRanges[b][1]
		for k := 0; k < count && start+k < landCount; k++ {
			it := row[seaCount+start+k]
			mask.IsLand[it.idx] = true
			mask.Elevation[it.idx] = lo + float64(k)/float64(max(1, count))*(hi-lo)
		}
		start += count
	}
}
