// Field preview tool - writes plume cross sections as CSV.
//
// Usage: go run ./cmd/fieldpreview -config run.yaml -out preview/
//
// Writes concxy.csv (the x-y plane through the center z cell) and concxz.csv
// (the x-z plane through the center y cell). With -probe it also samples hit
// counts at one position and logs their distribution.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
	"github.com/pthm-cable/olfaction/plume"
)

// sectionRow is one cell of a cross section. U is the x coordinate and V the
// second in-plane coordinate (y for concxy, z for concxz).
type sectionRow struct {
	UI    int     `csv:"ui"`
	VI    int     `csv:"vi"`
	U     float64 `csv:"u"`
	V     float64 `csv:"v"`
	Value float64 `csv:"value"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outDir := flag.String("out", "fieldpreview", "Output directory")
	probe := flag.String("probe", "", "Position x,y,z to sample hit counts at")
	samples := flag.Int("samples", 10000, "Number of samples drawn at the probe")
	seed := flag.Uint64("seed", 1, "RNG seed for probe sampling")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *outDir, *probe, *samples, *seed); err != nil {
		slog.Error("field preview failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outDir, probe string, samples int, seed uint64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	e, err := env.New(cfg.Derived.XBins, cfg.Derived.YBins, cfg.Derived.ZBins)
	if err != nil {
		return err
	}
	p, err := plume.NewFromConfig(e, cfg.Plume, rand.New(rand.NewPCG(seed, 0)))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	xy, err := p.ConcXY()
	if err != nil {
		return err
	}
	if err := writeSectionFile(filepath.Join(outDir, "concxy.csv"), e.Centers(env.AxisX), e.Centers(env.AxisY), xy); err != nil {
		return err
	}
	xz, err := p.ConcXZ()
	if err != nil {
		return err
	}
	if err := writeSectionFile(filepath.Join(outDir, "concxz.csv"), e.Centers(env.AxisX), e.Centers(env.AxisZ), xz); err != nil {
		return err
	}

	src, _ := p.SourceIndex()
	slog.Info("field written",
		"variant", p.Name(),
		"shape", e.Shape(),
		"source", src,
		"max", p.Field().Max(),
		"sum", p.Field().Sum(),
		"singular_cells", p.Field().InfCount(),
		"odor_domain", p.OdorDomain(),
		"dir", outDir,
	)

	if probe == "" {
		return nil
	}
	pos, err := parsePoint(probe)
	if err != nil {
		return err
	}
	return logProbe(p, pos, samples)
}

func writeSectionFile(path string, us, vs []float64, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeSection(f, us, vs, m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// writeSection writes m, indexed [u][v], as one CSV row per cell.
func writeSection(w io.Writer, us, vs []float64, m *mat.Dense) error {
	r, c := m.Dims()
	if r != len(us) || c != len(vs) {
		return fmt.Errorf("section is %dx%d but axes have %d and %d centers", r, c, len(us), len(vs))
	}
	rows := make([]sectionRow, 0, r*c)
	for ui := 0; ui < r; ui++ {
		for vi := 0; vi < c; vi++ {
			rows = append(rows, sectionRow{UI: ui, VI: vi, U: us[ui], V: vs[vi], Value: m.At(ui, vi)})
		}
	}
	return gocsv.Marshal(rows, w)
}

func parsePoint(s string) (env.Point, error) {
	var pt env.Point
	parts := strings.Split(s, ",")
	if len(parts) != env.NumAxes {
		return pt, fmt.Errorf("probe %q: want x,y,z", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return pt, fmt.Errorf("probe %q: %w", s, err)
		}
		pt[i] = v
	}
	return pt, nil
}

// probeResult summarizes hit counts drawn at one cell. Infinite values are
// kept out of the means and counted separately so every field is finite.
type probeResult struct {
	Index         env.Index
	Mean          float64 // Poisson mean, 0 at a singular cell
	Singular      bool    // the cell's mean is +Inf
	Samples       int
	SingularDraws int
	SampleMean    float64 // mean of the finite draws
	Probs         map[int]float64
}

// probe samples the plume n times at pos.
func probe(p *plume.Plume, pos env.Point, n int) (probeResult, error) {
	idx := p.Env().IdxFromPos(pos)
	mean, err := p.MeanAt(idx)
	if err != nil {
		return probeResult{}, err
	}
	res := probeResult{Index: idx, Samples: n, Probs: make(map[int]float64)}
	if math.IsInf(mean, 1) {
		res.Singular = true
	} else {
		res.Mean = mean
	}

	counts := make(map[int]int)
	draws := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		h, err := p.Sample(idx)
		if err != nil {
			return probeResult{}, err
		}
		if math.IsInf(h, 1) {
			res.SingularDraws++
			continue
		}
		draws = append(draws, h)
		counts[int(h)]++
	}
	if len(draws) > 0 {
		res.SampleMean = stat.Mean(draws, nil)
	}
	for _, v := range p.OdorDomain() {
		res.Probs[v] = float64(counts[v]) / float64(max(n, 1))
	}
	return res, nil
}

// logProbe samples the plume n times at pos and logs the hit distribution.
func logProbe(p *plume.Plume, pos env.Point, n int) error {
	res, err := probe(p, pos, n)
	if err != nil {
		return err
	}

	attrs := []any{
		"index", res.Index,
		"poisson_mean", res.Mean,
		"singular", res.Singular,
		"samples", res.Samples,
		"singular_draws", res.SingularDraws,
		"sample_mean", res.SampleMean,
	}
	for _, v := range p.OdorDomain() {
		attrs = append(attrs, fmt.Sprintf("p_%d", v), res.Probs[v])
	}
	slog.Info("probe", attrs...)
	return nil
}
