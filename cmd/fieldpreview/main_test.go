package main

import (
	"bytes"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
	"github.com/pthm-cable/olfaction/plume"
)

func TestWriteSection(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		3, 4, 5,
	})
	var buf bytes.Buffer
	require.NoError(t, writeSection(&buf, []float64{0.1, 0.2}, []float64{-1, 0, 1}, m))

	var rows []sectionRow
	require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, sectionRow{UI: 1, VI: 2, U: 0.2, V: 1, Value: 5}, rows[5])
}

func TestWriteSectionShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := writeSection(&buf, []float64{0}, []float64{0}, mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	pt, err := parsePoint("0.5, -0.01,0")
	require.NoError(t, err)
	assert.Equal(t, env.Point{0.5, -0.01, 0}, pt)

	_, err = parsePoint("1,2")
	assert.Error(t, err)
	_, err = parsePoint("1,a,2")
	assert.Error(t, err)
}

func TestRunWritesSections(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run("", dir, "0.2,0,0", 100, 1))

	for name, wantRows := range map[string]int{"concxy.csv": 65 * 15, "concxz.csv": 65 * 15} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		var rows []sectionRow
		require.NoError(t, gocsv.UnmarshalBytes(data, &rows), name)
		assert.Len(t, rows, wantRows, name)
	}
}

func defaultPlume(t *testing.T) *plume.Plume {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	e, err := env.New(cfg.Derived.XBins, cfg.Derived.YBins, cfg.Derived.ZBins)
	require.NoError(t, err)
	p, err := plume.NewFromConfig(e, cfg.Plume, rand.New(rand.NewPCG(1, 0)))
	require.NoError(t, err)
	return p
}

func TestProbeSingularCellStaysFinite(t *testing.T) {
	p := defaultPlume(t)
	src, ok := p.SourcePosition()
	require.True(t, ok)

	res, err := probe(p, src, 50)
	require.NoError(t, err)
	assert.True(t, res.Singular)
	assert.Equal(t, 50, res.SingularDraws)
	assert.Zero(t, res.Mean)
	assert.Zero(t, res.SampleMean)
	for v, pv := range res.Probs {
		assert.False(t, math.IsInf(pv, 0), "p_%d", v)
	}
}

func TestProbeDistribution(t *testing.T) {
	p := defaultPlume(t)

	res, err := probe(p, env.Point{0.2, 0, 0}, 200)
	require.NoError(t, err)
	assert.False(t, res.Singular)
	assert.Zero(t, res.SingularDraws)
	assert.Greater(t, res.Mean, 0.0)

	var total float64
	for _, pv := range res.Probs {
		total += pv
	}
	assert.InDelta(t, 1, total, 1e-9)
}
