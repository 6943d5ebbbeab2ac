package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/lesfilter/InputParameters"
	"github.com/notargets/lesfilter/types"
)

func writeCase(t *testing.T, data string) string {
	fileName := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(data), 0o644))
	return fileName
}

func TestReadCase(t *testing.T) {
	var (
		err error
	)
	_, err = readCase("")
	assert.Error(t, err)
	_, err = readCase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = readCase(writeCase(t, "Fields: [unterminated"))
	assert.Error(t, err)

	cp, err := readCase(writeCase(t, exampleCase))
	require.NoError(t, err)
	assert.Equal(t, "Ramp", cp.Title)
	require.Len(t, cp.Fields, 1)
	assert.Equal(t, "zeroGradient", cp.Fields[0].BCs["xMin"].Type)
}

func TestRunFilter(t *testing.T) {
	cp, err := readCase(writeCase(t, exampleCase))
	require.NoError(t, err)
	cp.Fields = append(cp.Fields, InputParameters.FieldParameters{
		Name:    "U",
		Kind:    "vector",
		Profile: InputParameters.ProfileParameters{Type: "linear", Value: []float64{1, 2, 3}, Direction: [3]float64{1, 0, 0}},
	})
	results, err := RunFilter(&FilterRun{Verbose: true}, cp)
	require.NoError(t, err)
	require.Len(t, results, 2)

	T := results[0]
	assert.Equal(t, "polyLaplaceResidual(T)", T.Name)
	assert.Equal(t, types.ScalarKind, T.Kind)
	require.Len(t, T.Residual, 1)
	assert.InDeltaSlice(t, []float64{-1, 0, 0, 0, 1}, T.Residual[0], 1.e-12)
	assert.InDelta(t, math.Sqrt2, T.Norm, 1.e-12)

	// A linear field keeps its profile values on the calculated boundaries.
	// The half cell boundary faces carry a quarter of the interior spacing
	// weight, so only the end cells see a residual.
	U := results[1]
	assert.Equal(t, types.VectorKind, U.Kind)
	require.Len(t, U.Residual, 3)
	for i, r := range U.Residual {
		c := float64(i + 1)
		assert.InDeltaSlice(t, []float64{-0.75 * c, 0, 0, 0, 0.75 * c}, r, 1.e-12)
	}
	assert.Len(t, U.Stats, 3)

	_, err = RunFilter(&FilterRun{Profile: "disk"}, cp)
	assert.Error(t, err)

	cp.Fields[1].Kind = "sphericalTensor"
	_, err = RunFilter(&FilterRun{}, cp)
	assert.Error(t, err)

	cp.Fields[1].Kind = "vector"
	cp.Fields[1].BCs = map[string]InputParameters.BCParameters{"yMin": {Type: "zeroGradient"}}
	_, err = RunFilter(&FilterRun{}, cp)
	assert.Error(t, err)
}

func TestFilterFromConfig(t *testing.T) {
	defer viper.Reset()
	cp, err := readCase(writeCase(t, exampleCase))
	require.NoError(t, err)
	cp.Filter = nil

	_, err = RunFilter(&FilterRun{}, cp)
	assert.Error(t, err)

	viper.Set("filter", map[string]interface{}{
		"filter": "polyLaplaceResidual",
		"d1":     0,
		"d2":     1,
	})
	results, err := RunFilter(&FilterRun{}, cp)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDeltaSlice(t, []float64{1, -1, 0, 1, -1}, results[0].Residual[0], 1.e-12)

	cp.Filter = map[string]interface{}{"filter": "gaussian"}
	_, err = RunFilter(&FilterRun{}, cp)
	assert.Error(t, err)
}

func TestFilterDictFile(t *testing.T) {
	cp, err := readCase(writeCase(t, exampleCase))
	require.NoError(t, err)
	dictFile := filepath.Join(t.TempDir(), "filter.json")
	require.NoError(t, os.WriteFile(dictFile,
		[]byte(`{"filter": "polyLaplaceResidual", "polyLaplaceResidualCoeffs": {"d1": 0.5, "d2": -2}}`), 0o644))

	// The dictionary file takes precedence over the case Filter
	results, err := RunFilter(&FilterRun{DictFile: dictFile, Verbose: true}, cp)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDeltaSlice(t, []float64{-2.5, 2, 0, -2, 2.5}, results[0].Residual[0], 1.e-12)

	_, err = RunFilter(&FilterRun{DictFile: filepath.Join(t.TempDir(), "none.json")}, cp)
	assert.Error(t, err)
}

func TestRunMesh(t *testing.T) {
	cp, err := readCase(writeCase(t, exampleCase))
	require.NoError(t, err)
	ranges, err := RunMesh(cp, "")
	require.NoError(t, err)
	require.Len(t, ranges, 7)
	assert.Equal(t, "internal", ranges[0].Name)
	assert.InDelta(t, 1., ranges[0].Min, 1.e-14)
	assert.InDelta(t, 1., ranges[0].Max, 1.e-14)
	for _, r := range ranges[1:] {
		switch r.Name {
		case "xMin", "xMax":
			assert.False(t, r.Empty)
			assert.InDelta(t, 0.25, r.Min, 1.e-14)
			assert.InDelta(t, 0.25, r.Max, 1.e-14)
		default:
			assert.True(t, r.Empty, r.Name)
		}
	}
	_, err = RunMesh(cp, "no-such-file.su2")
	assert.Error(t, err)
}
