package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/internal/dataset"
)

const table = `a, y, b
1, 10, 2
3, 20, 4
`

func TestReadNamedTarget(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(table), "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Features)
	assert.Equal(t, "y", ds.Target)
	assert.Equal(t, []float64{10, 20}, ds.Y)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), ds.X))
}

func TestReadLastColumnByDefault(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(table), "")
	require.NoError(t, err)
	assert.Equal(t, "b", ds.Target)
	assert.Equal(t, []float64{2, 4}, ds.Y)
}

func TestReadErrors(t *testing.T) {
	_, err := dataset.Read(strings.NewReader("a,y\n"), "")
	assert.ErrorIs(t, err, dataset.ErrNoRows)

	_, err = dataset.Read(strings.NewReader(table), "z")
	assert.ErrorIs(t, err, dataset.ErrTarget)

	_, err = dataset.Read(strings.NewReader("y\n1\n"), "")
	assert.ErrorIs(t, err, dataset.ErrTarget)

	_, err = dataset.Read(strings.NewReader("a,y\n1,x\n"), "")
	assert.Error(t, err)

	_, err = dataset.Read(strings.NewReader("a,y\n1,2,3\n"), "")
	assert.Error(t, err)
}
