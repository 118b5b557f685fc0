package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-geo/lulc-cli/internal/eval"
	"github.com/meridian-geo/lulc-cli/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	records := []model.AreaRecord{
		{Year: 2014, ClassCode: 1, ClassName: "Water", AreaHectares: 42},
		{Year: 2024, ClassCode: 2, ClassName: "Trees", AreaHectares: 120.5},
	}
	cm, err := eval.Confusion([]int{1, 1, 2}, []int{1, 2, 2}, []int{1, 2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, records, cm))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	areas := f.Sheet["Areas"]
	require.NotNil(t, areas)
	require.Len(t, areas.Rows, 3) // header + 2 records
	assert.Equal(t, "Year", areas.Rows[0].Cells[0].Value)
	assert.Equal(t, "Water", areas.Rows[1].Cells[2].Value)
	year, err := areas.Rows[2].Cells[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	accuracy := f.Sheet["Accuracy"]
	require.NotNil(t, accuracy)
	// Header + one matrix row per code + accuracy + kappa.
	require.Len(t, accuracy.Rows, 5)
	assert.Equal(t, "accuracy", accuracy.Rows[3].Cells[0].Value)
	assert.Equal(t, "kappa", accuracy.Rows[4].Cells[0].Value)
}

func TestWriteXLSX_NoMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.xlsx")
	require.NoError(t, WriteXLSX(path, []model.AreaRecord{
		{Year: 2014, ClassCode: 1, ClassName: "Water", AreaHectares: 1},
	}, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 1)
}
