package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

func TestWriteReport(t *testing.T) {
	result := &model.RunResult{
		SampleCount: 3000,
		TrainCount:  2400,
		TestCount:   600,
		Accuracy:    0.9123,
		Kappa:       0.8711,
		Areas: []model.AreaRecord{
			{Year: 2014, ClassCode: 1, ClassName: "Water", AreaHectares: 1200.5},
			{Year: 2014, ClassCode: 2, ClassName: "Trees", AreaHectares: 803},
			{Year: 2024, ClassCode: 1, ClassName: "Water", AreaHectares: 1100},
		},
		ChartPath: "out/areas.html",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, result))
	out := buf.String()

	// Counts come out with grouped digits.
	assert.Contains(t, out, "3,000")
	assert.Contains(t, out, "2,400")
	assert.Contains(t, out, "accuracy: 0.9123")
	assert.Contains(t, out, "kappa: 0.8711")
	assert.Contains(t, out, "2014 total area: 2,003.5 ha")
	assert.Contains(t, out, "2024 total area: 1,100.0 ha")
	assert.Contains(t, out, "chart: out/areas.html")
}

func TestWriteReport_NoChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, &model.RunResult{SampleCount: 10}))
	assert.NotContains(t, buf.String(), "chart:")
}
