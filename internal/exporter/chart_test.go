package exporter

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanjanaganesh14/survis/internal/model"
)

func sampleData() ChartData {
	tbl := model.NewCountTable()
	tbl.Add(2020, "missing-modality")
	tbl.Add(2020, "missing-modality")
	tbl.Add(2021, "unknown-tag")
	tbl.Add(2023, "frequency-segmentation")
	return ChartData{Table: tbl, Years: tbl.Years(), Categories: tbl.Categories()}
}

func TestBuildChart_OneBarPerCell(t *testing.T) {
	t.Parallel()

	data := sampleData()
	c, err := buildChart(data, model.DefaultPalette(), DefaultChartOptions())
	require.NoError(t, err)

	// 分类字典序：frequency-segmentation(2023), missing-modality(2020), unknown-tag(2021)
	require.Len(t, c.bars, 3)
	wantX := []float64{2023, 2020, 2021}
	wantY := []float64{1, 2, 1}
	for i, b := range c.bars {
		require.Equal(t, wantX[i], b.XMin)
		require.Equal(t, []float64{wantY[i]}, []float64(b.Values))
	}

	// 2020..2023 共四个位置，2022 为空位
	require.Equal(t, 4.0, c.span)
	require.Equal(t, 2019.5, c.plot.X.Min)
	require.Equal(t, 2023.5, c.plot.X.Max)
	require.Equal(t, 0.0, c.plot.Y.Min)
}

func TestBuildChart_StacksWithinYear(t *testing.T) {
	t.Parallel()

	tbl := model.NewCountTable()
	tbl.Add(2020, "a")
	tbl.Add(2020, "a")
	tbl.Add(2020, "b")
	tbl.Add(2021, "b")
	data := ChartData{Table: tbl, Years: tbl.Years(), Categories: tbl.Categories()}

	c, err := buildChart(data, model.DefaultPalette(), DefaultChartOptions())
	require.NoError(t, err)
	require.Len(t, c.bars, 3)

	// a@2020 在底部，b@2020 叠在其上，b@2021 从 0 开始
	_, _, ymin, ymax := c.bars[1].DataRange()
	require.Equal(t, 2.0, ymin)
	require.Equal(t, 3.0, ymax)
	_, _, ymin, ymax = c.bars[2].DataRange()
	require.Equal(t, 0.0, ymin)
	require.Equal(t, 1.0, ymax)
	require.Equal(t, 3.0, c.plot.Y.Max)
}

func TestRenderPNG_FarApartYears(t *testing.T) {
	t.Parallel()

	cases := map[string][]int{
		"typo next to real years": {2019, 2020, 20200},
		"extreme range":           {1, math.MaxInt},
	}
	for name, years := range cases {
		years := years
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tbl := model.NewCountTable()
			for _, y := range years {
				tbl.Add(y, "missing-modality")
				tbl.Add(y, "unknown-tag")
			}
			data := ChartData{Table: tbl, Years: tbl.Years(), Categories: tbl.Categories()}

			c, err := buildChart(data, model.DefaultPalette(), DefaultChartOptions())
			require.NoError(t, err)
			require.Len(t, c.bars, 2*len(years))
			for _, b := range c.bars {
				require.Len(t, b.Values, 1)
			}

			var buf bytes.Buffer
			require.NoError(t, RenderPNG(&buf, data, model.DefaultPalette(), DefaultChartOptions()))
			require.NotZero(t, buf.Len())
		})
	}
}

func TestBuildChart_Colors(t *testing.T) {
	t.Parallel()

	palette := model.DefaultPalette()
	c, err := buildChart(sampleData(), palette, DefaultChartOptions())
	require.NoError(t, err)

	sameColor := func(a, b color.Color) bool {
		ar, ag, ab, aa := a.RGBA()
		br, bg, bb, ba := b.RGBA()
		return ar == br && ag == bg && ab == bb && aa == ba
	}
	require.True(t, sameColor(palette.RGBA("frequency-segmentation"), c.bars[0].Color))
	require.True(t, sameColor(palette.RGBA("missing-modality"), c.bars[1].Color))
	// 未登记分类使用兜底颜色
	require.True(t, sameColor(palette.RGBA("anything-else"), c.bars[2].Color))
}

func TestBuildChart_YearTicks(t *testing.T) {
	t.Parallel()

	ticks := yearTicks([]int{2019, 2021})
	require.Len(t, ticks, 2)
	require.Equal(t, 2019.0, ticks[0].Value)
	require.Equal(t, "2021", ticks[1].Label)
}

func TestRenderPNG_Dimensions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, sampleData(), model.DefaultPalette(), DefaultChartOptions()))

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 1800, cfg.Height)
	// 绘图区 9.6 英寸 = 2880 像素，图例在其右侧
	require.Greater(t, cfg.Width, 2881)
}

func TestRenderPNG_EmptyChart(t *testing.T) {
	t.Parallel()

	tbl := model.NewCountTable()
	data := ChartData{Table: tbl, Years: tbl.Years(), Categories: tbl.Categories()}

	c, err := buildChart(data, model.DefaultPalette(), DefaultChartOptions())
	require.NoError(t, err)
	require.Empty(t, c.bars)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, data, model.DefaultPalette(), DefaultChartOptions()))

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 1800, cfg.Height)
	require.InDelta(t, 2880, cfg.Width, 1)
}

func TestRenderPNG_Deterministic(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	require.NoError(t, RenderPNG(&a, sampleData(), model.DefaultPalette(), DefaultChartOptions()))
	require.NoError(t, RenderPNG(&b, sampleData(), model.DefaultPalette(), DefaultChartOptions()))
	require.True(t, bytes.Equal(a.Bytes(), b.Bytes()), "two renders of the same data differ")
}

func TestRenderChart_CreatesDirAndOverwrites(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "figs", "nested", "hist_years.png")
	require.NoError(t, RenderChart(out, sampleData(), model.DefaultPalette(), DefaultChartOptions()))

	first, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, RenderChart(out, sampleData(), model.DefaultPalette(), DefaultChartOptions()))
	second, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = os.Stat(out + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestRenderChart_Unwritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "figs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	err := RenderChart(filepath.Join(blocker, "hist_years.png"), sampleData(), model.DefaultPalette(), DefaultChartOptions())
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we), "got %T: %v", err, err)
}
