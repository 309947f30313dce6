package exporter

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sanjanaganesh14/survis/internal/model"
)

// ChartData 绘图输入：计数表 + 已排序的年份与分类
type ChartData struct {
	Table      *model.CountTable
	Years      []int
	Categories []string
}

// ChartOptions 图表版式参数
type ChartOptions struct {
	Width     vg.Length // 整幅图宽度（裁剪前）
	Height    vg.Length
	DPI       int
	PlotShare float64 // 绘图区占整幅宽度的比例，其余留给图例
	BarShare  float64 // 柱宽占单个年份间隔的比例
	XLabel    string
	YLabel    string
}

// DefaultChartOptions 12x6 英寸、300 DPI，绘图区占 80%
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:     12 * vg.Inch,
		Height:    6 * vg.Inch,
		DPI:       300,
		PlotShare: 0.8,
		BarShare:  0.8,
		XLabel:    "Publication Year",
		YLabel:    "Number of Papers",
	}
}

const (
	legendGap   = 4 * vg.Millimeter
	minBarWidth = vg.Length(1)
)

// WriteError 输出文件无法写入
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write chart %s failed: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// chart 组装完成、尚未落到画布上的图表
type chart struct {
	plot   *plot.Plot
	legend plot.Legend
	bars   []*plotter.BarChart
	span   float64 // X 轴跨度（首尾年份之差 + 1）
}

// buildChart 按分类自下而上堆叠柱状图
func buildChart(data ChartData, palette model.ColorPalette, opts ChartOptions) (*chart, error) {
	p := plot.New()
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.X.Tick.Marker = yearTicks(data.Years)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	legend := plot.NewLegend()
	legend.Left = true
	legend.Top = true

	c := &chart{plot: p}

	if len(data.Years) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		c.legend = legend
		return c, nil
	}

	// 每个 (年份, 分类) 单元格一根柱段，落在真实年份上，空缺年份保留空位
	first := data.Years[0]
	last := data.Years[len(data.Years)-1]

	top := make(map[int]*plotter.BarChart, len(data.Years))
	for _, tag := range data.Categories {
		var thumb *plotter.BarChart
		for _, y := range data.Years {
			n := data.Table.Count(y, tag)
			if n == 0 {
				continue
			}

			bar, err := plotter.NewBarChart(plotter.Values{float64(n)}, 1)
			if err != nil {
				return nil, fmt.Errorf("build bar for %q in %d failed: %w", tag, y, err)
			}
			bar.XMin = float64(y)
			bar.Color = palette.RGBA(tag)
			bar.LineStyle.Width = 0
			if below := top[y]; below != nil {
				bar.StackOn(below)
			}
			top[y] = bar

			p.Add(bar)
			c.bars = append(c.bars, bar)
			if thumb == nil {
				thumb = bar
			}
		}
		if thumb != nil {
			legend.Add(model.DisplayLabel(tag), thumb)
		}
	}

	p.X.Min = float64(first) - 0.5
	p.X.Max = float64(last) + 0.5
	p.Y.Min = 0
	c.span = float64(last) - float64(first) + 1
	c.legend = legend
	return c, nil
}

func yearTicks(years []int) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(years))
	for i, y := range years {
		ticks[i] = plot.Tick{Value: float64(y), Label: strconv.Itoa(y)}
	}
	return ticks
}

// legendWidth 图例所需宽度（文字 + 色块 + 间距）
func (c *chart) legendWidth(labels []string) vg.Length {
	if len(labels) == 0 {
		return 0
	}
	var w vg.Length
	for _, s := range labels {
		if tw := c.legend.TextStyle.Width(s); tw > w {
			w = tw
		}
	}
	return w + c.legend.ThumbnailWidth + c.legend.Padding
}

// draw 在 dc 上绘制：左侧绘图区，右侧垂直居中的无边框图例
func (c *chart) draw(dc draw.Canvas, plotWidth vg.Length, opts ChartOptions) {
	split := dc.Min.X + plotWidth
	plotArea := draw.Canvas{
		Canvas:    dc.Canvas,
		Rectangle: vg.Rectangle{Min: dc.Min, Max: vg.Point{X: split, Y: dc.Max.Y}},
	}

	if len(c.bars) > 0 {
		da := c.plot.DataCanvas(plotArea)
		step := (da.Max.X - da.Min.X) / vg.Length(c.span)
		width := step * vg.Length(opts.BarShare)
		if width < minBarWidth {
			width = minBarWidth
		}
		for _, b := range c.bars {
			b.Width = width
		}
	}
	c.plot.Draw(plotArea)

	if len(c.bars) == 0 {
		return
	}
	legendArea := draw.Canvas{
		Canvas:    dc.Canvas,
		Rectangle: vg.Rectangle{Min: vg.Point{X: split, Y: dc.Min.Y}, Max: dc.Max},
	}
	c.legend.XOffs = legendGap
	r := c.legend.Rectangle(legendArea)
	free := (legendArea.Max.Y - legendArea.Min.Y) - (r.Max.Y - r.Min.Y)
	c.legend.YOffs = -free / 2
	c.legend.Draw(legendArea)
}

// RenderPNG 把图表编码为 PNG 写入 w
// 图像宽度裁剪到绘图区 + 图例的实际范围
func RenderPNG(w io.Writer, data ChartData, palette model.ColorPalette, opts ChartOptions) error {
	c, err := buildChart(data, palette, opts)
	if err != nil {
		return err
	}

	plotWidth := opts.Width * vg.Length(opts.PlotShare)
	width := plotWidth
	labels := make([]string, len(data.Categories))
	for i, tag := range data.Categories {
		labels[i] = model.DisplayLabel(tag)
	}
	if lw := c.legendWidth(labels); lw > 0 {
		width += legendGap + lw + legendGap
	}

	img := vgimg.NewWith(vgimg.UseWH(width, opts.Height), vgimg.UseDPI(opts.DPI))
	c.draw(draw.New(img), plotWidth, opts)

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png failed: %w", err)
	}
	return nil
}

// RenderChart 渲染并写入 path；目录不存在时递归创建
// 先写临时文件再重命名，失败时不会留下写了一半的图片
func RenderChart(path string, data ChartData, palette model.ColorPalette, opts ChartOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := RenderPNG(f, data, palette, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
