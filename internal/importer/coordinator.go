package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/sanjanaganesh14/survis/internal/calculator"
	"github.com/sanjanaganesh14/survis/internal/config"
	"github.com/sanjanaganesh14/survis/internal/exporter"
	"github.com/sanjanaganesh14/survis/internal/model"
	"github.com/sanjanaganesh14/survis/internal/parser"
)

// Coordinator 一次 读取 -> 聚合 -> 渲染 的协调器，不保留跨次运行的状态
type Coordinator struct {
	logger  *zap.Logger
	palette model.ColorPalette
}

// NewCoordinator 创建协调器，logger 为 nil 时不输出日志
func NewCoordinator(logger *zap.Logger, palette model.ColorPalette) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger, palette: palette}
}

// RunOptions 运行参数
type RunOptions struct {
	InputPath  string
	OutputPath string
	Chart      exporter.ChartOptions
	Progress   func(ProgressEvent)
}

// OptionsFromConfig 由配置生成运行参数
func OptionsFromConfig(cfg *config.AppConfig) RunOptions {
	chart := exporter.DefaultChartOptions()
	chart.Width = vg.Length(cfg.Chart.WidthInch) * vg.Inch
	chart.Height = vg.Length(cfg.Chart.HeightInch) * vg.Inch
	chart.DPI = config.DPI
	chart.PlotShare = cfg.Chart.PlotShare
	return RunOptions{
		InputPath:  config.BibPath,
		OutputPath: config.ImagePath,
		Chart:      chart,
	}
}

// Report 运行报告
type Report struct {
	RunID          string
	InputPath      string
	OutputPath     string
	TotalEntries   int
	CountedEntries int
	SkippedEntries int
	Years          []int
	Categories     []string
	Counts         map[int]map[string]int // 年份 -> 分类 -> 计数
	Duration       time.Duration
}

// Run 执行一次完整流程；任一阶段失败立即返回，不产生输出文件
func (c *Coordinator) Run(opts RunOptions) (*Report, error) {
	startTime := time.Now()
	report := &Report{
		RunID:      uuid.NewString(),
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
	}
	log := c.logger.With(zap.String("run_id", report.RunID))

	enterStage(opts.Progress, StageLoad)
	entries, err := parser.LoadFile(opts.InputPath)
	if err != nil {
		log.Error("load bibliography failed", zap.String("path", opts.InputPath), zap.Error(err))
		return nil, err
	}
	report.TotalEntries = len(entries)
	log.Info("bibliography loaded", zap.String("path", opts.InputPath), zap.Int("entries", len(entries)))

	enterStage(opts.Progress, StageAggregate)
	result := calculator.Aggregate(entries)
	report.CountedEntries = result.Counted
	report.SkippedEntries = result.Skipped
	report.Years = result.Years
	report.Categories = result.Categories
	report.Counts = result.Table.Snapshot()
	if result.Skipped > 0 {
		log.Debug("entries without a usable year skipped", zap.Int("skipped", result.Skipped))
	}
	log.Info("entries aggregated",
		zap.Int("counted", result.Counted),
		zap.Ints("years", result.Years),
		zap.Strings("categories", result.Categories),
		zap.Any("counts", report.Counts),
	)

	enterStage(opts.Progress, StageRender)
	data := exporter.ChartData{
		Table:      result.Table,
		Years:      result.Years,
		Categories: result.Categories,
	}
	if err := exporter.RenderChart(opts.OutputPath, data, c.palette, opts.Chart); err != nil {
		log.Error("render chart failed", zap.String("path", opts.OutputPath), zap.Error(err))
		return nil, fmt.Errorf("render %s: %w", opts.OutputPath, err)
	}

	report.Duration = time.Since(startTime)
	enterStage(opts.Progress, StageDone)
	log.Info("chart written", zap.String("path", opts.OutputPath), zap.Duration("duration", report.Duration))
	return report, nil
}
