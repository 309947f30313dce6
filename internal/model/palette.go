package model

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultFallbackColor 未登记分类的统一颜色
const DefaultFallbackColor = "#bbbbbb"

// ColorPalette 分类标签 -> 显示颜色（十六进制），外加一个统一的兜底颜色
// 创建后不可修改
type ColorPalette struct {
	colors   map[string]string
	fallback string
}

// NewColorPalette 创建调色板，colors 会被复制
func NewColorPalette(colors map[string]string, fallback string) ColorPalette {
	copied := make(map[string]string, len(colors))
	for tag, hex := range colors {
		copied[tag] = hex
	}
	if fallback == "" {
		fallback = DefaultFallbackColor
	}
	return ColorPalette{colors: copied, fallback: fallback}
}

// DefaultPalette 内置的固定分类配色
func DefaultPalette() ColorPalette {
	return NewColorPalette(map[string]string{
		"missing-modality":         "#4e79a7", // 蓝
		"transformer-segmentation": "#ff9da7", // 粉
		"frequency-segmentation":   "#59a14f", // 绿
		"image-super-resolution":   "#b07aa1", // 紫
	}, DefaultFallbackColor)
}

// Known 分类是否在调色板中登记
func (p ColorPalette) Known(tag string) bool {
	_, ok := p.colors[tag]
	return ok
}

// ColorOf 分类对应的十六进制颜色，未登记时返回兜底颜色
func (p ColorPalette) ColorOf(tag string) string {
	if hex, ok := p.colors[tag]; ok {
		return hex
	}
	return p.Fallback()
}

// Fallback 兜底颜色
func (p ColorPalette) Fallback() string {
	if p.fallback == "" {
		return DefaultFallbackColor
	}
	return p.fallback
}

// RGBA 分类对应的绘图颜色；十六进制无法解析时退回兜底颜色
func (p ColorPalette) RGBA(tag string) color.Color {
	if c, err := colorful.Hex(p.ColorOf(tag)); err == nil {
		return c
	}
	c, err := colorful.Hex(p.Fallback())
	if err != nil {
		return color.Gray{Y: 0xbb}
	}
	return c
}
