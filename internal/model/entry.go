package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 已识别的字段名（小写）
const (
	FieldYear           = "year"
	FieldCategory       = "category"
	FieldCategoryLegacy = "catogory" // 旧版文献库中的拼写
)

// UnknownCategory 缺少分类字段时使用的标签
const UnknownCategory = "unknown"

// BibEntry 单条文献记录：字段名 -> 字段值
type BibEntry map[string]string

// Get 获取字段值，字段不存在时返回 def
func (e BibEntry) Get(field, def string) string {
	if v, ok := e[field]; ok {
		return v
	}
	return def
}

// Category 返回分类标签，缺失或为空时返回 "unknown"
func (e BibEntry) Category() string {
	for _, field := range []string{FieldCategory, FieldCategoryLegacy} {
		if v := strings.TrimSpace(e[field]); v != "" {
			return v
		}
	}
	return UnknownCategory
}

// DisplayLabel 图例展示用文本：连字符替换为空格后首字母大写
// 例如 "missing-modality" -> "Missing Modality"
func DisplayLabel(tag string) string {
	// Caser 有内部状态，不能跨 goroutine 共享
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "-", " "))
}
