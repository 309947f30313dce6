package model

import "sort"

// CountTable 年份 -> 分类标签 -> 计数
// 计数为 0 的单元格不会出现在表中（不存在即为 0）
type CountTable struct {
	cells map[int]map[string]int
}

// NewCountTable 创建空计数表
func NewCountTable() *CountTable {
	return &CountTable{cells: make(map[int]map[string]int)}
}

// Add 对 (year, tag) 计数加一
func (t *CountTable) Add(year int, tag string) {
	row, ok := t.cells[year]
	if !ok {
		row = make(map[string]int)
		t.cells[year] = row
	}
	row[tag]++
}

// Count 查询 (year, tag) 的计数，不存在时返回 0，不会创建单元格
func (t *CountTable) Count(year int, tag string) int {
	if t == nil {
		return 0
	}
	return t.cells[year][tag]
}

// Heights 按 years 顺序返回某个分类在各年份的计数
func (t *CountTable) Heights(tag string, years []int) []int {
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = t.Count(y, tag)
	}
	return out
}

// YearTotal 某年所有分类的计数之和
func (t *CountTable) YearTotal(year int) int {
	if t == nil {
		return 0
	}
	total := 0
	for _, n := range t.cells[year] {
		total += n
	}
	return total
}

// Total 所有单元格计数之和
func (t *CountTable) Total() int {
	if t == nil {
		return 0
	}
	total := 0
	for year := range t.cells {
		total += t.YearTotal(year)
	}
	return total
}

// Years 出现过的年份，升序且无重复
func (t *CountTable) Years() []int {
	if t == nil {
		return []int{}
	}
	years := make([]int, 0, len(t.cells))
	for y := range t.cells {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Categories 出现过的分类标签，按字典序排列
func (t *CountTable) Categories() []string {
	if t == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	for _, row := range t.cells {
		for tag := range row {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Snapshot 返回计数表的深拷贝（用于测试与报告）
func (t *CountTable) Snapshot() map[int]map[string]int {
	out := make(map[int]map[string]int)
	if t == nil {
		return out
	}
	for year, row := range t.cells {
		copied := make(map[string]int, len(row))
		for tag, n := range row {
			copied[tag] = n
		}
		out[year] = copied
	}
	return out
}
