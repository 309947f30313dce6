package calculator

import (
	"strconv"
	"strings"

	"github.com/sanjanaganesh14/survis/internal/model"
)

// Result 聚合结果
type Result struct {
	Table      *model.CountTable
	Years      []int    // 升序、无重复
	Categories []string // 字典序
	Counted    int      // 计入统计的记录数
	Skipped    int      // 年份无效被跳过的记录数
}

// Aggregate 按 年份 × 分类 统计文献数量
//
// 规则：
// - year 缺失按 0 处理；无法解析为整数、或不是正的公历年份的记录整条跳过；
// - 分类缺失时记为 "unknown"；
// - 单条记录的数据问题不会导致失败。
func Aggregate(entries []model.BibEntry) *Result {
	table := model.NewCountTable()
	res := &Result{Table: table}

	for _, e := range entries {
		year, ok := ParseYear(e.Get(model.FieldYear, "0"))
		if !ok {
			res.Skipped++
			continue
		}
		table.Add(year, e.Category())
		res.Counted++
	}

	res.Years = table.Years()
	res.Categories = table.Categories()
	return res
}

// ParseYear 解析年份字段，只接受正整数
func ParseYear(raw string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
