/*
 * @module service/aggregation/monthly
 * @description 月度累加器，按年月键维护收入、数量、折扣的运行和与记录数
 * @architecture 数据模型层 - 运行期可变状态，由批次归约器独占写入
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 首条记录创建月度条目 -> 后续记录增量累加 -> 运行结束按时间序快照
 * @rules 平均折扣 = discount_sum / record_count，与批次划分无关；条目在运行期内只增不删
 * @dependencies 无外部依赖
 * @refs service/pipeline/reducer.go, service/pipeline/report.go
 */

package aggregation

import (
	"math"
	"sort"

	"salescleanse-service/service/cleansing"
)

// MonthlyEntry 单个年月的运行累加值
type MonthlyEntry struct {
	YearMonth   string
	RevenueSum  float64
	QuantitySum int64
	DiscountSum float64
	RecordCount int64
}

// MonthlySummaryRow 月度汇总快照行
type MonthlySummaryRow struct {
	YearMonth     string  `json:"year_month"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity int64   `json:"total_quantity"`
	AvgDiscount   float64 `json:"avg_discount"`
}

// MonthlyAccumulator 月度累加器。非并发安全，仅允许单写者更新。
type MonthlyAccumulator struct {
	months map[string]*MonthlyEntry
}

// NewMonthlyAccumulator 创建空累加器
func NewMonthlyAccumulator() *MonthlyAccumulator {
	return &MonthlyAccumulator{months: make(map[string]*MonthlyEntry)}
}

// Admit 将清洗记录并入所属年月，条目不存在时创建
func (a *MonthlyAccumulator) Admit(rec *cleansing.CleanRecord) {
	key := rec.YearMonth()
	entry, ok := a.months[key]
	if !ok {
		entry = &MonthlyEntry{YearMonth: key}
		a.months[key] = entry
	}
	entry.RevenueSum += rec.Revenue
	entry.QuantitySum += rec.Quantity
	entry.DiscountSum += rec.Discount
	entry.RecordCount++
}

// Months 当前持有的年月条目数
func (a *MonthlyAccumulator) Months() int {
	return len(a.months)
}

// Snapshot 按时间升序输出月度汇总，金额与折扣保留两位小数
func (a *MonthlyAccumulator) Snapshot() []MonthlySummaryRow {
	rows := make([]MonthlySummaryRow, 0, len(a.months))
	for _, entry := range a.months {
		row := MonthlySummaryRow{
			YearMonth:     entry.YearMonth,
			TotalRevenue:  round2(entry.RevenueSum),
			TotalQuantity: entry.QuantitySum,
		}
		if entry.RecordCount > 0 {
			row.AvgDiscount = round2(entry.DiscountSum / float64(entry.RecordCount))
		}
		rows = append(rows, row)
	}

	// 年月键为YYYY-MM，字典序即时间序
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].YearMonth < rows[j].YearMonth
	})
	return rows
}

// round2 四舍五入保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
