/*
 * @module service/pipeline/report
 * @description 报告构建器，将累加器与计数器终态渲染为四个结果结构
 * @architecture 数据模型层 - 对终态的纯读取，不再发生任何状态变更
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 累加器终态 -> 月度汇总/商品排行/异常记录/质量报告
 * @rules 商品排行表先收入榜后销量榜，按商品名首次出现去重，最终按总收入降序；
 *        质量评分 = 100 × rows_cleaned / rows_processed，无数据时为0
 * @dependencies salescleanse-service/service/aggregation, salescleanse-service/service/cleansing
 * @refs service/pipeline/reducer.go, service/pipeline/artifacts.go
 */

package pipeline

import (
	"sort"

	"salescleanse-service/service/aggregation"
	"salescleanse-service/service/cleansing"
)

// AnomalyRow 异常记录输出行，日期以YYYY-MM-DD呈现
type AnomalyRow struct {
	OrderID     string  `json:"order_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Discount    float64 `json:"discount"`
	Region      string  `json:"region"`
	SaleDate    string  `json:"sale_date"`
	Revenue     float64 `json:"revenue"`
}

// QualityReport 数据质量报告，键集与历史报告格式保持一致
type QualityReport struct {
	TotalRowsProcessed int64   `json:"total_rows_processed"`
	TotalRowsCleaned   int64   `json:"total_rows_cleaned"`
	RowsRemoved        int64   `json:"rows_removed"`
	DataQualityScore   float64 `json:"data_quality_score"`

	DuplicateOrders int64 `json:"duplicate_orders"`
	InvalidQuantity int64 `json:"invalid_quantity"`
	InvalidPrice    int64 `json:"invalid_price"`
	InvalidDiscount int64 `json:"invalid_discount"`
	InvalidDate     int64 `json:"invalid_date"`
	MissingValues   int64 `json:"missing_values"`

	NormalizedRegions    int64 `json:"normalized_regions"`
	NormalizedCategories int64 `json:"normalized_categories"`
}

// Report 单次运行的全部结果
type Report struct {
	MonthlySummary []aggregation.MonthlySummaryRow `json:"monthly_summary"`
	TopProducts    []aggregation.ProductRankRow    `json:"top_products"`
	AnomalyRecords []AnomalyRow                    `json:"anomaly_records"`
	Quality        QualityReport                   `json:"quality_report"`
}

// buildReport 由终态累加器渲染完整报告
func buildReport(
	monthly *aggregation.MonthlyAccumulator,
	byRevenue, byUnits *aggregation.ProductRanker,
	anomalies *aggregation.AnomalyRanker,
	counters *cleansing.QualityCounters,
) *Report {
	return &Report{
		MonthlySummary: monthly.Snapshot(),
		TopProducts:    buildTopProducts(byRevenue, byUnits),
		AnomalyRecords: buildAnomalyRows(anomalies),
		Quality:        buildQualityReport(counters),
	}
}

// buildTopProducts 合并双维度排行：收入榜在前、销量榜在后，
// 同一商品保留首个出现的行，整体按总收入降序稳定排序
func buildTopProducts(byRevenue, byUnits *aggregation.ProductRanker) []aggregation.ProductRankRow {
	combined := append(byRevenue.Snapshot(), byUnits.Snapshot()...)

	seen := make(map[string]struct{}, len(combined))
	rows := make([]aggregation.ProductRankRow, 0, len(combined))
	for _, row := range combined {
		if _, dup := seen[row.ProductName]; dup {
			continue
		}
		seen[row.ProductName] = struct{}{}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalRevenue > rows[j].TotalRevenue
	})
	return rows
}

// buildAnomalyRows 异常记录快照转输出行
func buildAnomalyRows(anomalies *aggregation.AnomalyRanker) []AnomalyRow {
	records := anomalies.Snapshot()
	rows := make([]AnomalyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, AnomalyRow{
			OrderID:     rec.OrderID,
			ProductName: rec.ProductName,
			Category:    rec.Category,
			Quantity:    rec.Quantity,
			UnitPrice:   rec.UnitPrice,
			Discount:    rec.Discount,
			Region:      rec.Region,
			SaleDate:    rec.SaleDate.Format("2006-01-02"),
			Revenue:     rec.Revenue,
		})
	}
	return rows
}

// buildQualityReport 计数器终态转质量报告
func buildQualityReport(counters *cleansing.QualityCounters) QualityReport {
	return QualityReport{
		TotalRowsProcessed:   counters.RowsProcessed(),
		TotalRowsCleaned:     counters.RowsCleaned(),
		RowsRemoved:          counters.RowsRemoved(),
		DataQualityScore:     counters.DataQualityScore(),
		DuplicateOrders:      counters.Removed(cleansing.ReasonDuplicateOrders),
		InvalidQuantity:      counters.Removed(cleansing.ReasonInvalidQuantity),
		InvalidPrice:         counters.Removed(cleansing.ReasonInvalidPrice),
		InvalidDiscount:      counters.InvalidDiscount(),
		InvalidDate:          counters.Removed(cleansing.ReasonInvalidDate),
		MissingValues:        counters.Removed(cleansing.ReasonMissingValues),
		NormalizedRegions:    counters.NormalizedRegions(),
		NormalizedCategories: counters.NormalizedCategories(),
	}
}
