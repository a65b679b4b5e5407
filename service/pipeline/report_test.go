/*
 * @module service/pipeline/report_test
 * @description 报告构建器单元测试，覆盖双榜合并去重、整体排序与质量报告字段映射
 * @architecture 单元测试
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 构造终态累加器 -> 渲染报告 -> 断言输出结构
 * @rules 收入榜在前销量榜在后，同一商品保留首个出现的行，整体按总收入降序
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs report.go
 */

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescleanse-service/service/aggregation"
	"salescleanse-service/service/cleansing"
)

func reportRecord(orderID, product string, qty int64, revenue float64, date string) *cleansing.CleanRecord {
	d, _ := time.Parse("2006-01-02", date)
	return &cleansing.CleanRecord{
		OrderID:     orderID,
		ProductName: product,
		Category:    "Electronics",
		Quantity:    qty,
		UnitPrice:   revenue / float64(qty),
		SaleDate:    d,
		Region:      "Europe",
		Revenue:     revenue,
	}
}

func TestBuildReport_MergesBothRankings(t *testing.T) {
	byRevenue := aggregation.NewProductRanker(aggregation.RankByRevenue, 2)
	byUnits := aggregation.NewProductRanker(aggregation.RankByUnits, 2)
	monthly := aggregation.NewMonthlyAccumulator()
	anomalies := aggregation.NewAnomalyRanker(5)
	counters := cleansing.NewQualityCounters()

	records := []*cleansing.CleanRecord{
		// Premium: 收入最高、销量低
		reportRecord("1", "Premium", 2, 900, "2024-01-05"),
		// Bulk: 销量最高、收入居中
		reportRecord("2", "Bulk", 500, 500, "2024-01-06"),
		// Niche: 两榜都能进
		reportRecord("3", "Niche", 400, 600, "2024-01-07"),
	}
	for _, rec := range records {
		monthly.Admit(rec)
		byRevenue.Admit(rec)
		byUnits.Admit(rec)
		anomalies.Admit(rec)
		counters.MarkProcessed()
		counters.MarkCleaned(&cleansing.Verdict{})
	}

	report := buildReport(monthly, byRevenue, byUnits, anomalies, counters)

	// 收入榜: Premium(900), Niche(600); 销量榜: Bulk(500), Niche(400)
	// 合并去重后 Niche 保留收入榜行，整体按总收入降序
	require.Len(t, report.TopProducts, 3)
	assert.Equal(t, "Premium", report.TopProducts[0].ProductName)
	assert.Equal(t, "revenue", report.TopProducts[0].RankBy)
	assert.Equal(t, "Niche", report.TopProducts[1].ProductName)
	assert.Equal(t, "revenue", report.TopProducts[1].RankBy)
	assert.Equal(t, "Bulk", report.TopProducts[2].ProductName)
	assert.Equal(t, "units", report.TopProducts[2].RankBy)
}

func TestBuildReport_QualityFieldMapping(t *testing.T) {
	counters := cleansing.NewQualityCounters()

	for i := 0; i < 7; i++ {
		counters.MarkProcessed()
	}
	counters.MarkCleaned(&cleansing.Verdict{DiscountClamped: true})
	counters.MarkCleaned(&cleansing.Verdict{RegionRewritten: true, CategoryRewritten: true})
	counters.MarkRejected(cleansing.ReasonMissingValues)
	counters.MarkRejected(cleansing.ReasonInvalidQuantity)
	counters.MarkRejected(cleansing.ReasonInvalidPrice)
	counters.MarkRejected(cleansing.ReasonInvalidDate)
	counters.MarkRejected(cleansing.ReasonDuplicateOrders)

	report := buildReport(
		aggregation.NewMonthlyAccumulator(),
		aggregation.NewProductRanker(aggregation.RankByRevenue, 10),
		aggregation.NewProductRanker(aggregation.RankByUnits, 10),
		aggregation.NewAnomalyRanker(5),
		counters,
	)

	q := report.Quality
	assert.Equal(t, int64(7), q.TotalRowsProcessed)
	assert.Equal(t, int64(2), q.TotalRowsCleaned)
	assert.Equal(t, int64(5), q.RowsRemoved)
	assert.Equal(t, int64(1), q.MissingValues)
	assert.Equal(t, int64(1), q.InvalidQuantity)
	assert.Equal(t, int64(1), q.InvalidPrice)
	assert.Equal(t, int64(1), q.InvalidDate)
	assert.Equal(t, int64(1), q.DuplicateOrders)
	assert.Equal(t, int64(1), q.InvalidDiscount)
	assert.Equal(t, int64(1), q.NormalizedRegions)
	assert.Equal(t, int64(1), q.NormalizedCategories)
	assert.Equal(t, 28.57, q.DataQualityScore)
}

func TestBuildReport_AnomalyRowFormatting(t *testing.T) {
	anomalies := aggregation.NewAnomalyRanker(5)
	rec := reportRecord("ORD42", "Premium", 2, 900, "2024-03-09")
	rec.Discount = 0.25
	anomalies.Admit(rec)

	report := buildReport(
		aggregation.NewMonthlyAccumulator(),
		aggregation.NewProductRanker(aggregation.RankByRevenue, 10),
		aggregation.NewProductRanker(aggregation.RankByUnits, 10),
		anomalies,
		cleansing.NewQualityCounters(),
	)

	require.Len(t, report.AnomalyRecords, 1)
	row := report.AnomalyRecords[0]
	assert.Equal(t, "ORD42", row.OrderID)
	assert.Equal(t, "Premium", row.ProductName)
	assert.Equal(t, "Electronics", row.Category)
	assert.Equal(t, int64(2), row.Quantity)
	assert.Equal(t, 0.25, row.Discount)
	assert.Equal(t, "2024-03-09", row.SaleDate)
	assert.Equal(t, 900.0, row.Revenue)
}
