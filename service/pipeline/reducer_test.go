/*
 * @module service/pipeline/reducer_test
 * @description 批次归约器单元测试，覆盖状态机、去重首次出现、批次划分无关性与确定性
 * @architecture 单元测试 - 内存批次来源驱动完整归约
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 构造批次 -> Run -> Build -> 断言报告与计数
 * @rules 相同输入不同批次划分必须产出完全一致的报告；引擎不可复用
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs reducer.go, slice_source.go
 */

package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescleanse-service/service/cleansing"
)

func rawRow(id string, qty, price, discount interface{}, date string) cleansing.RawRecord {
	return cleansing.RawRecord{
		"order_id":         id,
		"product_name":     "Laptop Pro 15",
		"category":         "Electronics",
		"quantity":         qty,
		"unit_price":       price,
		"discount_percent": discount,
		"region":           "Europe",
		"sale_date":        date,
	}
}

// runReducer 以给定批次跑完一次归约并返回报告
func runReducer(t *testing.T, cfg cleansing.Config, opts ReducerOptions, batches ...Batch) *Report {
	t.Helper()

	r, err := NewReducer(cfg, opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background(), NewSliceSource(batches...)))

	report, err := r.Build()
	require.NoError(t, err)
	require.Equal(t, StateDone, r.State())
	require.True(t, r.Counters().ConsistencyOK(), "行数不变量必须成立")
	return report
}

func TestReducer_CleansesMixedQualityBatch(t *testing.T) {
	batch := Batch{
		rawRow("1", 2, 10, 0.1, "2024-01-05"),
		// 重复订单，即使本身合法也被去重丢弃
		rawRow("1", 5, 1, 0, "2024-01-06"),
		// 数量非法
		rawRow("2", -3, 20, 0, "2024/02/10"),
	}

	report := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, batch)

	require.Len(t, report.MonthlySummary, 1)
	assert.Equal(t, "2024-01", report.MonthlySummary[0].YearMonth)
	assert.Equal(t, 18.0, report.MonthlySummary[0].TotalRevenue)
	assert.Equal(t, int64(2), report.MonthlySummary[0].TotalQuantity)

	q := report.Quality
	assert.Equal(t, int64(3), q.TotalRowsProcessed)
	assert.Equal(t, int64(1), q.TotalRowsCleaned)
	assert.Equal(t, int64(2), q.RowsRemoved)
	assert.Equal(t, int64(1), q.DuplicateOrders)
	assert.Equal(t, int64(1), q.InvalidQuantity)
	assert.Equal(t, int64(0), q.InvalidPrice)
	assert.Equal(t, int64(0), q.MissingValues)
	assert.Equal(t, 33.33, q.DataQualityScore)
}

func TestReducer_DedupSpansBatches(t *testing.T) {
	report := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{},
		Batch{rawRow("1", 1, 10, 0, "2024-01-05")},
		Batch{rawRow("1", 2, 20, 0, "2024-01-06")},
	)

	assert.Equal(t, int64(2), report.Quality.TotalRowsProcessed)
	assert.Equal(t, int64(1), report.Quality.TotalRowsCleaned)
	assert.Equal(t, int64(1), report.Quality.DuplicateOrders)
	require.Len(t, report.MonthlySummary, 1)
	assert.Equal(t, 10.0, report.MonthlySummary[0].TotalRevenue)
}

// 被拒绝记录的order_id不占用首次出现名额
func TestReducer_RejectedRowDoesNotClaimOrderID(t *testing.T) {
	report := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, Batch{
		rawRow("1", "abc", 10, 0, "2024-01-05"),
		rawRow("1", 2, 10, 0, "2024-01-06"),
	})

	assert.Equal(t, int64(1), report.Quality.InvalidQuantity)
	assert.Equal(t, int64(0), report.Quality.DuplicateOrders)
	assert.Equal(t, int64(1), report.Quality.TotalRowsCleaned)
}

// syntheticRows 生成确定性的混合质量记录序列
func syntheticRows(n int) []cleansing.RawRecord {
	products := []string{"Laptop Pro 15", "Wireless Mouse", "Yoga Mat", "Coffee Beans", "Mystery Novel"}
	regions := []string{"Europe", "EU", "n. america", "Asia", "Atlantis"}
	dates := []string{"2024-01-05", "2024-02-14", "01/15/2024", "2024/03/20", "2023-11-30"}

	rows := make([]cleansing.RawRecord, 0, n)
	for i := 1; i <= n; i++ {
		row := cleansing.RawRecord{
			"order_id":         fmt.Sprintf("ORD%06d", i),
			"product_name":     products[i%len(products)],
			"category":         "Electronics",
			"quantity":         1 + i%7,
			"unit_price":       float64(10 + i%90),
			"discount_percent": float64(i%4) * 10,
			"region":           regions[i%len(regions)],
			"sale_date":        dates[i%len(dates)],
		}
		switch {
		case i%11 == 0:
			row["order_id"] = fmt.Sprintf("ORD%06d", i-1)
		case i%13 == 0:
			row["quantity"] = -5
		case i%17 == 0:
			row["unit_price"] = 0
		case i%19 == 0:
			row["sale_date"] = "not-a-date"
		case i%23 == 0:
			delete(row, "product_name")
		}
		rows = append(rows, row)
	}
	return rows
}

func chunkRows(rows []cleansing.RawRecord, size int) []Batch {
	var batches []Batch
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, Batch(rows[start:end]))
	}
	return batches
}

func TestReducer_BatchSizeInvariance(t *testing.T) {
	rows := syntheticRows(300)

	baseline := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, chunkRows(rows, 300)...)

	for _, size := range []int{1, 7, 50, 299} {
		t.Run(fmt.Sprintf("批大小%d", size), func(t *testing.T) {
			report := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, chunkRows(rows, size)...)
			assert.Equal(t, baseline, report, "批次划分不得影响最终报告")
		})
	}
}

func TestReducer_Deterministic(t *testing.T) {
	rows := syntheticRows(200)

	first := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, chunkRows(rows, 64)...)
	second := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{}, chunkRows(rows, 64)...)

	assert.Equal(t, first, second)
}

func TestReducer_ParallelNormalizeMatchesSerial(t *testing.T) {
	rows := syntheticRows(400)

	serial := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{Workers: 1}, chunkRows(rows, 100)...)
	parallel := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{Workers: 8}, chunkRows(rows, 100)...)

	assert.Equal(t, serial, parallel, "并行规范化不得改变归约结果")
}

func TestReducer_NotReusable(t *testing.T) {
	r, err := NewReducer(cleansing.DefaultConfig(), ReducerOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), NewSliceSource(Batch{rawRow("1", 1, 10, 0, "2024-01-05")})))
	_, err = r.Build()
	require.NoError(t, err)

	err = r.Run(context.Background(), NewSliceSource())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不可复用")

	_, err = r.Build()
	require.Error(t, err)
}

func TestReducer_BuildRequiresFinalizingState(t *testing.T) {
	r, err := NewReducer(cleansing.DefaultConfig(), ReducerOptions{})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, r.State())

	_, err = r.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "当前状态不允许生成报告")
}

func TestReducer_ContextCancellationDiscardsRun(t *testing.T) {
	r, err := NewReducer(cleansing.DefaultConfig(), ReducerOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = r.Run(ctx, NewSliceSource(Batch{rawRow("1", 1, 10, 0, "2024-01-05")}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDone, r.State())

	// 取消后不允许生成报告，部分状态视为丢弃
	_, err = r.Build()
	require.Error(t, err)
}

func TestReducer_EmptySource(t *testing.T) {
	report := runReducer(t, cleansing.DefaultConfig(), ReducerOptions{})

	assert.Empty(t, report.MonthlySummary)
	assert.Empty(t, report.TopProducts)
	assert.Empty(t, report.AnomalyRecords)
	assert.Equal(t, int64(0), report.Quality.TotalRowsProcessed)
	assert.Equal(t, 0.0, report.Quality.DataQualityScore)
}

func TestReducer_ObserverReceivesEachBatch(t *testing.T) {
	var sizes []int
	opts := ReducerOptions{
		Observer: func(batchIndex, size int, duration time.Duration) {
			sizes = append(sizes, size)
		},
	}

	runReducer(t, cleansing.DefaultConfig(), opts,
		Batch{rawRow("1", 1, 10, 0, "2024-01-05"), rawRow("2", 1, 10, 0, "2024-01-05")},
		Batch{rawRow("3", 1, 10, 0, "2024-01-05")},
	)

	assert.Equal(t, []int{2, 1}, sizes)
}

func TestReducer_SkipsEmptyBatches(t *testing.T) {
	r, err := NewReducer(cleansing.DefaultConfig(), ReducerOptions{})
	require.NoError(t, err)

	source := NewSliceSource(Batch{}, Batch{rawRow("1", 1, 10, 0, "2024-01-05")}, Batch{})
	require.NoError(t, r.Run(context.Background(), source))
	assert.Equal(t, 1, r.Batches())
}

func TestReducer_EnrichmentScriptApplied(t *testing.T) {
	cfg := cleansing.DefaultConfig()
	cfg.EnrichScript = `package enrich

import "strings"

func Enrich(record map[string]interface{}) (map[string]interface{}, error) {
	name, _ := record["product_name"].(string)
	return map[string]interface{}{"product_name": strings.ToUpper(name)}, nil
}
`

	report := runReducer(t, cfg, ReducerOptions{}, Batch{rawRow("1", 2, 10, 0, "2024-01-05")})

	require.NotEmpty(t, report.TopProducts)
	assert.Equal(t, "LAPTOP PRO 15", report.TopProducts[0].ProductName)
}

func TestNewReducer_RejectsBrokenEnrichScript(t *testing.T) {
	cfg := cleansing.DefaultConfig()
	cfg.EnrichScript = "package enrich\n\nfunc Enrich("

	_, err := NewReducer(cfg, ReducerOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "编译增强脚本失败")
}

func TestReducer_TopKLimitsRespected(t *testing.T) {
	cfg := cleansing.DefaultConfig()
	cfg.TopKProducts = 3
	cfg.TopKAnomalies = 2

	rows := make([]cleansing.RawRecord, 0, 40)
	for i := 1; i <= 40; i++ {
		row := rawRow(fmt.Sprintf("%d", i), 1, float64(10+i), 0, "2024-01-05")
		row["product_name"] = fmt.Sprintf("Product %02d", i)
		rows = append(rows, row)
	}

	report := runReducer(t, cfg, ReducerOptions{}, Batch(rows))

	// 收入榜与销量榜合并去重后最多2K行
	assert.LessOrEqual(t, len(report.TopProducts), 6)
	assert.Len(t, report.AnomalyRecords, 2)
	assert.Equal(t, "Product 40", report.AnomalyRecords[0].ProductName)
	assert.Equal(t, "Product 39", report.AnomalyRecords[1].ProductName)
}
