/*
 * @module service/generator/sales_generator_test
 * @description 销售数据生成器单元测试，验证种子可复现性、CSV落盘与批次来源
 * @architecture 单元测试
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 固定种子生成 -> 断言可复现 -> 喂给归约器验证端到端清洗
 * @rules 相同种子下输出完全可复现
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs sales_generator.go
 */

package generator

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/pipeline"
)

func TestSalesGenerator_DeterministicUnderSeed(t *testing.T) {
	first := NewSalesGenerator(42)
	second := NewSalesGenerator(42)

	for i := 1; i <= 50; i++ {
		assert.Equal(t, first.GenerateRow(i), second.GenerateRow(i), "行 %d 必须可复现", i)
	}
}

func TestSalesGenerator_DifferentSeedsDiffer(t *testing.T) {
	first := NewSalesGenerator(1)
	second := NewSalesGenerator(2)

	same := 0
	for i := 1; i <= 50; i++ {
		if assert.ObjectsAreEqual(first.GenerateRow(i), second.GenerateRow(i)) {
			same++
		}
	}
	assert.Less(t, same, 50, "不同种子不应生成完全相同的序列")
}

func TestSalesGenerator_RowShape(t *testing.T) {
	g := NewSalesGenerator(7)

	row := g.GenerateRow(1)
	for _, field := range []string{"order_id", "product_name", "category", "quantity", "unit_price", "discount_percent", "region", "sale_date", "revenue"} {
		_, ok := row[field]
		assert.True(t, ok, "缺少字段 %s", field)
	}

	orderID, _ := row["order_id"].(string)
	assert.True(t, strings.HasPrefix(orderID, "ORD"))
}

func TestSalesGenerator_WriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets", "sales.csv")
	g := NewSalesGenerator(42)

	written, err := g.WriteCSV(path, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), written)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 21, "表头加20行数据")
	assert.Equal(t, []string{
		"order_id", "product_name", "category", "quantity",
		"unit_price", "discount_percent", "region", "sale_date", "revenue",
	}, rows[0])
}

func TestSalesGenerator_WriteCSV_RejectsNonPositiveRows(t *testing.T) {
	g := NewSalesGenerator(1)
	_, err := g.WriteCSV(filepath.Join(t.TempDir(), "x.csv"), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "必须为正")
}

func TestGeneratorSource_Batching(t *testing.T) {
	g := NewSalesGenerator(42)
	source := g.Source(25, 10)
	defer source.Close()

	ctx := context.Background()
	var sizes []int
	for {
		batch, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(batch))
	}

	assert.Equal(t, []int{10, 10, 5}, sizes)
}

// 生成的数据直接喂给归约器，端到端验证注入的质量问题可被清洗
func TestGeneratorSource_EndToEndCleanse(t *testing.T) {
	g := NewSalesGenerator(1)

	reducer, err := pipeline.NewReducer(cleansing.DefaultConfig(), pipeline.ReducerOptions{})
	require.NoError(t, err)
	require.NoError(t, reducer.Run(context.Background(), g.Source(500, 100)))

	report, err := reducer.Build()
	require.NoError(t, err)

	q := report.Quality
	assert.Equal(t, int64(500), q.TotalRowsProcessed)
	assert.Equal(t, q.TotalRowsCleaned+q.RowsRemoved, q.TotalRowsProcessed)
	// 注入率约10%，其中仅部分问题构成拒绝
	assert.Greater(t, q.DataQualityScore, 85.0)
	assert.NotEmpty(t, report.MonthlySummary)
	assert.NotEmpty(t, report.TopProducts)
	require.True(t, reducer.Counters().ConsistencyOK())
}
