/*
 * @module service/generator/sales_generator
 * @description 电商销售数据生成器，产出带质量问题的测试数据集，约10%的行注入九类脏数据
 * @architecture 工具层 - 供测试与演示环境造数
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 按行号顺序生成 -> 注入质量问题 -> CSV落盘或直接作为批次来源
 * @rules 相同种子下输出完全可复现；重复订单号通过回指此前行号制造
 * @dependencies encoding/csv, math/rand
 * @refs service/ingestion/csv_source.go, service/pipeline/reducer.go
 */

package generator

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/pipeline"
)

// CSV列顺序，与历史数据集保持一致
var fieldNames = []string{
	"order_id", "product_name", "category", "quantity",
	"unit_price", "discount_percent", "region", "sale_date", "revenue",
}

type productEntry struct {
	name     string
	category string
}

// 商品目录
var products = []productEntry{
	{"Laptop Pro 15", "Electronics"},
	{"Wireless Mouse", "Electronics"},
	{"USB-C Cable", "Electronics"},
	{"Running Shoes", "Clothing"},
	{"Cotton T-Shirt", "Clothing"},
	{"Garden Hose", "Home & Garden"},
	{"LED Light Bulb", "Home & Garden"},
	{"Basketball", "Sports"},
	{"Yoga Mat", "Sports"},
	{"Mystery Novel", "Books"},
	{"Action Figure", "Toys"},
	{"Coffee Beans", "Food & Beverage"},
}

// 地区写法变体，包含别名与脏写法
var regions = []string{
	"North America", "n. america", "N America", "northamerica",
	"Europe", "EU", "europa",
	"Asia", "asian",
	"South America", "s. america", "SA",
	"Africa", "african",
	"Oceania", "australia",
}

// 注入的质量问题类型
var issueTypes = []string{
	"duplicate_order",
	"dirty_category",
	"string_quantity",
	"negative_quantity",
	"invalid_price",
	"invalid_discount",
	"null_date",
	"wrong_date_format",
	"typo_region",
}

// 输出日期的混合格式
var outputDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
}

// SalesGenerator 销售数据生成器
type SalesGenerator struct {
	rng       *rand.Rand
	startDate time.Time
	endDate   time.Time
}

// NewSalesGenerator 创建生成器，seed为0时使用时间种子
func NewSalesGenerator(seed int64) *SalesGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	end := time.Now()
	return &SalesGenerator{
		rng:       rand.New(rand.NewSource(seed)),
		startDate: end.AddDate(0, 0, -3*365),
		endDate:   end,
	}
}

// GenerateRow 生成一行原始记录，rowNum从1开始
func (g *SalesGenerator) GenerateRow(rowNum int) cleansing.RawRecord {
	product := products[g.rng.Intn(len(products))]
	category := product.category
	region := regions[g.rng.Intn(len(regions))]

	var quantity interface{} = 1 + g.rng.Intn(10000)
	unitPrice := round2(5 + g.rng.Float64()*495)
	discount := round1(g.rng.Float64() * 30)

	daysDiff := int(g.endDate.Sub(g.startDate).Hours() / 24)
	saleDate := g.startDate.AddDate(0, 0, g.rng.Intn(daysDiff+1))
	hasDate := true

	orderID := fmt.Sprintf("ORD%08d", rowNum)

	// 约10%的行注入质量问题
	if g.rng.Float64() < 0.1 {
		switch issueTypes[g.rng.Intn(len(issueTypes))] {
		case "duplicate_order":
			orderID = fmt.Sprintf("ORD%08d", rowNum-(1+g.rng.Intn(100)))
		case "dirty_category":
			if g.rng.Float64() < 0.5 {
				category = strings.ToLower(category)
			} else {
				category = strings.ReplaceAll(category, "&", "and")
			}
		case "string_quantity":
			quantity = strconv.Itoa(quantity.(int))
		case "negative_quantity":
			quantity = -(1 + g.rng.Intn(10))
		case "invalid_price":
			unitPrice = []float64{0, -10.5, 999999}[g.rng.Intn(3)]
		case "invalid_discount":
			discount = []float64{-5, 150, 999}[g.rng.Intn(3)]
		case "null_date":
			hasDate = false
		case "wrong_date_format":
			// 输出格式本就混合，保持原样
		case "typo_region":
			region = strings.ToLower(region)
		}
	}

	saleDateStr := ""
	if hasDate {
		layout := outputDateLayouts[g.rng.Intn(len(outputDateLayouts))]
		saleDateStr = saleDate.Format(layout)
	}

	record := cleansing.RawRecord{
		"order_id":         orderID,
		"product_name":     product.name,
		"category":         category,
		"quantity":         quantity,
		"unit_price":       unitPrice,
		"discount_percent": discount,
		"region":           region,
		"sale_date":        saleDateStr,
	}

	// 参考收入列：数量为整数时按原始值计算，否则留空
	if qty, ok := quantity.(int); ok {
		revenue := round2(float64(qty) * unitPrice * (1 - discount/100))
		if revenue != 0 {
			record["revenue"] = revenue
		} else {
			record["revenue"] = ""
		}
	} else {
		record["revenue"] = ""
	}

	return record
}

// WriteCSV 生成numRows行数据写入CSV文件，返回写出的行数
func (g *SalesGenerator) WriteCSV(path string, numRows int, logEvery int) (int64, error) {
	if numRows <= 0 {
		return 0, fmt.Errorf("生成行数必须为正: %d", numRows)
	}
	if logEvery <= 0 {
		logEvery = 100000
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("创建数据集目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("创建数据集文件失败 %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fieldNames); err != nil {
		return 0, fmt.Errorf("写出表头失败: %w", err)
	}

	slog.Info("开始生成销售数据", "path", path, "rows", numRows)
	var written int64
	for i := 1; i <= numRows; i++ {
		record := g.GenerateRow(i)
		if err := w.Write(recordToRow(record)); err != nil {
			return written, fmt.Errorf("写出数据行失败 row=%d: %w", i, err)
		}
		written++

		if i%logEvery == 0 {
			slog.Info("数据生成进度", "rows", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("写出数据集失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("关闭数据集文件失败: %w", err)
	}

	slog.Info("销售数据生成完成", "path", path, "rows", written)
	return written, nil
}

// recordToRow 按固定列顺序格式化一行
func recordToRow(record cleansing.RawRecord) []string {
	row := make([]string, len(fieldNames))
	for i, field := range fieldNames {
		row[i] = formatValue(record[field])
	}
	return row
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Source 返回直接产出批次的来源，总量numRows，每批batchSize行
func (g *SalesGenerator) Source(numRows, batchSize int) *GeneratorSource {
	if batchSize <= 0 {
		batchSize = 10000
	}
	return &GeneratorSource{gen: g, total: numRows, batchSize: batchSize}
}

// GeneratorSource 生成器批次来源，不落盘直接喂给归约器
type GeneratorSource struct {
	gen       *SalesGenerator
	total     int
	batchSize int
	produced  int
}

// Next 生成下一批，产完返回io.EOF
func (s *GeneratorSource) Next(ctx context.Context) (pipeline.Batch, error) {
	if s.produced >= s.total {
		return nil, io.EOF
	}

	n := s.batchSize
	if remaining := s.total - s.produced; remaining < n {
		n = remaining
	}

	batch := make(pipeline.Batch, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.produced++
		batch = append(batch, s.gen.GenerateRow(s.produced))
	}
	return batch, nil
}

// Close 无资源需要释放
func (s *GeneratorSource) Close() error {
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
