/*
 * @module service/pipeline/artifacts
 * @description 结果物料写出器，将运行报告落盘为三个CSV表与一个质量报告JSON
 * @architecture 数据访问层 - 纯写出，不回读
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 报告终态 -> 按固定文件名写出到运行输出目录
 * @rules 金额与折扣列统一保留两位小数；文件名与历史产物保持一致
 * @dependencies encoding/csv, encoding/json
 * @refs service/pipeline/report.go, service/run_service.go
 */

package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"salescleanse-service/service/aggregation"
)

// 输出文件名，与历史产物保持一致
const (
	MonthlySalesFile   = "monthly_sales_summary.csv"
	TopProductsFile    = "top_products.csv"
	AnomalyRecordsFile = "anomaly_records.csv"
	QualityReportFile  = "data_quality_report.json"
)

// WriteArtifacts 将报告写出到目录，返回写出的文件路径列表
func WriteArtifacts(dir string, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	written := make([]string, 0, 4)

	path := filepath.Join(dir, MonthlySalesFile)
	if err := writeMonthlyCSV(path, report.MonthlySummary); err != nil {
		return written, err
	}
	written = append(written, path)

	path = filepath.Join(dir, TopProductsFile)
	if err := writeTopProductsCSV(path, report.TopProducts); err != nil {
		return written, err
	}
	written = append(written, path)

	path = filepath.Join(dir, AnomalyRecordsFile)
	if err := writeAnomaliesCSV(path, report.AnomalyRecords); err != nil {
		return written, err
	}
	written = append(written, path)

	path = filepath.Join(dir, QualityReportFile)
	if err := writeQualityJSON(path, report.Quality); err != nil {
		return written, err
	}
	written = append(written, path)

	return written, nil
}

func writeMonthlyCSV(path string, rows []aggregation.MonthlySummaryRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"year_month", "total_revenue", "total_quantity", "avg_discount"})
	for _, row := range rows {
		records = append(records, []string{
			row.YearMonth,
			formatMoney(row.TotalRevenue),
			strconv.FormatInt(row.TotalQuantity, 10),
			formatMoney(row.AvgDiscount),
		})
	}
	return writeCSV(path, records)
}

func writeTopProductsCSV(path string, rows []aggregation.ProductRankRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"product_name", "total_revenue", "total_units_sold", "rank_by"})
	for _, row := range rows {
		records = append(records, []string{
			row.ProductName,
			formatMoney(row.TotalRevenue),
			strconv.FormatInt(row.TotalUnitsSold, 10),
			row.RankBy,
		})
	}
	return writeCSV(path, records)
}

func writeAnomaliesCSV(path string, rows []AnomalyRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"order_id", "product_name", "category", "quantity",
		"unit_price", "discount", "region", "sale_date", "revenue",
	})
	for _, row := range rows {
		records = append(records, []string{
			row.OrderID,
			row.ProductName,
			row.Category,
			strconv.FormatInt(row.Quantity, 10),
			formatMoney(row.UnitPrice),
			formatMoney(row.Discount),
			row.Region,
			row.SaleDate,
			formatMoney(row.Revenue),
		})
	}
	return writeCSV(path, records)
}

func writeQualityJSON(path string, quality QualityReport) error {
	data, err := json.MarshalIndent(quality, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化质量报告失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写出质量报告失败: %w", err)
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败 %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("写出CSV失败 %s: %w", path, err)
	}
	return f.Close()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
