/*
 * @module service/cleansing/counters
 * @description 质量计数器，跟踪处理/清洗/按原因拒绝的行数及信息类质量事件
 * @architecture 数据模型层 - 运行期可变状态，由批次归约器独占写入
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 逐条记录计数 -> 运行结束生成质量报告
 * @rules 不变量 rows_processed = rows_cleaned + Σ removed_by_reason 必须精确成立；
 *        信息类计数（折扣钳制、同义词改写）不参与该不变量
 * @dependencies 无外部依赖
 * @refs service/pipeline/reducer.go, service/pipeline/report.go
 */

package cleansing

// QualityCounters 质量计数器。非并发安全，仅允许单写者更新。
type QualityCounters struct {
	rowsProcessed int64
	rowsCleaned   int64
	removed       map[Reason]int64

	// 信息类计数，不参与行数不变量
	invalidDiscount      int64
	normalizedRegions    int64
	normalizedCategories int64
}

// NewQualityCounters 创建质量计数器
func NewQualityCounters() *QualityCounters {
	return &QualityCounters{
		removed: make(map[Reason]int64, len(RejectionReasons())),
	}
}

// MarkProcessed 每条输入记录计一次，无论结果如何
func (c *QualityCounters) MarkProcessed() {
	c.rowsProcessed++
}

// MarkRejected 按原因累计被拒绝的记录
func (c *QualityCounters) MarkRejected(reason Reason) {
	c.removed[reason]++
}

// MarkCleaned 累计清洗成功的记录及其附带的信息类事件
func (c *QualityCounters) MarkCleaned(v *Verdict) {
	c.rowsCleaned++
	if v.DiscountClamped {
		c.invalidDiscount++
	}
	if v.RegionRewritten {
		c.normalizedRegions++
	}
	if v.CategoryRewritten {
		c.normalizedCategories++
	}
}

// RowsProcessed 已处理总行数
func (c *QualityCounters) RowsProcessed() int64 {
	return c.rowsProcessed
}

// RowsCleaned 清洗成功行数
func (c *QualityCounters) RowsCleaned() int64 {
	return c.rowsCleaned
}

// RowsRemoved 被移除行数
func (c *QualityCounters) RowsRemoved() int64 {
	return c.rowsProcessed - c.rowsCleaned
}

// Removed 指定原因的拒绝计数
func (c *QualityCounters) Removed(reason Reason) int64 {
	return c.removed[reason]
}

// RemovedByReason 按原因的拒绝计数副本
func (c *QualityCounters) RemovedByReason() map[string]int64 {
	out := make(map[string]int64, len(c.removed))
	for reason, count := range c.removed {
		out[string(reason)] = count
	}
	return out
}

// InvalidDiscount 折扣被钳制的记录数（信息类）
func (c *QualityCounters) InvalidDiscount() int64 {
	return c.invalidDiscount
}

// NormalizedRegions 区域被同义词表改写的记录数（信息类）
func (c *QualityCounters) NormalizedRegions() int64 {
	return c.normalizedRegions
}

// NormalizedCategories 品类被同义词表改写的记录数（信息类）
func (c *QualityCounters) NormalizedCategories() int64 {
	return c.normalizedCategories
}

// DataQualityScore 数据质量评分 = 100 × 清洗成功 / 处理总数，保留两位小数；无数据时为0
func (c *QualityCounters) DataQualityScore() float64 {
	if c.rowsProcessed == 0 {
		return 0
	}
	return round2(float64(c.rowsCleaned) / float64(c.rowsProcessed) * 100)
}

// ConsistencyOK 校验行数不变量是否成立
func (c *QualityCounters) ConsistencyOK() bool {
	var removed int64
	for _, count := range c.removed {
		removed += count
	}
	return c.rowsProcessed == c.rowsCleaned+removed
}
