/*
 * @module service/cleansing/normalizer
 * @description 记录规范化器，按固定顺序执行缺失值、数量、价格、折扣、日期、区域/品类校验链
 * @architecture 责任链模式 - 纯函数校验链，首个失败项决定拒绝原因
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 缺失值检查 -> 数量 -> 价格 -> 折扣钳制 -> 日期 -> 同义词归一 -> 收入推导
 * @rules 规范化是纯函数，不修改共享状态；去重属于跨记录关注点，由DedupLedger处理
 * @dependencies github.com/spf13/cast
 * @refs service/cleansing/record.go, service/cleansing/ledger.go
 */

package cleansing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RecordNormalizer 记录规范化器，对单条原始记录执行校验与归一化
type RecordNormalizer struct {
	cfg              Config
	regionSynonyms   map[string]string
	categorySynonyms map[string]string
}

// NewRecordNormalizer 创建规范化器，同义词键统一转为小写
func NewRecordNormalizer(cfg Config) *RecordNormalizer {
	cfg = cfg.Normalize()

	n := &RecordNormalizer{
		cfg:              cfg,
		regionSynonyms:   make(map[string]string, len(cfg.RegionSynonyms)),
		categorySynonyms: make(map[string]string, len(cfg.CategorySynonyms)),
	}
	for k, v := range cfg.RegionSynonyms {
		n.regionSynonyms[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for k, v := range cfg.CategorySynonyms {
		n.categorySynonyms[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return n
}

// Config 返回规范化器生效的配置
func (n *RecordNormalizer) Config() Config {
	return n.cfg
}

// Normalize 规范化单条记录。纯函数，不访问共享状态。
// 校验链顺序固定：缺失值 -> 数量 -> 价格 -> 折扣（钳制不拒绝）-> 日期 -> 区域/品类 -> 收入推导。
func (n *RecordNormalizer) Normalize(raw RawRecord) *Verdict {
	// 1. 关键字段缺失检查
	for _, field := range requiredFields {
		if isMissing(raw, field) {
			return reject(ReasonMissingValues, field, "关键字段缺失")
		}
	}

	rec := &CleanRecord{
		OrderID:     strings.TrimSpace(cast.ToString(raw[FieldOrderID])),
		ProductName: strings.TrimSpace(cast.ToString(raw[FieldProductName])),
	}

	// 2. 数量：必须可转为整数且在[MinQuantity, MaxQuantity]内
	qty, ok := coerceInt(raw[FieldQuantity])
	if !ok {
		return reject(ReasonInvalidQuantity, FieldQuantity, "数量无法解析为整数")
	}
	if qty < n.cfg.MinQuantity || qty > n.cfg.MaxQuantity {
		return reject(ReasonInvalidQuantity, FieldQuantity,
			fmt.Sprintf("数量超出范围 [%d, %d]: %d", n.cfg.MinQuantity, n.cfg.MaxQuantity, qty))
	}
	rec.Quantity = qty

	// 3. 单价：必须可转为数值且在[MinPrice, MaxPrice]内
	price, ok := coerceFloat(raw[FieldUnitPrice])
	if !ok {
		return reject(ReasonInvalidPrice, FieldUnitPrice, "单价无法解析为数值")
	}
	if price < n.cfg.MinPrice || price > n.cfg.MaxPrice {
		return reject(ReasonInvalidPrice, FieldUnitPrice,
			fmt.Sprintf("单价超出范围 [%g, %g]: %g", n.cfg.MinPrice, n.cfg.MaxPrice, price))
	}
	rec.UnitPrice = price

	// 4. 折扣：同时接受小数(0-1)与百分比(0-100)两种口径；越界钳制为0，不构成拒绝
	discount, clamped := n.normalizeDiscount(raw)
	rec.Discount = discount

	// 5. 日期：按配置顺序尝试格式，首个解析成功者生效
	saleDate, ok := n.parseDate(raw[FieldSaleDate])
	if !ok {
		return reject(ReasonInvalidDate, FieldSaleDate,
			fmt.Sprintf("日期无法按任何已知格式解析: %v", raw[FieldSaleDate]))
	}
	rec.SaleDate = saleDate

	// 6. 区域/品类同义词归一化
	region, regionRewritten, regionMatched := lookupSynonym(raw[FieldRegion], n.regionSynonyms)
	if n.cfg.StrictSynonyms && region != "" && !regionMatched {
		return reject(ReasonMissingValues, FieldRegion, "区域不在同义词表中: "+region)
	}
	rec.Region = region

	category, categoryRewritten, categoryMatched := lookupSynonym(raw[FieldCategory], n.categorySynonyms)
	if n.cfg.StrictSynonyms && category != "" && !categoryMatched {
		return reject(ReasonMissingValues, FieldCategory, "品类不在同义词表中: "+category)
	}
	rec.Category = category

	// 7. 收入恒由引擎推导，忽略输入中的revenue字段
	rec.Revenue = round2(float64(rec.Quantity) * rec.UnitPrice * (1 - rec.Discount))

	return &Verdict{
		Record:            rec,
		DiscountClamped:   clamped,
		RegionRewritten:   regionRewritten,
		CategoryRewritten: categoryRewritten,
	}
}

// normalizeDiscount 折扣双口径归一：[0,1]视为小数，(1,100]视为百分比，
// 其余（负值、>100、不可解析、缺失）钳制为0并标记
func (n *RecordNormalizer) normalizeDiscount(raw RawRecord) (float64, bool) {
	v, exists := raw[FieldDiscount]
	if !exists {
		// 兼容以discount为键的来源
		v, exists = raw["discount"]
	}
	if !exists || v == nil {
		return 0, true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, true
	}

	f, ok := coerceFloat(v)
	if !ok {
		return 0, true
	}

	switch {
	case f >= 0 && f <= 1:
		return f, false
	case f > 1 && f <= 100:
		return f / 100, false
	default:
		return 0, true
	}
}

// parseDate 按配置顺序解析日期
func (n *RecordNormalizer) parseDate(v interface{}) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range n.cfg.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// lookupSynonym 大小写不敏感、去除首尾空白的同义词查找。
// 返回归一化后的值、是否发生了改写、是否命中同义词表。
func lookupSynonym(v interface{}, table map[string]string) (string, bool, bool) {
	trimmed := strings.TrimSpace(cast.ToString(v))
	if trimmed == "" {
		return "", false, false
	}

	canonical, ok := table[strings.ToLower(trimmed)]
	if !ok {
		return trimmed, false, false
	}
	return canonical, canonical != trimmed, true
}

// isMissing 字段缺失判定：键不存在、nil或空白字符串
func isMissing(raw RawRecord, field string) bool {
	v, exists := raw[field]
	if !exists || v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// coerceInt 整数转换：浮点数要求无小数部分，字符串先去空白再解析
func coerceInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Trunc(n) != n {
			return 0, false
		}
		return int64(n), true
	case float32:
		return coerceInt(float64(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.Trunc(f) != f {
			return 0, false
		}
		return int64(f), true
	default:
		i, err := cast.ToInt64E(v)
		return i, err == nil
	}
}

// coerceFloat 数值转换，拒绝NaN与Inf
func coerceFloat(v interface{}) (float64, bool) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func reject(reason Reason, field, message string) *Verdict {
	return &Verdict{Rejection: &Rejection{Reason: reason, Field: field, Message: message}}
}

// round2 四舍五入保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
