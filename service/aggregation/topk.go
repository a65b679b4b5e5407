/*
 * @module service/aggregation/topk
 * @description 商品Top-K排行器，按累计收入或累计销量维护至多K个商品条目
 * @architecture 数据模型层 - 有界排行结构，运行期由批次归约器独占写入
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 记录进入 -> 已有商品累加得分 -> 新商品在表满时与已累计的最小得分比较决定淘汰
 * @rules 条目数永不超过K；得分并列时按首次进入顺序稳定排序；
 *        淘汰比较的是候选记录自身得分与表内已累计的最小得分，而非单条记录口径
 * @dependencies 无外部依赖
 * @refs service/pipeline/reducer.go, service/pipeline/report.go
 */

package aggregation

import (
	"sort"

	"salescleanse-service/service/cleansing"
)

// RankDimension 排行维度
type RankDimension string

const (
	RankByRevenue RankDimension = "revenue"
	RankByUnits   RankDimension = "units"
)

// productEntry 商品累计条目
type productEntry struct {
	product string
	revenue float64
	units   int64
	// firstSeen 首次进入排行表的序号，用于并列时的稳定排序与淘汰选择
	firstSeen int64
}

// ProductRankRow 商品排行快照行
type ProductRankRow struct {
	ProductName    string  `json:"product_name"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalUnitsSold int64   `json:"total_units_sold"`
	RankBy         string  `json:"rank_by"`
}

// ProductRanker 商品Top-K排行器。非并发安全，仅允许单写者更新。
type ProductRanker struct {
	k         int
	dimension RankDimension
	entries   map[string]*productEntry
	arrivals  int64
}

// NewProductRanker 创建指定维度与容量的排行器
func NewProductRanker(dimension RankDimension, k int) *ProductRanker {
	if k <= 0 {
		k = 10
	}
	return &ProductRanker{
		k:         k,
		dimension: dimension,
		entries:   make(map[string]*productEntry, k),
	}
}

// Dimension 排行维度
func (r *ProductRanker) Dimension() RankDimension {
	return r.dimension
}

// Len 当前条目数
func (r *ProductRanker) Len() int {
	return len(r.entries)
}

// Admit 将清洗记录并入排行表。
// 已有商品直接累加；新商品在表未满时插入，表满时仅当该记录自身得分
// 严格大于表内最小累计得分才淘汰最小者插入。
func (r *ProductRanker) Admit(rec *cleansing.CleanRecord) {
	r.arrivals++

	if entry, ok := r.entries[rec.ProductName]; ok {
		entry.revenue += rec.Revenue
		entry.units += rec.Quantity
		return
	}

	if len(r.entries) < r.k {
		r.entries[rec.ProductName] = &productEntry{
			product:   rec.ProductName,
			revenue:   rec.Revenue,
			units:     rec.Quantity,
			firstSeen: r.arrivals,
		}
		return
	}

	candidate := r.scoreOf(rec.Revenue, rec.Quantity)
	victim := r.minEntry()
	if victim == nil || candidate <= r.score(victim) {
		return
	}

	delete(r.entries, victim.product)
	r.entries[rec.ProductName] = &productEntry{
		product:   rec.ProductName,
		revenue:   rec.Revenue,
		units:     rec.Quantity,
		firstSeen: r.arrivals,
	}
}

// minEntry 返回得分最小的条目；得分并列时淘汰最晚进入者，保住更早的条目
func (r *ProductRanker) minEntry() *productEntry {
	var min *productEntry
	for _, entry := range r.entries {
		if min == nil {
			min = entry
			continue
		}
		s, ms := r.score(entry), r.score(min)
		if s < ms || (s == ms && entry.firstSeen > min.firstSeen) {
			min = entry
		}
	}
	return min
}

func (r *ProductRanker) score(e *productEntry) float64 {
	return r.scoreOf(e.revenue, e.units)
}

func (r *ProductRanker) scoreOf(revenue float64, units int64) float64 {
	if r.dimension == RankByUnits {
		return float64(units)
	}
	return revenue
}

// Snapshot 按得分降序输出，得分并列按首次进入顺序
func (r *ProductRanker) Snapshot() []ProductRankRow {
	entries := make([]*productEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		si, sj := r.score(entries[i]), r.score(entries[j])
		if si != sj {
			return si > sj
		}
		return entries[i].firstSeen < entries[j].firstSeen
	})

	rows := make([]ProductRankRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, ProductRankRow{
			ProductName:    entry.product,
			TotalRevenue:   round2(entry.revenue),
			TotalUnitsSold: entry.units,
			RankBy:         string(r.dimension),
		})
	}
	return rows
}
