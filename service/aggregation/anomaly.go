/*
 * @module service/aggregation/anomaly
 * @description 异常记录排行器，保留收入最高的K条独立记录用于异常审查
 * @architecture 数据模型层 - 有界排行结构，运行期由批次归约器独占写入
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 记录进入 -> 表未满直接保留 -> 表满时与最小收入比较决定替换
 * @rules 不按商品合并，每条清洗记录独立参与排行；收入并列时先到者优先
 * @dependencies 无外部依赖
 * @refs service/pipeline/reducer.go, service/pipeline/report.go
 */

package aggregation

import (
	"sort"

	"salescleanse-service/service/cleansing"
)

// anomalyEntry 异常候选记录
type anomalyEntry struct {
	record  *cleansing.CleanRecord
	arrival int64
}

// AnomalyRanker 异常记录Top-K排行器。非并发安全，仅允许单写者更新。
type AnomalyRanker struct {
	k        int
	entries  []*anomalyEntry
	arrivals int64
}

// NewAnomalyRanker 创建指定容量的异常排行器
func NewAnomalyRanker(k int) *AnomalyRanker {
	if k <= 0 {
		k = 5
	}
	return &AnomalyRanker{k: k, entries: make([]*anomalyEntry, 0, k)}
}

// Len 当前条目数
func (r *AnomalyRanker) Len() int {
	return len(r.entries)
}

// Admit 记录进入排行。表满时仅当收入严格大于表内最小收入才替换；
// 收入相等时保留更早到达的记录。
func (r *AnomalyRanker) Admit(rec *cleansing.CleanRecord) {
	r.arrivals++

	if len(r.entries) < r.k {
		r.entries = append(r.entries, &anomalyEntry{record: rec, arrival: r.arrivals})
		return
	}

	minIdx := 0
	for i := 1; i < len(r.entries); i++ {
		ei, em := r.entries[i], r.entries[minIdx]
		if ei.record.Revenue < em.record.Revenue ||
			(ei.record.Revenue == em.record.Revenue && ei.arrival > em.arrival) {
			minIdx = i
		}
	}

	if rec.Revenue > r.entries[minIdx].record.Revenue {
		r.entries[minIdx] = &anomalyEntry{record: rec, arrival: r.arrivals}
	}
}

// Snapshot 按收入降序输出，收入并列按到达顺序
func (r *AnomalyRanker) Snapshot() []*cleansing.CleanRecord {
	sorted := make([]*anomalyEntry, len(r.entries))
	copy(sorted, r.entries)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].record.Revenue != sorted[j].record.Revenue {
			return sorted[i].record.Revenue > sorted[j].record.Revenue
		}
		return sorted[i].arrival < sorted[j].arrival
	})

	records := make([]*cleansing.CleanRecord, 0, len(sorted))
	for _, entry := range sorted {
		records = append(records, entry.record)
	}
	return records
}
