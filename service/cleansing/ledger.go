/*
 * @module service/cleansing/ledger
 * @description 订单去重台账，跨批次维护已接受的order_id集合，保证首次出现语义
 * @architecture 数据模型层 - 运行期可变状态，由批次归约器独占写入
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 记录通过规范化后查询台账 -> 首次出现接受并登记 -> 重复出现拒绝
 * @rules 仅对已通过规范化的记录查询，被拒绝记录的order_id不得占用首次出现名额
 * @dependencies 无外部依赖
 * @refs service/pipeline/reducer.go
 */

package cleansing

// DedupLedger 去重台账。非并发安全，仅允许单写者更新。
type DedupLedger struct {
	seen map[string]struct{}
}

// NewDedupLedger 创建空台账
func NewDedupLedger() *DedupLedger {
	return &DedupLedger{seen: make(map[string]struct{})}
}

// Admit 首次出现返回true并登记；此后同一order_id永远返回false
func (l *DedupLedger) Admit(orderID string) bool {
	if _, dup := l.seen[orderID]; dup {
		return false
	}
	l.seen[orderID] = struct{}{}
	return true
}

// Len 已登记的订单数
func (l *DedupLedger) Len() int {
	return len(l.seen)
}
