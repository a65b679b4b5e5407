/*
 * @module service/cleansing/ledger_test
 * @description 订单去重台账单元测试，验证首次出现语义
 * @architecture 单元测试
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 逐个登记 -> 断言首次true、重复false
 * @rules 同一order_id跨批次也只允许首次出现
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs ledger.go
 */

package cleansing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupLedger_FirstWins(t *testing.T) {
	l := NewDedupLedger()

	assert.True(t, l.Admit("ORD001"))
	assert.False(t, l.Admit("ORD001"))
	assert.False(t, l.Admit("ORD001"), "重复出现永远拒绝")

	assert.True(t, l.Admit("ORD002"))
	assert.Equal(t, 2, l.Len())
}

func TestDedupLedger_IDsAreCaseSensitive(t *testing.T) {
	l := NewDedupLedger()

	assert.True(t, l.Admit("ord001"))
	assert.True(t, l.Admit("ORD001"))
	assert.Equal(t, 2, l.Len())
}
