/*
 * @module service/cleansing/script_rule_test
 * @description 记录增强脚本执行器单元测试，覆盖编译、字段回写白名单与缓存
 * @architecture 单元测试 - yaegi脚本执行
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 编译脚本 -> 应用到清洗记录 -> 断言回写结果
 * @rules 脚本只能改写product_name/region/category，引擎独占字段不受影响
 * @dependencies testing, github.com/stretchr/testify/assert, github.com/traefik/yaegi
 * @refs script_rule.go
 */

package cleansing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upperCaseScript = `package enrich

import "strings"

func Enrich(record map[string]interface{}) (map[string]interface{}, error) {
	name, _ := record["product_name"].(string)
	return map[string]interface{}{
		"product_name": strings.ToUpper(name),
	}, nil
}
`

const overreachScript = `package enrich

func Enrich(record map[string]interface{}) (map[string]interface{}, error) {
	return map[string]interface{}{
		"region":   "Mars",
		"quantity": int64(9999),
		"revenue":  0.01,
		"order_id": "HACKED",
	}, nil
}
`

const failingScript = `package enrich

import "errors"

func Enrich(record map[string]interface{}) (map[string]interface{}, error) {
	return nil, errors.New("脚本内部错误")
}
`

func sampleCleanRecord() *CleanRecord {
	return &CleanRecord{
		OrderID:     "ORD00000001",
		ProductName: "Laptop Pro 15",
		Quantity:    2,
		UnitPrice:   10,
		Discount:    0.1,
		SaleDate:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Region:      "Europe",
		Category:    "Electronics",
		Revenue:     18,
	}
}

func TestCompileEnrichmentScript(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "合法脚本编译成功", src: upperCaseScript},
		{
			name:    "缺少Enrich入口",
			src:     "package enrich\n\nfunc Other() {}\n",
			wantErr: "enrich.Enrich",
		},
		{
			name:    "语法错误",
			src:     "package enrich\n\nfunc Enrich(",
			wantErr: "脚本编译失败",
		},
		{
			name:    "入口签名不匹配",
			src:     "package enrich\n\nfunc Enrich(n int) int { return n }\n",
			wantErr: "签名不正确",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := CompileEnrichmentScript(tt.src)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, script)
		})
	}
}

func TestCompileEnrichmentScript_CachesBySource(t *testing.T) {
	first, err := CompileEnrichmentScript(upperCaseScript)
	require.NoError(t, err)
	second, err := CompileEnrichmentScript(upperCaseScript)
	require.NoError(t, err)

	assert.Same(t, first, second, "相同脚本内容只编译一次")
}

func TestEnrichmentScript_Apply(t *testing.T) {
	script, err := CompileEnrichmentScript(upperCaseScript)
	require.NoError(t, err)

	rec := sampleCleanRecord()
	require.NoError(t, script.Apply(rec))

	assert.Equal(t, "LAPTOP PRO 15", rec.ProductName)
	assert.Equal(t, "Europe", rec.Region)
	assert.Equal(t, int64(2), rec.Quantity)
}

// 引擎独占字段不在回写白名单内，脚本无法篡改计数与聚合口径
func TestEnrichmentScript_ApplyIgnoresProtectedFields(t *testing.T) {
	script, err := CompileEnrichmentScript(overreachScript)
	require.NoError(t, err)

	rec := sampleCleanRecord()
	require.NoError(t, script.Apply(rec))

	assert.Equal(t, "Mars", rec.Region, "region属于允许改写的字段")
	assert.Equal(t, "ORD00000001", rec.OrderID)
	assert.Equal(t, int64(2), rec.Quantity)
	assert.Equal(t, 18.0, rec.Revenue)
}

func TestEnrichmentScript_ApplyError(t *testing.T) {
	script, err := CompileEnrichmentScript(failingScript)
	require.NoError(t, err)

	rec := sampleCleanRecord()
	err = script.Apply(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "增强脚本执行失败")
	// 失败时记录保持原样
	assert.Equal(t, "Laptop Pro 15", rec.ProductName)
}
