/*
 * @module service/cleansing/script_rule
 * @description 记录增强脚本执行器，允许以Go脚本对清洗通过的记录做标签类字段的二次加工
 * @architecture 插件模式 - yaegi解释器按脚本哈希缓存编译结果
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 脚本编译（一次）-> 逐条记录调用Enrich入口 -> 回写允许字段
 * @rules 脚本只能改写product_name/region/category；数量、价格、折扣、日期与order_id由引擎独占，
 *        保证计数与聚合不变量不被脚本破坏；脚本失败时记录原样通过
 * @dependencies github.com/traefik/yaegi
 * @refs service/pipeline/reducer.go
 */

package cleansing

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// EnrichFunc 脚本必须提供的入口签名：package enrich 下的 Enrich 函数
type EnrichFunc func(record map[string]interface{}) (map[string]interface{}, error)

// EnrichmentScript 已编译的增强脚本
type EnrichmentScript struct {
	fn EnrichFunc
	// yaegi解释器非并发安全，调用串行化
	mu sync.Mutex
}

var (
	scriptCacheMu sync.Mutex
	scriptCache   = make(map[string]*EnrichmentScript)
)

// CompileEnrichmentScript 编译增强脚本，同一脚本内容只编译一次
func CompileEnrichmentScript(src string) (*EnrichmentScript, error) {
	sum := sha1.Sum([]byte(src))
	hash := hex.EncodeToString(sum[:])

	scriptCacheMu.Lock()
	cached, ok := scriptCache[hash]
	scriptCacheMu.Unlock()
	if ok {
		return cached, nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库符号失败: %w", err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	v, err := i.Eval("enrich.Enrich")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 enrich.Enrich 入口: %w", err)
	}

	fn, ok := v.Interface().(func(map[string]interface{}) (map[string]interface{}, error))
	if !ok {
		return nil, fmt.Errorf("enrich.Enrich 签名不正确，期望 func(map[string]interface{}) (map[string]interface{}, error)")
	}

	script := &EnrichmentScript{fn: fn}

	scriptCacheMu.Lock()
	scriptCache[hash] = script
	scriptCacheMu.Unlock()

	return script, nil
}

// Apply 对单条清洗记录执行增强脚本，仅回写标签类字段
func (s *EnrichmentScript) Apply(rec *CleanRecord) error {
	params := map[string]interface{}{
		"order_id":     rec.OrderID,
		"product_name": rec.ProductName,
		"quantity":     rec.Quantity,
		"unit_price":   rec.UnitPrice,
		"discount":     rec.Discount,
		"sale_date":    rec.SaleDate,
		"region":       rec.Region,
		"category":     rec.Category,
		"revenue":      rec.Revenue,
	}

	s.mu.Lock()
	result, err := s.fn(params)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("增强脚本执行失败: %w", err)
	}
	if result == nil {
		return nil
	}

	if v, ok := result["product_name"].(string); ok && v != "" {
		rec.ProductName = v
	}
	if v, ok := result["region"].(string); ok {
		rec.Region = v
	}
	if v, ok := result["category"].(string); ok {
		rec.Category = v
	}
	return nil
}
