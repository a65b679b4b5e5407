/*
 * @module service/cleansing/config
 * @description 清洗引擎配置，定义数量/价格阈值、日期格式优先级、区域与品类同义词映射
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 配置构建 -> 规范化器初始化 -> 逐条记录清洗
 * @rules 默认值与业务数据字典保持一致，日期格式按优先级顺序尝试
 * @dependencies 无外部依赖
 * @refs service/cleansing/normalizer.go
 */

package cleansing

// Config 清洗引擎配置
type Config struct {
	MinQuantity int64 `json:"min_quantity"`
	MaxQuantity int64 `json:"max_quantity"`

	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`

	// DateLayouts 按优先级排列的日期格式，第一个解析成功的格式生效
	DateLayouts []string `json:"date_layouts"`

	// RegionSynonyms 小写同义词 -> 规范区域名
	RegionSynonyms map[string]string `json:"region_synonyms"`
	// CategorySynonyms 小写同义词 -> 规范品类名
	CategorySynonyms map[string]string `json:"category_synonyms"`

	// StrictSynonyms 为true时，未命中同义词表的非空区域/品类按缺失值拒绝
	StrictSynonyms bool `json:"strict_synonyms"`

	TopKProducts  int `json:"top_k_products"`
	TopKAnomalies int `json:"top_k_anomalies"`

	// EnrichScript 可选的记录增强脚本（Go源码），为空时不启用
	EnrichScript string `json:"enrich_script,omitempty"`
}

// DefaultConfig 返回带业务默认值的配置
func DefaultConfig() Config {
	return Config{
		MinQuantity:      0,
		MaxQuantity:      10000,
		MinPrice:         0.01,
		MaxPrice:         100000,
		DateLayouts:      DefaultDateLayouts(),
		RegionSynonyms:   DefaultRegionSynonyms(),
		CategorySynonyms: DefaultCategorySynonyms(),
		StrictSynonyms:   false,
		TopKProducts:     10,
		TopKAnomalies:    5,
	}
}

// DefaultDateLayouts 默认日期格式，ISO优先，其次美式/欧式
func DefaultDateLayouts() []string {
	return []string{
		"2006-01-02",
		"01/02/2006",
		"02/01/2006",
		"2006/01/02",
		"01-02-2006",
		"02-01-2006",
		"20060102",
		"01/02/06",
		"02/01/06",
	}
}

// DefaultRegionSynonyms 默认区域同义词表
func DefaultRegionSynonyms() map[string]string {
	return map[string]string{
		"north america": "North America",
		"n. america":    "North America",
		"n america":     "North America",
		"northamerica":  "North America",
		"na":            "North America",

		"europe": "Europe",
		"eu":     "Europe",
		"europa": "Europe",

		"asia":  "Asia",
		"asian": "Asia",

		"south america": "South America",
		"s. america":    "South America",
		"s america":     "South America",
		"southamerica":  "South America",
		"sa":            "South America",

		"africa":  "Africa",
		"african": "Africa",

		"oceania":   "Oceania",
		"australia": "Oceania",
		"pacific":   "Oceania",
	}
}

// DefaultCategorySynonyms 默认品类同义词表，覆盖常见拼写错误
func DefaultCategorySynonyms() map[string]string {
	return map[string]string{
		"electronics": "Electronics",
		"electronic":  "Electronics",
		"electrnics":  "Electronics",
		"elctronics":  "Electronics",

		"clothing": "Clothing",
		"clothes":  "Clothing",
		"apparel":  "Clothing",
		"fashion":  "Clothing",

		"home & garden":   "Home & Garden",
		"home and garden": "Home & Garden",
		"home":            "Home & Garden",
		"garden":          "Home & Garden",

		"sports":         "Sports",
		"sport":          "Sports",
		"sporting goods": "Sports",

		"books": "Books",
		"book":  "Books",

		"toys":         "Toys",
		"toy":          "Toys",
		"toys & games": "Toys",

		"food":            "Food & Beverage",
		"beverage":        "Food & Beverage",
		"food & beverage": "Food & Beverage",
	}
}

// Normalize 补齐零值字段，返回可直接使用的配置副本
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.MaxQuantity == 0 {
		c.MaxQuantity = def.MaxQuantity
	}
	if c.MinPrice == 0 {
		c.MinPrice = def.MinPrice
	}
	if c.MaxPrice == 0 {
		c.MaxPrice = def.MaxPrice
	}
	if len(c.DateLayouts) == 0 {
		c.DateLayouts = def.DateLayouts
	}
	if c.RegionSynonyms == nil {
		c.RegionSynonyms = def.RegionSynonyms
	}
	if c.CategorySynonyms == nil {
		c.CategorySynonyms = def.CategorySynonyms
	}
	if c.TopKProducts <= 0 {
		c.TopKProducts = def.TopKProducts
	}
	if c.TopKAnomalies <= 0 {
		c.TopKAnomalies = def.TopKAnomalies
	}
	return c
}
