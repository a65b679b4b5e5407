/*
 * @module service/cleansing/record
 * @description 清洗引擎核心数据结构：原始记录、清洗后记录、拒绝原因与单条清洗结果
 * @architecture 数据模型层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 原始记录 -> 规范化 -> 清洗记录/拒绝
 * @rules 清洗记录所有字段必须在声明范围内，revenue由引擎推导，禁止从输入透传
 * @dependencies time
 * @refs service/cleansing/normalizer.go, service/aggregation
 */

package cleansing

import "time"

// RawRecord 来源系统的原始记录，字段类型不可信，可能缺失或越界
type RawRecord map[string]interface{}

// 原始记录的标准字段名
const (
	FieldOrderID     = "order_id"
	FieldProductName = "product_name"
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
	FieldDiscount    = "discount_percent"
	FieldSaleDate    = "sale_date"
	FieldRegion      = "region"
	FieldCategory    = "category"
)

// requiredFields 缺失即拒绝的关键字段
var requiredFields = []string{
	FieldOrderID,
	FieldProductName,
	FieldQuantity,
	FieldUnitPrice,
	FieldSaleDate,
}

// CleanRecord 规范化成功后的记录，折扣统一为[0,1]小数
type CleanRecord struct {
	OrderID     string    `json:"order_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Discount    float64   `json:"discount"`
	SaleDate    time.Time `json:"sale_date"`
	Region      string    `json:"region"`
	Category    string    `json:"category"`
	Revenue     float64   `json:"revenue"`
}

// YearMonth 返回销售日期所属的年月键，如 2024-01
func (r *CleanRecord) YearMonth() string {
	return r.SaleDate.Format("2006-01")
}

// Reason 记录被拒绝的原因标签
type Reason string

const (
	ReasonMissingValues   Reason = "missing_values"
	ReasonInvalidQuantity Reason = "invalid_quantity"
	ReasonInvalidPrice    Reason = "invalid_price"
	ReasonInvalidDate     Reason = "invalid_date"
	ReasonDuplicateOrders Reason = "duplicate_orders"
)

// RejectionReasons 全部拒绝原因，顺序与校验链一致
func RejectionReasons() []Reason {
	return []Reason{
		ReasonMissingValues,
		ReasonInvalidQuantity,
		ReasonInvalidPrice,
		ReasonInvalidDate,
		ReasonDuplicateOrders,
	}
}

// Rejection 单条记录的拒绝信息
type Rejection struct {
	Reason  Reason `json:"reason"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// Verdict 单条记录的清洗结果，Record与Rejection有且仅有一个非空
type Verdict struct {
	Record    *CleanRecord
	Rejection *Rejection

	// 非拒绝性的质量事件，由调用方计入信息类计数
	DiscountClamped   bool
	RegionRewritten   bool
	CategoryRewritten bool
}

// Accepted 记录是否通过清洗
func (v *Verdict) Accepted() bool {
	return v.Rejection == nil
}
