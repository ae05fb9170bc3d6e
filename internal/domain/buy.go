package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Product is the item sold through a group buy (one product per Buy).
type Product struct {
	ProductID       uint64    `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	ProductName     string    `gorm:"column:product_name;not null" json:"product_name"`
	ProductImg      string    `gorm:"column:product_img" json:"product_img"`
	DetailImg       string    `gorm:"column:detail_img" json:"detail_img"`
	OriginalPrice   int       `gorm:"column:original_price;not null" json:"original_price"`
	SalePrice       int       `gorm:"column:sale_price;not null" json:"sale_price"`
	DiscountPercent int       `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	StoreName       string    `gorm:"column:store_name" json:"store_name"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// Buy is a group-buy listing. BuyID is assigned by the database and only grows,
// which is what lets it serve as the pagination cursor and tie-break.
type Buy struct {
	BuyID     uint64         `gorm:"column:buy_id;primaryKey;autoIncrement" json:"buy_id"`
	ProductID uint64         `gorm:"column:product_id;not null;uniqueIndex" json:"product_id"`
	Product   *Product       `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
	Title     string         `gorm:"column:title;size:50;not null" json:"title"`
	Deadline  datatypes.Date `gorm:"column:deadline;not null;index" json:"deadline"`
	Skeleton  int            `gorm:"column:skeleton;not null" json:"skeleton"`
	NowCount  int            `gorm:"column:now_count;not null;default:0" json:"now_count"`
	Tags      string         `gorm:"column:tags" json:"tags"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Buy) TableName() string {
	return "buys"
}

// Category is a browse category ("food", "living", ...).
type Category struct {
	CategoryID uint64 `gorm:"column:category_id;primaryKey;autoIncrement" json:"category_id"`
	Name       string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// BuyCategory links a Buy to the categories it is listed under.
type BuyCategory struct {
	BuyCategoryID uint64 `gorm:"column:buy_category_id;primaryKey;autoIncrement" json:"buy_category_id"`
	BuyID         uint64 `gorm:"column:buy_id;not null;uniqueIndex:idx_buy_category" json:"buy_id"`
	CategoryID    uint64 `gorm:"column:category_id;not null;uniqueIndex:idx_buy_category" json:"category_id"`
}

func (BuyCategory) TableName() string {
	return "buy_categories"
}
