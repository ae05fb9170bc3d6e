package database

import (
	"context"
	"strings"

	"dutchie-backend/internal/application/deals"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealStore implements deals.ItemStore on the buys/products/likes/reviews tables.
type DealStore struct {
	DB *gorm.DB
}

const reviewCountSQL = "(SELECT COUNT(*) FROM reviews WHERE reviews.buy_id = buys.buy_id AND reviews.deleted_at IS NULL)"

// Every non-aggregate column the page query selects; Postgres wants them all grouped.
var pageGroupBy = strings.Join([]string{
	"buys.buy_id", "products.product_id", "products.product_name", "products.product_img",
	"products.original_price", "products.sale_price", "products.discount_percent",
	"buys.skeleton", "buys.now_count", "buys.deadline",
}, ", ")

// FindCursor reads the cursor buy together with its like count in one statement.
func (s *DealStore) FindCursor(ctx context.Context, id deals.ItemID) (deals.CursorItem, error) {
	var item deals.CursorItem
	res := s.DB.WithContext(ctx).
		Table("buys").
		Select("buys.buy_id, buys.deadline, products.discount_percent, COUNT(likes.like_id) AS like_count").
		Joins("JOIN products ON products.product_id = buys.product_id").
		Joins("LEFT JOIN likes ON likes.buy_id = buys.buy_id").
		Where("buys.buy_id = ?", id).
		Group("buys.buy_id, buys.deadline, products.discount_percent").
		Limit(1).
		Scan(&item)
	if res.Error != nil {
		return deals.CursorItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return deals.CursorItem{}, deals.ErrItemNotFound
	}
	return item, nil
}

// FetchRows runs the grouped page query. The like join is a LEFT JOIN so buys nobody
// liked still come back with a zero count.
func (s *DealStore) FetchRows(ctx context.Context, q deals.PageQuery) ([]deals.Row, error) {
	selectSQL := "buys.buy_id, products.product_name, products.product_img, products.original_price, " +
		"products.sale_price, products.discount_percent, buys.skeleton, buys.now_count, buys.deadline, " +
		"COUNT(likes.like_id) AS like_count, " + reviewCountSQL + " AS review_count, "
	selectVars := []interface{}{}
	if q.ViewerID != nil {
		selectSQL += "EXISTS (SELECT 1 FROM likes AS viewer_likes WHERE viewer_likes.buy_id = buys.buy_id AND viewer_likes.user_id = ?) AS is_liked, "
		selectVars = append(selectVars, *q.ViewerID)
	} else {
		selectSQL += "FALSE AS is_liked, "
	}
	selectSQL += q.Group.SQL + " AS " + deals.GroupAlias
	selectVars = append(selectVars, q.Group.Vars...)

	tx := s.DB.WithContext(ctx).
		Table("buys").
		Select(selectSQL, selectVars...).
		Joins("JOIN products ON products.product_id = buys.product_id").
		Joins("LEFT JOIN likes ON likes.buy_id = buys.buy_id")
	for _, f := range q.Filters {
		tx = tx.Where(f)
	}
	if !q.Boundary.IsZero() {
		switch q.Boundary.Stage {
		case deals.StageHaving:
			tx = tx.Group(pageGroupBy).Having(q.Boundary.Expr)
		default:
			tx = tx.Where(q.Boundary.Expr).Group(pageGroupBy)
		}
	} else {
		tx = tx.Group(pageGroupBy)
	}
	for _, o := range q.Order {
		tx = tx.Order(o)
	}

	var rows []deals.Row
	if err := tx.Limit(q.Limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DealStore) FindDetail(ctx context.Context, id deals.ItemID) (deals.DetailRow, error) {
	var row deals.DetailRow
	res := s.DB.WithContext(ctx).
		Table("buys").
		Select("buys.buy_id, buys.title, products.product_name, products.product_img, products.detail_img, "+
			"products.original_price, products.sale_price, products.discount_percent, products.store_name, "+
			"buys.skeleton, buys.now_count, buys.deadline, "+reviewCountSQL+" AS review_count").
		Joins("JOIN products ON products.product_id = buys.product_id").
		Where("buys.buy_id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return deals.DetailRow{}, res.Error
	}
	if res.RowsAffected == 0 {
		return deals.DetailRow{}, deals.ErrItemNotFound
	}
	return row, nil
}

// Catalog implements deals.CatalogFilters.
type Catalog struct {
	DB *gorm.DB
}

func (Catalog) InCategory(name string) clause.Expr {
	return clause.Expr{
		SQL: "buys.buy_id IN (SELECT buy_categories.buy_id FROM buy_categories " +
			"JOIN categories ON categories.category_id = buy_categories.category_id WHERE categories.name = ?)",
		Vars: []interface{}{name},
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MatchesKeyword is a plain substring match on title or tags; % and _ in the keyword match literally.
func (Catalog) MatchesKeyword(keyword string) clause.Expr {
	like := "%" + likeEscaper.Replace(keyword) + "%"
	return clause.Expr{
		SQL:  `(buys.tags LIKE ? ESCAPE '\' OR buys.title LIKE ? ESCAPE '\')`,
		Vars: []interface{}{like, like},
	}
}

func (c Catalog) CategoriesOf(ctx context.Context, id deals.ItemID) ([]string, error) {
	var names []string
	err := c.DB.WithContext(ctx).
		Table("buy_categories").
		Joins("JOIN categories ON categories.category_id = buy_categories.category_id").
		Where("buy_categories.buy_id = ?", id).
		Order("categories.name ASC").
		Pluck("categories.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
