package store

import (
	"context"
	"fmt"

	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/model"
)

func CreateOrder(ctx context.Context, db database.DB, o *model.Order) (*model.Order, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateOrder: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, total_amount, address, city, postal_code, country, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, status, created_at, updated_at`,
		o.UserID,
		o.TotalAmount,
		o.ShippingInfo.Address,
		o.ShippingInfo.City,
		o.ShippingInfo.PostalCode,
		o.ShippingInfo.Country,
		model.OrderStatusPending,
	)
	if err := row.Scan(&o.ID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, fmt.Errorf("CreateOrder: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		row := tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.Price,
		)
		if err := row.Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("CreateOrder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("CreateOrder: %w", err)
	}
	return o, nil
}

func GetOrderByID(ctx context.Context, db database.DB, orderID int) (*model.Order, error) {
	row := db.QueryRow(ctx,
		`SELECT id, user_id, total_amount, address, city, postal_code, country, status, created_at, updated_at
		 FROM orders WHERE id = $1`,
		orderID,
	)
	o := &model.Order{}
	if err := scanOrder(row, o); err != nil {
		return nil, fmt.Errorf("GetOrderByID: %w", err)
	}

	items, err := listOrderItems(ctx, db, []int{o.ID})
	if err != nil {
		return nil, fmt.Errorf("GetOrderByID: %w", err)
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return o, nil
}

func ListOrdersByUser(ctx context.Context, db database.DB, userID int) ([]model.Order, error) {
	rows, err := db.Query(ctx,
		`SELECT id, user_id, total_amount, address, city, postal_code, country, status, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOrdersByUser: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []int{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("ListOrdersByUser: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListOrdersByUser: %w", err)
	}

	items, err := listOrderItems(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("ListOrdersByUser: %w", err)
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}
	return orders, nil
}

// OrderDetail 管理端列表用的展開資料。
// User 為 nil 表示下單使用者已不存在；Products 依商品 id 查表，可能缺漏。
type OrderDetail struct {
	Order    model.Order
	User     *model.User
	Products map[int]*model.Product
}

func ListAllOrders(ctx context.Context, db database.DB) ([]OrderDetail, error) {
	rows, err := db.Query(ctx,
		`SELECT o.id, o.user_id, o.total_amount, o.address, o.city, o.postal_code, o.country,
		        o.status, o.created_at, o.updated_at,
		        u.id, u.name, u.email
		 FROM orders o
		 LEFT JOIN users u ON u.id = o.user_id
		 ORDER BY o.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAllOrders: %w", err)
	}
	defer rows.Close()

	details := []OrderDetail{}
	ids := []int{}
	for rows.Next() {
		var d OrderDetail
		var userID *int
		var userName, userEmail *string
		if err := rows.Scan(
			&d.Order.ID,
			&d.Order.UserID,
			&d.Order.TotalAmount,
			&d.Order.ShippingInfo.Address,
			&d.Order.ShippingInfo.City,
			&d.Order.ShippingInfo.PostalCode,
			&d.Order.ShippingInfo.Country,
			&d.Order.Status,
			&d.Order.CreatedAt,
			&d.Order.UpdatedAt,
			&userID,
			&userName,
			&userEmail,
		); err != nil {
			return nil, fmt.Errorf("ListAllOrders: %w", err)
		}
		if userID != nil {
			d.User = &model.User{ID: *userID, Name: *userName, Email: *userEmail}
		}
		details = append(details, d)
		ids = append(ids, d.Order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAllOrders: %w", err)
	}

	items, err := listOrderItems(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("ListAllOrders: %w", err)
	}

	productIDs := []int{}
	seen := map[int]bool{}
	for i := range details {
		details[i].Order.Items = items[details[i].Order.ID]
		if details[i].Order.Items == nil {
			details[i].Order.Items = []model.OrderItem{}
		}
		for _, item := range details[i].Order.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	products, err := mapProductsByID(ctx, db, productIDs)
	if err != nil {
		return nil, fmt.Errorf("ListAllOrders: %w", err)
	}
	for i := range details {
		details[i].Products = products
	}
	return details, nil
}

func UpdateOrderStatus(ctx context.Context, db database.DB, orderID int, status string) error {
	tag, err := db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		orderID,
		status,
	)
	if err != nil {
		return fmt.Errorf("UpdateOrderStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateOrderStatus: order %d not found", orderID)
	}
	return nil
}

func scanOrder(row interface{ Scan(dest ...any) error }, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.ShippingInfo.Address,
		&o.ShippingInfo.City,
		&o.ShippingInfo.PostalCode,
		&o.ShippingInfo.Country,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func listOrderItems(ctx context.Context, db database.DB, orderIDs []int) (map[int][]model.OrderItem, error) {
	result := map[int][]model.OrderItem{}
	if len(orderIDs) == 0 {
		return result, nil
	}

	rows, err := db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		orderIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	return result, rows.Err()
}

func mapProductsByID(ctx context.Context, db database.DB, productIDs []int) (map[int]*model.Product, error) {
	result := map[int]*model.Product{}
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`,
		productIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p := &model.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}
