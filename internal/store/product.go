package store

import (
	"context"
	"fmt"

	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/model"
)

const productColumns = `id, name, description, price, image_url, category, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Category,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func CreateProduct(ctx context.Context, db database.DB, p *model.Product) (*model.Product, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, image_url, category, stock)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.Name,
		p.Description,
		p.Price,
		p.ImageURL,
		p.Category,
		p.Stock,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("CreateProduct: %w", err)
	}
	return p, nil
}

func GetProductByID(ctx context.Context, db database.DB, productID int) (*model.Product, error) {
	row := db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		productID,
	)
	p := &model.Product{}
	if err := scanProduct(row, p); err != nil {
		return nil, fmt.Errorf("GetProductByID: %w", err)
	}
	return p, nil
}

func ListProducts(ctx context.Context, db database.DB) ([]model.Product, error) {
	rows, err := db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("ListProducts: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	return products, nil
}

func ListFeaturedProducts(ctx context.Context, db database.DB, limit int) ([]model.Product, error) {
	rows, err := db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListFeaturedProducts: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("ListFeaturedProducts: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListFeaturedProducts: %w", err)
	}
	return products, nil
}

// ProductUpdate 部分更新欄位，nil 表示不動
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
	Category    *string
	Stock       *int
}

func UpdateProduct(ctx context.Context, db database.DB, productID int, upd *ProductUpdate) (*model.Product, error) {
	row := db.QueryRow(ctx,
		`UPDATE products SET
		    name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price       = COALESCE($4, price),
		    image_url   = COALESCE($5, image_url),
		    category    = COALESCE($6, category),
		    stock       = COALESCE($7, stock),
		    updated_at  = NOW()
		 WHERE id = $1
		 RETURNING `+productColumns,
		productID,
		upd.Name,
		upd.Description,
		upd.Price,
		upd.ImageURL,
		upd.Category,
		upd.Stock,
	)
	p := &model.Product{}
	if err := scanProduct(row, p); err != nil {
		return nil, fmt.Errorf("UpdateProduct: %w", err)
	}
	return p, nil
}

func DeleteProduct(ctx context.Context, db database.DB, productID int) (bool, error) {
	tag, err := db.Exec(ctx,
		`DELETE FROM products WHERE id = $1`,
		productID,
	)
	if err != nil {
		return false, fmt.Errorf("DeleteProduct: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementProductStock 以單一條件更新扣庫存，stock >= quantity 才會命中。
// 未命中時回傳 ErrInsufficientStock，庫存不可能變負。
func DecrementProductStock(ctx context.Context, db database.DB, productID, quantity int) error {
	tag, err := db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW()
		 WHERE id = $1 AND stock >= $2`,
		productID,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("DecrementProductStock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}
