package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type MarketRepository struct {
	pool *pgxpool.Pool
}

func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

func (r *MarketRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	const query = `
		SELECT id, name, description, price_in_inr, image_url, created_at
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceInINR, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *MarketRepository) CreateProduct(ctx context.Context, product models.Product) error {
	const query = `
		INSERT INTO products (id, name, description, price_in_inr, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.PriceInINR,
		product.ImageURL,
	)
	return err
}

// EnsureCart returns the user's cart, creating it on first use.
func (r *MarketRepository) EnsureCart(ctx context.Context, userID string) (models.Cart, error) {
	const query = `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at
	`

	row := r.pool.QueryRow(ctx, query, ids.New(), userID)
	var cart models.Cart
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func (r *MarketRepository) UpsertItem(ctx context.Context, cartID string, productID string, qty int) (models.CartItem, error) {
	const query = `
		INSERT INTO cart_items (id, cart_id, product_id, qty, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE SET qty = EXCLUDED.qty
		RETURNING id, cart_id, product_id, qty, created_at
	`

	row := r.pool.QueryRow(ctx, query, ids.New(), cartID, productID, qty)
	var item models.CartItem
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Qty, &item.CreatedAt); err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

func (r *MarketRepository) ListLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	const query = `
		SELECT i.id, i.cart_id, i.product_id, i.qty, i.created_at,
		       p.id, p.name, p.description, p.price_in_inr, p.image_url, p.created_at
		FROM cart_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.cart_id = $1
		ORDER BY i.created_at
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(
			&line.Item.ID,
			&line.Item.CartID,
			&line.Item.ProductID,
			&line.Item.Qty,
			&line.Item.CreatedAt,
			&line.Product.ID,
			&line.Product.Name,
			&line.Product.Description,
			&line.Product.PriceInINR,
			&line.Product.ImageURL,
			&line.Product.CreatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// DeleteItem removes an item only if it belongs to the given cart.
func (r *MarketRepository) DeleteItem(ctx context.Context, cartID string, itemID string) error {
	const query = `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`

	cmd, err := r.pool.Exec(ctx, query, itemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}
