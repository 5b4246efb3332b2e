package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

const (
	productCacheKey = "market:products"
	productCacheTTL = 5 * time.Minute
)

type MarketStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) error
	EnsureCart(ctx context.Context, userID string) (models.Cart, error)
	UpsertItem(ctx context.Context, cartID string, productID string, qty int) (models.CartItem, error)
	ListLines(ctx context.Context, cartID string) ([]models.CartLine, error)
	DeleteItem(ctx context.Context, cartID string, itemID string) error
}

type MarketService struct {
	store MarketStore
	cache *redis.Client
	log   zerolog.Logger
}

func NewMarketService(store MarketStore, cache *redis.Client, log zerolog.Logger) *MarketService {
	return &MarketService{store: store, cache: cache, log: log}
}

// Products serves the catalog from redis when possible; the database is the
// source of truth and cache failures only cost latency.
func (s *MarketService) Products(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, productCacheKey).Bytes()
		if err == nil {
			var products []models.Product
			if err := json.Unmarshal(cached, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, productCacheKey, payload, productCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("product cache write failed")
			}
		}
	}

	return products, nil
}

type ProductInput struct {
	Name        string
	Description string
	PriceInINR  int64
	ImageURL    string
}

func (s *MarketService) CreateProduct(ctx context.Context, input ProductInput) (models.Product, error) {
	if input.Name == "" || input.PriceInINR <= 0 {
		return models.Product{}, ErrValidation
	}

	product := models.Product{
		ID:          ids.New(),
		Name:        input.Name,
		Description: input.Description,
		PriceInINR:  input.PriceInINR,
		ImageURL:    input.ImageURL,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return models.Product{}, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, productCacheKey).Err(); err != nil {
			s.log.Warn().Err(err).Msg("product cache invalidation failed")
		}
	}

	return product, nil
}

type CartView struct {
	CartID string
	Lines  []models.CartLine
	Total  int64
}

func (s *MarketService) GetCart(ctx context.Context, userID string) (CartView, error) {
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	lines, err := s.store.ListLines(ctx, cart.ID)
	if err != nil {
		return CartView{}, err
	}

	var total int64
	for _, line := range lines {
		total += int64(line.Item.Qty) * line.Product.PriceInINR
	}

	return CartView{CartID: cart.ID, Lines: lines, Total: total}, nil
}

func (s *MarketService) UpsertCartItem(ctx context.Context, userID string, productID string, qty int) (models.CartItem, error) {
	if productID == "" || qty < 1 || qty > 999 {
		return models.CartItem{}, ErrValidation
	}

	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return models.CartItem{}, err
	}

	return s.store.UpsertItem(ctx, cart.ID, productID, qty)
}

func (s *MarketService) RemoveCartItem(ctx context.Context, userID string, itemID string) error {
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
