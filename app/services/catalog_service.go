package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/cache"
	"github.com/shashiranjanraj/sofreh/pkg/collection"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

const (
	cacheKeyRestaurants = "catalog:restaurants"
	cacheKeyFoods       = "catalog:foods"
)

// CatalogService reads the public restaurant and food listings.
// Results are cached in Redis for a short TTL; with Redis down every call
// degrades to a direct fetch.
type CatalogService struct {
	TTL time.Duration
}

func NewCatalogService() *CatalogService {
	return &CatalogService{TTL: 5 * time.Minute}
}

// Restaurants returns the public restaurant listing.
func (s *CatalogService) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if cache.Get(cacheKeyRestaurants, &out) {
		return out, nil
	}

	resp, err := gateway.Send(httpx.Get(gateway.URL("/restaurants-public/")).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("catalog: restaurants: %w", err)
	}
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("catalog: restaurants: %w", err)
	}

	if err := cache.Set(cacheKeyRestaurants, out, s.TTL); err != nil {
		logger.Debug("catalog: cache write skipped", "error", err)
	}
	return out, nil
}

// Foods returns the full food listing across restaurants.
func (s *CatalogService) Foods(ctx context.Context) ([]models.Food, error) {
	var out []models.Food
	if cache.Get(cacheKeyFoods, &out) {
		return out, nil
	}

	resp, err := gateway.Send(httpx.Get(gateway.URL("/foods/")).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("catalog: foods: %w", err)
	}
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("catalog: foods: %w", err)
	}

	if err := cache.Set(cacheKeyFoods, out, s.TTL); err != nil {
		logger.Debug("catalog: cache write skipped", "error", err)
	}
	return out, nil
}

// Food looks up one food by id. A missing id is not an error.
func (s *CatalogService) Food(ctx context.Context, id int) (models.Food, bool, error) {
	foods, err := s.Foods(ctx)
	if err != nil {
		return models.Food{}, false, err
	}
	f, ok := collection.First(foods, func(f models.Food) bool { return f.ID == id })
	return f, ok, nil
}

// Restaurant looks up one restaurant by id. A missing id is not an error.
func (s *CatalogService) Restaurant(ctx context.Context, id int) (models.Restaurant, bool, error) {
	restaurants, err := s.Restaurants(ctx)
	if err != nil {
		return models.Restaurant{}, false, err
	}
	r, ok := collection.First(restaurants, func(r models.Restaurant) bool { return r.ID == id })
	return r, ok, nil
}
