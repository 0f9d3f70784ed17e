package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fruitpos-backend/internal/cache"
	"fruitpos-backend/internal/repository"
)

const (
	cacheKeySummary     = "analytics:summary"
	cacheKeyBestSelling = "analytics:best-selling"
	cacheKeyDailySales  = "analytics:daily-sales:7"
	analyticsCacheTTL   = 30 * time.Second
)

// analyticsCacheKeys lists the keys invalidated when a sale lands.
func analyticsCacheKeys() []string {
	return []string{cacheKeySummary, cacheKeyBestSelling, cacheKeyDailySales}
}

type Summary struct {
	TotalSales       int64 `json:"total_sales"`
	TodaySales       int64 `json:"today_sales"`
	TransactionCount int   `json:"transaction_count"`
}

type BestSellingItem struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalSales    int64  `json:"total_sales"`
}

type DailySalesEntry struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// AnalyticsService derives aggregates by scanning the whole ledger in
// memory per request. The shop's ledger is small enough that this beats
// maintaining incremental rollups.
type AnalyticsService interface {
	Summary(ctx context.Context) (*Summary, error)
	BestSelling(ctx context.Context) ([]BestSellingItem, error)
	DailySales(ctx context.Context, days int) ([]DailySalesEntry, error)
}

type analyticsService struct {
	txRepo repository.TransactionRepository
	cache  *cache.Cache
}

func NewAnalyticsService(txRepo repository.TransactionRepository, c *cache.Cache) AnalyticsService {
	return &analyticsService{txRepo: txRepo, cache: c}
}

func (s *analyticsService) Summary(ctx context.Context) (*Summary, error) {
	var cached Summary
	if hit, err := s.cache.Get(ctx, cacheKeySummary, &cached); err == nil && hit {
		return &cached, nil
	}

	transactions, err := s.txRepo.FindAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &Summary{TransactionCount: len(transactions)}
	for _, tx := range transactions {
		summary.TotalSales += tx.TotalPrice
		if sameDay(tx.Date, now) {
			summary.TodaySales += tx.TotalPrice
		}
	}

	_ = s.cache.Set(ctx, cacheKeySummary, summary, analyticsCacheTTL)
	return summary, nil
}

func (s *analyticsService) BestSelling(ctx context.Context) ([]BestSellingItem, error) {
	var cached []BestSellingItem
	if hit, err := s.cache.Get(ctx, cacheKeyBestSelling, &cached); err == nil && hit {
		return cached, nil
	}

	transactions, err := s.txRepo.FindAll()
	if err != nil {
		return nil, err
	}

	// Group by product name, keeping first-seen order so that quantity
	// ties stay in insertion order after the stable sort.
	index := make(map[string]int)
	items := []BestSellingItem{}
	for _, tx := range transactions {
		i, ok := index[tx.ProductName]
		if !ok {
			i = len(items)
			index[tx.ProductName] = i
			items = append(items, BestSellingItem{ProductName: tx.ProductName})
		}
		items[i].TotalQuantity += tx.Quantity
		items[i].TotalSales += tx.TotalPrice
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].TotalQuantity > items[b].TotalQuantity
	})

	_ = s.cache.Set(ctx, cacheKeyBestSelling, items, analyticsCacheTTL)
	return items, nil
}

// DailySales reports revenue per calendar day for a fixed window ending
// today (inclusive), oldest first. Days without sales report zero.
func (s *analyticsService) DailySales(ctx context.Context, days int) ([]DailySalesEntry, error) {
	if days <= 0 {
		days = 7
	}

	cacheKey := fmt.Sprintf("analytics:daily-sales:%d", days)
	var cached []DailySalesEntry
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	transactions, err := s.txRepo.FindAll()
	if err != nil {
		return nil, err
	}

	today := truncateToDay(time.Now())
	entries := make([]DailySalesEntry, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format("2006-01-02")
		entries[i] = DailySalesEntry{Date: date}
		index[date] = i
	}

	for _, tx := range transactions {
		if i, ok := index[tx.Date.Format("2006-01-02")]; ok {
			entries[i].Total += tx.TotalPrice
		}
	}

	_ = s.cache.Set(ctx, cacheKey, entries, analyticsCacheTTL)
	return entries, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
