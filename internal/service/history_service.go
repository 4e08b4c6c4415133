package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 20
	defaultMovementDays = 7
	maxMovementDays     = 366
	historyDateLayout   = "2006-01-02"
)

// HistoryQuery carries the raw ledger filters as received from the client.
type HistoryQuery struct {
	Page       int
	Limit      int
	ProductID  string
	ChangeType string
	UserID     string
	Date       string
}

// HistoryFilters echoes the applied filters; absent ones are null.
type HistoryFilters struct {
	ProductID  *string `json:"productId"`
	ChangeType *string `json:"changeType"`
	Date       *string `json:"date"`
	UserID     *string `json:"userId"`
}

type HistoryPage struct {
	History    []model.InventoryHistory
	Pagination Pagination
	Stats      repository.HistoryStats
	Filters    HistoryFilters
}

type HistoryService interface {
	Query(ctx context.Context, query HistoryQuery) (*HistoryPage, error)
	StockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
}

type historyService struct {
	historyRepo repository.HistoryRepository
	location    *time.Location
	now         func() time.Time
}

// NewHistoryService interprets date filters as calendar days in loc.
func NewHistoryService(hRepo repository.HistoryRepository, loc *time.Location) HistoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &historyService{historyRepo: hRepo, location: loc, now: time.Now}
}

func (s *historyService) Query(ctx context.Context, query HistoryQuery) (*HistoryPage, error) {
	page, err := pageFor(query.Page, query.Limit, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.historyRepo.Query(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	stats, err := s.historyRepo.Stats(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		History:    entries,
		Pagination: newPagination(page, total),
		Stats:      *stats,
		Filters: HistoryFilters{
			ProductID:  optional(query.ProductID),
			ChangeType: optional(query.ChangeType),
			Date:       optional(query.Date),
			UserID:     optional(query.UserID),
		},
	}, nil
}

// StockMovement sums inbound and outbound quantities per local calendar day
// over the last days, today included.
func (s *historyService) StockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days == 0 {
		days = defaultMovementDays
	}
	if days < 1 || days > maxMovementDays {
		return nil, invalid("days", "must be between 1 and 366")
	}

	today := s.now().In(s.location)
	endDate := time.Date(today.Year(), today.Month(), today.Day()+1, 0, 0, 0, 0, s.location)
	startDate := endDate.AddDate(0, 0, -days)

	return s.historyRepo.GetStockMovement(ctx, startDate, endDate, s.location)
}

func (s *historyService) buildFilter(query HistoryQuery) (repository.HistoryFilter, error) {
	var filter repository.HistoryFilter

	if query.ProductID != "" {
		id, err := uuid.Parse(query.ProductID)
		if err != nil {
			return filter, invalid("productId", "invalid product ID")
		}
		filter.ProductID = &id
	}
	if query.UserID != "" {
		id, err := uuid.Parse(query.UserID)
		if err != nil {
			return filter, invalid("userId", "invalid user ID")
		}
		filter.UserID = &id
	}

	switch ct := model.ChangeType(query.ChangeType); ct {
	case "":
	case model.ChangeIncrease, model.ChangeDecrease, model.ChangeAdjustment:
		filter.ChangeType = ct
	default:
		return filter, invalid("changeType", "invalid change type")
	}

	if query.Date != "" {
		from, err := s.startOfDay(query.Date)
		if err != nil {
			return filter, err
		}
		to := from.AddDate(0, 0, 1)
		filter.From, filter.To = &from, &to
	}

	return filter, nil
}

// startOfDay accepts YYYY-MM-DD or an RFC3339 instant and returns midnight
// of that calendar day in the reference location.
func (s *historyService) startOfDay(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(historyDateLayout, raw, s.location)
	if err != nil {
		instant, rfcErr := time.Parse(time.RFC3339, raw)
		if rfcErr != nil {
			return time.Time{}, invalid("date", "invalid date")
		}
		day = instant.In(s.location)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location), nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
