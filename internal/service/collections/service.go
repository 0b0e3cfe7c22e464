// Package collections implements milk-collection queries over the backend
// /milkcollection surface, plus the local rate and amount calculations.
package collections

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/apierr"
	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/transport"
)

// Service exposes milk-collection reads and writes. Stateless across calls.
type Service struct {
	transport *transport.Client
	logger    *zap.Logger
}

// NewService wires a new collection service instance.
func NewService(tc *transport.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{transport: tc, logger: logger}
}

// Record saves one collection. Preconditions are checked before any network
// call; failures there surface as ValidationError.
func (s *Service) Record(ctx context.Context, c models.MilkCollection) (*models.MilkCollection, error) {
	if err := validateCollection(c); err != nil {
		return nil, err
	}

	var saved models.MilkCollection
	if err := s.transport.Post(ctx, "/milkcollection/daily-collection", c, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// RecordBulk saves many collections in one call. Every entry must pass the
// same preconditions as Record.
func (s *Service) RecordBulk(ctx context.Context, cs []models.MilkCollection) ([]models.MilkCollection, error) {
	if len(cs) == 0 {
		return nil, &apierr.ValidationError{Field: "collections", Reason: "must not be empty"}
	}
	for i, c := range cs {
		if err := validateCollection(c); err != nil {
			return nil, fmt.Errorf("collection %d: %w", i, err)
		}
	}

	var saved []models.MilkCollection
	if err := s.transport.Post(ctx, "/milkcollection/bulk-collection", cs, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func validateCollection(c models.MilkCollection) error {
	switch {
	case c.FarmerID == 0:
		return &apierr.ValidationError{Field: "farmerID", Reason: "is required"}
	case c.CenterID == 0:
		return &apierr.ValidationError{Field: "centerID", Reason: "is required"}
	case c.CollectionDate == "":
		return &apierr.ValidationError{Field: "collectionDate", Reason: "is required"}
	case c.Quantity <= 0:
		return &apierr.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

// DailyReport fetches all collections for a date, optionally scoped to one
// center (centerID 0 means all centers). Pass-through.
func (s *Service) DailyReport(ctx context.Context, date string, centerID int) ([]models.MilkCollection, error) {
	query := map[string]string{"date": date}
	if centerID != 0 {
		query["centerId"] = fmt.Sprintf("%d", centerID)
	}

	var report []models.MilkCollection
	if err := s.transport.Get(ctx, "/milkcollection/daily-report", query, &report); err != nil {
		return nil, err
	}
	return report, nil
}

// Summary fetches the server-side paginated collection summary.
// Pass-through; the backend owns filtering and paging here.
func (s *Service) Summary(ctx context.Context, params models.CollectionSearchParams) (models.PagedResult[models.MilkCollection], error) {
	var page models.PagedResult[models.MilkCollection]
	err := s.transport.Get(ctx, "/milkcollection/summary", searchQuery(params), &page)
	if err != nil {
		return models.PagedResult[models.MilkCollection]{}, err
	}
	return page, nil
}

// FarmerSummary fetches per-date rollups for one farmer. Pass-through.
func (s *Service) FarmerSummary(ctx context.Context, farmerID int, fromDate, toDate string) ([]models.CollectionSummary, error) {
	var summaries []models.CollectionSummary
	err := s.transport.Get(ctx, fmt.Sprintf("/milkcollection/farmer-summary/%d", farmerID),
		map[string]string{"fromDate": fromDate, "toDate": toDate}, &summaries)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// CenterWise fetches the per-center rollup for a date. Pass-through.
func (s *Service) CenterWise(ctx context.Context, date string) ([]models.CenterCollection, error) {
	var centers []models.CenterCollection
	err := s.transport.Get(ctx, "/milkcollection/center-wise", map[string]string{"date": date}, &centers)
	if err != nil {
		return nil, err
	}
	return centers, nil
}

// Update forwards a partial update. Pass-through.
func (s *Service) Update(ctx context.Context, id int, c models.MilkCollection) (*models.MilkCollection, error) {
	var updated models.MilkCollection
	if err := s.transport.Put(ctx, fmt.Sprintf("/milkcollection/%d", id), c, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a collection. Pass-through.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/milkcollection/%d", id))
}

// Get fetches one collection by id.
func (s *Service) Get(ctx context.Context, id int) (*models.MilkCollection, error) {
	var c models.MilkCollection
	if err := s.transport.Get(ctx, fmt.Sprintf("/milkcollection/%d", id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CalculateRate asks the backend for the authoritative per-liter rate.
// Callers should confirm through here before treating a locally computed
// rate as final.
func (s *Service) CalculateRate(ctx context.Context, fatPercentage, snfPercentage float64) (float64, error) {
	payload := map[string]float64{
		"fatPercentage": fatPercentage,
		"snfPercentage": snfPercentage,
	}

	var result struct {
		RatePerLiter float64 `json:"ratePerLiter"`
	}
	if err := s.transport.Post(ctx, "/milkcollection/calculate-rate", payload, &result); err != nil {
		return 0, err
	}
	return result.RatePerLiter, nil
}

// Receipt downloads the printable receipt for a collection. The payload is
// opaque binary and is returned undecoded.
func (s *Service) Receipt(ctx context.Context, id int) ([]byte, error) {
	return s.transport.Download(ctx, fmt.Sprintf("/milkcollection/%d/receipt", id), nil)
}

// Export downloads the spreadsheet export for the filtered collection set.
// Opaque binary, returned undecoded.
func (s *Service) Export(ctx context.Context, params models.CollectionSearchParams) ([]byte, error) {
	return s.transport.Download(ctx, "/milkcollection/export", searchQuery(params))
}

// MarkPaid settles a collection. The payment date is required.
func (s *Service) MarkPaid(ctx context.Context, id int, paymentDate string) error {
	if paymentDate == "" {
		return &apierr.ValidationError{Field: "paymentDate", Reason: "is required"}
	}
	payload := map[string]string{"paymentDate": paymentDate}
	return s.transport.Post(ctx, fmt.Sprintf("/milkcollection/%d/mark-paid", id), payload, nil)
}

func searchQuery(params models.CollectionSearchParams) map[string]string {
	query := make(map[string]string)
	if params.FromDate != "" {
		query["fromDate"] = params.FromDate
	}
	if params.ToDate != "" {
		query["toDate"] = params.ToDate
	}
	if params.CenterID != 0 {
		query["centerId"] = fmt.Sprintf("%d", params.CenterID)
	}
	if params.FarmerID != 0 {
		query["farmerId"] = fmt.Sprintf("%d", params.FarmerID)
	}
	if params.Shift != "" {
		query["shift"] = string(params.Shift)
	}
	if params.PaymentStatus != "" {
		query["paymentStatus"] = string(params.PaymentStatus)
	}
	if params.Page > 0 {
		query["page"] = fmt.Sprintf("%d", params.Page)
	}
	if params.PageSize > 0 {
		query["pageSize"] = fmt.Sprintf("%d", params.PageSize)
	}
	if params.SortBy != "" {
		query["sortBy"] = params.SortBy
	}
	return query
}
