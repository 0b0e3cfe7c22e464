// Package farmers implements member-record queries over the backend
// /Farmers surface: client-side paging and filtering of the full list,
// CRUD pass-throughs, and best-effort enrichment reads.
package farmers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/apierr"
	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/transport"
)

// Service exposes farmer queries. Stateless; every operation is a pure
// function of its inputs plus the ambient session held by the transport's
// credential source.
type Service struct {
	transport *transport.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new farmer service instance.
func NewService(tc *transport.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{transport: tc, logger: logger, now: time.Now}
}

// ListAll fetches the complete farmer set from the backend.
func (s *Service) ListAll(ctx context.Context) ([]models.Farmer, error) {
	var all []models.Farmer
	if err := s.transport.Get(ctx, "/Farmers", nil, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// List fetches the full farmer set and applies, in order: a case-insensitive
// substring filter across name, code, village and contact number; an exact
// IsActive filter; then 1-indexed pagination. The backend exposes no
// paginated farmer endpoint yet, so paging happens client-side over the
// fetched set — interim behavior that does not scale past small co-ops.
func (s *Service) List(ctx context.Context, params models.FarmerSearchParams) (models.PagedResult[models.Farmer], error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return models.PagedResult[models.Farmer]{}, err
	}

	filtered := Filter(all, params)
	return models.Paginate(filtered, params.Page, params.PageSize), nil
}

// Filter applies the search and activity filters without paging. Pure:
// the input order is preserved and the input slice is not mutated.
func Filter(all []models.Farmer, params models.FarmerSearchParams) []models.Farmer {
	filtered := make([]models.Farmer, 0, len(all))

	search := strings.ToLower(params.Search)
	for _, f := range all {
		if search != "" && !matchesSearch(f, search) {
			continue
		}
		if params.IsActive != nil && f.IsActive != *params.IsActive {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

func matchesSearch(f models.Farmer, search string) bool {
	return strings.Contains(strings.ToLower(f.FullName), search) ||
		strings.Contains(strings.ToLower(f.FarmerCode), search) ||
		strings.Contains(strings.ToLower(f.Village), search) ||
		strings.Contains(f.ContactNumber, search)
}

// Get fetches one farmer by id.
func (s *Service) Get(ctx context.Context, id int) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.transport.Get(ctx, fmt.Sprintf("/Farmers/%d", id), nil, &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

// Create registers a new farmer. When no farmer code is supplied one is
// synthesized from the current time; this is a fallback identity, not a
// uniqueness guarantee — the backend stays the authority and may reject
// collisions.
func (s *Service) Create(ctx context.Context, data models.CreateFarmer) (*models.Farmer, error) {
	if data.FullName == "" {
		return nil, &apierr.ValidationError{Field: "fullName", Reason: "is required"}
	}
	if data.FarmerCode == "" {
		data.FarmerCode = s.generateCode()
	}

	var farmer models.Farmer
	if err := s.transport.Post(ctx, "/Farmers", data, &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

// generateCode derives a fallback farmer code from the current time in
// milliseconds, keeping the last six digits.
func (s *Service) generateCode() string {
	millis := fmt.Sprintf("%d", s.now().UnixMilli())
	return "FARM" + millis[len(millis)-6:]
}

// Update forwards a partial update. Pass-through.
func (s *Service) Update(ctx context.Context, id int, data models.UpdateFarmer) error {
	return s.transport.Put(ctx, fmt.Sprintf("/Farmers/%d", id), data, nil)
}

// Delete removes (soft-deletes) a farmer. Pass-through.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.transport.Delete(ctx, fmt.Sprintf("/Farmers/%d", id))
}

// Search runs the backend's server-side search. Pass-through.
func (s *Service) Search(ctx context.Context, term string) ([]models.Farmer, error) {
	var results []models.Farmer
	err := s.transport.Get(ctx, "/Farmers/search", map[string]string{"searchTerm": term}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Collections fetches a farmer's milk collections over a date range.
// Best-effort enrichment: on failure it logs and returns an empty slice so
// the caller's primary flow is never aborted by this read.
func (s *Service) Collections(ctx context.Context, farmerID int, fromDate, toDate string) []models.MilkCollection {
	if fromDate == "" {
		fromDate = s.now().Format(time.DateOnly)
	}
	if toDate == "" {
		toDate = s.now().Format(time.DateOnly)
	}

	var collections []models.MilkCollection
	err := s.transport.Get(ctx, fmt.Sprintf("/Reports/farmer-collections/%d", farmerID),
		map[string]string{"fromDate": fromDate, "toDate": toDate}, &collections)
	if err != nil {
		s.logger.Warn("farmer collections enrichment unavailable",
			zap.Int("farmer_id", farmerID), zap.Error(err))
		return nil
	}
	return collections
}

// PaymentSummary fetches a farmer's payment rollup. Best-effort enrichment:
// on failure it logs and reports absent instead of propagating the error.
func (s *Service) PaymentSummary(ctx context.Context, farmerID int, fromDate, toDate string) (*models.FarmerPaymentSummary, bool) {
	var summary models.FarmerPaymentSummary
	err := s.transport.Get(ctx, "/Reports/farmer-payment-summary", map[string]string{
		"farmerId": fmt.Sprintf("%d", farmerID),
		"fromDate": fromDate,
		"toDate":   toDate,
	}, &summary)
	if err != nil {
		s.logger.Warn("payment summary enrichment unavailable",
			zap.Int("farmer_id", farmerID), zap.Error(err))
		return nil, false
	}
	return &summary, true
}
