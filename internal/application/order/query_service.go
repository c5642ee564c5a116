package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductDisplay is the display payload used to backfill order lines that
// predate display snapshotting
type ProductDisplay struct {
	Name     string
	ImageURL string
}

// DisplayLookup resolves product display info for receipt enrichment
type DisplayLookup interface {
	Lookup(ctx context.Context, productID uuid.UUID) (ProductDisplay, error)
}

// QueryService serves order reads: customer history, order detail and the
// admin listing. Reads go through the repository directly, outside any
// transaction scope.
type QueryService struct {
	orderRepo     order.Repository
	displayLookup DisplayLookup
}

// NewQueryService creates a new QueryService
func NewQueryService(orderRepo order.Repository) *QueryService {
	return &QueryService{orderRepo: orderRepo}
}

// WithDisplayLookup enables receipt enrichment for order lines whose display
// snapshot is missing
func (s *QueryService) WithDisplayLookup(lookup DisplayLookup) *QueryService {
	s.displayLookup = lookup
	return s
}

// ListByUser returns the user's orders, newest first
func (s *QueryService) ListByUser(ctx context.Context, userID uuid.UUID) ([]ListItemResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0 // full history, no paging

	orders, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ListItemResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToListItemResponse(&orders[i]))
	}
	return items, nil
}

// GetByID returns a single order with its items.
// A customer may only read their own orders; admins pass isAdmin=true and
// may read any order. Someone else's order reads as not found rather than
// forbidden, so order IDs leak nothing about other customers.
func (s *QueryService) GetByID(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && !o.BelongsTo(requesterID) {
		return nil, shared.ErrNotFound
	}

	response := ToResponse(o)
	s.enrichItems(ctx, &response)
	return &response, nil
}

// enrichItems backfills display fields on lines saved before display
// snapshotting existed. A failed lookup leaves the line as stored.
func (s *QueryService) enrichItems(ctx context.Context, resp *Response) {
	if s.displayLookup == nil {
		return
	}
	for i := range resp.Items {
		item := &resp.Items[i]
		if item.ProductName != "" && item.ImageURL != "" {
			continue
		}
		display, err := s.displayLookup.Lookup(ctx, item.ProductID)
		if err != nil {
			continue
		}
		if item.ProductName == "" {
			item.ProductName = display.Name
		}
		if item.ImageURL == "" {
			item.ImageURL = display.ImageURL
		}
	}
}

// AdminList returns a paginated page of all orders, optionally filtered by
// status, newest first.
func (s *QueryService) AdminList(ctx context.Context, req AdminListFilter) (*shared.Paginated[ListItemResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.Limit > 0 {
		filter.PageSize = req.Limit
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Status != "" {
		status := order.Status(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status: "+req.Status)
		}
		filter.Filters["status"] = status
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ListItemResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToListItemResponse(&orders[i]))
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
