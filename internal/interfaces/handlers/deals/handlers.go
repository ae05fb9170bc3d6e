package deals

import (
	"context"
	"errors"
	"strconv"

	authsvc "dutchie-backend/internal/application/auth"
	dealsvc "dutchie-backend/internal/application/deals"
	"dutchie-backend/internal/middleware"
	"dutchie-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// DealService is the part of dealsvc.Service the handlers call.
type DealService interface {
	FetchPage(ctx context.Context, req dealsvc.Request) (*dealsvc.Page, error)
	GetDeal(ctx context.Context, id dealsvc.ItemID, viewer *dealsvc.UserID) (*dealsvc.DealDetail, error)
	ToggleLike(ctx context.Context, viewer dealsvc.UserID, id dealsvc.ItemID) (bool, error)
}

// Handlers holds the deal service and listing defaults.
type Handlers struct {
	Service      DealService
	DefaultLimit int
	BrowsePolicy dealsvc.OpenPolicy
	SearchPolicy dealsvc.OpenPolicy
}

const defaultFilter = "newest"

var (
	errBadCursor = errors.New("cursor must be a deal id")
	errBadLimit  = errors.New("limit must be a positive number")
	errBadBuyID  = errors.New("buyId must be a deal id")
)

// List GET /api/v1/commerce/list?filter&category&end&cursor&limit
// end=0 keeps only open deals.
func (h *Handlers) List(c *fiber.Ctx) error {
	req, err := h.pageRequest(c, h.BrowsePolicy)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	req.Category = c.Query("category")
	return h.page(c, req)
}

// Search GET /api/v1/search/commerce?filter&keyword&end&cursor&limit
func (h *Handlers) Search(c *fiber.Ctx) error {
	req, err := h.pageRequest(c, h.SearchPolicy)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	req.Keyword = c.Query("keyword")
	return h.page(c, req)
}

// Detail GET /api/v1/commerce/:buyId
func (h *Handlers) Detail(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("buyId"), 10, 64)
	if err != nil || id == 0 {
		return response.Error(c, errBadBuyID.Error(), fiber.StatusBadRequest, nil)
	}
	detail, err := h.Service.GetDeal(c.Context(), id, viewer(c))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Deal retrieved", detail, nil)
}

// LikeRequest is the body of a like toggle.
type LikeRequest struct {
	BuyID uint64 `json:"buyId"`
}

// Like POST /api/v1/commerce/like. Requires a session user.
func (h *Handlers) Like(c *fiber.Ctx) error {
	v := viewer(c)
	if v == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req LikeRequest
	if err := c.BodyParser(&req); err != nil || req.BuyID == 0 {
		return response.Error(c, errBadBuyID.Error(), fiber.StatusBadRequest, nil)
	}
	liked, err := h.Service.ToggleLike(c.Context(), *v, req.BuyID)
	if err != nil {
		return h.fail(c, err)
	}
	msg := "Like removed"
	if liked {
		msg = "Like added"
	}
	return response.Success(c, msg, fiber.Map{"buyId": req.BuyID, "isLiked": liked}, nil)
}

func (h *Handlers) pageRequest(c *fiber.Ctx, policy dealsvc.OpenPolicy) (dealsvc.Request, error) {
	req := dealsvc.Request{
		Filter:     c.Query("filter", defaultFilter),
		ActiveOnly: c.Query("end") == "0",
		Limit:      h.DefaultLimit,
		ViewerID:   viewer(c),
		Policy:     policy,
	}
	if raw := c.Query("cursor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return req, errBadCursor
		}
		req.Cursor = &id
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, errBadLimit
		}
		req.Limit = n
	}
	return req, nil
}

func (h *Handlers) page(c *fiber.Ctx, req dealsvc.Request) error {
	page, err := h.Service.FetchPage(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Deals retrieved", page, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	var invalid *dealsvc.InvalidFilterError
	switch {
	case errors.As(err, &invalid), errors.Is(err, dealsvc.ErrInvalidLimit):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, dealsvc.ErrDealNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("deals: storage timeout")
		return response.Error(c, "Request timed out", fiber.StatusServiceUnavailable, nil)
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("deals: storage failure")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func viewer(c *fiber.Ctx) *dealsvc.UserID {
	return authsvc.ViewerID(middleware.GetUser(c))
}
