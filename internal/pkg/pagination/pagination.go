package pagination

import (
	"github.com/gofiber/fiber/v2"
)

// DefaultLimit is the page size when the query does not ask for one
const DefaultLimit = 20

// StaffMaxLimit caps the review queue pages handed to officers
const StaffMaxLimit = 50

// Params is a resolved page window
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes where a page sits in the full result
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// GetParams reads ?page and ?limit, clamping limit to [1, maxLimit].
// Malformed values fall back to the defaults.
func GetParams(c *fiber.Ctx, maxLimit int) *Params {
	if maxLimit < 1 {
		maxLimit = DefaultLimit
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetMeta computes page counts for total rows
func GetMeta(params *Params, total int64) *Meta {
	limit := int64(params.Limit)
	totalPages := int((total + limit - 1) / limit)

	return &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Response wraps one page of rows with its meta
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse builds the paged envelope
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{
		Data: data,
		Meta: GetMeta(params, total),
	}
}
