package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Sort holds a validated sort column and direction.
type Sort struct {
	By    string
	Order string // ASC or DESC
}

// ParseSort reads sort_by/sort_order and constrains sort_by to the allowed
// columns, falling back to the first allowed column descending.
func ParseSort(c *gin.Context, allowed ...string) Sort {
	sortBy := c.Query("sort_by")
	ok := false
	for _, col := range allowed {
		if sortBy == col {
			ok = true
			break
		}
	}
	if !ok && len(allowed) > 0 {
		sortBy = allowed[0]
	}

	order := strings.ToUpper(c.DefaultQuery("sort_order", "DESC"))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return Sort{By: sortBy, Order: order}
}
