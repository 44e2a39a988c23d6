// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageSize is fixed; the dashboards never ask for a different one, and a
// constant keeps totalPages reproducible for a given dataset.
const PageSize = 10

type PaginationParams struct {
	Page   int    `json:"page"`
	Sort   string `json:"sort"`
	Search string `json:"search"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	sort := c.DefaultQuery("sort", "desc")
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if sort != "asc" && sort != "desc" {
		sort = "desc"
	}

	return PaginationParams{
		Page:   page,
		Sort:   sort,
		Search: search,
	}
}

func ApplyPagination(db *gorm.DB, page int) *gorm.DB {
	offset := (page - 1) * PageSize
	return db.Offset(offset).Limit(PageSize)
}

// ApplySort orders by creation time in the requested direction. The id
// tie-break makes the order total, so identical timestamps cannot swap rows
// between two runs of the same query.
func ApplySort(db *gorm.DB, sort string) *gorm.DB {
	direction := "DESC"
	if sort == "asc" {
		direction = "ASC"
	}
	return db.Order("created_at " + direction).Order("id ASC")
}

func NewPagination(page int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(PageSize)))

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
	}
}

func SetPaginationHeaders(c *gin.Context, p Pagination) {
	c.Header("X-Total-Count", strconv.FormatInt(p.Total, 10))
	c.Header("X-Page", strconv.Itoa(p.CurrentPage))
	c.Header("X-Per-Page", strconv.Itoa(PageSize))
	c.Header("X-Total-Pages", strconv.Itoa(p.TotalPages))
}
