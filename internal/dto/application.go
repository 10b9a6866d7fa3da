package dto

import "github.com/scholarhub/college-review-api/internal/models"

// ApplicationPage is the paginated application listing payload.
type ApplicationPage struct {
	Items []models.Application `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Pages int                  `json:"pages"`
}
