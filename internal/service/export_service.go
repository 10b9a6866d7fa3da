package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
	"github.com/scholarhub/college-review-api/pkg/export"
)

type rankingDetailProvider interface {
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.RankingDetail, error)
}

// ExportService renders ranking rosters as CSV or PDF.
type ExportService struct {
	details rankingDetailProvider
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewExportService builds an ExportService.
func NewExportService(details rankingDetailProvider) *ExportService {
	return &ExportService{
		details: details,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

var rosterHeaders = []string{"Position", "Applicant", "External Code", "Review Status", "Allocated"}

// Roster exports the ranking's ordered items. Returns the document bytes,
// content type and suggested filename.
func (s *ExportService) Roster(ctx context.Context, rankingID, format string, claims *models.JWTClaims) ([]byte, string, string, error) {
	detail, err := s.details.Get(ctx, rankingID, claims)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{Headers: rosterHeaders}
	for _, item := range detail.Items {
		allocated := "no"
		if item.IsAllocated {
			allocated = "yes"
		}
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(item.RankPosition),
			item.ApplicantName,
			item.ApplicantExternalCode,
			string(item.ReviewStatus),
			allocated,
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", fmt.Sprintf("ranking-%s.csv", rankingID), nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, detail.RankingName)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", fmt.Sprintf("ranking-%s.pdf", rankingID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
