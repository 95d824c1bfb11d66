package repository

import (
	"context"
	"log/slog"
	"strings"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/validation"
)

// ReportRepository defines persistence operations for post reports.
type ReportRepository interface {
	Create(ctx context.Context, postID, reporterID, reason string) (*models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
}

type reportRepository struct {
	reports *recordstore.Collection[models.Report]
	opts    options
	log     *observability.RepoLogger
}

// NewReportRepository returns a ReportRepository over the reports collection.
func NewReportRepository(store *recordstore.Store, opts ...Option) ReportRepository {
	return &reportRepository{
		reports: recordstore.NewCollection[models.Report](store, CollectionReports),
		opts:    buildOptions(opts),
		log:     observability.NewRepoLogger(CollectionReports),
	}
}

func (r *reportRepository) Create(ctx context.Context, postID, reporterID, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.Struct(validation.Report{PostID: postID, Reason: reason}); err != nil {
		return nil, err
	}

	report := models.Report{
		ID:         models.NewID(),
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  r.opts.now(),
	}
	err := r.reports.Mutate(ctx, func(reports []models.Report) ([]models.Report, error) {
		return append(reports, report), nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, "create", slog.String("report_id", report.ID), slog.String("post_id", postID))
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context) ([]models.Report, error) {
	reports, _, err := r.reports.Load(ctx)
	return reports, err
}
