// Package service holds operations spanning more than one repository.
package service

import (
	"context"
	"log/slog"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/repository"
)

// DashboardStats summarizes the store for the admin dashboard.
type DashboardStats struct {
	TotalUsers   int `json:"totalUsers"`
	TotalPosts   int `json:"totalPosts"`
	TotalReports int `json:"totalReports"`
	BannedUsers  int `json:"bannedUsers"`
}

// ReportView is a report joined with the reported post, if it still exists.
type ReportView struct {
	models.Report
	Post *models.Post `json:"post,omitempty"`
}

// ModerationService provides admin moderation logic. It does not check the
// caller's role; use RequireAdmin first.
type ModerationService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	reports repository.ReportRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(users repository.UserRepository, posts repository.PostRepository, reports repository.ReportRepository) *ModerationService {
	return &ModerationService{users: users, posts: posts, reports: reports}
}

// RequireAdmin returns UNAUTHORIZED unless s belongs to an admin.
func RequireAdmin(s models.Session) error {
	if !s.IsAdmin() {
		return models.NewUnauthorizedError("Admin access required")
	}
	return nil
}

// Stats counts users, posts, reports and banned users.
func (s *ModerationService) Stats(ctx context.Context) (DashboardStats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	reports, err := s.reports.List(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		TotalUsers:   len(users),
		TotalPosts:   len(posts),
		TotalReports: len(reports),
	}
	for _, u := range users {
		if u.Banned {
			stats.BannedUsers++
		}
	}
	return stats, nil
}

// SetBanned bans or unbans a user.
func (s *ModerationService) SetBanned(ctx context.Context, userID string, banned bool) (*models.User, error) {
	u, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		return nil, err
	}
	observability.Logger.InfoContext(ctx, "user ban updated",
		slog.String("user_id", userID),
		slog.Bool("banned", banned),
	)
	return u, nil
}

// RemoveUser deletes the user and every post they authored. Their comments,
// likes, follow edges held by others, products and messages remain.
func (s *ModerationService) RemoveUser(ctx context.Context, userID string) (int, error) {
	if err := s.users.Delete(ctx, userID); err != nil {
		return 0, err
	}
	removed, err := s.posts.DeleteByAuthor(ctx, userID)
	if err != nil {
		return 0, err
	}
	observability.Logger.InfoContext(ctx, "user removed",
		slog.String("user_id", userID),
		slog.Int("posts_removed", removed),
	)
	return removed, nil
}

// DeletePost removes a post. Reports pointing at it are kept.
func (s *ModerationService) DeletePost(ctx context.Context, postID string) error {
	return s.posts.Delete(ctx, postID)
}

// Reports lists reports with their post, newest first.
func (s *ModerationService) Reports(ctx context.Context) ([]ReportView, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	out := make([]ReportView, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		view := ReportView{Report: reports[i]}
		if p, ok := byID[reports[i].PostID]; ok {
			view.Post = &p
		}
		out = append(out, view)
	}
	return out, nil
}

// RecountPosts sets the user's post counter from the posts collection.
func (s *ModerationService) RecountPosts(ctx context.Context, userID string) (int, error) {
	n, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.users.RecountPosts(ctx, userID, n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecountAll reconciles every user's post counter.
func (s *ModerationService) RecountAll(ctx context.Context) (map[string]int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(users))
	for _, u := range users {
		n, err := s.RecountPosts(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		counts[u.ID] = n
	}
	return counts, nil
}
