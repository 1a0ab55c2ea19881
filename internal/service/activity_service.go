package service

import (
	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ActivityService records and lists user activity
type ActivityService struct {
	activityRepo domain.ActivityLogRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo domain.ActivityLogRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record stores an activity entry. Failures are logged, never returned.
func (s *ActivityService) Record(userID int64, activityType domain.ActivityType, description, ipAddress string) {
	if s == nil || s.activityRepo == nil {
		return
	}
	_, err := s.activityRepo.Create(&domain.ActivityLog{
		UserID:      userID,
		Type:        activityType,
		Description: description,
		IPAddress:   ipAddress,
	})
	if err != nil {
		log.Warn().Err(err).
			Int64("user_id", userID).
			Str("activity", string(activityType)).
			Msg("Failed to record activity")
	}
}

// List returns one page of a user's activity, newest first
func (s *ActivityService) List(userID int64, page, pageSize int32) (*domain.PaginatedActivityLogs, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	entries, total, err := s.activityRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.ActivityLog{}
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedActivityLogs{
		Data:       entries,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}
