package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

var (
	ErrGroupNotFound    = errors.New("班组不存在")
	ErrGroupHasStudents = errors.New("班组名下仍有学生，不能删除")
)

// GroupService 班组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest, actorID string) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, groupID string) (*dto.GroupResponse, error)
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.GroupResponse, int64, error)
	Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, actorID string) (*dto.GroupResponse, error)
	Delete(ctx context.Context, groupID string, actorID string) error
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest, actorID string) (*dto.GroupResponse, error) {
	if req.StartTime != "" {
		if err := validTimeSpan(req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}

	group := &model.Group{
		Name:           req.Name,
		ScheduleDays:   scheduleDaysToIndices(req.ScheduleDays),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		PricePerLesson: req.PricePerLesson,
	}
	group.CreatedBy = &actorID
	group.UpdatedBy = &actorID

	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建班组失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, group), nil
}

func (s *groupService) GetByID(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询班组失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, group), nil
}

func (s *groupService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.GroupResponse, int64, error) {
	groups, total, err := s.repo.Group.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询班组列表失败", zap.Error(err))
		return nil, 0, err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, *s.toResponse(ctx, &groups[i]))
	}
	return items, total, nil
}

func (s *groupService) Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, actorID string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.ScheduleDays != nil {
		group.ScheduleDays = scheduleDaysToIndices(*req.ScheduleDays)
	}
	if req.StartTime != nil {
		group.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		group.EndTime = *req.EndTime
	}
	if req.PricePerLesson != nil {
		group.PricePerLesson = *req.PricePerLesson
	}
	if group.StartTime != "" {
		if err := validTimeSpan(group.StartTime, group.EndTime); err != nil {
			return nil, err
		}
	}
	group.UpdatedBy = &actorID

	if err := s.repo.Group.Update(ctx, group, req.Version); err != nil {
		s.logger.Error("更新班组失败", zap.Error(err), zap.String("group_id", groupID))
		return nil, err
	}
	return s.toResponse(ctx, group), nil
}

func (s *groupService) Delete(ctx context.Context, groupID string, actorID string) error {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	count, err := s.repo.Group.CountStudents(ctx, groupID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrGroupHasStudents
	}
	if err := s.repo.Group.Delete(ctx, groupID, actorID); err != nil {
		s.logger.Error("删除班组失败", zap.Error(err), zap.String("group_id", groupID))
		return err
	}
	return nil
}

func (s *groupService) toResponse(ctx context.Context, group *model.Group) *dto.GroupResponse {
	count, err := s.repo.Group.CountStudents(ctx, group.GroupID)
	if err != nil {
		count = 0
	}
	return &dto.GroupResponse{
		GroupID:        group.GroupID,
		Name:           group.Name,
		ScheduleDays:   scheduleDaysToNames(group.ScheduleDays),
		StartTime:      group.StartTime,
		EndTime:        group.EndTime,
		PricePerLesson: group.PricePerLesson,
		StudentCount:   count,
		Version:        group.Version,
		CreatedAt:      formatTimestamp(group.CreatedAt),
		UpdatedAt:      formatTimestamp(group.UpdatedAt),
	}
}
