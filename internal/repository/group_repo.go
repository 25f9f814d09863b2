package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
)

// GroupRepository 班组仓储接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, groupID string) (*model.Group, error)
	List(ctx context.Context, offset, limit int) ([]model.Group, int64, error)
	Update(ctx context.Context, group *model.Group, expectedVersion int) error
	Delete(ctx context.Context, groupID string, deletedBy string) error
	CountStudents(ctx context.Context, groupID string) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, groupID string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, offset, limit int) ([]model.Group, int64, error) {
	var groups []model.Group
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Group{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// Update 带乐观锁的整行更新：版本不匹配时返回 ErrOptimisticLock
func (r *groupRepository) Update(ctx context.Context, group *model.Group, expectedVersion int) error {
	group.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).Model(group).
		Where("version = ?", expectedVersion).
		Select("*").Omit("group_id", "created_at", "created_by", "deleted_at", "deleted_by").
		Updates(group)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, groupID string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Group{}).
			Where("group_id = ?", groupID).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ?", groupID).Delete(&model.Group{}).Error
	})
}

func (r *groupRepository) CountStudents(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}
