package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
)

// LessonFilter 课程列表过滤条件
type LessonFilter struct {
	OwnerType string
	OwnerID   string
	StartDate *time.Time
	EndDate   *time.Time
}

// LessonRepository 课程仓储接口
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	BatchCreate(ctx context.Context, lessons []model.Lesson) error
	GetByID(ctx context.Context, lessonID string) (*model.Lesson, error)
	List(ctx context.Context, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Lesson, error)
	ListScheduledByOwner(ctx context.Context, ownerType, ownerID string) ([]model.Lesson, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson, expectedVersion int) error
	Delete(ctx context.Context, lessonID string, deletedBy string) error
	DeleteByIDs(ctx context.Context, lessonIDs []string, deletedBy string) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) BatchCreate(ctx context.Context, lessons []model.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(lessons, 100).Error
}

func (r *lessonRepository) GetByID(ctx context.Context, lessonID string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) List(ctx context.Context, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Lesson{})
	if filter.OwnerType != "" {
		query = query.Where("owner_type = ?", filter.OwnerType)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.StartDate != nil {
		query = query.Where("lesson_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("lesson_date <= ?", *filter.EndDate)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var lessons []model.Lesson
	err := query.Order("lesson_date ASC, start_time ASC").
		Offset(offset).Limit(limit).
		Find(&lessons).Error
	if err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

// ListByDate 某一天的全部课程，冲突检测用（含 cancelled，由检测方过滤）
func (r *lessonRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Where("lesson_date = ?", date).
		Order("start_time ASC").
		Find(&lessons).Error
	return lessons, err
}

// ListScheduledByOwner 某归属的全部未取消课程，按时间排序，账单归集用
func (r *lessonRepository) ListScheduledByOwner(ctx context.Context, ownerType, ownerID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND status = ?", ownerType, ownerID, model.LessonStatusScheduled).
		Order("lesson_date ASC, start_time ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) ListByRange(ctx context.Context, start, end time.Time) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Where("lesson_date >= ? AND lesson_date <= ?", start, end).
		Order("lesson_date ASC, start_time ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) Update(ctx context.Context, lesson *model.Lesson, expectedVersion int) error {
	lesson.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).Model(lesson).
		Where("version = ?", expectedVersion).
		Select("*").Omit("lesson_id", "created_at", "created_by", "deleted_at", "deleted_by").
		Updates(lesson)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *lessonRepository) Delete(ctx context.Context, lessonID string, deletedBy string) error {
	return r.DeleteByIDs(ctx, []string{lessonID}, deletedBy)
}

func (r *lessonRepository) DeleteByIDs(ctx context.Context, lessonIDs []string, deletedBy string) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Lesson{}).
			Where("lesson_id IN ?", lessonIDs).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("lesson_id IN ?", lessonIDs).Delete(&model.Lesson{}).Error
	})
}
