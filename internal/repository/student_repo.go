package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
)

// StudentRepository 学生仓储接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, studentID string) (*model.Student, error)
	List(ctx context.Context, groupID string, offset, limit int) ([]model.Student, int64, error)
	Update(ctx context.Context, student *model.Student, expectedVersion int) error
	Delete(ctx context.Context, studentID string, deletedBy string) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, studentID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("student_id = ?", studentID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, groupID string, offset, limit int) ([]model.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Student{})
	if groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var students []model.Student
	err := query.Preload("Group").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) Update(ctx context.Context, student *model.Student, expectedVersion int) error {
	student.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).Model(student).
		Where("version = ?", expectedVersion).
		Select("*").Omit("student_id", "created_at", "created_by", "deleted_at", "deleted_by", "Group").
		Updates(student)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, studentID string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Student{}).
			Where("student_id = ?", studentID).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("student_id = ?", studentID).Delete(&model.Student{}).Error
	})
}
