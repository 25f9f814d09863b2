package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
)

// InstallmentRepository 分期账单仓储接口
type InstallmentRepository interface {
	GetByID(ctx context.Context, installmentID string) (*model.Installment, error)
	ListByOwner(ctx context.Context, ownerType, ownerID, status string) ([]model.Installment, error)
	ReplaceUnpaid(ctx context.Context, ownerType, ownerID string, installments []model.Installment) error
	Update(ctx context.Context, installment *model.Installment, expectedVersion int) error
}

type installmentRepository struct {
	db *gorm.DB
}

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) GetByID(ctx context.Context, installmentID string) (*model.Installment, error) {
	var installment model.Installment
	err := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&installment).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) ListByOwner(ctx context.Context, ownerType, ownerID, status string) ([]model.Installment, error) {
	query := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var installments []model.Installment
	err := query.Order("number ASC").Find(&installments).Error
	return installments, err
}

// ReplaceUnpaid 事务内替换某归属的未支付账单：已支付的保留不动
func (r *installmentRepository) ReplaceUnpaid(ctx context.Context, ownerType, ownerID string, installments []model.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("owner_type = ? AND owner_id = ? AND status = ?", ownerType, ownerID, model.InstallmentUnpaid).
			Delete(&model.Installment{}).Error; err != nil {
			return err
		}
		if len(installments) == 0 {
			return nil
		}
		return tx.CreateInBatches(installments, 100).Error
	})
}

func (r *installmentRepository) Update(ctx context.Context, installment *model.Installment, expectedVersion int) error {
	installment.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).Model(installment).
		Where("version = ?", expectedVersion).
		Select("*").Omit("installment_id", "created_at", "created_by", "deleted_at", "deleted_by").
		Updates(installment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
