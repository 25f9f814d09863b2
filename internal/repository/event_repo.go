package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
)

// EventFilter 事件列表过滤条件
type EventFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Source    string
}

// EventRepository 事件仓储接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	BatchCreate(ctx context.Context, events []model.Event) error
	GetByID(ctx context.Context, eventID string) (*model.Event, error)
	List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.Event, int64, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Event, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event, expectedVersion int) error
	Delete(ctx context.Context, eventID string, deletedBy string) error
	DeleteByIDs(ctx context.Context, eventIDs []string, deletedBy string) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) BatchCreate(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}

func (r *eventRepository) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.StartDate != nil {
		query = query.Where("event_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("event_date <= ?", *filter.EndDate)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []model.Event
	err := query.Order("event_date ASC, start_time ASC").
		Offset(offset).Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("event_date = ?", date).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) ListByRange(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("event_date >= ? AND event_date <= ?", start, end).
		Order("event_date ASC, start_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event, expectedVersion int) error {
	event.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).Model(event).
		Where("version = ?", expectedVersion).
		Select("*").Omit("event_id", "created_at", "created_by", "deleted_at", "deleted_by").
		Updates(event)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, eventID string, deletedBy string) error {
	return r.DeleteByIDs(ctx, []string{eventID}, deletedBy)
}

func (r *eventRepository) DeleteByIDs(ctx context.Context, eventIDs []string, deletedBy string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Event{}).
			Where("event_id IN ?", eventIDs).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("event_id IN ?", eventIDs).Delete(&model.Event{}).Error
	})
}
