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

var ErrStudentNotFound = errors.New("学生不存在")

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, actorID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, studentID string) (*dto.StudentResponse, error)
	List(ctx context.Context, groupID string, page *dto.PaginationRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, studentID string, req *dto.UpdateStudentRequest, actorID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, studentID string, actorID string) error
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, actorID string) (*dto.StudentResponse, error) {
	if req.GroupID != nil {
		if _, err := s.repo.Group.GetByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
	}
	if req.StartTime != "" {
		if err := validTimeSpan(req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}

	student := &model.Student{
		Name:           req.Name,
		Phone:          req.Phone,
		GroupID:        req.GroupID,
		ScheduleDays:   scheduleDaysToIndices(req.ScheduleDays),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		PricePerLesson: req.PricePerLesson,
	}
	student.CreatedBy = &actorID
	student.UpdatedBy = &actorID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) GetByID(ctx context.Context, studentID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, groupID string, page *dto.PaginationRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, groupID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}
	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, *toStudentResponse(&students[i]))
	}
	return items, total, nil
}

func (s *studentService) Update(ctx context.Context, studentID string, req *dto.UpdateStudentRequest, actorID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.GroupID != nil {
		if *req.GroupID == "" {
			student.GroupID = nil
		} else {
			if _, err := s.repo.Group.GetByID(ctx, *req.GroupID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrGroupNotFound
				}
				return nil, err
			}
			student.GroupID = req.GroupID
		}
	}
	if req.ScheduleDays != nil {
		student.ScheduleDays = scheduleDaysToIndices(*req.ScheduleDays)
	}
	if req.StartTime != nil {
		student.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		student.EndTime = *req.EndTime
	}
	if req.PricePerLesson != nil {
		student.PricePerLesson = *req.PricePerLesson
	}
	if student.StartTime != "" {
		if err := validTimeSpan(student.StartTime, student.EndTime); err != nil {
			return nil, err
		}
	}
	student.UpdatedBy = &actorID
	student.Group = nil // 关联对象不参与更新

	if err := s.repo.Student.Update(ctx, student, req.Version); err != nil {
		s.logger.Error("更新学生失败", zap.Error(err), zap.String("student_id", studentID))
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, studentID string, actorID string) error {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if err := s.repo.Student.Delete(ctx, studentID, actorID); err != nil {
		s.logger.Error("删除学生失败", zap.Error(err), zap.String("student_id", studentID))
		return err
	}
	return nil
}

func toStudentResponse(student *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		StudentID:      student.StudentID,
		Name:           student.Name,
		Phone:          student.Phone,
		GroupID:        student.GroupID,
		ScheduleDays:   scheduleDaysToNames(student.ScheduleDays),
		StartTime:      student.StartTime,
		EndTime:        student.EndTime,
		PricePerLesson: student.PricePerLesson,
		Version:        student.Version,
		CreatedAt:      formatTimestamp(student.CreatedAt),
		UpdatedAt:      formatTimestamp(student.UpdatedAt),
	}
	if student.Group != nil {
		resp.GroupName = student.Group.Name
	}
	return resp
}
