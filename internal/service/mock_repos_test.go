package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	pkgerrors "lessonloop/backend/pkg/errors"

	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

// ── 内存版仓储桩实现，业务层测试共用 ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("u-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, userID string) (*model.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

type mockGroupRepo struct {
	groups   map[string]*model.Group
	students *mockStudentRepo
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		group.GroupID = fmt.Sprintf("g-%d", len(m.groups)+1)
	}
	if group.Version == 0 {
		group.Version = 1
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, groupID string) (*model.Group, error) {
	if g, ok := m.groups[groupID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context, offset, limit int) ([]model.Group, int64, error) {
	var all []model.Group
	for _, g := range m.groups {
		all = append(all, *g)
	}
	return all, int64(len(all)), nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group, expectedVersion int) error {
	cur, ok := m.groups[group.GroupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version = expectedVersion + 1
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, groupID string, _ string) error {
	delete(m.groups, groupID)
	return nil
}

func (m *mockGroupRepo) CountStudents(_ context.Context, groupID string) (int64, error) {
	if m.students == nil {
		return 0, nil
	}
	var n int64
	for _, s := range m.students.students {
		if s.GroupID != nil && *s.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = fmt.Sprintf("s-%d", len(m.students)+1)
	}
	if student.Version == 0 {
		student.Version = 1
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, studentID string) (*model.Student, error) {
	if s, ok := m.students[studentID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, groupID string, offset, limit int) ([]model.Student, int64, error) {
	var all []model.Student
	for _, s := range m.students {
		if groupID != "" && (s.GroupID == nil || *s.GroupID != groupID) {
			continue
		}
		all = append(all, *s)
	}
	return all, int64(len(all)), nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student, expectedVersion int) error {
	cur, ok := m.students[student.StudentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	student.Version = expectedVersion + 1
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, studentID string, _ string) error {
	delete(m.students, studentID)
	return nil
}

type mockLessonRepo struct {
	lessons map[string]*model.Lesson
	seq     int
}

func newMockLessonRepo() *mockLessonRepo {
	return &mockLessonRepo{lessons: make(map[string]*model.Lesson)}
}

func (m *mockLessonRepo) add(lesson *model.Lesson) {
	if lesson.LessonID == "" {
		m.seq++
		lesson.LessonID = fmt.Sprintf("l-%d", m.seq)
	}
	if lesson.Version == 0 {
		lesson.Version = 1
	}
	m.lessons[lesson.LessonID] = lesson
}

func (m *mockLessonRepo) Create(_ context.Context, lesson *model.Lesson) error {
	m.add(lesson)
	return nil
}

func (m *mockLessonRepo) BatchCreate(_ context.Context, lessons []model.Lesson) error {
	for i := range lessons {
		m.add(&lessons[i])
	}
	return nil
}

func (m *mockLessonRepo) GetByID(_ context.Context, lessonID string) (*model.Lesson, error) {
	if l, ok := m.lessons[lessonID]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonRepo) sorted(match func(*model.Lesson) bool) []model.Lesson {
	var out []model.Lesson
	for _, l := range m.lessons {
		if match(l) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LessonDate.Equal(out[j].LessonDate) {
			return out[i].LessonDate.Before(out[j].LessonDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (m *mockLessonRepo) List(_ context.Context, filter repository.LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	out := m.sorted(func(l *model.Lesson) bool {
		if filter.OwnerType != "" && l.OwnerType != filter.OwnerType {
			return false
		}
		if filter.OwnerID != "" && l.OwnerID != filter.OwnerID {
			return false
		}
		if filter.StartDate != nil && l.LessonDate.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && l.LessonDate.After(*filter.EndDate) {
			return false
		}
		return true
	})
	return out, int64(len(out)), nil
}

func (m *mockLessonRepo) ListByDate(_ context.Context, date time.Time) ([]model.Lesson, error) {
	return m.sorted(func(l *model.Lesson) bool {
		return l.LessonDate.Equal(date)
	}), nil
}

func (m *mockLessonRepo) ListScheduledByOwner(_ context.Context, ownerType, ownerID string) ([]model.Lesson, error) {
	return m.sorted(func(l *model.Lesson) bool {
		return l.OwnerType == ownerType && l.OwnerID == ownerID && l.Status == model.LessonStatusScheduled
	}), nil
}

func (m *mockLessonRepo) ListByRange(_ context.Context, start, end time.Time) ([]model.Lesson, error) {
	return m.sorted(func(l *model.Lesson) bool {
		return !l.LessonDate.Before(start) && !l.LessonDate.After(end)
	}), nil
}

func (m *mockLessonRepo) Update(_ context.Context, lesson *model.Lesson, expectedVersion int) error {
	cur, ok := m.lessons[lesson.LessonID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	lesson.Version = expectedVersion + 1
	m.lessons[lesson.LessonID] = lesson
	return nil
}

func (m *mockLessonRepo) Delete(_ context.Context, lessonID string, deletedBy string) error {
	return m.DeleteByIDs(nil, []string{lessonID}, deletedBy)
}

func (m *mockLessonRepo) DeleteByIDs(_ context.Context, lessonIDs []string, _ string) error {
	for _, id := range lessonIDs {
		delete(m.lessons, id)
	}
	return nil
}

type mockEventRepo struct {
	events map[string]*model.Event
	seq    int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) add(event *model.Event) {
	if event.EventID == "" {
		m.seq++
		event.EventID = fmt.Sprintf("e-%d", m.seq)
	}
	if event.Version == 0 {
		event.Version = 1
	}
	m.events[event.EventID] = event
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	m.add(event)
	return nil
}

func (m *mockEventRepo) BatchCreate(_ context.Context, events []model.Event) error {
	for i := range events {
		m.add(&events[i])
	}
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, eventID string) (*model.Event, error) {
	if e, ok := m.events[eventID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) matching(match func(*model.Event) bool) []model.Event {
	var out []model.Event
	for _, e := range m.events {
		if match(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (m *mockEventRepo) List(_ context.Context, filter repository.EventFilter, offset, limit int) ([]model.Event, int64, error) {
	out := m.matching(func(e *model.Event) bool {
		if filter.StartDate != nil && e.EventDate.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && e.EventDate.After(*filter.EndDate) {
			return false
		}
		if filter.Source != "" && e.Source != filter.Source {
			return false
		}
		return true
	})
	return out, int64(len(out)), nil
}

func (m *mockEventRepo) ListByDate(_ context.Context, date time.Time) ([]model.Event, error) {
	return m.matching(func(e *model.Event) bool {
		return e.EventDate.Equal(date)
	}), nil
}

func (m *mockEventRepo) ListByRange(_ context.Context, start, end time.Time) ([]model.Event, error) {
	return m.matching(func(e *model.Event) bool {
		return !e.EventDate.Before(start) && !e.EventDate.After(end)
	}), nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event, expectedVersion int) error {
	cur, ok := m.events[event.EventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	event.Version = expectedVersion + 1
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, eventID string, deletedBy string) error {
	return m.DeleteByIDs(nil, []string{eventID}, deletedBy)
}

func (m *mockEventRepo) DeleteByIDs(_ context.Context, eventIDs []string, _ string) error {
	for _, id := range eventIDs {
		delete(m.events, id)
	}
	return nil
}

type mockInstallmentRepo struct {
	installments map[string]*model.Installment
	seq          int
}

func newMockInstallmentRepo() *mockInstallmentRepo {
	return &mockInstallmentRepo{installments: make(map[string]*model.Installment)}
}

func (m *mockInstallmentRepo) GetByID(_ context.Context, installmentID string) (*model.Installment, error) {
	if inst, ok := m.installments[installmentID]; ok {
		copied := *inst
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstallmentRepo) ListByOwner(_ context.Context, ownerType, ownerID, status string) ([]model.Installment, error) {
	var out []model.Installment
	for _, inst := range m.installments {
		if inst.OwnerType != ownerType || inst.OwnerID != ownerID {
			continue
		}
		if status != "" && inst.Status != status {
			continue
		}
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *mockInstallmentRepo) ReplaceUnpaid(_ context.Context, ownerType, ownerID string, installments []model.Installment) error {
	for id, inst := range m.installments {
		if inst.OwnerType == ownerType && inst.OwnerID == ownerID && inst.Status == model.InstallmentUnpaid {
			delete(m.installments, id)
		}
	}
	for i := range installments {
		m.seq++
		if installments[i].InstallmentID == "" {
			installments[i].InstallmentID = fmt.Sprintf("i-%d", m.seq)
		}
		if installments[i].Version == 0 {
			installments[i].Version = 1
		}
		copied := installments[i]
		m.installments[copied.InstallmentID] = &copied
	}
	return nil
}

func (m *mockInstallmentRepo) Update(_ context.Context, installment *model.Installment, expectedVersion int) error {
	cur, ok := m.installments[installment.InstallmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if cur.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	installment.Version = expectedVersion + 1
	m.installments[installment.InstallmentID] = installment
	return nil
}

// newMockRepository 组装全部内存桩为仓储聚合
func newMockRepository() (*repository.Repository, *mockLessonRepo, *mockEventRepo, *mockInstallmentRepo) {
	groupRepo := newMockGroupRepo()
	studentRepo := newMockStudentRepo()
	groupRepo.students = studentRepo
	lessonRepo := newMockLessonRepo()
	eventRepo := newMockEventRepo()
	installmentRepo := newMockInstallmentRepo()

	return &repository.Repository{
		User:        newMockUserRepo(),
		Student:     studentRepo,
		Group:       groupRepo,
		Lesson:      lessonRepo,
		Event:       eventRepo,
		Installment: installmentRepo,
	}, lessonRepo, eventRepo, installmentRepo
}
