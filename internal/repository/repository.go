package repository

import "gorm.io/gorm"

// Repository 仓储聚合，按领域拆分
type Repository struct {
	User        UserRepository
	Student     StudentRepository
	Group       GroupRepository
	Lesson      LessonRepository
	Event       EventRepository
	Installment InstallmentRepository

	db *gorm.DB
}

// NewRepository 创建仓储聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepository(db),
		Student:     NewStudentRepository(db),
		Group:       NewGroupRepository(db),
		Lesson:      NewLessonRepository(db),
		Event:       NewEventRepository(db),
		Installment: NewInstallmentRepository(db),
		db:          db,
	}
}

// DB 暴露底层连接，供需要跨仓储事务的业务层使用
func (r *Repository) DB() *gorm.DB { return r.db }
