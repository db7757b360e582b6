package student

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт хранилища студентов. Реализация - infrastructure/persistence/postgres.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над студентами.
type Repository interface {
	// Create создаёт нового студента.
	// Возвращает shared.ErrStudentAlreadyExists, если email уже занят.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает студента по ID.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail возвращает студента по email.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByEmail(ctx context.Context, email string) (*Student, error)

	// UpdateAgreementOrder заменяет порядок предпочтений студента.
	UpdateAgreementOrder(ctx context.Context, id string, agreementIDs []string) error

	// Delete удаляет студента вместе с его предпочтениями.
	Delete(ctx context.Context, id string) error
}
