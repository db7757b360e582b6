package agreement

import "context"

// Repository определяет операции чтения каталога соглашений.
type Repository interface {
	// GetByID возвращает соглашение по ID.
	// Возвращает shared.ErrAgreementNotFound, если соглашение не найдено.
	GetByID(ctx context.Context, id string) (*Agreement, error)

	// ListBySection возвращает соглашения, открытые секции.
	ListBySection(ctx context.Context, section string) ([]*Agreement, error)
}
