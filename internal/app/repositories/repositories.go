package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	FacultyStatusRepository *FacultyStatusRepository
	ConsultationRepository  *ConsultationRepository
	SessionRepository       *SessionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:          NewUserRepository(db),
		FacultyStatusRepository: NewFacultyStatusRepository(db),
		ConsultationRepository:  NewConsultationRepository(db),
		SessionRepository:       NewSessionRepository(db),
	}
}
