package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByAccount(accountID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("account_id = ?", accountID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}
