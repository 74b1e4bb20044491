package postgres

import (
	"time"

	"github.com/sakif/techmind/internal/model"
)

// GORM models used for persistence. Table and column names match the
// SQLite schema so both backends describe the same data.

type userRow struct {
	ID          string    `gorm:"primaryKey"`
	GitHubID    int64     `gorm:"column:github_id;uniqueIndex;not null"`
	Username    string    `gorm:"not null"`
	Email       string    `gorm:"not null"`
	AvatarURL   string    `gorm:"not null"`
	AccessToken string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() model.User {
	return model.User{
		ID:          r.ID,
		GitHubID:    r.GitHubID,
		Username:    r.Username,
		Email:       r.Email,
		AvatarURL:   r.AvatarURL,
		AccessToken: r.AccessToken,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type streakRow struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_term_streaks_user_term,priority:1;index:idx_term_streaks_user_updated,priority:1"`
	Term      string    `gorm:"not null;uniqueIndex:idx_term_streaks_user_term,priority:2"`
	Count     int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index:idx_term_streaks_user_updated,priority:2"`
}

func (streakRow) TableName() string { return "term_streaks" }

func (r streakRow) toModel() model.Streak {
	return model.Streak{
		ID:        r.ID,
		UserID:    r.UserID,
		Term:      r.Term,
		Count:     r.Count,
		UpdatedAt: r.UpdatedAt,
	}
}

type explanationRow struct {
	ID        string    `gorm:"primaryKey"`
	Term      string    `gorm:"not null"`
	Responses string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (explanationRow) TableName() string { return "explanations" }
