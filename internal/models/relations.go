package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRecipe is the shared (user, recipe) pair embedded by the join
// entities below. Plain composition, no inheritance tricks; each concrete
// table gets its own composite unique index in database.Migrate.
type UserRecipe struct {
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"recipe"`
}

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserRecipe

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ShoppingCartEntry marks a recipe as planned for purchase by a user.
// Identical shape to Favorite, different table.
type ShoppingCartEntry struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserRecipe

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *ShoppingCartEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart_entries"
}
