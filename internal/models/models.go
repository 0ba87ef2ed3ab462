package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	Role         Role   `gorm:"not null;size:16;index"    json:"role"`
}

type Category struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"uniqueIndex;not null"      json:"name"`
	Description *string `json:"description"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description *string `json:"description"`
	Price       float64 `gorm:"not null;check:price >= 0" json:"price"`
	Stock       int     `gorm:"not null;check:stock >= 0" json:"stock"`
	CategoryID  uint    `gorm:"index;not null"            json:"category_id"`
}

func All() []any {
	return []any{&User{}, &Category{}, &Product{}}
}
