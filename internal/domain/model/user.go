package model

import (
	"time"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
)

type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	University string     `json:"university"`
	Role       enums.Role `json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
}
