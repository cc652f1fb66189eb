// Package models содержит доменные сущности blog-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль пользователя в системе.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// Valid сообщает, входит ли роль в допустимый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}

	return false
}

// User — учётная запись пользователя (PostgreSQL).
// PasswordHash — bcrypt-хэш, наружу никогда не отдаётся.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AvatarKey    string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal — проверенная личность запроса.
// Создаётся аутентификатором из валидного токена на каждый запрос,
// живёт ровно один запрос и нигде не персистится.
// Поля id/role неизменны на всё время жизни токена: решения авторизации
// опираются только на них, а не на поля, присланные клиентом.
type Principal struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  Role
}

// Principal строит снапшот личности из учётной записи.
func (u *User) Principal() Principal {
	return Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
