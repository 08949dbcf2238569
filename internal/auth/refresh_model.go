package auth

import "time"

// RefreshToken guarda apenas o hash do valor entregue ao cliente.
// Revogação é lógica (RevokedAt), nunca exclusão física, para manter trilha.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UsuarioID uint      `gorm:"index"`
	Hash      string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Ativo indica se o token ainda pode ser trocado por um novo par.
func (rt *RefreshToken) Ativo(agora time.Time) bool {
	return rt.RevokedAt == nil && agora.Before(rt.ExpiresAt)
}
