package db

import (
	"gorm.io/gorm"

	"github.com/gabrielnatan/petinova-2-sub003/internal/config"
)

// GetDB abre a conexão a partir da configuração já carregada.
func GetDB(cfg config.Config) (*gorm.DB, error) {
	return ConectarDataBase(cfg.DBPort, cfg.DBHost, cfg.DBNome, cfg.DBSecretID)
}
