package auditoria

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registrador grava eventos de auditoria em segundo plano.
// A gravação nunca bloqueia nem falha o fluxo que a originou.
type Registrador struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRegistrador(db *gorm.DB, logger *zap.Logger) *Registrador {
	return &Registrador{db: db, logger: logger}
}

// NewRegistradorNulo devolve um registrador que descarta os eventos.
func NewRegistradorNulo() *Registrador {
	return &Registrador{logger: zap.NewNop()}
}

// Registrar persiste o evento de forma assíncrona (fire-and-forget).
// Erros de gravação são apenas logados.
func (r *Registrador) Registrar(e Evento) {
	if r.db == nil {
		return
	}
	e.ID = uuid.NewString()
	e.CriadoEm = time.Now().UTC()

	go func() {
		if err := r.db.Create(&e).Error; err != nil {
			r.logger.Warn("falha ao gravar evento de auditoria",
				zap.String("tipo", e.Tipo),
				zap.Error(err),
			)
		}
	}()
}
