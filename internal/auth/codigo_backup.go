package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// Quantidade de códigos de emergência gerados por usuário.
const QtdCodigosBackup = 10

// CodigoBackup é um código de emergência do 2FA, de uso único.
// Só o hash fica no banco; o valor em claro aparece uma vez no enroll.
type CodigoBackup struct {
	ID        uint   `gorm:"primaryKey"`
	UsuarioID uint   `gorm:"index"`
	Hash      string `gorm:"uniqueIndex"`
	UsadoEm   *time.Time
	CreatedAt time.Time
}

func (CodigoBackup) TableName() string { return "codigos_backup" }

// CodigosBackup abstrai a persistência dos códigos de emergência.
type CodigosBackup interface {
	// Substituir descarta os códigos atuais do usuário e grava os novos hashes.
	Substituir(usuarioID uint, hashes []string) error
	// ConsumirSeDisponivel marca o código como usado em um único UPDATE
	// condicional ("usado_em IS NULL"); false quando já consumido ou inexistente.
	ConsumirSeDisponivel(usuarioID uint, hash string) (bool, error)
}

type codigoBackupRepository struct {
	db *gorm.DB
}

func NewCodigoBackupRepository(db *gorm.DB) CodigosBackup {
	return &codigoBackupRepository{db: db}
}

func (r *codigoBackupRepository) Substituir(usuarioID uint, hashes []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", usuarioID).Delete(&CodigoBackup{}).Error; err != nil {
			return err
		}
		for _, h := range hashes {
			if err := tx.Create(&CodigoBackup{UsuarioID: usuarioID, Hash: h}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *codigoBackupRepository) ConsumirSeDisponivel(usuarioID uint, hash string) (bool, error) {
	agora := time.Now()
	res := r.db.Model(&CodigoBackup{}).
		Where("usuario_id = ? AND hash = ? AND usado_em IS NULL", usuarioID, hash).
		Update("usado_em", &agora)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GerarCodigosBackup devolve os códigos em claro e os hashes correspondentes.
func GerarCodigosBackup() (codigos []string, hashes []string, err error) {
	for i := 0; i < QtdCodigosBackup; i++ {
		c, err := gerarCodigoBackup()
		if err != nil {
			return nil, nil, err
		}
		codigos = append(codigos, c)
		hashes = append(hashes, HashCodigoBackup(c))
	}
	return codigos, hashes, nil
}

// HashCodigoBackup deriva o valor armazenado para um código em claro.
func HashCodigoBackup(codigo string) string {
	h := sha256.Sum256([]byte(codigo))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// formato XXXX-XXXX, dígitos apenas, fácil de ditar por telefone
func gerarCodigoBackup() (string, error) {
	digitos := make([]byte, 8)
	for i := range digitos {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digitos[i] = byte('0' + n.Int64())
	}
	return fmt.Sprintf("%s-%s", digitos[:4], digitos[4:]), nil
}
