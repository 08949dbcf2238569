package pet

import (
	"time"

	"gorm.io/gorm"
)

// Pet pertence a um tutor e carrega o histórico clínico da clínica.
type Pet struct {
	gorm.Model
	Nome       string     `json:"nome"`
	Especie    string     `json:"especie"` // cão, gato, ave...
	Raca       string     `json:"raca"`
	Sexo       string     `json:"sexo"`
	Nascimento *time.Time `json:"nascimento"`
	PesoKg     float64    `json:"pesoKg"`
	Observacao string     `json:"observacao"`
	TutorID    uint       `json:"tutorId" gorm:"index"`
	ClinicaID  uint       `json:"clinicaId" gorm:"index"`
}
