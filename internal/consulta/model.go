package consulta

import (
	"time"

	"gorm.io/gorm"
)

// Status possíveis de uma consulta. Transições válidas:
// agendada -> em_andamento -> concluida, ou agendada -> cancelada.
const (
	StatusAgendada    = "agendada"
	StatusEmAndamento = "em_andamento"
	StatusConcluida   = "concluida"
	StatusCancelada   = "cancelada"
)

// Consulta cobre o agendamento e o atendimento em si: nasce agendada
// e recebe anotações clínicas e diagnóstico na conclusão.
type Consulta struct {
	gorm.Model
	PetID         uint      `json:"petId" gorm:"index"`
	TutorID       uint      `json:"tutorId" gorm:"index"`
	VeterinarioID uint      `json:"veterinarioId" gorm:"index"`
	ClinicaID     uint      `json:"clinicaId" gorm:"index"`
	DataHora      time.Time `json:"dataHora" gorm:"index"`
	Motivo        string    `json:"motivo"`
	Status        string    `json:"status" gorm:"index;default:agendada"`

	// preenchidos durante/após o atendimento
	Anotacoes   string `json:"anotacoes"`
	Diagnostico string `json:"diagnostico"`
	Prescricao  string `json:"prescricao"`
}

// PodeTransicionar valida a máquina de estados da consulta.
func PodeTransicionar(de, para string) bool {
	switch de {
	case StatusAgendada:
		return para == StatusEmAndamento || para == StatusCancelada
	case StatusEmAndamento:
		return para == StatusConcluida
	}
	return false
}
