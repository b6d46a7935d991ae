package usecase

import (
	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
)

// PsychometricUseCase serves the questionnaire and validates response sets
// ahead of scoring.
type PsychometricUseCase struct {
	model *service.PsychometricModel
}

// NewPsychometricUseCase wires dependencies.
func NewPsychometricUseCase(m *service.PsychometricModel) *PsychometricUseCase {
	return &PsychometricUseCase{model: m}
}

// Questions lists the questionnaire without option scores.
func (uc *PsychometricUseCase) Questions() dto.QuestionsResponse {
	return dto.QuestionsResponse{Questions: uc.model.Questions()}
}

// Validate checks a response set.
func (uc *PsychometricUseCase) Validate(r model.PsychometricResponses) model.PsychometricValidation {
	return uc.model.Validate(r)
}
