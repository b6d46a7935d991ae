package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/application/usecase"
	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
)

func TestSubmitApplication(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.SubmitApplicationRequest
		saveErr error
		wantErr string
	}{
		{
			name: "stored as pending",
			req: dto.SubmitApplicationRequest{
				ApplicationID: "APP-1", Data: testApplicationData(),
				SubmittedBy: "officer-1", LoanAmountRequested: d(300000), LoanPurpose: "inventory",
			},
		},
		{
			name: "generates an id",
			req:  dto.SubmitApplicationRequest{Data: testApplicationData(), LoanAmountRequested: d(1000)},
		},
		{
			name:    "missing business type",
			req:     dto.SubmitApplicationRequest{ApplicationID: "APP-2", LoanAmountRequested: d(1000)},
			wantErr: "business type is required",
		},
		{
			name: "negative amount",
			req: dto.SubmitApplicationRequest{
				ApplicationID: "APP-3", Data: testApplicationData(), LoanAmountRequested: d(-1),
			},
			wantErr: "must not be negative",
		},
		{
			name:    "repository failure",
			req:     dto.SubmitApplicationRequest{ApplicationID: "APP-4", Data: testApplicationData()},
			saveErr: errors.New("db down"),
			wantErr: "save application: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockApplicationRepository()
			var saved []model.Application
			repo.saveFunc = func(_ context.Context, app model.Application) error {
				saved = append(saved, app)
				return tt.saveErr
			}
			uc := usecase.NewSubmitApplicationUseCase(repo, discardLogger())

			resp, err := uc.Execute(context.Background(), tt.req)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pending", resp.Status)
			assert.Equal(t, 1, resp.Version)
			assert.NotEmpty(t, resp.ID)
			if tt.req.ApplicationID != "" {
				assert.Equal(t, tt.req.ApplicationID, resp.ID)
			}
			require.Len(t, saved, 1)
			require.Len(t, saved[0].DomainEvents(), 1)
			assert.Equal(t, event.TypeApplicationSubmitted, saved[0].DomainEvents()[0].EventType())
		})
	}
}

func TestPsychometricUseCase(t *testing.T) {
	uc := usecase.NewPsychometricUseCase(service.NewPsychometricModel(nil))

	q := uc.Questions()
	assert.Len(t, q.Questions, len(service.RequiredQuestionIDs()))

	assert.True(t, uc.Validate(*validResponses()).Valid)
	v := uc.Validate(model.PsychometricResponses{})
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Errors)
}
