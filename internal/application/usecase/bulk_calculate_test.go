package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/application/usecase"
)

func TestBulkCalculate(t *testing.T) {
	apps := newMockApplicationRepository(testApplication("APP-1"), testApplication("APP-2"), testApplication("APP-3"))
	f := newCalculateFixture(t, apps, newMockScoreRepository(), nil)
	bulk := usecase.NewBulkCalculateUseCase(f.uc, 2, discardLogger())

	resp := bulk.Execute(context.Background(), dto.BulkCalculateRequest{
		ApplicationIDs: []string{"APP-1", "APP-MISSING", "APP-2", "APP-3"},
		CalculatedBy:   "batch",
	})

	assert.Equal(t, 4, resp.Processed)
	assert.Equal(t, 3, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, []string{"Application APP-MISSING not found"}, resp.Errors)
	assert.Equal(t, 3, f.scores.savedCount)
}

func TestBulkCalculate_ManyApplications(t *testing.T) {
	apps := newMockApplicationRepository()
	var ids []string
	for i := range 40 {
		id := fmt.Sprintf("APP-%03d", i)
		ids = append(ids, id)
		apps.apps[id] = testApplication(id).ClearEvents()
	}
	f := newCalculateFixture(t, apps, newMockScoreRepository(), nil)
	bulk := usecase.NewBulkCalculateUseCase(f.uc, 0, discardLogger())

	resp := bulk.Execute(context.Background(), dto.BulkCalculateRequest{ApplicationIDs: ids})

	assert.Equal(t, 40, resp.Successful)
	assert.Zero(t, resp.Failed)
	assert.Empty(t, resp.Errors)
	assert.Len(t, f.scores.latest, 40)
}

func TestBulkCalculate_Empty(t *testing.T) {
	f := newCalculateFixture(t, newMockApplicationRepository(), newMockScoreRepository(), nil)
	bulk := usecase.NewBulkCalculateUseCase(f.uc, 4, discardLogger())

	resp := bulk.Execute(context.Background(), dto.BulkCalculateRequest{})

	assert.Zero(t, resp.Processed)
	assert.NotNil(t, resp.Errors)
}
