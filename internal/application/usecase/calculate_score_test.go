package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/application/usecase"
	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

type calculateFixture struct {
	apps      *mockApplicationRepository
	scores    *mockScoreRepository
	cache     *mockScoreCache
	recorder  *mockRecorder
	predictor port.DefaultPredictor
	uc        *usecase.CalculateScoreUseCase
}

func newCalculateFixture(t *testing.T, apps *mockApplicationRepository, scores *mockScoreRepository, predictor port.DefaultPredictor) *calculateFixture {
	t.Helper()
	psych := service.NewPsychometricModel(nil)
	policies, err := usecase.NewPolicyStore(service.DefaultScoringPolicy(), psych, discardLogger())
	require.NoError(t, err)

	f := &calculateFixture{
		apps:      apps,
		scores:    scores,
		cache:     &mockScoreCache{},
		recorder:  &mockRecorder{},
		predictor: predictor,
	}
	f.uc = usecase.NewCalculateScoreUseCase(
		f.apps, f.scores, f.cache, f.predictor, policies, psych, f.recorder, discardLogger(),
	)
	return f
}

func validResponses() *model.PsychometricResponses {
	answers := map[string]model.PsychometricAnswer{}
	for _, id := range service.RequiredQuestionIDs() {
		opt := 0
		answers[id] = model.PsychometricAnswer{SelectedOption: &opt}
	}
	return &model.PsychometricResponses{Answers: answers}
}

func TestCalculateScore_ReturnsExistingScore(t *testing.T) {
	existing := storedScore("APP-1", "55.50", valueobject.GradeB, valueobject.RiskTierMedium, testNow)
	f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(existing), nil)

	resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1"})

	require.NoError(t, err)
	assert.False(t, resp.Recalculated)
	assert.Equal(t, "score-APP-1", resp.ID)
	assert.Equal(t, "55.5", resp.Result.FinalScore.String())
	assert.Zero(t, f.apps.findByIDHits)
	assert.Zero(t, f.scores.savedCount)
}

func TestCalculateScore_ComputesNewScore(t *testing.T) {
	f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), nil)

	resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{
		ApplicationID: "APP-1",
		CalculatedBy:  "officer-2",
	})

	require.NoError(t, err)
	assert.True(t, resp.Recalculated)
	assert.Equal(t, "officer-2", resp.CalculatedBy)
	assert.Equal(t, model.ScoringModelVersion, resp.ModelVersion)
	assert.Equal(t, "APP-1", resp.Result.ApplicationID)
	assert.Nil(t, resp.Result.Psychometric)
	assert.Nil(t, resp.AIPrediction)
	assert.Equal(t, resp.Result.FinalScore, resp.Summary.FinalScore)

	// processing, then completed
	require.Len(t, f.apps.savedApps, 2)
	assert.Equal(t, valueobject.StatusProcessing, f.apps.savedApps[0].Status())
	assert.Equal(t, valueobject.StatusCompleted, f.apps.savedApps[1].Status())

	require.Equal(t, 1, f.scores.savedCount)
	saved := f.scores.latest["APP-1"]
	require.Len(t, saved.DomainEvents(), 1)
	assert.Equal(t, event.TypeCreditScoreCalculated, saved.DomainEvents()[0].EventType())

	assert.Equal(t, []string{"APP-1"}, f.cache.invalidated)
	require.Len(t, f.recorder.scores, 1)
	assert.Empty(t, f.recorder.failures)
}

func TestCalculateScore_ForceRecalculate(t *testing.T) {
	existing := storedScore("APP-1", "20", valueobject.GradeR, valueobject.RiskTierVeryHigh, testNow)
	f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(existing), nil)

	resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1", ForceRecalculate: true})

	require.NoError(t, err)
	assert.True(t, resp.Recalculated)
	assert.NotEqual(t, "score-APP-1", resp.ID)
	assert.Equal(t, 1, f.scores.savedCount)
}

func TestCalculateScore_CompletedApplicationCanBeRescored(t *testing.T) {
	f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, dto.CalculateScoreRequest{ApplicationID: "APP-1"})
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, dto.CalculateScoreRequest{ApplicationID: "APP-1", ForceRecalculate: true})
	require.NoError(t, err)

	assert.Equal(t, 2, f.scores.savedCount)
	assert.Equal(t, valueobject.StatusCompleted, f.apps.apps["APP-1"].Status())
}

func TestCalculateScore_ApplicationNotFound(t *testing.T) {
	f := newCalculateFixture(t, newMockApplicationRepository(), newMockScoreRepository(), nil)

	_, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-404"})

	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrApplicationNotFound)
	assert.Zero(t, f.scores.savedCount)
}

func TestCalculateScore_Psychometric(t *testing.T) {
	invalid := &model.PsychometricResponses{Answers: map[string]model.PsychometricAnswer{}}

	t.Run("valid responses are scored", func(t *testing.T) {
		f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), nil)

		resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{
			ApplicationID: "APP-1",
			Psychometric:  validResponses(),
		})

		require.NoError(t, err)
		require.NotNil(t, resp.Result.Psychometric)
		assert.Equal(t, resp.Result.Psychometric.Total, resp.Result.PsychometricScore)
	})

	t.Run("strict mode rejects invalid responses", func(t *testing.T) {
		f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), nil)

		_, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{
			ApplicationID:      "APP-1",
			StrictPsychometric: true,
			Psychometric:       invalid,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrInvalidPsychometric)
		var verr *service.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Problems, len(service.RequiredQuestionIDs()))
		assert.Empty(t, f.apps.savedApps)
		assert.Zero(t, f.scores.savedCount)
	})

	t.Run("lenient mode drops invalid responses", func(t *testing.T) {
		f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), nil)

		resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{
			ApplicationID: "APP-1",
			Psychometric:  invalid,
		})

		require.NoError(t, err)
		assert.Nil(t, resp.Result.Psychometric)
		assert.Equal(t, service.NeutralPsychometricScore, resp.Result.PsychometricScore)
	})
}

func TestCalculateScore_Predictor(t *testing.T) {
	t.Run("prediction attached", func(t *testing.T) {
		predictor := &mockPredictor{predictFunc: func(context.Context, model.ApplicationData) (port.Prediction, error) {
			return port.Prediction{Probability: 0.3, Confidence: 0.9, ModelVersion: "gbm-7"}, nil
		}}
		f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), predictor)

		resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1"})

		require.NoError(t, err)
		require.NotNil(t, resp.AIPrediction)
		assert.Equal(t, "gbm-7", resp.AIPrediction.ModelVersion)
		assert.Equal(t, valueobject.RiskTierHigh, resp.AIPrediction.RiskLevel)
	})

	t.Run("predictor failure is ignored", func(t *testing.T) {
		predictor := &mockPredictor{predictFunc: func(context.Context, model.ApplicationData) (port.Prediction, error) {
			return port.Prediction{}, errors.New("model server down")
		}}
		f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(), predictor)

		resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1"})

		require.NoError(t, err)
		assert.Nil(t, resp.AIPrediction)
		assert.Equal(t, 1, f.scores.savedCount)
	})
}

func TestCalculateScore_PersistFailureReturnsToPending(t *testing.T) {
	scores := newMockScoreRepository()
	scores.saveFunc = func(context.Context, model.CreditScore) error {
		return errors.New("connection reset")
	}
	f := newCalculateFixture(t, newMockApplicationRepository(testApplication("APP-1")), scores, nil)

	_, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"persist"}, f.recorder.failures)
	assert.Empty(t, f.recorder.scores)
	assert.Equal(t, valueobject.StatusPending, f.apps.apps["APP-1"].Status())
	assert.Empty(t, f.cache.invalidated)
}

func TestCalculateScore_CompleteFailureAllowsRescoring(t *testing.T) {
	apps := newMockApplicationRepository(testApplication("APP-1"))
	failed := false
	apps.saveFunc = func(_ context.Context, app model.Application) error {
		if app.Status().Equal(valueobject.StatusCompleted) && !failed {
			failed = true
			return errors.New("transient db error")
		}
		apps.apps[app.ID()] = app.ClearEvents()
		return nil
	}
	f := newCalculateFixture(t, apps, newMockScoreRepository(), nil)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, dto.CalculateScoreRequest{ApplicationID: "APP-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transient db error")
	assert.Equal(t, valueobject.StatusPending, apps.apps["APP-1"].Status())
	assert.Equal(t, []string{"persist"}, f.recorder.failures)

	resp, err := f.uc.Execute(ctx, dto.CalculateScoreRequest{ApplicationID: "APP-1", ForceRecalculate: true})
	require.NoError(t, err)
	assert.True(t, resp.Recalculated)
	assert.Equal(t, valueobject.StatusCompleted, apps.apps["APP-1"].Status())
	assert.Equal(t, 2, f.scores.savedCount)
}

func TestCalculateScore_RestartsInterruptedRun(t *testing.T) {
	stuck, err := testApplication("APP-1").StartProcessing(testNow)
	require.NoError(t, err)
	f := newCalculateFixture(t, newMockApplicationRepository(stuck), newMockScoreRepository(), nil)

	resp, err := f.uc.Execute(context.Background(), dto.CalculateScoreRequest{ApplicationID: "APP-1"})

	require.NoError(t, err)
	assert.True(t, resp.Recalculated)
	assert.Equal(t, valueobject.StatusCompleted, f.apps.apps["APP-1"].Status())
}

func TestCalculateScore_StampsMissingEndTime(t *testing.T) {
	start := time.Now().UTC().Add(-10 * time.Minute)
	lateClock := func() time.Time { return start.Add(time.Hour) }
	psych := service.NewPsychometricModel(lateClock)
	policies, err := usecase.NewPolicyStore(service.DefaultScoringPolicy(), psych, discardLogger())
	require.NoError(t, err)
	uc := usecase.NewCalculateScoreUseCase(
		newMockApplicationRepository(testApplication("APP-1")), newMockScoreRepository(),
		&mockScoreCache{}, nil, policies, psych, &mockRecorder{}, discardLogger(),
	)

	responses := validResponses()
	responses.StartTime = &start
	resp, err := uc.Execute(context.Background(), dto.CalculateScoreRequest{
		ApplicationID: "APP-1",
		Psychometric:  responses,
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Result.Psychometric)
	minutes := resp.Result.Psychometric.TestDurationMinutes
	assert.True(t, minutes.LessThan(d(11)), "duration %s should come from the scoring run, not the model clock", minutes)
	assert.True(t, minutes.GreaterThanOrEqual(d(10)), "duration %s", minutes)
	assert.Nil(t, responses.EndTime, "request is not modified")
}
