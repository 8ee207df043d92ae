package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovvlad/designfee-go/cmd/internal/models"
	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/internal/testutil"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

func filledSession(t *testing.T, store *Store) Session {
	t.Helper()
	sess := store.Create()

	updated, err := store.Update(sess.ID, func(s *Session) error {
		in := DefaultInputs()
		in.ProjectName = "OO근린공원 조성"
		in.Agency = "OO시청"
		in.Profile.Area = 5000
		s.SetInputs(in)
		s.SetStaffing([]models.AdjustedStaffingRow{{StaffingNormRow: testutil.NormRow(1, "1.1 현황조사", "일", true, true, 1)}})
		s.SetLabor(map[int]int{1: 3}, models.LaborBreakdown{TotalDirectLabor: 10_000_000})
		s.SetEstimate(models.ContractEstimate{ContractAmount: 34_468_262.4})
		require.True(t, s.Confirm())
		return nil
	})
	require.NoError(t, err)
	return updated
}

func TestSession_Reset(t *testing.T) {
	store := NewStore(0, logging.NewDiscardLogger())
	sess := filledSession(t, store)
	require.ElementsMatch(t, []string{
		KeyInputs, KeyStaffing, KeyPeriods, KeyLabor, KeyEstimate, KeyConfirmedAmount,
	}, sess.Keys())

	// WHEN: сброс
	reset, err := store.Update(sess.ID, func(s *Session) error {
		s.Reset()
		return nil
	})
	require.NoError(t, err)

	// THEN: ни одного ключа, чтение даёт значения по умолчанию
	assert.Empty(t, reset.Keys())
	assert.Equal(t, DefaultInputs(), reset.EffectiveInputs())

	fresh, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Keys())
	assert.Nil(t, fresh.Labor)
	assert.Equal(t, DefaultArea, fresh.EffectiveInputs().Profile.Area)
}

func TestSession_DownstreamInvalidation(t *testing.T) {
	store := NewStore(0, logging.NewDiscardLogger())

	t.Run("новые значения формы очищают все этапы", func(t *testing.T) {
		sess := filledSession(t, store)
		got, err := store.Update(sess.ID, func(s *Session) error {
			s.SetInputs(DefaultInputs())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{KeyInputs}, got.Keys())
	})

	t.Run("пересчёт трудозатрат сохраняет периоды совпадающих строк", func(t *testing.T) {
		sess := filledSession(t, store)
		got, err := store.Update(sess.ID, func(s *Session) error {
			s.SetStaffing([]models.AdjustedStaffingRow{
				{StaffingNormRow: testutil.NormRow(1, "1.1 현황조사", "일", true, true, 2)},
				{StaffingNormRow: testutil.NormRow(2, "2.1 기본구상", "일", true, true, 2)},
			})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, map[int]int{1: 3}, got.Periods)
		assert.Nil(t, got.Labor)
		assert.Nil(t, got.Estimate)
		assert.Nil(t, got.ConfirmedAmount)
	})

	t.Run("новая смета снимает подтверждение", func(t *testing.T) {
		sess := filledSession(t, store)
		got, err := store.Update(sess.ID, func(s *Session) error {
			s.SetEstimate(models.ContractEstimate{ContractAmount: 1})
			return nil
		})
		require.NoError(t, err)
		assert.Nil(t, got.ConfirmedAmount)
		assert.NotNil(t, got.Labor)
	})

	t.Run("подтверждение без сметы невозможно", func(t *testing.T) {
		s := &Session{}
		assert.False(t, s.Confirm())
	})
}

func TestStore(t *testing.T) {
	t.Run("ошибка в Update не меняет сессию", func(t *testing.T) {
		store := NewStore(0, logging.NewDiscardLogger())
		sess := filledSession(t, store)

		_, err := store.Update(sess.ID, func(s *Session) error {
			s.Reset()
			return apierrors.NewValidationError("ошибка")
		})
		require.Error(t, err)

		got, err := store.Get(sess.ID)
		require.NoError(t, err)
		assert.Len(t, got.Keys(), 6)
	})

	t.Run("копии независимы от хранилища", func(t *testing.T) {
		store := NewStore(0, logging.NewDiscardLogger())
		sess := filledSession(t, store)

		sess.Periods[1] = 99
		sess.Inputs.ProjectName = "изменено"

		got, err := store.Get(sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Periods[1])
		assert.Equal(t, "OO근린공원 조성", got.Inputs.ProjectName)
	})

	t.Run("неизвестная сессия", func(t *testing.T) {
		store := NewStore(0, logging.NewDiscardLogger())
		_, err := store.Get("missing")
		var nErr *apierrors.NotFoundError
		assert.True(t, errors.As(err, &nErr))

		_, err = store.Update("missing", func(*Session) error { return nil })
		assert.True(t, errors.As(err, &nErr))
	})

	t.Run("устаревшие сессии удаляются", func(t *testing.T) {
		store := NewStore(time.Hour, logging.NewDiscardLogger())
		now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		old := store.Create()
		now = now.Add(2 * time.Hour)
		store.Create()

		assert.Equal(t, 1, store.Len())
		_, err := store.Get(old.ID)
		assert.Error(t, err)
	})
}

func TestStore_UpdateAt(t *testing.T) {
	store := NewStore(0, logging.NewDiscardLogger())
	sess := filledSession(t, store)
	rev := sess.Revision
	require.Positive(t, rev)

	t.Run("ревизия устарела - ничего не сохраняется", func(t *testing.T) {
		// GIVEN: после чтения форму изменили
		_, err := store.Update(sess.ID, func(s *Session) error {
			in := s.EffectiveInputs()
			in.Profile.Area = 20000
			s.SetInputs(in)
			return nil
		})
		require.NoError(t, err)

		// WHEN: сохраняем результат, посчитанный по старой ревизии
		_, err = store.UpdateAt(sess.ID, rev, func(s *Session) error {
			s.SetStaffing(sess.Staffing)
			return nil
		})

		// THEN: конфликт, трудозатраты не записаны
		var cErr *apierrors.ConflictError
		require.True(t, errors.As(err, &cErr))

		current, err := store.Get(sess.ID)
		require.NoError(t, err)
		assert.Nil(t, current.Staffing)
		assert.Equal(t, 20000.0, current.EffectiveInputs().Profile.Area)
		assert.Equal(t, rev+1, current.Revision)
	})

	t.Run("актуальная ревизия", func(t *testing.T) {
		current, err := store.Get(sess.ID)
		require.NoError(t, err)

		updated, err := store.UpdateAt(sess.ID, current.Revision, func(s *Session) error {
			s.SetStaffing(sess.Staffing)
			return nil
		})
		require.NoError(t, err)
		assert.NotNil(t, updated.Staffing)
		assert.Equal(t, current.Revision+1, updated.Revision)
	})
}
