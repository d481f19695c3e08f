package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoTestSession_IsCompleted(t *testing.T) {
	// Arrange
	now := time.Now()
	active := &VideoTestSession{}
	completed := &VideoTestSession{CompletedAt: &now}

	// Act & Assert
	assert.False(t, active.IsCompleted(), "Сессия без completed_at не завершена")
	assert.True(t, completed.IsCompleted(), "Сессия с completed_at завершена")
}

func TestVideoTestAnswer_ReferencedTagIDs(t *testing.T) {
	// Arrange
	restartID := uint(10)
	answer := &VideoTestAnswer{
		RestartTagID:   &restartID,
		CriteriaTagIDs: UintArray{30, 31},
	}

	// Act
	ids := answer.ReferencedTagIDs()

	// Assert: sanction не выбран — только restart и criteria
	assert.ElementsMatch(t, []uint{10, 30, 31}, ids)
}

func TestVideoTestAnswer_HasDecisionTags(t *testing.T) {
	// Arrange
	sanctionID := uint(20)
	testCases := []struct {
		name     string
		answer   VideoTestAnswer
		expected bool
	}{
		{"пустой ответ", VideoTestAnswer{}, false},
		{"только sanction", VideoTestAnswer{SanctionTagID: &sanctionID}, true},
		{"только criteria", VideoTestAnswer{CriteriaTagIDs: UintArray{1}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.answer.HasDecisionTags())
		})
	}
}

// Тесты для UintArray (JSONB сериализация)

func TestUintArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	jsonBytes := []byte(`[3, 1, 2]`)
	var arr UintArray

	// Act
	err := arr.Scan(jsonBytes)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Equal(t, UintArray{3, 1, 2}, arr, "Порядок элементов должен сохраняться")
}

func TestUintArray_Scan_NullValue(t *testing.T) {
	// Arrange
	var arr UintArray

	// Act
	err := arr.Scan(nil)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для nil")
	assert.Len(t, arr, 0, "Для nil должен вернуться пустой массив")
}

func TestUintArray_Value_Nil(t *testing.T) {
	// Arrange
	var arr UintArray = nil

	// Act
	val, err := arr.Value()

	// Assert
	require.NoError(t, err, "Value не должен возвращать ошибку для nil")

	bytes, ok := val.([]byte)
	require.True(t, ok, "Value должен возвращать []byte")
	assert.Equal(t, "[]", string(bytes), "nil должен сериализоваться в []")
}

func TestUintArray_Contains(t *testing.T) {
	// Arrange
	arr := UintArray{5, 7, 9}

	// Act & Assert
	assert.True(t, arr.Contains(7))
	assert.False(t, arr.Contains(8))
}
