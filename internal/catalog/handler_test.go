package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	storeMock := NewMockexercisesStore(ctrl)
	h := catalog.NewHandler(storeMock)

	now := time.Now()
	exercises := []catalog.Exercise{
		{ID: 1, Name: "Bench Press", MuscleGroup: catalog.MuscleGroupChest, Equipment: catalog.EquipmentBarbell, CreatedAt: now},
		{ID: 2, Name: "Incline Bench Press", MuscleGroup: catalog.MuscleGroupChest, CreatedAt: now},
	}

	storeMock.EXPECT().
		Search(gomock.Any(), catalog.SearchParams{Query: "bench", MuscleGroup: "chest"}).
		Return(exercises, nil).
		Times(1)

	req, err := http.NewRequest("GET", "/exercises?q=%20bench%20&muscleGroup=chest", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp catalog.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Exercises, 2)
	assert.Equal(t, "Bench Press", resp.Exercises[0].Name)
	assert.Equal(t, catalog.EquipmentBarbell, resp.Exercises[0].Equipment)
}

func TestHandler_HandleList_InvalidMuscleGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	storeMock := NewMockexercisesStore(ctrl)
	h := catalog.NewHandler(storeMock)

	req, err := http.NewRequest("GET", "/exercises?muscleGroup=neck", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleList_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	storeMock := NewMockexercisesStore(ctrl)
	h := catalog.NewHandler(storeMock)

	storeMock.EXPECT().
		Search(gomock.Any(), catalog.SearchParams{}).
		Return(nil, fmt.Errorf("db down")).
		Times(1)

	req, err := http.NewRequest("GET", "/exercises", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_HandleCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	storeMock := NewMockexercisesStore(ctrl)
	h := catalog.NewHandler(storeMock)

	body := `{"name": "  Cable Face Pull ", "muscleGroup": "shoulders", "equipment": "machine", "description": "pull to the face"}`
	req, err := http.NewRequest("POST", "/exercises", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(identity.WithUserID(req.Context(), "user-42"))

	storeMock.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e catalog.Exercise) (*catalog.Exercise, error) {
			assert.Equal(t, "Cable Face Pull", e.Name)
			assert.Equal(t, catalog.MuscleGroupShoulders, e.MuscleGroup)
			assert.Equal(t, catalog.EquipmentMachine, e.Equipment)
			assert.Equal(t, "user-42", e.CreatedBy)
			e.ID = 7
			return &e, nil
		}).
		Times(1)

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created catalog.Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Cable Face Pull", created.Name)
}

func TestHandler_HandleCreate_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "wrong content type", contentType: "text/plain", body: `{"name":"Row","muscleGroup":"back"}`},
		{name: "broken json", contentType: "application/json", body: `{"name":`},
		{name: "empty name", contentType: "application/json", body: `{"name":"  ","muscleGroup":"back"}`},
		{name: "name too long", contentType: "application/json", body: fmt.Sprintf(`{"name":%q,"muscleGroup":"back"}`, strings.Repeat("a", 101))},
		{name: "invalid muscle group", contentType: "application/json", body: `{"name":"Row","muscleGroup":"neck"}`},
		{name: "missing muscle group", contentType: "application/json", body: `{"name":"Row"}`},
		{name: "invalid equipment", contentType: "application/json", body: `{"name":"Row","muscleGroup":"back","equipment":"kettlebell"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			storeMock := NewMockexercisesStore(ctrl)
			h := catalog.NewHandler(storeMock)

			req, err := http.NewRequest("POST", "/exercises", bytes.NewReader([]byte(tc.body)))
			require.NoError(t, err)
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_HandleCreate_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	storeMock := NewMockexercisesStore(ctrl)
	h := catalog.NewHandler(storeMock)

	storeMock.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: Goblet Squat", catalog.ErrExerciseExists)).
		Times(1)

	req, err := http.NewRequest("POST", "/exercises", strings.NewReader(`{"name":"Goblet Squat","muscleGroup":"legs"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
