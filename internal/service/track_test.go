package service

import (
	"context"
	"errors"
	"testing"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrackService_SaveTrack(t *testing.T) {
	payload := model.TrackPayload{Name: "Onboarding"}

	tests := []struct {
		name      string
		id        model.NodeID
		mockSetup func(api *mocks.MockPortalAPI)
		method    string
	}{
		{
			name: "Draft is created",
			id:   model.Draft("temp_track_1_1"),
			mockSetup: func(api *mocks.MockPortalAPI) {
				api.On("CreateTrack", mock.Anything, payload).Return(&model.Track{ID: "t1", Name: "Onboarding"}, nil)
			},
			method: "CreateTrack",
		},
		{
			name: "Persisted is updated",
			id:   model.Persisted("t1"),
			mockSetup: func(api *mocks.MockPortalAPI) {
				api.On("UpdateTrack", mock.Anything, "t1", payload).Return(&model.Track{ID: "t1", Name: "Onboarding"}, nil)
			},
			method: "UpdateTrack",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockPortalAPI{}
			tt.mockSetup(api)

			track, err := NewTrackService(api, api).SaveTrack(context.Background(), tt.id, payload)
			require.NoError(t, err)
			assert.Equal(t, "t1", track.ID)
			api.AssertNumberOfCalls(t, tt.method, 1)
		})
	}
}

func TestTrackService_DeleteTrack(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("DeleteTrack", mock.Anything, "t1").Return(nil).Once()
	s := NewTrackService(api, api)

	assert.ErrorIs(t, s.DeleteTrack(context.Background(), "t1", false), ErrConfirmationRequired)
	api.AssertNotCalled(t, "DeleteTrack", mock.Anything, mock.Anything)

	assert.NoError(t, s.DeleteTrack(context.Background(), "t1", true))
	api.AssertExpectations(t)
}

func TestTrackService_ListTracksDegrades(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("ListTracks", mock.Anything).Return(nil, errors.New("Error 500"))

	tracks := NewTrackService(api, api).ListTracks(context.Background())
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestTrackService_NewTrackEditor(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("ListTracks", mock.Anything).Return([]model.Track{
		{ID: "t1", Name: "Onboarding", Stages: []model.Stage{{ID: "s1", Title: "Welcome"}}},
	}, nil)
	s := NewTrackService(api, api)

	blank, err := s.NewTrackEditor(context.Background(), "")
	require.NoError(t, err)
	state := blank.State()
	assert.True(t, state.ID.IsDraft())
	assert.Len(t, state.Stages, 1)

	existing, err := s.NewTrackEditor(context.Background(), "t1")
	require.NoError(t, err)
	state = existing.State()
	assert.Equal(t, model.Persisted("t1"), state.ID)
	assert.Equal(t, "Onboarding", state.Name)
	require.Len(t, state.Stages, 1)
	assert.Equal(t, "Welcome", state.Stages[0].Title)

	_, err = s.NewTrackEditor(context.Background(), "t9")
	assert.ErrorIs(t, err, ErrTrackNotFound)
}
