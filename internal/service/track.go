package service

import (
	"context"
	"fmt"

	"onboarding_portal/internal/model"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
)

type TrackServiceI interface {
	ListTracks(ctx context.Context) []model.Track
	SaveTrack(ctx context.Context, id model.NodeID, payload model.TrackPayload) (*model.Track, error)
	DeleteTrack(ctx context.Context, id string, confirmed bool) error
	NewTrackEditor(ctx context.Context, trackID string) (*Editor, error)
}

type TrackService struct {
	api     TrackAPI
	catalog FileCatalog
}

func NewTrackService(api TrackAPI, catalog FileCatalog) *TrackService {
	return &TrackService{api: api, catalog: catalog}
}

// ListTracks degrades to an empty list when the catalog cannot be loaded.
func (s *TrackService) ListTracks(ctx context.Context) []model.Track {
	tracks, err := s.api.ListTracks(ctx)
	if err != nil {
		logger.Component("tracks").Warn("failed to load tracks", zap.Error(err))
		return []model.Track{}
	}
	return tracks
}

// SaveTrack creates a track the portal has never seen and replaces a persisted one.
func (s *TrackService) SaveTrack(ctx context.Context, id model.NodeID, payload model.TrackPayload) (*model.Track, error) {
	if serverID, ok := id.ServerID(); ok {
		track, err := s.api.UpdateTrack(ctx, serverID, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to update track: %w", err)
		}
		return track, nil
	}

	track, err := s.api.CreateTrack(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	return track, nil
}

func (s *TrackService) DeleteTrack(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.api.DeleteTrack(ctx, id); err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return nil
}

// NewTrackEditor opens an editor on an existing track, or on a blank one when
// trackID is empty.
func (s *TrackService) NewTrackEditor(ctx context.Context, trackID string) (*Editor, error) {
	if trackID == "" {
		return NewEditor(nil, s.catalog, s.SaveTrack), nil
	}

	tracks, err := s.api.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	for i := range tracks {
		if tracks[i].ID == trackID {
			return NewEditor(&tracks[i], s.catalog, s.SaveTrack), nil
		}
	}
	return nil, fmt.Errorf("track %s: %w", trackID, ErrTrackNotFound)
}
