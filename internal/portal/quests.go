package portal

import (
	"context"
	"net/http"

	"onboarding_portal/internal/model"
)

func (c *Client) ListTracks(ctx context.Context) ([]model.Track, error) {
	var tracks []model.Track
	if err := c.Do(ctx, Request{Path: "/quests/tracks"}, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *Client) CreateTrack(ctx context.Context, payload model.TrackPayload) (*model.Track, error) {
	var track model.Track
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/quests/tracks", Body: payload}, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

func (c *Client) UpdateTrack(ctx context.Context, id string, payload model.TrackPayload) (*model.Track, error) {
	var track model.Track
	req := Request{Method: http.MethodPut, Path: "/quests/tracks/" + escape(id), Body: payload}
	if err := c.Do(ctx, req, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

func (c *Client) DeleteTrack(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/quests/tracks/" + escape(id)}, nil)
}

// MyTrack returns the track assigned to the session's user, or nil when the
// portal answers with no track.
func (c *Client) MyTrack(ctx context.Context) (*model.Track, error) {
	var track *model.Track
	if err := c.Do(ctx, Request{Path: "/quests/my-track"}, &track); err != nil {
		return nil, err
	}
	return track, nil
}

func (c *Client) Progress(ctx context.Context) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	if err := c.Do(ctx, Request{Path: "/quests/progress"}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) AssignTrack(ctx context.Context, userID, trackID string) error {
	req := Request{
		Method: http.MethodPost,
		Path:   "/quests/assign/" + escape(userID) + "/" + escape(trackID),
	}
	return c.Do(ctx, req, nil)
}

type taskSubmission struct {
	UserAnswer *string `json:"user_answer,omitempty"`
}

func (c *Client) SubmitTask(ctx context.Context, taskID string, answer *string) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	req := Request{
		Method: http.MethodPost,
		Path:   "/quests/tasks/" + escape(taskID) + "/submit",
		Body:   taskSubmission{UserAnswer: answer},
	}
	if err := c.Do(ctx, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
