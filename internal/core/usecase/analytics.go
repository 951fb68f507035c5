package usecase

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// EventAnalytics aggregates team participation and feedback of an event.
// Aggregates over no data are zero. Teams referenced by the event but gone from the store are not counted.
func (s *EventService) EventAnalytics(ctx context.Context, id model.ID) (*model.EventAnalytics, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	var participants []float64
	if len(event.TeamIDs) > 0 {
		teams, err := s.teams.ListTeams(ctx, ports.ListTeamsQuery{IDs: event.TeamIDs})
		if err != nil {
			return nil, fmt.Errorf("error loading event teams: %w", err)
		}
		if missing := missingIDs(event.TeamIDs, teamIDs(teams)); len(missing) > 0 {
			log.WithField("event_id", event.ID).
				WithField("team_ids", missing).
				Warn("event references teams that do not exist")
		}
		for _, t := range teams {
			participants = append(participants, float64(len(t.MemberIDs)))
		}
	}

	feedbacks, err := s.feedbacks.ListFeedbacks(ctx, ports.ListFeedbacksQuery{EventID: event.ID})
	if err != nil {
		return nil, fmt.Errorf("error loading event feedbacks: %w", err)
	}
	rates := make([]float64, len(feedbacks))
	for i, f := range feedbacks {
		rates[i] = float64(f.Rate)
	}

	ret := &model.EventAnalytics{
		TeamsCount:     len(participants),
		FeedbacksCount: len(rates),
	}
	for _, p := range participants {
		ret.ParticipantsCount += int(p)
	}
	if ret.MeanTeamsParticipants, ret.MedianTeamsParticipants, err = meanMedian(participants); err != nil {
		return nil, err
	}
	if ret.MeanRate, ret.MedianRate, err = meanMedian(rates); err != nil {
		return nil, err
	}
	return ret, nil
}

// meanMedian returns the truncated mean and median of data, zero for no data.
func meanMedian(data []float64) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, nil
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, 0, fmt.Errorf("error computing mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return 0, 0, fmt.Errorf("error computing median: %w", err)
	}
	return int(mean), int(median), nil
}
