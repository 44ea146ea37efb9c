package resolve

import (
	"context"
	"errors"
	"fmt"

	"clockfix/erpapi"
	"clockfix/internal/classify"
	"clockfix/internal/log"
	"clockfix/internal/timeutil"
	"clockfix/storage"
	"clockfix/worklog"

	"github.com/rs/zerolog"
)

var (
	ErrMissingRecordID = errors.New("record id is required")
	ErrInvalidInterval = errors.New("interval times are missing or invalid")
	ErrNotContained    = errors.New("inner interval is not contained in outer interval")
	ErrNotInGroup      = errors.New("record is not part of the conflict group")
)

// Journal records resolution attempts before and after the remote call.
type Journal interface {
	BeginAttempt(attempt storage.Attempt) (string, error)
	FinishAttempt(id string, succeeded bool, message string) error
}

type Service struct {
	client  erpapi.Client
	journal Journal
	logger  zerolog.Logger
}

// NewService builds a resolution service. journal may be nil.
func NewService(client erpapi.Client, journal Journal) *Service {
	return &Service{
		client:  client,
		journal: journal,
		logger:  log.WithComponent("resolve"),
	}
}

// Delete removes the item identified by id from the remote API. The group is
// only used to check membership and for the journal; it is never mutated.
func (s *Service) Delete(ctx context.Context, group worklog.ConflictGroup, id worklog.RecordID) error {
	if !id.Valid {
		return ErrMissingRecordID
	}
	if !group.Has(id) {
		return fmt.Errorf("delete worklog %d: %w", id.Value, ErrNotInGroup)
	}

	subject := ""
	for _, item := range group.Items {
		if item.RecordID == id {
			subject = item.SubjectID
			break
		}
	}

	attemptID, err := s.begin(storage.Attempt{
		Action:    storage.ActionDelete,
		Day:       group.Day,
		SubjectID: subject,
		RecordIDs: []int64{id.Value},
	})
	if err != nil {
		return err
	}

	outcome, err := s.client.DeleteWorklog(ctx, id.Value)
	if err != nil {
		s.logger.Error().Err(err).Str("day", group.Day).Int64("record_id", id.Value).Msg("delete worklog failed")
		s.finish(attemptID, false, err.Error())
		return fmt.Errorf("delete worklog %d: %w", id.Value, err)
	}

	s.logger.Info().Str("day", group.Day).Int64("record_id", id.Value).Msg("worklog deleted")
	s.finish(attemptID, true, outcome.Message)
	return nil
}

// Split validates the pair, decomposes outer around inner and submits all
// segments in one call. The submitted segments are returned on success.
func (s *Service) Split(ctx context.Context, outer, inner worklog.Item) ([]worklog.Segment, error) {
	segments, err := Plan(outer, inner)
	if err != nil {
		return nil, err
	}

	attemptID, err := s.begin(storage.Attempt{
		Action:    storage.ActionSplit,
		Day:       dayOf(outer, inner),
		SubjectID: outer.SubjectID,
		RecordIDs: []int64{outer.RecordID.Value, inner.RecordID.Value},
		Segments:  len(segments),
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.client.SplitWorklog(ctx, segments)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("outer_id", outer.RecordID.Value).
			Int64("inner_id", inner.RecordID.Value).
			Msg("split worklog failed")
		s.finish(attemptID, false, err.Error())
		return nil, fmt.Errorf("split worklog %d around %d: %w", outer.RecordID.Value, inner.RecordID.Value, err)
	}

	s.logger.Info().
		Int64("outer_id", outer.RecordID.Value).
		Int64("inner_id", inner.RecordID.Value).
		Int("segments", len(segments)).
		Msg("worklog split")
	s.finish(attemptID, true, outcome.Message)
	return segments, nil
}

// Plan checks that both items carry record ids and returns the decomposition.
func Plan(outer, inner worklog.Item) ([]worklog.Segment, error) {
	if !outer.RecordID.Valid {
		return nil, fmt.Errorf("outer interval: %w", ErrMissingRecordID)
	}
	if !inner.RecordID.Valid {
		return nil, fmt.Errorf("inner interval: %w", ErrMissingRecordID)
	}
	return Decompose(outer, inner)
}

// Decompose splits outer around inner into up to three segments:
// before (outer's record), during (inner unchanged) and after (new record).
// The segments cover outer's range without gaps or overlap.
func Decompose(outer, inner worklog.Item) ([]worklog.Segment, error) {
	outerSpan, ok := classify.SpanOf(outer)
	if !ok {
		return nil, fmt.Errorf("outer interval: %w", ErrInvalidInterval)
	}
	innerSpan, ok := classify.SpanOf(inner)
	if !ok {
		return nil, fmt.Errorf("inner interval: %w", ErrInvalidInterval)
	}
	if innerSpan.Start.Before(outerSpan.Start) || innerSpan.End.After(outerSpan.End) {
		return nil, ErrNotContained
	}

	day := dayOf(outer, inner)
	segments := make([]worklog.Segment, 0, 3)

	if outerSpan.Start.Before(innerSpan.Start) {
		segments = append(segments, segment(worklog.PartBefore, outer, outer.RecordID, day, classify.Span{Start: outerSpan.Start, End: innerSpan.Start}))
	}

	innerDay := inner.Date
	if innerDay == "" {
		innerDay = day
	}
	segments = append(segments, segment(worklog.PartDuring, inner, inner.RecordID, innerDay, innerSpan))

	if innerSpan.End.Before(outerSpan.End) {
		segments = append(segments, segment(worklog.PartAfter, outer, worklog.RecordID{}, day, classify.Span{Start: innerSpan.End, End: outerSpan.End}))
	}

	return segments, nil
}

func segment(part worklog.SegmentPart, owner worklog.Item, id worklog.RecordID, day string, span classify.Span) worklog.Segment {
	return worklog.Segment{
		Part:       part,
		SubjectID:  owner.SubjectID,
		RecordID:   id,
		Label:      owner.Label,
		CategoryID: owner.CategoryID,
		Date:       day,
		Start:      timeutil.FormatClock(span.Start),
		End:        timeutil.FormatClock(span.End),
		Total:      timeutil.FormatDuration(span.Start, span.End),
	}
}

func dayOf(outer, inner worklog.Item) string {
	if outer.Date != "" {
		return outer.Date
	}
	return inner.Date
}

func (s *Service) begin(attempt storage.Attempt) (string, error) {
	if s.journal == nil {
		return "", nil
	}
	id, err := s.journal.BeginAttempt(attempt)
	if err != nil {
		return "", fmt.Errorf("journal %s attempt: %w", attempt.Action, err)
	}
	return id, nil
}

func (s *Service) finish(attemptID string, succeeded bool, message string) {
	if s.journal == nil || attemptID == "" {
		return
	}
	if err := s.journal.FinishAttempt(attemptID, succeeded, message); err != nil {
		s.logger.Warn().Err(err).Str("attempt_id", attemptID).Msg("journal outcome not recorded")
	}
}
