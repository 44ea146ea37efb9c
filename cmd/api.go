package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clockfix/config"
	"clockfix/erpapi"
	"clockfix/storage"
	"clockfix/worklog"
)

func newAPIClient(cfg *config.Config, userAgent string) (*erpapi.HTTPClient, error) {
	return erpapi.NewClient(erpapi.ClientConfig{
		BaseURL:   cfg.API.URL,
		Token:     cfg.API.Token,
		CompanyID: cfg.API.CompanyID,
		UserAgent: userAgent,
		Timeout:   cfg.API.Timeout,
	})
}

func openJournal(cfg *config.Config, override string) (*storage.SQLiteStore, error) {
	path := cfg.Storage.DB
	if strings.TrimSpace(override) != "" {
		path = override
	}
	return storage.OpenSQLite(path)
}

func apiContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.API.Timeout)
}

func apiContextFactory(cfg *config.Config) contextFactory {
	return func() (context.Context, context.CancelFunc) {
		return apiContext(cfg)
	}
}

// parseDayRange parses --from/--to. An empty from means today, an empty to
// means the same day as from.
func parseDayRange(fromValue, toValue string, now time.Time) (time.Time, time.Time, error) {
	fromValue = strings.TrimSpace(fromValue)
	toValue = strings.TrimSpace(toValue)

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if fromValue != "" {
		parsed, err := erpapi.ParseDay(fromValue)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
		from = parsed
	}

	to := from
	if toValue != "" {
		parsed, err := erpapi.ParseDay(toValue)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
		}
		to = parsed
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, errors.New("invalid range: --from must be <= --to")
	}
	return from, to, nil
}

// findGroup returns the first group containing a record with id.
func findGroup(groups []worklog.ConflictGroup, id worklog.RecordID) (worklog.ConflictGroup, error) {
	for _, group := range groups {
		if group.Has(id) {
			return group, nil
		}
	}
	return worklog.ConflictGroup{}, fmt.Errorf("record %s is not part of any conflict group", id)
}

func fetchGroupForRecord(cfg *config.Config, client erpapi.Client, dayValue string, recordID int64) (worklog.ConflictGroup, error) {
	day, _, err := parseDayRange(dayValue, "", time.Now())
	if err != nil {
		return worklog.ConflictGroup{}, err
	}

	ctx, cancel := apiContext(cfg)
	defer cancel()
	groups, err := client.ListConflicts(ctx, day, day)
	if err != nil {
		return worklog.ConflictGroup{}, err
	}
	return findGroup(groups, worklog.ID(recordID))
}
