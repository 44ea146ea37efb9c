// Package flow holds the per-group resolution state machine:
//
//	Idle -> MenuOpen -> DeletePreview -> Idle
//	Idle -> SplitPreview -> Idle
//
// Transitions happen only through the Controller methods. A preview is left
// through Confirm or Cancel, so at most one preview is active per group.
package flow

import (
	"context"
	"errors"
	"fmt"

	"clockfix/internal/classify"
	"clockfix/resolve"
	"clockfix/worklog"
)

type State int

const (
	Idle State = iota
	MenuOpen
	DeletePreview
	SplitPreview
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MenuOpen:
		return "menu-open"
	case DeletePreview:
		return "delete-preview"
	case SplitPreview:
		return "split-preview"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotOffered        = errors.New("strategy not offered for this group")
	ErrNotCandidate      = errors.New("record is not a delete candidate")
	ErrStale             = errors.New("group changed remotely; re-fetch before resolving")
)

// Resolver commits a staged resolution.
type Resolver interface {
	Delete(ctx context.Context, group worklog.ConflictGroup, id worklog.RecordID) error
	Split(ctx context.Context, outer, inner worklog.Item) ([]worklog.Segment, error)
}

type Controller struct {
	group    worklog.ConflictGroup
	result   classify.Result
	resolver Resolver

	state   State
	staged  worklog.Item
	preview []worklog.Segment
	stale   bool
}

func New(group worklog.ConflictGroup, resolver Resolver) *Controller {
	return &Controller{
		group:    group,
		result:   classify.Classify(group),
		resolver: resolver,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Group() worklog.ConflictGroup {
	return c.group
}

func (c *Controller) Classification() classify.Result {
	return c.result
}

// Staged returns the item selected for deletion while in DeletePreview.
func (c *Controller) Staged() (worklog.Item, bool) {
	if c.state != DeletePreview {
		return worklog.Item{}, false
	}
	return c.staged, true
}

// Preview returns the read-only decomposition while in SplitPreview.
func (c *Controller) Preview() []worklog.Segment {
	if c.state != SplitPreview {
		return nil
	}
	return append([]worklog.Segment(nil), c.preview...)
}

// Stale reports whether a confirmed resolution changed remote data; the
// group must be re-fetched before further use.
func (c *Controller) Stale() bool {
	return c.stale
}

func (c *Controller) OpenMenu() error {
	if err := c.expect("open menu", Idle); err != nil {
		return err
	}
	if c.stale {
		return ErrStale
	}
	if len(c.result.DeleteCandidates) == 0 {
		return fmt.Errorf("open menu: %w: no item carries a record id", ErrNotOffered)
	}
	c.state = MenuOpen
	return nil
}

func (c *Controller) StageDelete(id worklog.RecordID) error {
	if err := c.expect("stage delete", MenuOpen); err != nil {
		return err
	}
	for _, item := range c.result.DeleteCandidates {
		if item.RecordID == id {
			c.staged = item
			c.state = DeletePreview
			return nil
		}
	}
	return fmt.Errorf("stage delete %s: %w", id, ErrNotCandidate)
}

// StageSplit is allowed from Idle and from MenuOpen.
func (c *Controller) StageSplit() error {
	if err := c.expect("stage split", Idle, MenuOpen); err != nil {
		return err
	}
	if c.stale {
		return ErrStale
	}
	if c.result.Split == nil {
		return fmt.Errorf("stage split: %w: %s", ErrNotOffered, c.result.Reason)
	}
	segments, err := resolve.Plan(c.result.Split.Outer, c.result.Split.Inner)
	if err != nil {
		return fmt.Errorf("stage split: %w", err)
	}
	c.preview = segments
	c.state = SplitPreview
	return nil
}

func (c *Controller) Cancel() {
	c.reset()
}

// Confirm commits the active preview and returns to Idle whatever the
// outcome. On failure the group is unchanged and the action may be staged
// again.
func (c *Controller) Confirm(ctx context.Context) error {
	if err := c.expect("confirm", DeletePreview, SplitPreview); err != nil {
		return err
	}

	var err error
	switch c.state {
	case DeletePreview:
		err = c.resolver.Delete(ctx, c.group, c.staged.RecordID)
	case SplitPreview:
		_, err = c.resolver.Split(ctx, c.result.Split.Outer, c.result.Split.Inner)
	}
	c.reset()
	if err != nil {
		return err
	}
	c.stale = true
	return nil
}

func (c *Controller) expect(event string, allowed ...State) error {
	for _, state := range allowed {
		if c.state == state {
			return nil
		}
	}
	return fmt.Errorf("%s from %s: %w", event, c.state, ErrInvalidTransition)
}

func (c *Controller) reset() {
	c.state = Idle
	c.staged = worklog.Item{}
	c.preview = nil
}
