package story

import "errors"

var (
	ErrNotOwner       = errors.New("only the author can delete a story")
	ErrDeleteInFlight = errors.New("delete already in progress")
)

type DeletionState int

const (
	DeleteIdle DeletionState = iota
	DeleteConfirming
	DeleteInFlight
)

// DeletionFlow walks an own story through confirm, delete and reload.
type DeletionFlow struct {
	state   DeletionState
	storyID string
	lastErr error
}

func (d *DeletionFlow) State() DeletionState { return d.state }
func (d *DeletionFlow) Deleting() bool { return d.state == DeleteInFlight }
func (d *DeletionFlow) Confirming() bool { return d.state == DeleteConfirming }
func (d *DeletionFlow) StoryID() string { return d.storyID }
func (d *DeletionFlow) Err() error { return d.lastErr }

// Request asks for confirmation to delete storyID.
func (d *DeletionFlow) Request(storyID string, own bool) error {
	if !own {
		return ErrNotOwner
	}
	if d.state == DeleteInFlight {
		return ErrDeleteInFlight
	}
	d.state = DeleteConfirming
	d.storyID = storyID
	d.lastErr = nil
	return nil
}

func (d *DeletionFlow) Cancel() {
	if d.state != DeleteConfirming {
		return
	}
	d.state = DeleteIdle
	d.storyID = ""
}

// Confirm moves to in-flight and returns the id the host should delete.
func (d *DeletionFlow) Confirm() (string, bool) {
	if d.state != DeleteConfirming {
		return "", false
	}
	d.state = DeleteInFlight
	return d.storyID, true
}

func (d *DeletionFlow) Fail(err error) {
	if d.state != DeleteInFlight {
		return
	}
	d.state = DeleteIdle
	d.lastErr = err
}

func (d *DeletionFlow) Done() {
	d.state = DeleteIdle
	d.storyID = ""
	d.lastErr = nil
}
