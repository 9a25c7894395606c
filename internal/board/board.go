// Package board interprets drag gestures on the status board as status
// transitions. It never talks to the API; the caller acts on the Intent.
package board

import (
	"fmt"

	"github.com/Joseda-hg/lazyjobs/internal/model"
)

type IntentKind int

const (
	NoOp IntentKind = iota
	StatusChange
)

// Intent is the outcome of a completed gesture.
type Intent struct {
	Kind     IntentKind
	RecordID int64
	From     model.Status
	To       model.Status
}

func (i Intent) IsNoOp() bool {
	return i.Kind == NoOp
}

func (i Intent) String() string {
	if i.IsNoOp() {
		return "no-op"
	}
	return fmt.Sprintf("move %d: %s -> %s", i.RecordID, i.From, i.To)
}

// Lookup resolves a record by id from the caller's current list.
type Lookup func(id int64) (model.Application, bool)

// Controller holds the single active drag session. It is not safe for
// concurrent use; gestures are expected to arrive one at a time.
type Controller struct {
	lookup Lookup
	active *int64
}

func NewController(lookup Lookup) *Controller {
	return &Controller{lookup: lookup}
}

func (c *Controller) DragStart(recordID int64) {
	id := recordID
	c.active = &id
}

// DragEnd resolves a drop. dropTarget is the id of whatever the card landed
// on: a status column, another card, or "" when it landed nowhere.
func (c *Controller) DragEnd(recordID int64, dropTarget string) Intent {
	c.active = nil

	to, ok := model.ParseStatus(dropTarget)
	if !ok {
		return Intent{Kind: NoOp}
	}
	if c.lookup == nil {
		return Intent{Kind: NoOp}
	}
	record, ok := c.lookup(recordID)
	if !ok {
		return Intent{Kind: NoOp}
	}
	if record.Status == to {
		return Intent{Kind: NoOp}
	}

	return Intent{
		Kind:     StatusChange,
		RecordID: record.ID,
		From:     record.Status,
		To:       to,
	}
}

func (c *Controller) DragCancel() Intent {
	c.active = nil
	return Intent{Kind: NoOp}
}

// Active reports the record being dragged, if any.
func (c *Controller) Active() (int64, bool) {
	if c.active == nil {
		return 0, false
	}
	return *c.active, true
}
