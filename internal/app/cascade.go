package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"scholarship_admin/internal/domain/errs"
)

// Node is a record kind in the ownership graph.
type Node string

const (
	NodeCycle       Node = "cycle"
	NodeCriterion   Node = "criterion"
	NodeApplication Node = "application"
	NodeDocument    Node = "document"
	NodeReview      Node = "review"
	NodeHistory     Node = "history"
)

// ownership is the cascade rule: a parent owns the listed children, and
// children are removed before their parent, in list order.
//
//	Cycle ──► Criterion
//	      └─► Application ──► Document, Review, History
var ownership = map[Node][]Node{
	NodeCycle:       {NodeCriterion, NodeApplication},
	NodeApplication: {NodeDocument, NodeReview, NodeHistory},
}

// CascadeStore is the storage side of cascading deletes. Every child node has
// exactly one parent kind in the graph, so a child node plus a parent id is
// enough to address the rows.
type CascadeStore interface {
	// ChildIDs returns the ids of child rows owned by parentID.
	ChildIDs(ctx context.Context, child Node, parentID int64) ([]int64, error)
	// DeleteChildren removes every child row owned by parentID and reports how many went.
	DeleteChildren(ctx context.Context, child Node, parentID int64) (int64, error)
	// DeleteNode removes one row; false means it was already absent.
	DeleteNode(ctx context.Context, n Node, id int64) (bool, error)
}

// CascadeReport counts removed rows per node kind.
type CascadeReport map[Node]int64

// CascadeCoordinator walks the ownership graph post-order. It does not open a
// transaction itself: callers run it inside InTx so a failure leaves nothing
// half-deleted.
type CascadeCoordinator struct {
	logger *logrus.Entry
}

func NewCascadeCoordinator(logger *logrus.Entry) *CascadeCoordinator {
	return &CascadeCoordinator{logger: logger}
}

// Delete removes root and everything it owns. Returns errs.ErrNotFound when the
// root row itself does not exist; absent dependents are not an error.
func (c *CascadeCoordinator) Delete(ctx context.Context, s CascadeStore, root Node, id int64) (CascadeReport, error) {
	report := CascadeReport{}
	found, err := c.remove(ctx, s, root, id, report)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s %d", errs.ErrNotFound, root, id)
	}
	c.logger.WithFields(logrus.Fields{
		"root":    root,
		"root_id": id,
		"removed": report,
	}).Debug("Cascade delete completed")
	return report, nil
}

func (c *CascadeCoordinator) remove(ctx context.Context, s CascadeStore, n Node, id int64, report CascadeReport) (bool, error) {
	for _, child := range ownership[n] {
		if len(ownership[child]) == 0 {
			removed, err := s.DeleteChildren(ctx, child, id)
			if err != nil {
				return false, fmt.Errorf("delete %s rows of %s %d: %w", child, n, id, err)
			}
			report[child] += removed
			continue
		}

		ids, err := s.ChildIDs(ctx, child, id)
		if err != nil {
			return false, fmt.Errorf("list %s rows of %s %d: %w", child, n, id, err)
		}
		for _, childID := range ids {
			if _, err := c.remove(ctx, s, child, childID, report); err != nil {
				return false, err
			}
		}
	}

	found, err := s.DeleteNode(ctx, n, id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", n, id, err)
	}
	if found {
		report[n]++
	}
	return found, nil
}
