package controllers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-shop/velora-backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestReleaseContextSurvivesRequestCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	detached := releaseContext(parent)

	cancel()

	require.Error(t, parent.Err())
	assert.NoError(t, detached.Err(), "compensation context must outlive the request")
	select {
	case <-detached.Done():
		t.Fatal("detached context was cancelled with its parent")
	default:
	}
}

func TestStockErrorDistinguishedFromDatabaseError(t *testing.T) {
	var se *stockError

	out := error(&stockError{name: "Walnut Coffee Table"})
	require.True(t, errors.As(out, &se))
	assert.Equal(t, "insufficient stock for Walnut Coffee Table", out.Error())

	var other *stockError
	assert.False(t, errors.As(fmt.Errorf("connection reset by peer"), &other))
}

func TestTransitionFilterPinsObservedStatus(t *testing.T) {
	id := bson.NewObjectID()

	filter := transitionFilter(id, models.OrderStatusPending)
	assert.Equal(t, id, filter["_id"])
	assert.Equal(t, models.OrderStatusPending, filter["status"])

	// a writer that already cancelled the order no longer matches the filter
	// built from the stale pending read
	assert.NotEqual(t, transitionFilter(id, models.OrderStatusCancelled)["status"], filter["status"])
}
