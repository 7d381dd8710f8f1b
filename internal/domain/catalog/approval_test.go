package catalog

import (
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	statuses := []ApprovalStatus{ApprovalPending, ApprovalAutoPass, ApprovalApproved, ApprovalRejected}
	actions := []ReviewAction{ActionApprove, ActionReject, ActionAutoPass, ActionResubmit}

	allowed := map[ApprovalStatus]map[ReviewAction]ApprovalStatus{
		ApprovalPending: {
			ActionApprove:  ApprovalApproved,
			ActionReject:   ApprovalRejected,
			ActionAutoPass: ApprovalAutoPass,
		},
		ApprovalRejected: {
			ActionResubmit: ApprovalPending,
		},
	}

	for _, from := range statuses {
		for _, action := range actions {
			t.Run(string(from)+"/"+string(action), func(t *testing.T) {
				got, err := NextStatus(from, action)
				want, ok := allowed[from][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, got)
					return
				}
				assert.ErrorIs(t, err, shared.ErrInvalidTransition)
				assert.Equal(t, from, got)
			})
		}
	}
}

func TestApprovalStatus(t *testing.T) {
	assert.True(t, ApprovalApproved.IsPublished())
	assert.True(t, ApprovalAutoPass.IsPublished())
	assert.False(t, ApprovalPending.IsPublished())
	assert.False(t, ApprovalRejected.IsPublished())
	assert.False(t, ApprovalStatus("legacy").IsValid())
}

func TestDecision_Action(t *testing.T) {
	a, err := DecisionApprove.Action()
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	a, err = DecisionReject.Action()
	require.NoError(t, err)
	assert.Equal(t, ActionReject, a)

	_, err = Decision("auto_pass").Action()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
