package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookline/console/modules/assignments/domain/assignment"
)

func TestParseRefreshPolicy(t *testing.T) {
	policy, err := ParseRefreshPolicy([]byte("refresh_after_save:\n  - bundle\n  - location\n"))
	require.NoError(t, err)
	require.True(t, policy.RequiresRefresh([]assignment.Kind{assignment.KindBundle}))
	require.True(t, policy.RequiresRefresh([]assignment.Kind{assignment.KindService, assignment.KindLocation}))
	require.False(t, policy.RequiresRefresh([]assignment.Kind{assignment.KindService}))
}

func TestParseRefreshPolicyRejectsUnknownKind(t *testing.T) {
	_, err := ParseRefreshPolicy([]byte("refresh_after_save:\n  - widget\n"))
	require.Error(t, err)
}

func TestDefaultRefreshPolicyCoversBundles(t *testing.T) {
	policy := DefaultRefreshPolicy()
	require.True(t, policy.RequiresRefresh([]assignment.Kind{assignment.KindBundle}))
	require.False(t, policy.RequiresRefresh([]assignment.Kind{assignment.KindService, assignment.KindLocation}))
}

func TestCountersConfirmOnlyIncludedKinds(t *testing.T) {
	counters := NewAssignmentCounters()
	owner := assignment.OwnerRef{Kind: assignment.KindTeamMember, ID: 1}

	counters.ApplyConfirmed(owner, map[assignment.Kind]int{
		assignment.KindService:  4,
		assignment.KindLocation: 2,
	})
	counters.ApplyConfirmed(owner, map[assignment.Kind]int{
		assignment.KindService: 5,
	})

	got := counters.Get(owner)
	require.Equal(t, 5, got[assignment.KindService])
	require.Equal(t, 2, got[assignment.KindLocation])

	// Mutating the returned map must not affect the read model.
	got[assignment.KindService] = 99
	require.Equal(t, 5, counters.Get(owner)[assignment.KindService])
}
