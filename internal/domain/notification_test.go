package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsKnownNotificationType(t *testing.T) {
	t.Run("known types", func(t *testing.T) {
		known := []string{
			NotificationTypeNewClaim,
			NotificationTypeUrgentClaim,
			NotificationTypeReservationConfirmed,
			NotificationTypeReservationCancelled,
			NotificationTypeReservationReminder,
			NotificationTypeReservationUpdated,
			NotificationTypeAchievementUnlocked,
			NotificationTypeLevelUp,
		}
		for _, v := range known {
			require.True(t, IsKnownNotificationType(v), "expected known type: %s", v)
		}
	})

	t.Run("unknown types", func(t *testing.T) {
		unknown := []string{"", "new_claims", "info", "reservation"}
		for _, v := range unknown {
			require.False(t, IsKnownNotificationType(v), "expected unknown type: %s", v)
		}
	})
}

func TestParseSource(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, want := range Sources() {
			got, err := ParseSource(string(want))
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, v := range []string{"", "Admin", "users", "system"} {
			_, err := ParseSource(v)
			require.ErrorIs(t, err, ErrUnknownSource, "value %q", v)
		}
	})

	t.Run("delete support", func(t *testing.T) {
		require.True(t, SourceUser.SupportsDelete())
		require.False(t, SourceAdmin.SupportsDelete())
	})
}
