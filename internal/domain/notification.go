package domain

const (
	NotificationTypeNewClaim    = "new_claim"
	NotificationTypeUrgentClaim = "urgent_claim"

	NotificationTypeReservationConfirmed = "reservation_confirmed"
	NotificationTypeReservationCancelled = "reservation_cancelled"
	NotificationTypeReservationReminder  = "reservation_reminder"
	NotificationTypeReservationUpdated   = "reservation_updated"
	NotificationTypeAchievementUnlocked  = "achievement_unlocked"
	NotificationTypeLevelUp              = "level_up"
)

// IsKnownNotificationType reports whether value is one of the tags the backend
// is known to emit. Unknown tags are still passed through untouched.
func IsKnownNotificationType(value string) bool {
	switch value {
	case NotificationTypeNewClaim,
		NotificationTypeUrgentClaim,
		NotificationTypeReservationConfirmed,
		NotificationTypeReservationCancelled,
		NotificationTypeReservationReminder,
		NotificationTypeReservationUpdated,
		NotificationTypeAchievementUnlocked,
		NotificationTypeLevelUp:
		return true
	default:
		return false
	}
}
