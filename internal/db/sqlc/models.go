package db

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleHuurder     UserRole = "huurder"     // tenant
	UserRoleVerhuurder  UserRole = "verhuurder"  // landlord
	UserRoleBeoordelaar UserRole = "beoordelaar" // document reviewer
	UserRoleBeheerder   UserRole = "beheerder"   // administrator
)

type NotificationCategory string

const (
	NotificationCategoryProfileMatch        NotificationCategory = "profile_match"
	NotificationCategoryViewingInvitation   NotificationCategory = "viewing_invitation"
	NotificationCategoryPaymentSuccess      NotificationCategory = "payment_success"
	NotificationCategoryPaymentFailed       NotificationCategory = "payment_failed"
	NotificationCategoryDocumentApproved    NotificationCategory = "document_approved"
	NotificationCategoryDocumentRejected    NotificationCategory = "document_rejected"
	NotificationCategoryApplicationReceived NotificationCategory = "application_received"
	NotificationCategorySystemAnnouncement  NotificationCategory = "system_announcement"
)

// IsValid reports whether the category is one of the known values.
func (c NotificationCategory) IsValid() bool {
	switch c {
	case NotificationCategoryProfileMatch,
		NotificationCategoryViewingInvitation,
		NotificationCategoryPaymentSuccess,
		NotificationCategoryPaymentFailed,
		NotificationCategoryDocumentApproved,
		NotificationCategoryDocumentRejected,
		NotificationCategoryApplicationReceived,
		NotificationCategorySystemAnnouncement:
		return true
	}
	return false
}

type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Notification struct {
	ID          uuid.UUID            `json:"id"`
	RecipientID string               `json:"recipient_id"`
	Category    NotificationCategory `json:"category"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	IsRead      bool                 `json:"is_read"`
	RelatedID   *string              `json:"related_id"`
	RelatedType *string              `json:"related_type"`
	CreatedAt   time.Time            `json:"created_at"`
}
