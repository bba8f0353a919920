// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"
	KeyInfo    = "info"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordReset      = "auth.password_reset"

	// User Management
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserSuspended      = "user.suspended"
	KeyUserHasOrders      = "user.has_open_orders"

	// Books
	KeyBookCreated     = "book.created"
	KeyBookUpdated     = "book.updated"
	KeyBookDeleted     = "book.deleted"
	KeyBookNotFound    = "book.not_found"
	KeyBookCheckedOut  = "book.checked_out"
	KeyBookCoverSet    = "book.cover_set"
	KeyBookNoPaperType = "book.no_paper_type"

	// Genres
	KeyGenreCreated  = "genre.created"
	KeyGenreUpdated  = "genre.updated"
	KeyGenreDeleted  = "genre.deleted"
	KeyGenreNotFound = "genre.not_found"
	KeyGenreInUse    = "genre.in_use"

	// Orders
	KeyOrderCreated         = "order.created"
	KeyOrderAdvanced        = "order.advanced"
	KeyOrderDeleted         = "order.deleted"
	KeyOrderNotFound        = "order.not_found"
	KeyOrderNoCopyAvailable = "order.no_copy_available"
	KeyOrderUnsupportedType = "order.unsupported_type"
	KeyOrderInvalidStatus   = "order.invalid_status"
	KeyOrderConflict        = "order.conflict"

	// Admin
	KeyAdminActionSuccess   = "admin.action_success"
	KeyAdminAccessDenied    = "admin.access_denied"
	KeyAdminUserSuspended   = "admin.user_suspended"
	KeyAdminUserUnsuspended = "admin.user_unsuspended"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
