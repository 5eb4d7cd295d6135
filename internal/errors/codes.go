package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"    // only the publisher may do this
	AuthzBusinessOnly = "AUTHZ_BUSINESS_ONLY" // business accounts only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Listings (LISTING_) ====================
	ListingNotFound = "LISTING_NOT_FOUND"

	// ==================== Favorites (FAVORITE_) ====================
	FavoriteAlreadyExists = "FAVORITE_ALREADY_EXISTS"

	// ==================== Comparison (COMPARE_) ====================
	CompareTooManySlots = "COMPARE_TOO_MANY_SLOTS"

	// ==================== Profiles (PROFILE_) ====================
	ProfileNotFound = "PROFILE_NOT_FOUND"

	// ==================== Legacy store (CART_, PRODUCT_, ORDER_) ====================
	CartEmpty       = "CART_EMPTY"
	ProductNotFound = "PRODUCT_NOT_FOUND"
	OrderNotFound   = "ORDER_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadTooLarge        = "UPLOAD_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
