package errors

// Error code constants in CATEGORY_SPECIFIC_DETAIL form. The frontend
// maps these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthAccountDeactivated = "AUTH_ACCOUNT_DEACTIVATED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Throttling (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_ / CATEGORY_) ====================
	ProductNotFound    = "PRODUCT_NOT_FOUND"
	ProductSKUExists   = "PRODUCT_SKU_EXISTS"
	ProductUnavailable = "PRODUCT_UNAVAILABLE"
	CategoryNotFound   = "CATEGORY_NOT_FOUND"
	CategoryNameExists = "CATEGORY_NAME_EXISTS"

	// ==================== Cart / Orders (CART_ / ORDER_) ====================
	CartEmpty              = "CART_EMPTY"
	CartItemNotFound       = "CART_ITEM_NOT_FOUND"
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"
	OrderInsufficientStock = "ORDER_INSUFFICIENT_STOCK"
	OrderTotalOutOfBounds  = "ORDER_TOTAL_OUT_OF_BOUNDS"
	OrderAddressIncomplete = "ORDER_ADDRESS_INCOMPLETE"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewNotEligible   = "REVIEW_NOT_ELIGIBLE"

	// ==================== Wishlist (WISHLIST_) ====================
	WishlistItemExists   = "WISHLIST_ITEM_EXISTS"
	WishlistItemNotFound = "WISHLIST_ITEM_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Maintenance (TASK_) ====================
	TaskNotFound = "TASK_NOT_FOUND"
	TaskFailed   = "TASK_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
