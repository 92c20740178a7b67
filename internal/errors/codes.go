package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. Clients map these
// codes to display messages.

const (
	// Authentication (AUTH_)
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthAccountLocked      = "AUTH_ACCOUNT_LOCKED"
	AuthAccountInactive    = "AUTH_ACCOUNT_INACTIVE"

	// Authorization (AUTHZ_)
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// Validation (VALIDATION_)
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationTooShort     = "VALIDATION_TOO_SHORT"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources (RESOURCE_)
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// Catalog (PRODUCT_, CATEGORY_, BRAND_, SUPPLIER_)
	ProductNotFound   = "PRODUCT_NOT_FOUND"
	ProductOutOfStock = "PRODUCT_OUT_OF_STOCK"
	CategoryNotFound  = "CATEGORY_NOT_FOUND"
	CategoryExists    = "CATEGORY_EXISTS"
	BrandNotFound     = "BRAND_NOT_FOUND"
	SupplierNotFound  = "SUPPLIER_NOT_FOUND"

	// Cart (CART_)
	CartItemNotFound = "CART_ITEM_NOT_FOUND"

	// Orders (ORDER_)
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderEmpty             = "ORDER_EMPTY"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"
	OrderNotCancellable    = "ORDER_NOT_CANCELLABLE"
	OrderAlreadyPaid       = "ORDER_ALREADY_PAID"

	// Purchase invoices (INVOICE_)
	InvoiceNotFound        = "INVOICE_NOT_FOUND"
	InvoiceEmpty           = "INVOICE_EMPTY"
	InvoiceUnknownProducts = "INVOICE_UNKNOWN_PRODUCTS"

	// Reviews (REVIEW_)
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"

	// Uploads (UPLOAD_)
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// Internal (INTERNAL_)
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
