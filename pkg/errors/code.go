package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Auth & Token errors
// 13000-13499: Submission & Review workflow errors
// 13500-13599: Metrics & Reporting errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError     ErrorCode = 10100
	RecordNotFound    ErrorCode = 10101
	TransactionFailed ErrorCode = 10102

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200

	// Storage errors (10300-10399)
	StorageError        ErrorCode = 10300
	ContentUploadFailed ErrorCode = 10301
	ContentTooLarge     ErrorCode = 10302

	// Validation errors (10400-10499)
	ValidationFailed   ErrorCode = 10400
	InvalidValue       ErrorCode = 10401
	RequiredFieldEmpty ErrorCode = 10402

	// ========== Auth & Token Errors (11000-11999) ==========

	TokenExpired ErrorCode = 11000
	TokenInvalid ErrorCode = 11001

	// ========== Submission & Review Errors (13000-13499) ==========

	// Submission intake (13000-13099)
	SubmissionNotFound     ErrorCode = 13000
	SubmissionCreateFailed ErrorCode = 13001
	TitleRequired          ErrorCode = 13002
	ContentRequired        ErrorCode = 13003
	InvalidMaterialType    ErrorCode = 13004
	InvalidSource          ErrorCode = 13005
	InvalidPageCount       ErrorCode = 13006

	// Review queue (13100-13199)
	SubmissionNotPending ErrorCode = 13100
	ReviewerRequired     ErrorCode = 13101
	AssignFailed         ErrorCode = 13102
	InvalidStatusFilter  ErrorCode = 13103

	// Requirements catalog (13200-13299)
	RequirementsNotFound ErrorCode = 13200

	// ========== Metrics & Reporting Errors (13500-13599) ==========

	MetricsComputeFailed ErrorCode = 13500
	InvalidPeriod        ErrorCode = 13501
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:     "Database operation failed",
	RecordNotFound:    "Record not found in database",
	TransactionFailed: "Database transaction failed",

	// Cache
	CacheError: "Cache operation failed",

	// Storage
	StorageError:        "Object storage operation failed",
	ContentUploadFailed: "Failed to store uploaded content",
	ContentTooLarge:     "Uploaded content is too large",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Auth
	TokenExpired: "Token has expired",
	TokenInvalid: "Invalid token",

	// Submission intake
	SubmissionNotFound:     "Submission not found",
	SubmissionCreateFailed: "Failed to create submission",
	TitleRequired:          "Please provide a title for your submission",
	ContentRequired:        "Please upload a file for review",
	InvalidMaterialType:    "Unknown material type",
	InvalidSource:          "Unknown submission source",
	InvalidPageCount:       "Page count must be between 1 and 100",

	// Review queue
	SubmissionNotPending: "Submission is not pending assignment",
	ReviewerRequired:     "Reviewer name is required",
	AssignFailed:         "Failed to assign reviewer",
	InvalidStatusFilter:  "Unknown status in filter",

	// Requirements
	RequirementsNotFound: "No requirements defined for this category",

	// Metrics
	MetricsComputeFailed: "Failed to compute metrics",
	InvalidPeriod:        "Invalid reporting period",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == Unauthorized, c == TokenExpired, c == TokenInvalid:
		return 401
	case c == Forbidden:
		return 403
	case c == NotFound, c == SubmissionNotFound, c == RequirementsNotFound:
		return 404
	case c == SubmissionNotPending:
		return 409
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= ValidationFailed && c <= RequiredFieldEmpty:
		return 400
	case c == InvalidParams, c == ContentTooLarge:
		return 400
	case c >= TitleRequired && c <= InvalidPageCount:
		return 400
	case c == ReviewerRequired, c == InvalidStatusFilter, c == InvalidPeriod:
		return 400
	default:
		return 500
	}
}
