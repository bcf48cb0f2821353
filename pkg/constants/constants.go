package constants

import "time"

const (
	// APIVersion is the path segment every ECHO REST endpoint lives under.
	APIVersion = "rest_api=1.0"

	HTTPSecureScheme = "https"

	HeaderAppID       = "X-ECHO-APP-ID"
	HeaderAppKey      = "X-ECHO-APP-KEY"
	HeaderAccessToken = "X-ECHO-ACCESS-TOKEN"
	HeaderDeviceToken = "X-ECHO-DEVICE-TOKEN"

	DefaultHTTPTimeout = 30 * time.Second

	// DateLayout is the wire form of every date field.
	DateLayout = "2006-01-02 15:04:05"
	DateLength = len(DateLayout)
)

// Server error codes.
const (
	CodeUnknown               = 0
	CodeMethodNotAllowed      = 100010
	CodeAuthFailed            = 100020
	CodeAccessDenied          = 100030
	CodeResourceNotFound      = 110010
	CodeInvalidParameter      = 110020
	CodeUnsupportedMediaType  = 110030
	CodeRequestEntityTooLarge = 110040
	CodeInvalidJSONFormat     = 110050
	CodeInternalServerError   = 130000
	CodeServiceUnavailable    = 130010
	CodeRequestTimeout        = 130020
	CodeValidationFailed      = 150000
	CodeRequired              = 150010
	CodeInvalidFormat         = 150020
	CodeTooLong               = 150030
	CodeTooShort              = 150040
	CodeTooLarge              = 150050
	CodeTooSmall              = 150060
	CodeNotUnique             = 150070
	CodeInvalidChoice         = 150080
	CodeInvalidDate           = 150090
	CodeInvalidFile           = 150100
	CodeFileTooLarge          = 150110
	CodeInvalidEmail          = 150120
)
