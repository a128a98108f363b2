package signer

// Signature Version 4 constants as used by the Product Advertising API.
const (
	// Algorithm is the signing algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// KeyPrefix seeds the first HMAC of the signing key chain.
	KeyPrefix = "AWS4"

	// TerminalString closes the credential scope and the key chain.
	TerminalString = "aws4_request"

	// TimeFormat is the x-amz-date format (YYYYMMDDTHHMMSSZ).
	TimeFormat = "20060102T150405Z"

	// ShortTimeFormat is the credential scope date format (YYYYMMDD).
	ShortTimeFormat = "20060102"
)

// Header names. All lower-case, the form in which they are signed.
const (
	HeaderAuthorization   = "Authorization"
	HeaderContentEncoding = "content-encoding"
	HeaderContentType     = "content-type"
	HeaderHost            = "host"
	HeaderAmzDate         = "x-amz-date"
	HeaderAmzTarget       = "x-amz-target"
)

// PA-API 5 wire constants.
const (
	DefaultHost    = "webservices.amazon.com"
	DefaultRegion  = "us-east-1"
	DefaultService = "ProductAdvertisingAPI"

	// ContentEncoding is the fixed content-encoding PA-API expects.
	ContentEncoding = "amz-1.0"

	// ContentType is the JSON content type sent with every operation.
	ContentType = "application/json; charset=utf-8"

	// TargetPrefix is prepended to the operation name in x-amz-target.
	TargetPrefix = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1."

	// PathPrefix is prepended to the lower-cased operation name.
	PathPrefix = "/paapi5/"
)

// requiredHeaders must be present in every envelope before signing.
var requiredHeaders = []string{
	HeaderContentType,
	HeaderHost,
	HeaderAmzDate,
	HeaderAmzTarget,
}
