package apierror

// Error type URIs following the urn:healthjournal:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:healthjournal:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:healthjournal:error:not_found"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:healthjournal:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:healthjournal:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:healthjournal:error:internal"

	// TypeInvalidUUID indicates an invalid UUID format in request (400)
	TypeInvalidUUID = "urn:healthjournal:error:invalid_uuid"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:healthjournal:error:bad_request"

	// TypeInvalidMetric indicates a metric key outside the metric table (400)
	TypeInvalidMetric = "urn:healthjournal:error:invalid_metric"

	// TypeInsufficientData indicates too few tracked days for the analysis (422)
	TypeInsufficientData = "urn:healthjournal:error:insufficient_data"

	// TypeCalculation indicates degenerate input such as a constant series (422)
	TypeCalculation = "urn:healthjournal:error:calculation"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation       = "Validation Error"
	TitleNotFound         = "Resource Not Found"
	TitleRateLimit        = "Rate Limit Exceeded"
	TitleUnauthorized     = "Authentication Required"
	TitleInternal         = "Internal Server Error"
	TitleInvalidUUID      = "Invalid UUID Format"
	TitleBadRequest       = "Bad Request"
	TitleInvalidMetric    = "Unknown Metric"
	TitleInsufficientData = "Not Enough Data"
	TitleCalculation      = "Analysis Not Possible"
)
