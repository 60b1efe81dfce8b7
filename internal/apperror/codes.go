package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Slippage-specific error codes
const (
	// Pool data providers
	CodeDexScreenerAPIError     Code = "DEXSCREENER_API_ERROR"
	CodeGeckoTerminalAPIError   Code = "GECKOTERMINAL_API_ERROR"
	CodeInvalidProviderResponse Code = "INVALID_PROVIDER_RESPONSE"
	CodePoolNotFound            Code = "POOL_NOT_FOUND"

	// Estimation
	CodeInvalidTokenAddress    Code = "INVALID_TOKEN_ADDRESS"
	CodeInvalidAmount          Code = "INVALID_AMOUNT"
	CodeSlippageCalculationErr Code = "SLIPPAGE_CALCULATION_ERROR"

	// Payments (x402)
	CodePaymentRequired           Code = "PAYMENT_REQUIRED"
	CodeInvalidPaymentHeader      Code = "INVALID_PAYMENT_HEADER"
	CodePaymentVerificationFailed Code = "PAYMENT_VERIFICATION_FAILED"
	CodePaymentSettlementFailed   Code = "PAYMENT_SETTLEMENT_FAILED"
	CodeFacilitatorError          Code = "FACILITATOR_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
