package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Pool data providers
	CodeDexScreenerAPIError:     "DexScreener API error",
	CodeGeckoTerminalAPIError:   "GeckoTerminal API error",
	CodeInvalidProviderResponse: "Failed to fetch pool data",
	CodePoolNotFound:            "No matching liquidity pool found for this token pair.",

	// Estimation
	CodeInvalidTokenAddress:    "Invalid token address format",
	CodeInvalidAmount:          "Invalid amount: must be a positive number",
	CodeSlippageCalculationErr: "Error calculating slippage",

	// Payments (x402)
	CodePaymentRequired:           "Payment required",
	CodeInvalidPaymentHeader:      "Invalid X-PAYMENT header",
	CodePaymentVerificationFailed: "Payment verification failed",
	CodePaymentSettlementFailed:   "Payment settlement failed",
	CodeFacilitatorError:          "Payment facilitator error",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}

// Message returns the default message registered for code.
func Message(code Code) string {
	return messages[code]
}
