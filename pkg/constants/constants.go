package constants

import "github.com/go-playground/validator/v10"

// Validate is the process-wide validator used by DTO validation.
var Validate = validator.New(validator.WithRequiredStructEnabled())

type ContextKey string

const (
	AppKey       ContextKey = "app"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	TenantIDKey  ContextKey = "tenantID"
	RequestIDKey ContextKey = "requestID"
)
