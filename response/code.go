package response

type ErrorCode int

const (
	OK ErrorCode = 0

	InvalidRequest ErrorCode = 40001

	Unauthenticated ErrorCode = 40101
	TokenExpired    ErrorCode = 40102
	InvalidToken    ErrorCode = 40103

	Forbidden ErrorCode = 40301

	NotFound ErrorCode = 40401

	// Uniqueness violations share HTTP 400 with validation errors
	Conflict ErrorCode = 40901

	Internal ErrorCode = 50001
)
