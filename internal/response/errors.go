package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrCapabilityDenied  ErrCode = "CAPABILITY_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam lifecycle ────────────────────────────────────────────────
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrNotYetDue         ErrCode = "NOT_YET_DUE"
	ErrExamNotDraft      ErrCode = "EXAM_NOT_DRAFT"
	ErrNotExamOwner      ErrCode = "NOT_EXAM_OWNER"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrQuestionSetLocked ErrCode = "QUESTION_SET_LOCKED"

	// ─── Attempts & results ────────────────────────────────────────────
	ErrExamNotOpen      ErrCode = "EXAM_NOT_OPEN"
	ErrQuotaExceeded    ErrCode = "QUOTA_EXCEEDED"
	ErrAlreadyFinalized ErrCode = "ALREADY_FINALIZED"
	ErrDuplicateResult  ErrCode = "DUPLICATE_RESULT"

	// ─── Storage ───────────────────────────────────────────────────────
	ErrStorageUnavailable ErrCode = "STORAGE_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email/student number or password is incorrect."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCapabilityDenied:
		return "Your role does not grant this capability."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrStaffAccessOnly:
		return "This resource is restricted to staff."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Exam lifecycle ────────────────────────────────────────────────
	case ErrInvalidTransition:
		return "The exam cannot move to the requested status."
	case ErrNotYetDue:
		return "The exam cannot be activated before its start time."
	case ErrExamNotDraft:
		return "This exam is no longer a draft."
	case ErrNotExamOwner:
		return "You are not the owner of this exam."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrQuestionSetLocked:
		return "The question set cannot change once attempts exist."

	// ─── Attempts & results ────────────────────────────────────────────
	case ErrExamNotOpen:
		return "This exam is not accepting attempts right now."
	case ErrQuotaExceeded:
		return "You have used all attempts allowed for this exam."
	case ErrAlreadyFinalized:
		return "This attempt has already been finalized."
	case ErrDuplicateResult:
		return "A result already exists for this exam and student."

	// ─── Storage ───────────────────────────────────────────────────────
	case ErrStorageUnavailable:
		return "Storage is temporarily unavailable. Please retry."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
