package errors

const (
	RequestParameterInvalid int = 4001
	RequestDataExists       int = 4002
	AuthFailed              int = 4003
	RequestDataNotExisted   int = 4004
	PermissionDeny          int = 4005

	CodeJobNotLocked      int = 4101
	CodeLeaseExpired      int = 4102
	CodeNotAssigned       int = 4103
	CodeIllegalTransition int = 4104

	InternalError     int = 5000
	InvalidDataError  int = 5001
	CodeDatabaseError int = 5002
	CodeCacheError    int = 5003
	CodeQueueError    int = 5004

	CodeInitializeError int = 7001
	CodeLackOfConfig    int = 7002
)

// IsStateConflict reports whether the code is one of the job state
// conflict codes that map to 400/403 at the boundary.
func IsStateConflict(code int) bool {
	switch code {
	case CodeJobNotLocked, CodeLeaseExpired, CodeNotAssigned, CodeIllegalTransition:
		return true
	}
	return false
}
