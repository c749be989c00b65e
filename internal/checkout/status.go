package checkout

type Status string

const (
	StatusLoadingProfile  Status = "LOADING_PROFILE"
	StatusReady           Status = "READY"
	StatusValidating      Status = "VALIDATING"
	StatusCODSubmitting   Status = "COD_SUBMITTING"
	StatusInitiating      Status = "ONLINE_INITIATING"
	StatusAwaitingGateway Status = "ONLINE_AWAITING_GATEWAY"
	StatusVerifying       Status = "ONLINE_VERIFYING"
	StatusFinalizing      Status = "FINALIZING"
	StatusDone            Status = "DONE"
	StatusFailed          Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
