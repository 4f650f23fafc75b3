package saga

// Command is a control message published to the saga host at
// POST {base}/publish/{Name}. Body fields are merged with the CompanyId
// the client derives from the saga URL.
type Command struct {
	// Name is the final path segment of the publish endpoint.
	Name string

	// Body holds the command's own fields, without CompanyId.
	Body map[string]any
}

// RetryFaultedActivity asks the host to retry the faulted activity of the
// given state.
func RetryFaultedActivity(currentState string) Command {
	return Command{
		Name: "RetryFaultedActivity",
		Body: map[string]any{"retryState": currentState},
	}
}

// PauseSaga suspends message processing.
func PauseSaga() Command {
	return Command{Name: "PauseSaga"}
}

// ResumeSaga resumes a paused saga.
func ResumeSaga() Command {
	return Command{Name: "ResumeSaga"}
}

// RemoveSaga removes the saga instance from the host.
func RemoveSaga() Command {
	return Command{Name: "RemoveSaga"}
}

// RestartSaga restarts the saga from its initial state.
func RestartSaga() Command {
	return Command{Name: "RestartSaga"}
}
