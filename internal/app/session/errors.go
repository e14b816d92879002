package session

// Error is an application-layer error that can be mapped to a user-visible,
// non-blocking message at the presentation edge.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}
