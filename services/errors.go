package services

// ServiceError is a typed error with an HTTP status code. Controllers map it
// straight onto the response; 5xx messages stay generic and the detail goes to
// the logger.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }
