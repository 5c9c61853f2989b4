package handlers

// StatusResponse is returned by the control endpoints
type StatusResponse struct {
	Status  string `json:"status" example:"started"`
	Message string `json:"message" example:"Emotion detection started"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"no working camera found"`
}

// MessageResponse carries an informational message only.
type MessageResponse struct {
	Message string `json:"message" example:"No data available"`
}
