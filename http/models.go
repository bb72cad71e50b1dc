package http

type ErrorResponse struct {
	Message string `json:"message"`
}
