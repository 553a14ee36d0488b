package domain

type ErrorResponse struct {
	Message string              `json:"message"`
	Code    int                 `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
