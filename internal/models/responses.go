package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   string      `json:"error" example:"requested window conflicts with existing entries"`
	Details interface{} `json:"details,omitempty"`
	Field   string      `json:"field,omitempty" example:"ubicacion"`
	Code    string      `json:"code" example:"CONFLICT"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// Page wraps a listing with its pagination window
type Page struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
