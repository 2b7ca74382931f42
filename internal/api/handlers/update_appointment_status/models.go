package update_appointment_status

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// UpdateStatusResponse HTTP response model
type UpdateStatusResponse struct {
	Status string `json:"status"`
}
