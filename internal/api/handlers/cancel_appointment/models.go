package cancel_appointment

// CancelAppointmentRequest HTTP request model
type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// CancelAppointmentResponse HTTP response model
type CancelAppointmentResponse struct {
	Status string `json:"status"`
}
