package entities

type BookingRequest struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Time  string `json:"time" validate:"required,datetime=15:04"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,min=7"`
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

type BookingConfirmation struct {
	Code         string `json:"booking_code"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	DurationMins int    `json:"duration_minutes"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
}

type BookingResponse struct {
	Code         string `json:"booking_code"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	DurationMins int    `json:"duration_minutes"`
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	UserPhone    string `json:"user_phone,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Status       string `json:"status"`
}
