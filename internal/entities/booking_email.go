package entities

type BookingEmailData struct {
	UserName      string
	BookingCode   string
	DateFormatted string
	TimeFormatted string
	DurationMins  int
	Notes         string
	CurrentYear   int
	Status        string
}
