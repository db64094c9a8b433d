package model

import "time"

type Client struct {
	ID      uint64
	Name    string
	Email   string
	Phone   string
	Address string
}

type Service struct {
	ID          uint64
	Name        string
	Description string
	Duration    uint64
	Price       uint64
}

// Appointment references its client and service by id only; either may be
// deleted while the appointment still points at it.
type Appointment struct {
	ID        uint64
	ClientID  uint64
	ServiceID uint64
	Date      string // dd/mm/yyyy
	Time      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time // zero until the first update
}

type ClientPayload struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type ServicePayload struct {
	Name        string
	Description string
	Duration    uint64
	Price       uint64
}

type AppointmentPayload struct {
	ClientID  uint64
	ServiceID uint64
	Date      string
	Time      string
	Status    string
}
