package request

type CreateScheduleRequest struct {
	BusID         int64  `json:"bus_id" validate:"required,gt=0"`
	TravelDate    string `json:"travel_date" validate:"required,datetime=2006-01-02"`
	DepartureTime string `json:"departure_time" validate:"required,datetime=15:04"`
}

type CreateBusRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Operator string `json:"operator" validate:"required,max=64"`
	Seats    int    `json:"seats" validate:"required,gt=0"`
}
