package trenord

// TrainDocument is one element of the JSON array returned by the train
// endpoint. A document groups the journeys Trenord knows for a train
// number, including historical runs on other dates.
type TrainDocument struct {
	JourneyList []Journey `json:"journey_list"`
}

// Journey is a single run of a train: its header plus the list of
// stations it passes through.
type Journey struct {
	Train    JourneyTrain `json:"train"`
	PassList []Passing    `json:"pass_list"`
}

// JourneyTrain is the header of a journey.
type JourneyTrain struct {
	Date       string    `json:"date"` // yyyyMMdd
	ActualTime string    `json:"actual_time"`
	Crowding   *Crowding `json:"crowding"`
}

// Crowding is the optional crowding estimate of a journey. Both fields may
// be missing independently; absent means unknown, not zero.
type Crowding struct {
	Percentage *float64 `json:"percentage"`
	Source     *string  `json:"source"`
}

// Passing is one stop of a journey's pass_list. Scheduled times are naive
// HH:MM:SS wall-clock strings; the date they belong to is up to the caller.
type Passing struct {
	Station       *PassingStation `json:"station"`
	Type          string          `json:"type"` // O = first, F = intermediate, D = last
	Cancelled     bool            `json:"cancelled"`
	ArrivalTime   string          `json:"arr_time"`
	DepartureTime string          `json:"dep_time"`
	Platform      string          `json:"platform"`
	ActualData    *ActualData     `json:"actual_data"`
}

// PassingStation identifies the station of a Passing. Code is the primary
// (ViaggiaTreno-style) station code; ID is Trenord's internal identifier,
// sometimes the only one present. Both can be missing on broken records.
type PassingStation struct {
	Code string `json:"station_code"`
	ID   string `json:"station_id"`
	Name string `json:"name"`
}

// ActualData carries the observed times of a Passing, when any exist.
type ActualData struct {
	ArrivalTime   string `json:"arr_actual_time"`
	DepartureTime string `json:"dep_actual_time"`
	Platform      string `json:"platform"`
}
