package event

import "time"

const (
	StatusOk    = "Ok"
	StatusError = "Error"
)

type ListResponse struct {
	Status string  `json:"status"`
	Events []Event `json:"events"`
}

type Response struct {
	Status string `json:"status"`
	Event  *Event `json:"event,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Request is the body of create and update calls. The id travels in the path.
type Request struct {
	Name         string    `json:"name" minLength:"1" doc:"Event title"`
	StartDate    time.Time `json:"startDate" doc:"Start of the event"`
	EndDate      time.Time `json:"endDate" doc:"End of the event, not before the start"`
	Completed    bool      `json:"completed,omitempty"`
	Participants []string  `json:"participants,omitempty" doc:"Participant names"`
}

func NewRequest(e Event) Request {
	return Request{
		Name:         e.Name,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Completed:    e.Completed,
		Participants: e.Participants,
	}
}

func (r Request) Event(id string) Event {
	return Event{
		ID:           id,
		Name:         r.Name,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Completed:    r.Completed,
		Participants: r.Participants,
	}
}
