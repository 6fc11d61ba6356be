package health

import "time"

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status string    `json:"status" example:"OK" doc:"Health status of the service"`
	Time   time.Time `json:"time" doc:"Server time in UTC"`
}
