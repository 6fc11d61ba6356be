package event

import "eventkeeper/internal/domain/event"

type listOutput struct {
	Body event.ListResponse
}

type output struct {
	Body event.Response
}

type findInput struct {
	ID string `path:"id" example:"42" doc:"Event id"`
}

type createInput struct {
	Body event.Request
}

type updateInput struct {
	ID   string `path:"id" example:"42" doc:"Event id"`
	Body event.Request
}

type deleteInput struct {
	ID string `path:"id" example:"42" doc:"Event id"`
}
