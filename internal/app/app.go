package app

import "seahorse/internal/domain"

// App is one account's session: its key material and the services that
// use it. Commands only talk to these interfaces.
type App struct {
	Keys     domain.KeyManager
	Friends  domain.FriendService
	Payload  domain.PayloadService
	Registry domain.Registry
}

func New(keys domain.KeyManager, friends domain.FriendService, payload domain.PayloadService, reg domain.Registry) *App {
	return &App{
		Keys:     keys,
		Friends:  friends,
		Payload:  payload,
		Registry: reg,
	}
}
