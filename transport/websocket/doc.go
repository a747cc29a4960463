// Package websocket implements the state-broadcast hub: clients subscribe to
// a session and receive the observable world snapshot after every turn.
package websocket
