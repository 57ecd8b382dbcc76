package service

import "github.com/google/uuid"

// NewActivationToken returns a fresh single-use activation token. Version 4
// UUIDs carry 122 bits of randomness, which puts collisions out of reach.
// uuid.New panics if the entropy source fails; there is no recovering from
// that, so the panic is left to take the process down.
func NewActivationToken() string {
	return uuid.NewString()
}
