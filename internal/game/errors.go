package game

import "errors"

var (
	// ErrData marks a malformed content definition: an unknown definition id,
	// a target query that must resolve to exactly one entity, disposing a
	// character. The current effect is aborted.
	ErrData = errors.New("data error")

	// ErrIO marks a player response that matches no legal candidate, or a
	// failure of the player's channel.
	ErrIO = errors.New("io error")

	// ErrMalformedMutation is returned by Apply for a mutation that does not
	// fit the state it is applied to.
	ErrMalformedMutation = errors.New("malformed mutation")
)
