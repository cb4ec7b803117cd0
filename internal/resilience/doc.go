/*
Package resilience provides a circuit breaker for outbound backend calls.

# Overview

The breaker tracks consecutive failures and fails fast once the backend
looks persistently broken, instead of letting every caller wait out a
full timeout against a dead host.

# Usage

	breaker := resilience.New("backend", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
	})

	err := breaker.Do(func() error {
		return client.Call()
	})

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open
	Half-Open --[probe succeeds]-> Closed
	Half-Open --[probe fails]-> Open

While open, Do returns ErrOpen without invoking the call.
*/
package resilience
