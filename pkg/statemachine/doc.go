// Package statemachine provides a small, generic finite-state machine.
//
// States and events are any comparable types, usually string-based enums
// declared by the caller:
//
//	type state string
//	type event string
//
//	m := statemachine.MustNew[state, event]("idle",
//		statemachine.WithTransition[state, event]("idle", "running", "start"),
//		statemachine.WithTransition[state, event]("running", "done", "finish"),
//		statemachine.WithTerminal[state, event]("done"),
//	)
//	_ = m.Fire(ctx, "start", nil)
//
// Transitions may carry guards, which veto a transition based on runtime
// data, and actions, which run before the state changes and abort the
// transition when they fail. Several transitions may share the same source
// state and event; the first one whose guards pass is taken, which allows
// guard-based branching.
//
// Terminal states reject every event with ErrTerminalState. Listeners
// registered with WithListener run after the state changes and outside the
// internal lock.
package statemachine
