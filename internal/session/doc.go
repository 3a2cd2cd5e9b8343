// Package session is the headless client core: it submits check jobs, polls
// them to completion, keeps the results in a single state container and
// derives viewer colors from that state.
//
// Subpackages, leaves first: store, projector, poller, submit, viewer.
package session
