package session

// Package session coordinates one chat interaction end to end: it validates
// inbound links, gates on channel membership, offers the quality picker,
// dispatches the fetch to the worker pool, relays throttled progress, delivers
// the media, and removes the per-request directory on every exit path.
