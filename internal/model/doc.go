package model

// Package model defines domain data structures shared across the bot: quality
// selections and their format directives, fetch requests and results, progress
// events, and the engine-neutral media metadata returned by probes.
