// Package observability provides event logging, metrics calculation, and
// alerting for seqthink. Thought submissions and session lifecycle changes
// are recorded as JSON Lines (JSONL); metrics and alerts are derived from
// the log on demand.
package observability
