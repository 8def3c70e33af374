package model

// JobState is the lifecycle state of a CrawlJob.
type JobState string

const (
	JobStatePending JobState = "pending"
	JobStateLocked  JobState = "locked"
	JobStateDone    JobState = "done"
	JobStateFailed  JobState = "failed"
	JobStateExpired JobState = "expired"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s JobState) IsTerminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// IsLeased reports whether the job currently carries a bot lease.
func (s JobState) IsLeased() bool {
	return s == JobStateLocked
}

func (s JobState) Valid() bool {
	switch s {
	case JobStatePending, JobStateLocked, JobStateDone, JobStateFailed, JobStateExpired:
		return true
	}
	return false
}

// NonTerminalStates lists the states in which a (policy, url) pair counts
// as having an active job for duplicate suppression.
func NonTerminalStates() []JobState {
	return []JobState{JobStatePending, JobStateLocked, JobStateExpired}
}

// HistoryRecordStatus tracks the auto-record outcome on a CrawlResult.
type HistoryRecordStatus string

const (
	HistoryRecordNone      HistoryRecordStatus = "none"
	HistoryRecordRecorded  HistoryRecordStatus = "recorded"
	HistoryRecordDuplicate HistoryRecordStatus = "duplicate"
	HistoryRecordFailed    HistoryRecordStatus = "failed"
)
