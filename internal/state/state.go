// Package state holds the reconciled view of a translation run: progress,
// status, the last translated pair and the statistics snapshot.
package state

import (
	"fmt"
	"math/bits"
)

// ProgressSnapshot is the complete progress payload pushed by the server.
// A Total of zero means the run size is unknown or the run has not started.
type ProgressSnapshot struct {
	Completed          int     `json:"completed"`
	Total              int     `json:"total"`
	CurrentKey         *string `json:"current_key,omitempty"`
	CurrentTranslation *string `json:"current_translation,omitempty"`
	Outcome            string  `json:"status,omitempty"` // success, failed or skipped
}

// Percent returns completed/total as an integer percentage rounded half up,
// clamped to [0, 100]. It is 0 while Total is 0.
func (p ProgressSnapshot) Percent() int {
	if p.Total <= 0 || p.Completed <= 0 {
		return 0
	}
	if p.Completed >= p.Total {
		return 100
	}
	// floor(100*c/t + 0.5) == (200*c + t) / (2*t), computed in 128 bits so
	// large totals cannot overflow.
	c, t := uint64(p.Completed), uint64(p.Total)
	hi, lo := bits.Mul64(c, 200)
	lo, carry := bits.Add64(lo, t, 0)
	q, _ := bits.Div64(hi+carry, lo, 2*t)
	return int(q)
}

// StatisticsSnapshot is the aggregate counters fetched once at startup.
type StatisticsSnapshot struct {
	TotalEntries   int `json:"total_entries"`
	DictionarySize int `json:"dictionary_size"`
	CompletedCount int `json:"completed_count"`
}

// StatusKind tells presentation how a Status message should be marked.
type StatusKind int

const (
	StatusNone         StatusKind = iota // nothing reported yet
	StatusInfo                           // pipeline phase from a status event
	StatusServerError                    // error event pushed by the server
	StatusCommandError                   // a start command failed locally
)

func (k StatusKind) String() string {
	switch k {
	case StatusInfo:
		return "info"
	case StatusServerError:
		return "server-error"
	case StatusCommandError:
		return "command-error"
	default:
		return "none"
	}
}

// Status is the current human-readable pipeline status. Last write wins.
type Status struct {
	Kind    StatusKind
	Message string
}

// IsError reports whether the status describes a failure.
func (s Status) IsError() bool {
	return s.Kind == StatusServerError || s.Kind == StatusCommandError
}

// String renders the status with an error marker where applicable.
func (s Status) String() string {
	switch s.Kind {
	case StatusServerError:
		return "error: " + s.Message
	case StatusCommandError:
		return "start failed: " + s.Message
	case StatusNone:
		return "ready"
	default:
		return s.Message
	}
}

// TranslationPair is the most recent key and its translation.
type TranslationPair struct {
	Key         string
	Translation string
}

func (p TranslationPair) String() string {
	return fmt.Sprintf("%s -> %s", p.Key, p.Translation)
}

// ConnState is the lifecycle state of the push channel.
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnConnected
)

func (c ConnState) String() string {
	switch c {
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ViewState is everything presentation reads.
type ViewState struct {
	Progress   ProgressSnapshot
	Status     Status
	LastPair   *TranslationPair
	Statistics StatisticsSnapshot
	Connection ConnState
}

// ProgressPercent is the derived percentage shown by presentation.
func (v ViewState) ProgressPercent() int {
	return v.Progress.Percent()
}
