package state

// Reducer returns the next state from the previous one. Reducers never modify
// the pointers reachable from their input.
type Reducer func(ViewState) ViewState

// WithProgress replaces the progress snapshot wholesale. The last pair is
// derived only when both the key and its translation are present.
func WithProgress(p ProgressSnapshot) Reducer {
	return func(v ViewState) ViewState {
		v.Progress = p
		if p.CurrentKey != nil && p.CurrentTranslation != nil {
			v.LastPair = &TranslationPair{
				Key:         *p.CurrentKey,
				Translation: *p.CurrentTranslation,
			}
		}
		return v
	}
}

// WithStatus sets an informational status message.
func WithStatus(message string) Reducer {
	return withStatus(StatusInfo, message)
}

// WithServerError sets a status reported by the server as a pipeline error.
func WithServerError(message string) Reducer {
	return withStatus(StatusServerError, message)
}

// WithCommandError sets a status describing a failed start command.
func WithCommandError(message string) Reducer {
	return withStatus(StatusCommandError, message)
}

func withStatus(kind StatusKind, message string) Reducer {
	return func(v ViewState) ViewState {
		v.Status = Status{Kind: kind, Message: message}
		return v
	}
}

// WithStatistics merges the startup statistics snapshot.
func WithStatistics(s StatisticsSnapshot) Reducer {
	return func(v ViewState) ViewState {
		v.Statistics = s
		return v
	}
}

// WithConnection records the push channel state.
func WithConnection(c ConnState) Reducer {
	return func(v ViewState) ViewState {
		v.Connection = c
		return v
	}
}
