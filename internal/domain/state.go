package domain

// WatcherState is the lifecycle of a single watcher.
//
//	NotStarted -> Observing -> Stopped
//	NotStarted -> Stopped          (root missing at start)
type WatcherState int

const (
	WatcherNotStarted WatcherState = iota
	WatcherObserving
	WatcherStopped
)

func (s WatcherState) String() string {
	switch s {
	case WatcherNotStarted:
		return "not_started"
	case WatcherObserving:
		return "observing"
	case WatcherStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
