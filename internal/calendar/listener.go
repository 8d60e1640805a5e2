package calendar

// DataObserver is the rendering surface. OnDataChanged is called after every
// rebuild; the surface re-reads the layout and redraws.
type DataObserver interface {
	OnDataChanged()
}

// Listener receives selection lifecycle events. Registering one is optional.
type Listener interface {
	// OnRangeStarted fires after a selection with a start but no end.
	OnRangeStarted()
	// OnRangeCompleted fires after a selection with both endpoints.
	OnRangeCompleted()
}

// ObserverFunc adapts a plain function to DataObserver.
type ObserverFunc func()

func (f ObserverFunc) OnDataChanged() { f() }

// ListenerFuncs adapts a pair of functions to Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	Started   func()
	Completed func()
}

func (l ListenerFuncs) OnRangeStarted() {
	if l.Started != nil {
		l.Started()
	}
}

func (l ListenerFuncs) OnRangeCompleted() {
	if l.Completed != nil {
		l.Completed()
	}
}
