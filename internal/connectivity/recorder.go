package connectivity

// Recorder receives tracker activity, typically for metrics.
type Recorder interface {
	ObserveClassification(from, to Classification)
	ObserveNotification(d Direction)
	ObserveSuppressed(d Direction)
	SetListeners(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveClassification(Classification, Classification) {}
func (nopRecorder) ObserveNotification(Direction)                         {}
func (nopRecorder) ObserveSuppressed(Direction)                           {}
func (nopRecorder) SetListeners(int)                                      {}
