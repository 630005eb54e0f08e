package evergreen

// EventKind identifies a SceneEvent.
type EventKind uint8

const (
	EventLotteryStarted EventKind = iota
	EventLotteryShuffled
	EventLotteryStopped
	EventCardFlipped
	EventLotteryExited
	EventBlendTarget
	EventGestureFlip
)

var eventKindNames = [...]string{
	EventLotteryStarted:  "lottery_started",
	EventLotteryShuffled: "lottery_shuffled",
	EventLotteryStopped:  "lottery_stopped",
	EventCardFlipped:     "card_flipped",
	EventLotteryExited:   "lottery_exited",
	EventBlendTarget:     "blend_target",
	EventGestureFlip:     "gesture_flip",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// SceneEvent describes a state change observers may want to react to.
type SceneEvent struct {
	Kind   EventKind
	Status LotteryStatus
	Winner int
	Prize  ImageRef
	Blend  float64
	// Elapsed is the scene clock in seconds when the event fired.
	Elapsed float64
}

// EventSink receives scene events on the frame goroutine.
type EventSink interface {
	Emit(SceneEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(SceneEvent)

// Emit calls f(e).
func (f EventSinkFunc) Emit(e SceneEvent) {
	f(e)
}

// EventRecorder is an EventSink that keeps every event. Useful in tests and
// scripted runs.
type EventRecorder struct {
	Events []SceneEvent
}

// Emit appends e.
func (r *EventRecorder) Emit(e SceneEvent) {
	r.Events = append(r.Events, e)
}

// Kinds returns the recorded event kinds in order.
func (r *EventRecorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}
