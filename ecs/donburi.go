package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/evergreen"
)

// SceneEventType is the Donburi event type for evergreen scene events.
// Subscribe to this in your ECS systems to receive lottery, blend and
// gesture events.
var SceneEventType = events.NewEventType[evergreen.SceneEvent]()

// Draw is one finished lottery draw.
type Draw struct {
	Winner  int
	Prize   evergreen.ImageRef
	Elapsed float64
}

// DrawComponent tags lottery draw entities.
var DrawComponent = donburi.NewComponentType[Draw]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to SceneEventType and consumed with events.Subscribe and
// ProcessEvents; each stopped lottery round also creates a Draw entity.
func NewDonburiSink(world donburi.World) evergreen.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) Emit(e evergreen.SceneEvent) {
	if e.Kind == evergreen.EventLotteryStopped {
		entry := s.world.Entry(s.world.Create(DrawComponent))
		DrawComponent.SetValue(entry, Draw{Winner: e.Winner, Prize: e.Prize, Elapsed: e.Elapsed})
	}
	SceneEventType.Publish(s.world, e)
}

// Draws returns every recorded draw in creation order.
func Draws(world donburi.World) []Draw {
	var out []Draw
	donburi.NewQuery(filter.Contains(DrawComponent)).Each(world, func(entry *donburi.Entry) {
		out = append(out, *DrawComponent.Get(entry))
	})
	return out
}
