package ecs

import (
	"testing"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/evergreen"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_Emit(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []evergreen.SceneEvent
	SceneEventType.Subscribe(world, func(w donburi.World, e evergreen.SceneEvent) {
		received = append(received, e)
	})

	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventLotteryStarted, Status: evergreen.LotteryRunning, Winner: 3})
	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventBlendTarget, Blend: 0})

	// Events are queued; process them.
	SceneEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Kind != evergreen.EventLotteryStarted || received[0].Winner != 3 {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Kind != evergreen.EventBlendTarget {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiSink_RecordsDraws(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventLotteryShuffled, Winner: 1})
	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventLotteryStopped, Winner: 7, Prize: "a.png", Elapsed: 2})
	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventLotteryStopped, Winner: 9, Prize: "b.png", Elapsed: 5})
	events.ProcessAllEvents(world)

	draws := Draws(world)
	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	seen := map[int]evergreen.ImageRef{}
	for _, d := range draws {
		seen[d.Winner] = d.Prize
	}
	if seen[7] != "a.png" || seen[9] != "b.png" {
		t.Errorf("draws = %+v", draws)
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	SceneEventType.Subscribe(world, func(w donburi.World, e evergreen.SceneEvent) {
		count1++
	})
	SceneEventType.Subscribe(world, func(w donburi.World, e evergreen.SceneEvent) {
		count2++
	})

	sink.Emit(evergreen.SceneEvent{Kind: evergreen.EventCardFlipped})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiSink_FromScene(t *testing.T) {
	cfg := evergreen.DefaultConfig()
	cfg.Seed = 7
	cfg.Foliage.Count = 50
	cfg.Lottery.Prizes = []string{"p.png"}
	scene, err := evergreen.NewScene(cfg)
	if err != nil {
		t.Fatal(err)
	}
	world := donburi.NewWorld()
	scene.SetEventSink(NewDonburiSink(world))

	scene.StartLotteryRound()
	scene.Update(0.2)
	scene.StopLotteryRound()
	events.ProcessAllEvents(world)

	draws := Draws(world)
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].Winner != scene.WinnerIndex() || draws[0].Prize != "p.png" {
		t.Errorf("draw = %+v, scene winner %d", draws[0], scene.WinnerIndex())
	}
}
