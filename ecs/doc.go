// Package ecs bridges evergreen scene events into a [Donburi] world.
//
// [NewDonburiSink] publishes every [evergreen.SceneEvent] as a typed
// Donburi event and records each lottery draw as an entity carrying a
// [Draw] component, so ECS systems can react to the tree and query the
// history of winners.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
