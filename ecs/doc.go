// Package ecs provides ECS adapters for rowan's UI event routing.
//
// The primary adapter is [NewDonburiStore], which mirrors every UI event the
// engine routes (clicks, resizes, custom renderer events) into a [Donburi]
// world as typed events. Subscribe to [InteractionEventType] in your ECS
// systems to receive them, or give entities a [Target] and call [Deliver] to
// have events collected per node path.
//
// Usage:
//
//	world := donburi.NewWorld()
//	engine.SetEntityStore(ecs.NewDonburiStore(world))
//	ecs.Deliver(world)
//	button := ecs.NewTarget(world, "body/0", false)
//	// each tick:
//	ecs.InteractionEventType.ProcessEvents(world)
//	for _, e := range ecs.Drain(world, button) { ... }
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
