// Package rowan is a scene-graph engine that keeps scene logic apart from
// rendering.
//
// The logic half (nodes, components, animation state, event routing) runs on
// its own goroutine or inline. It produces a flat, ordered stream of render
// commands addressed by node path. A thin renderer replays the stream without
// any access to the scene graph.
//
// # Quick start
//
//	host := rowan.NewHeadlessHost()
//	engine := rowan.NewEngine(host, rowan.DefaultConfig())
//	scene, _ := engine.CreateScene("body")
//
//	box := scene.Root().NewChild("box")
//	box.SetSizeMode(rowan.SizeAbsolute, rowan.SizeAbsolute, rowan.SizeAbsolute)
//	box.SetAbsoluteSize(100, 50, 0)
//	el, _ := rowan.NewElement(box, "div")
//	el.SetProperty("background-color", "red")
//
//	engine.Step(16)            // one tick
//	batch := host.Posted()[0]  // WITH body NEED_SIZE_FOR WITH body/0 INIT_DOM div ...
//
// # Scene graph
//
// Every element of the tree is a [Node]. A Node's path is its scene selector
// followed by the child index of every ancestor, e.g. "body/1/0". Components
// attach to a Node and opt into lifecycle hooks by implementing small
// interfaces such as [Updater], [Mounter] or [TransformListener].
//
// # Ticks
//
// [Engine.Step] runs one tick: the [Clock] advances and fires due timers,
// nodes that requested an update run their components, transform/size/opacity
// changes propagate top-down, and the accumulated command batch is handed to
// the [Host] in one piece.
//
// # Threads
//
// A [ThreadManager] on the render side drives the frame loop, sends FRAME
// control messages across a [Thread] ([NewSameThread] or [NewWorker]) and feeds
// returned batches to a compositor such as [renderer.Compositor].
//
// [renderer.Compositor]: https://pkg.go.dev/github.com/phanxgames/rowan/renderer#Compositor
package rowan
