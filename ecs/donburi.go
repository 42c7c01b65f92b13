package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/rowan"
)

// InteractionEventType is the Donburi event type for routed UI events.
var InteractionEventType = events.NewEventType[rowan.InteractionEvent]()

// Target marks an entity as the ECS-side owner of a node path. Events routed
// to that path, or to a descendant when Subtree is set, are appended to Inbox
// by Deliver.
type Target struct {
	Path    string
	Subtree bool
	Inbox   []rowan.InteractionEvent
}

// TargetComponent is the component type of Target.
var TargetComponent = donburi.NewComponentType[Target]()

var targets = donburi.NewQuery(filter.Contains(TargetComponent))

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world. Events
// are queued on InteractionEventType and delivered by ProcessEvents.
func NewDonburiStore(world donburi.World) rowan.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event rowan.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// NewTarget creates an entity that collects events routed to path.
func NewTarget(world donburi.World, path string, subtree bool) donburi.Entity {
	entity := world.Create(TargetComponent)
	TargetComponent.SetValue(world.Entry(entity), Target{Path: path, Subtree: subtree})
	return entity
}

// Deliver subscribes the target inboxes to InteractionEventType. Call once
// per world; events then reach inboxes on ProcessEvents.
func Deliver(world donburi.World) {
	InteractionEventType.Subscribe(world, deliver)
}

func deliver(w donburi.World, e rowan.InteractionEvent) {
	targets.Each(w, func(entry *donburi.Entry) {
		t := TargetComponent.Get(entry)
		if t.matches(e.Path) {
			t.Inbox = append(t.Inbox, e)
		}
	})
}

func (t *Target) matches(path string) bool {
	if path == t.Path {
		return true
	}
	return t.Subtree && len(path) > len(t.Path) && path[len(t.Path)] == '/' && path[:len(t.Path)] == t.Path
}

// Drain returns and clears the inbox of entity. Returns nil if entity has no
// Target.
func Drain(world donburi.World, entity donburi.Entity) []rowan.InteractionEvent {
	entry := world.Entry(entity)
	if !entry.HasComponent(TargetComponent) {
		return nil
	}
	t := TargetComponent.Get(entry)
	out := t.Inbox
	t.Inbox = nil
	return out
}
