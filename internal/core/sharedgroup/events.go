package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/events/bus"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
)

// Event types published by the Manager.
const (
	EventGroupCreated       = "sharedgroup.group.created"
	EventGroupRemoved       = "sharedgroup.group.removed"
	EventGroupSaved         = "sharedgroup.group.saved"
	EventInstanceCreated    = "sharedgroup.instance.created"
	EventInstanceRemoved    = "sharedgroup.instance.removed"
	EventMemberAdded        = "sharedgroup.member.added"
	EventMemberRemoved      = "sharedgroup.member.removed"
	EventMemberMoved        = "sharedgroup.member.moved"
	EventComponentAdded     = "sharedgroup.component.added"
	EventComponentRemoved   = "sharedgroup.component.removed"
	EventPropertyPropagated = "sharedgroup.property.propagated"
	EventNamePropagated     = "sharedgroup.name.propagated"
)

const eventSource = "sharedgroup"

// Change is the payload of every Manager event.
type Change struct {
	Path       string
	SceneID    models.SceneID
	InstanceID InstanceID
	Entity     models.Entity
	Component  catalog.ComponentType
	Properties []string
}

func (m *Manager) publish(typ string, change Change) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(bus.NewEvent(typ, eventSource, change)); err != nil {
		m.log.Warn("Failed to publish event", log.String("type", typ), log.Error(err))
	}
}
