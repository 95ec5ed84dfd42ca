package engine

import (
	"campus-gigs/internal/database"
	"campus-gigs/internal/engine/actors"
	"campus-gigs/internal/utils"
	"campus-gigs/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	userSupervisor   *actor.PID
	projectActor     *actor.PID
	applicationActor *actor.PID
	chatActor        *actor.PID
}

func NewEngine(system *actor.ActorSystem, metrics *utils.MetricsCollector, db database.Adapter, broadcaster websocket.Broadcaster) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserSupervisor(db)
	})
	userPID := context.Spawn(userProps)

	projectProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewProjectActor(db, metrics)
	})
	projectPID := context.Spawn(projectProps)

	applicationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewApplicationActor(db, metrics)
	})
	applicationPID := context.Spawn(applicationProps)

	chatProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewChatActor(db, broadcaster, metrics)
	})
	chatPID := context.Spawn(chatProps)

	return &Engine{
		userSupervisor:   userPID,
		projectActor:     projectPID,
		applicationActor: applicationPID,
		chatActor:        chatPID,
	}
}

// GetUserSupervisor returns the PID of the user supervisor
func (e *Engine) GetUserSupervisor() *actor.PID {
	return e.userSupervisor
}

// GetProjectActor returns the PID of the project actor
func (e *Engine) GetProjectActor() *actor.PID {
	return e.projectActor
}

// GetApplicationActor returns the PID of the application actor
func (e *Engine) GetApplicationActor() *actor.PID {
	return e.applicationActor
}

// GetChatActor returns the PID of the chat actor
func (e *Engine) GetChatActor() *actor.PID {
	return e.chatActor
}
