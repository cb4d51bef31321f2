// Package demo builds the ping/pong simulation used by the CLI and tests.
package demo

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/simscope/pkg/adapters/memory"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
)

// Link latency between ping and pong.
const Latency = 20 * time.Millisecond

// Entity paths of the demo nodes.
const (
	Ping domain.EntityPath = "ping"
	Pong domain.EntityPath = "pong"
	Pang domain.EntityPath = "pang"
	Peng domain.EntityPath = "peng"
)

// Demo is the ping/pong simulation.
type Demo struct {
	*memory.Sim

	// Logger receives the handlers' records. It is read at dispatch time so
	// it can be set after a capture handler was built over Sim. Nil means
	// slog.Default().
	Logger *slog.Logger
}

func (d *Demo) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Build creates the simulation with n messages injected towards pong, one
// per simulated second. Every message bounces back to ping.
func Build(n int) *Demo {
	sim := memory.NewSim()
	d := &Demo{Sim: sim}

	var pingCount int
	ping, _ := sim.AddNode(Ping, func(ctx context.Context, node *memory.Node, msg memory.Message) {
		pingCount++
		ctx = logcapture.StartSpan(ctx, "pinger", "state", pingCount)
		d.log().InfoContext(ctx, "PONG", "id", msg.Payload)
		node.SetProp("counter", pingCount)
		node.SetProp("key", "value")
	})
	ping.SetProp("link@latency", Latency)
	ping.SetProp("link@peer", Pong.String())

	var pongCount int
	pong, _ := sim.AddNode(Pong, func(ctx context.Context, node *memory.Node, msg memory.Message) {
		pongCount++
		d.log().InfoContext(ctx, "PING", "id", msg.Payload)
		node.Send(msg.From, "reply", msg.Payload, Latency)
		node.SetProp("counter", pongCount)
	})
	pong.SetProp("inet@v4.addr", "10.0.0.2")
	pong.SetProp("inet@v6.addr", "fe80::2")
	pong.SetProp("inet@v6.solicitations", []string{})

	_, _ = sim.AddNode(Pang, nil)
	_, _ = sim.AddNode(Peng, nil)

	for i := range n {
		sim.Schedule(Pong, memory.Message{From: Ping, Kind: "request", Payload: i}, time.Duration(i)*time.Second+Latency)
	}
	return d
}
