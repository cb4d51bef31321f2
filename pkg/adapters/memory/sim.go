package memory

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/aretw0/simscope/pkg/unify"
	"github.com/aretw0/simscope/pkg/value"
)

// Message is delivered to a node's handler when its event is dispatched.
type Message struct {
	From    domain.EntityPath
	Kind    string
	Payload any
}

// Handler is the logic of a node. ctx carries the spans of the dispatch.
type Handler func(ctx context.Context, n *Node, msg Message)

// Node is one entity of the simulation. Its props are the flat attributes
// exposed to inspection, in the order they were first set.
type Node struct {
	sim     *Sim
	path    domain.EntityPath
	handler Handler
	props   []unify.Attribute
}

// Path returns the entity path of the node.
func (n *Node) Path() domain.EntityPath { return n.path }

// Now returns the simulated time.
func (n *Node) Now() domain.SimTime { return n.sim.Now() }

// SetProp sets a flat attribute. The key may carry '@' selectors and dots.
func (n *Node) SetProp(key string, v any) {
	attr := unify.Attr(key, v)

	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	for i := range n.props {
		if n.props[i].Key == key {
			n.props[i] = attr
			return
		}
	}
	n.props = append(n.props, attr)
}

// DeleteProp removes a flat attribute.
func (n *Node) DeleteProp(key string) {
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	n.props = slices.DeleteFunc(n.props, func(a unify.Attribute) bool { return a.Key == key })
}

// Prop returns the current value of a flat attribute.
func (n *Node) Prop(key string) (value.Value, bool) {
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	for _, a := range n.props {
		if a.Key == key {
			return a.Value, true
		}
	}
	return value.Value{}, false
}

// Send schedules msg for delivery to another node after delay.
func (n *Node) Send(to domain.EntityPath, kind string, payload any, delay time.Duration) {
	n.sim.Schedule(to, Message{From: n.path, Kind: kind, Payload: payload}, delay)
}

type event struct {
	at  domain.SimTime
	seq uint64
	to  domain.EntityPath
	msg Message
}

// eventQueue orders events by time, then by scheduling order.
type eventQueue []event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(event)) }
func (q *eventQueue) Pop() any {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}

// Sim is a small in-memory discrete-event simulation. It implements
// ports.Simulation and ports.Stepper. Queries are safe from any goroutine;
// Step must be called from one goroutine at a time.
type Sim struct {
	mu    sync.Mutex
	nodes map[domain.EntityPath]*Node
	queue eventQueue
	seq   uint64

	now     atomic.Int64
	current atomic.Pointer[domain.EntityPath]
}

// NewSim creates an empty simulation at time zero.
func NewSim() *Sim {
	return &Sim{nodes: make(map[domain.EntityPath]*Node)}
}

// AddNode registers a node. Paths must be unique.
func (s *Sim) AddNode(path domain.EntityPath, handler Handler) (*Node, error) {
	if path.IsZero() {
		return nil, fmt.Errorf("add node: %w", domain.ErrInvalidEntityPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[path]; exists {
		return nil, fmt.Errorf("node %s already exists", path)
	}
	n := &Node{sim: s, path: path, handler: handler}
	s.nodes[path] = n
	return n, nil
}

// Node returns a registered node.
func (s *Sim) Node(path domain.EntityPath) (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	return n, ok
}

// Schedule queues msg for delivery to node to, delay after the current time.
func (s *Sim) Schedule(to domain.EntityPath, msg Message, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	heap.Push(&s.queue, event{
		at:  s.Now() + domain.SimTime(delay),
		seq: s.seq,
		to:  to,
		msg: msg,
	})
}

// Step dispatches the next event. Simulated time jumps to the event time and
// the target node is the current entity while its handler runs. The handler's
// context carries the node for log capture.
func (s *Sim) Step(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false, nil
	}
	ev := heap.Pop(&s.queue).(event)
	node, ok := s.nodes[ev.to]
	s.now.Store(int64(ev.at))
	s.mu.Unlock()

	if !ok {
		return true, fmt.Errorf("deliver %q to %s: %w", ev.msg.Kind, ev.to, domain.ErrEntityNotFound)
	}
	if node.handler == nil {
		return true, nil
	}

	path := node.path
	s.current.Store(&path)
	defer s.current.Store(nil)

	node.handler(logcapture.WithEntity(ctx, path), node, ev.msg)
	return true, nil
}

// Remaining returns the number of queued events.
func (s *Sim) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Now returns the simulated time.
func (s *Sim) Now() domain.SimTime {
	return domain.SimTime(s.now.Load())
}

// Entities lists every node in path order.
func (s *Sim) Entities() []domain.EntityPath {
	s.mu.Lock()
	out := make([]domain.EntityPath, 0, len(s.nodes))
	for path := range s.nodes {
		out = append(out, path)
	}
	s.mu.Unlock()

	slices.SortFunc(out, domain.EntityPath.Compare)
	return out
}

// Attributes returns a copy of the node's props.
func (s *Sim) Attributes(path domain.EntityPath) ([]unify.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEntityNotFound)
	}
	return slices.Clone(n.props), nil
}

// CurrentEntity returns the node whose handler is running.
func (s *Sim) CurrentEntity() (domain.EntityPath, bool) {
	p := s.current.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
