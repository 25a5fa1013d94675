package guard

import (
	"context"
	"testing"
)

type fakeBody struct {
	pos          Vec3
	yaw          float64
	velocity     Vec3
	destinations []Vec3
	halts        []bool
}

func (b *fakeBody) Position() Vec3        { return b.pos }
func (b *fakeBody) Yaw() float64          { return b.yaw }
func (b *fakeBody) SetYaw(yaw float64)    { b.yaw = yaw }
func (b *fakeBody) Velocity() Vec3        { return b.velocity }
func (b *fakeBody) SetHalted(halted bool) { b.halts = append(b.halts, halted) }

func (b *fakeBody) SetDestination(point Vec3) {
	b.destinations = append(b.destinations, point)
}

func (b *fakeBody) lastDestination() (Vec3, bool) {
	if len(b.destinations) == 0 {
		return Vec3{}, false
	}
	return b.destinations[len(b.destinations)-1], true
}

type fakeTarget struct {
	pos    Vec3
	state  MovementState
	spawn  bool
	end    bool
	hidden bool
}

func (t *fakeTarget) Position() Vec3               { return t.pos }
func (t *fakeTarget) MovementState() MovementState { return t.state }
func (t *fakeTarget) InSpawnArea() bool            { return t.spawn }
func (t *fakeTarget) InEndArea() bool              { return t.end }
func (t *fakeTarget) IsHidden() bool               { return t.hidden }

// scriptedRandom replays fixed draws and counts how often it was consulted.
type scriptedRandom struct {
	ints   []int
	floats []float64
	intN   int
	floatN int
}

func (r *scriptedRandom) Intn(n int) int {
	v := 0
	if len(r.ints) > 0 {
		v = r.ints[r.intN%len(r.ints)] % n
	}
	r.intN++
	return v
}

func (r *scriptedRandom) Float64() float64 {
	v := 0.0
	if len(r.floats) > 0 {
		v = r.floats[r.floatN%len(r.floats)]
	}
	r.floatN++
	return v
}

type harness struct {
	agent  *Agent
	body   *fakeBody
	target *fakeTarget
	rng    *scriptedRandom
	tick   uint64
}

func newHarness(t testing.TB, cfg Config) *harness {
	t.Helper()
	body := &fakeBody{}
	target := &fakeTarget{pos: Vec3{X: 100}}
	rng := &scriptedRandom{ints: []int{1}, floats: []float64{0.5}}
	agent, err := New(Options{
		ID:          "guard-test",
		Config:      cfg,
		Transform:   body,
		Navigator:   body,
		Target:      target,
		Concealment: target,
		Random:      rng,
	})
	if err != nil {
		t.Fatalf("failed to construct guard: %v", err)
	}
	return &harness{agent: agent, body: body, target: target, rng: rng}
}

func (h *harness) step(dt float64) {
	h.tick++
	h.agent.Tick(context.Background(), h.tick, dt)
}
