package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// OrbitAxis tracks one orbit angle whose velocity decays on a spring.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewOrbitAxis creates an axis whose velocity settles critically damped.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the angle by one frame and decays the velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Orbit is the camera's yaw and pitch around the model plus its distance,
// which eases toward a target on its own spring.
type Orbit struct {
	Yaw, Pitch OrbitAxis

	Distance       float64
	TargetDistance float64
	distSpring     harmonica.Spring
	distVel        float64

	fps int
}

// maxPitch keeps the camera off the poles, where LookAt loses its yaw.
const maxPitch = math.Pi/2 - 0.05

// NewOrbit creates an orbit at the given distance.
func NewOrbit(fps int, distance float64) *Orbit {
	return &Orbit{
		Yaw:            NewOrbitAxis(fps),
		Pitch:          NewOrbitAxis(fps),
		Distance:       distance,
		TargetDistance: distance,
		distSpring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		fps:            fps,
	}
}

// Update advances every spring by one frame.
func (o *Orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Pitch.Position = max(-maxPitch, min(maxPitch, o.Pitch.Position))
	o.Distance, o.distVel = o.distSpring.Update(o.Distance, o.distVel, o.TargetDistance)
}

// ApplyImpulse adds angular velocity.
func (o *Orbit) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// Zoom moves the target distance by delta within [lo, hi].
func (o *Orbit) Zoom(delta, lo, hi float64) {
	o.TargetDistance = max(lo, min(hi, o.TargetDistance+delta))
}

// Reset stops all motion and returns to distance.
func (o *Orbit) Reset(distance float64) {
	*o = *NewOrbit(o.fps, distance)
}
