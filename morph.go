package pointmorph

import (
	"errors"
	"fmt"
)

// ErrInvalidVariant is returned when a morph request names a variant index
// outside the particle set. The request is rejected outright, never clamped
// or wrapped, and the morph state is left untouched.
var ErrInvalidVariant = errors.New("invalid variant index")

const (
	// MorphDuration is the fixed length of one transition, in seconds.
	MorphDuration float32 = 3.0
	// AutoAdvancePeriod is the cadence of the cycling timer, in seconds.
	AutoAdvancePeriod float32 = 4.0
)

// MorphController drives the interpolation factor between two variants of a
// ParticleSet. It is a two-state machine: idle on a single variant, or
// transitioning from the current variant to a target with progress running
// linearly 0..1 over MorphDuration.
//
// Manual requests and the auto-advance timer both land in one pending queue
// that Tick drains exactly once per call, so the order of state changes
// within a frame does not depend on who asked first. At most one transition
// is ever in flight: a new request overwrites the target and restarts
// progress at zero while the current index keeps the transition's origin.
type MorphController struct {
	set *ParticleSet

	current       int
	target        int
	progress      float32
	transitioning bool

	autoEnabled bool
	autoTimer   float32
	pending     []int
}

// NewMorphController starts idle on variant 0 with auto-advance enabled.
func NewMorphController(set *ParticleSet) *MorphController {
	return &MorphController{
		set:         set,
		autoEnabled: true,
	}
}

func (m *MorphController) checkIndex(index int) error {
	if index < 0 || index >= m.set.VariantCount() {
		return fmt.Errorf("morph to %d: %w: variant count is %d",
			index, ErrInvalidVariant, m.set.VariantCount())
	}
	return nil
}

// MorphTo immediately starts a transition to the given variant. Mid-flight
// calls overwrite the target and restart progress at zero.
func (m *MorphController) MorphTo(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.target = index
	m.progress = 0
	m.transitioning = true
	return nil
}

// Request queues a morph to be applied on the next Tick. Invalid indices are
// rejected here and never enter the queue.
func (m *MorphController) Request(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.pending = append(m.pending, index)
	return nil
}

// RequestNext queues a morph to the variant after the current one, wrapping
// past the last variant back to the first.
func (m *MorphController) RequestNext() {
	m.pending = append(m.pending, m.nextIndex())
}

func (m *MorphController) nextIndex() int {
	return (m.current + 1) % m.set.VariantCount()
}

// Tick advances the controller by dt seconds: the auto-advance timer fires
// first, then the pending queue is drained in request order, then the active
// transition moves forward. Calling it once per frame gives a deterministic
// timer-before-render ordering.
func (m *MorphController) Tick(dt float32) {
	if dt <= 0 {
		return
	}

	if m.autoEnabled {
		m.autoTimer += dt
		for m.autoTimer >= AutoAdvancePeriod {
			m.autoTimer -= AutoAdvancePeriod
			m.pending = append(m.pending, m.nextIndex())
		}
	}

	for _, index := range m.pending {
		// Entries were validated on enqueue and the variant count is fixed.
		_ = m.MorphTo(index)
	}
	m.pending = m.pending[:0]

	if m.transitioning {
		m.progress += dt / MorphDuration
		if m.progress >= 1 {
			m.progress = 1
			m.current = m.target
			m.transitioning = false
		}
	}
}

// SetAutoAdvance pauses or resumes the cycling timer. The timer keeps its
// accumulated phase across a pause; manual morphs never touch it.
func (m *MorphController) SetAutoAdvance(enabled bool) {
	m.autoEnabled = enabled
}

func (m *MorphController) AutoAdvance() bool {
	return m.autoEnabled
}

func (m *MorphController) CurrentIndex() int {
	return m.current
}

func (m *MorphController) TargetIndex() int {
	return m.target
}

func (m *MorphController) Progress() float32 {
	return m.progress
}

func (m *MorphController) Transitioning() bool {
	return m.transitioning
}

func (m *MorphController) VariantCount() int {
	return m.set.VariantCount()
}

func (m *MorphController) Set() *ParticleSet {
	return m.set
}
