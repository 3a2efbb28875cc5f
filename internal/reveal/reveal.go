// Package reveal implements the typewriter effect used for prompt text.
package reveal

import (
	"time"

	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/loop"
)

// ActiveClass marks an element while text is being revealed and shortly after.
const ActiveClass = "cc-typewriter-active"

// Default timings.
const (
	DefaultTick   = 25 * time.Millisecond
	DefaultSettle = 2 * time.Second
)

// State is the lifecycle position of one element's animation.
type State int

const (
	StateIdle      State = iota // no animation known for the element
	StateRevealing              // characters are still being appended
	StateSettled                // fully revealed; ActiveClass may still be pending removal
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateRevealing:
		return "revealing"
	case StateSettled:
		return "settled"
	default:
		return "idle"
	}
}

type animation struct {
	text  []rune
	pos   int
	state State
	timer loop.Timer // tick timer while revealing, settle timer after
}

// Animator drives at most one timer per element.
type Animator struct {
	sched  loop.Scheduler
	tick   time.Duration
	settle time.Duration
	anims  map[*dom.Element]*animation
}

// New creates an animator. Zero durations fall back to the defaults.
func New(sched loop.Scheduler, tick, settle time.Duration) *Animator {
	if tick <= 0 {
		tick = DefaultTick
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Animator{
		sched:  sched,
		tick:   tick,
		settle: settle,
		anims:  make(map[*dom.Element]*animation),
	}
}

// Animate restarts the reveal of text on el, cancelling any running reveal or
// pending settle for the same element.
func (a *Animator) Animate(el *dom.Element, text string) {
	if el == nil {
		return
	}
	a.stop(el)

	el.SetText("")
	el.AddClass(ActiveClass)

	anim := &animation{text: []rune(text), state: StateRevealing}
	a.anims[el] = anim
	a.schedule(el, anim)
}

// Cancel stops any timer for el and forgets it. The element keeps whatever
// text it currently shows.
func (a *Animator) Cancel(el *dom.Element) {
	if el == nil {
		return
	}
	a.stop(el)
	delete(a.anims, el)
}

// State reports the animation state of el.
func (a *Animator) State(el *dom.Element) State {
	anim, ok := a.anims[el]
	if !ok {
		return StateIdle
	}
	return anim.state
}

// Text returns the full text last requested for el.
func (a *Animator) Text(el *dom.Element) string {
	anim, ok := a.anims[el]
	if !ok {
		return ""
	}
	return string(anim.text)
}

// Pending returns the number of live timers across all elements.
func (a *Animator) Pending() int {
	n := 0
	for _, anim := range a.anims {
		if anim.timer != nil {
			n++
		}
	}
	return n
}

func (a *Animator) stop(el *dom.Element) {
	anim, ok := a.anims[el]
	if !ok || anim.timer == nil {
		return
	}
	anim.timer.Stop()
	anim.timer = nil
}

func (a *Animator) schedule(el *dom.Element, anim *animation) {
	anim.timer = a.sched.AfterFunc(a.tick, func() {
		a.step(el, anim)
	})
}

func (a *Animator) step(el *dom.Element, anim *animation) {
	if a.anims[el] != anim {
		return
	}
	if anim.pos < len(anim.text) {
		el.AppendText(string(anim.text[anim.pos]))
		anim.pos++
		a.schedule(el, anim)
		return
	}

	anim.state = StateSettled
	anim.timer = a.sched.AfterFunc(a.settle, func() {
		if a.anims[el] != anim {
			return
		}
		el.RemoveClass(ActiveClass)
		anim.timer = nil
	})
}
