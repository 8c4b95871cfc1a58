// Package reveal paces how much of a streaming answer is shown, one
// character per tick, independently of how fast chunks arrive.
package reveal

import "unicode/utf8"

// Prefix returns the first ticks runes of text.
func Prefix(text string, ticks int) string {
	if ticks <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == ticks {
			return text[:pos]
		}
		i++
	}
	return text
}

// Animator reveals a target text one rune per tick. The target may grow
// while the animation runs; the revealed count carries over.
type Animator struct {
	target string
	total  int
	ticks  int
}

// Retarget sets the text being revealed without resetting progress and
// reports whether characters remain to be shown.
func (a *Animator) Retarget(text string) bool {
	a.target = text
	a.total = utf8.RuneCountInString(text)
	if a.ticks > a.total {
		a.ticks = a.total
	}
	return !a.Done()
}

// Tick reveals one more rune and reports whether more remain.
func (a *Animator) Tick() bool {
	if a.ticks < a.total {
		a.ticks++
	}
	return !a.Done()
}

// Visible returns the revealed part of the target.
func (a *Animator) Visible() string {
	return Prefix(a.target, a.ticks)
}

// Done reports whether the whole target is visible.
func (a *Animator) Done() bool {
	return a.ticks >= a.total
}

// Reset clears the target and progress for the next message.
func (a *Animator) Reset() {
	*a = Animator{}
}
