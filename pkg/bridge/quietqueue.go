// Copyright 2024-2026 Aiku AI

package bridge

import "time"

// QuietQueue withholds a user's messages for a configured window after that
// user joins an IRC channel, so join-triggered noise (backlog replay,
// autoresponders) is not relayed to Slack. State lives per (channel, nick).
//
// All methods must be called from the bridge loop goroutine. The only thing
// that escapes that goroutine is the timer callback, which does nothing but
// post a queueTimerFired event back into the loop via fire; the generation
// counter lets TimerFired reject callbacks from timers that were superseded
// or cancelled after already firing.
type QuietQueue struct {
	window  time.Duration
	fire    func(channel, nick string, gen uint64)
	entries map[string]map[string]*queueEntry
}

type queueEntry struct {
	held     bool
	messages []string
	timer    *time.Timer
	gen      uint64
}

func newQuietQueue(window time.Duration, fire func(channel, nick string, gen uint64)) *QuietQueue {
	return &QuietQueue{
		window:  window,
		fire:    fire,
		entries: make(map[string]map[string]*queueEntry),
	}
}

func (q *QuietQueue) entry(channel, nick string) *queueEntry {
	nicks := q.entries[channel]
	if nicks == nil {
		return nil
	}
	return nicks[nick]
}

// MarkJoin transitions the (channel, nick) entry to held, creating it if
// needed. A join for an already-held entry keeps its buffered messages and
// running timer; rejoin churn must not reset the window by itself.
func (q *QuietQueue) MarkJoin(channel, nick string) {
	e := q.entry(channel, nick)
	if e == nil {
		e = &queueEntry{}
		nicks := q.entries[channel]
		if nicks == nil {
			nicks = make(map[string]*queueEntry)
			q.entries[channel] = nicks
		}
		nicks[nick] = e
	}
	e.held = true
}

// Enqueue buffers text if the entry for (channel, nick) is held, resetting
// the countdown timer. It reports whether the message was held; a nick with
// no entry, or an idle entry, passes straight through.
func (q *QuietQueue) Enqueue(channel, nick, text string) bool {
	e := q.entry(channel, nick)
	if e == nil || !e.held {
		return false
	}
	e.messages = append(e.messages, text)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(q.window, func() {
		q.fire(channel, nick, gen)
	})
	return true
}

// Remove destroys the entry for (channel, nick) on a leave or quit,
// cancelling any pending timer and discarding buffered messages.
func (q *QuietQueue) Remove(channel, nick string) {
	e := q.entry(channel, nick)
	if e == nil {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(q.entries[channel], nick)
	if len(q.entries[channel]) == 0 {
		delete(q.entries, channel)
	}
}

// TimerFired handles a timer callback event. If the entry still exists, is
// held, and the generation matches, it clears the hold and returns the
// buffered messages in arrival order for the caller to flush through the
// normal relay path. Stale or superseded callbacks return nil.
func (q *QuietQueue) TimerFired(channel, nick string, gen uint64) []string {
	e := q.entry(channel, nick)
	if e == nil || !e.held || e.gen != gen {
		return nil
	}
	e.held = false
	e.timer = nil
	msgs := e.messages
	e.messages = nil
	return msgs
}

// PendingCount returns how many messages are buffered for (channel, nick).
func (q *QuietQueue) PendingCount(channel, nick string) int {
	e := q.entry(channel, nick)
	if e == nil {
		return 0
	}
	return len(e.messages)
}
