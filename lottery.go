package evergreen

import (
	"math/rand/v2"
	"time"

	"github.com/phanxgames/evergreen/internal/log"
)

// LotteryStatus is the lottery's current state.
type LotteryStatus uint8

const (
	LotteryIdle LotteryStatus = iota
	LotteryRunning
	LotteryWinner
	LotteryFlipped
)

func (s LotteryStatus) String() string {
	switch s {
	case LotteryIdle:
		return "IDLE"
	case LotteryRunning:
		return "RUNNING"
	case LotteryWinner:
		return "WINNER"
	case LotteryFlipped:
		return "FLIPPED"
	}
	return "UNKNOWN"
}

// Showcase reports whether the winner card is being presented.
func (s LotteryStatus) Showcase() bool {
	return s == LotteryWinner || s == LotteryFlipped
}

// DefaultShuffleInterval is the winner redraw period while RUNNING.
const DefaultShuffleInterval = 70 * time.Millisecond

// Lottery is the winner-selection state machine. All methods must be called
// from the goroutine that advances its Scheduler.
type Lottery struct {
	status LotteryStatus
	winner int
	prize  ImageRef
	count  int
	prizes []ImageRef

	rng      *rand.Rand
	sched    Scheduler
	interval time.Duration
	task     Task

	// SetBlend receives blend target changes caused by transitions.
	SetBlend func(float64)
	// Emit receives transition events.
	Emit func(SceneEvent)
}

// NewLottery creates an idle lottery over count cards.
func NewLottery(count int, rng *rand.Rand, sched Scheduler, interval time.Duration) *Lottery {
	if interval <= 0 {
		interval = DefaultShuffleInterval
	}
	return &Lottery{
		winner:   -1,
		count:    count,
		rng:      rng,
		sched:    sched,
		interval: interval,
	}
}

// Status returns the current state.
func (l *Lottery) Status() LotteryStatus { return l.status }

// Winner returns the winner index, or -1 when IDLE.
func (l *Lottery) Winner() int { return l.winner }

// Prize returns the drawn prize reference, or "" when none.
func (l *Lottery) Prize() ImageRef { return l.prize }

// Count returns the number of cards the lottery draws from.
func (l *Lottery) Count() int { return l.count }

// SetPrizes replaces the prize pool. Empty refs are dropped. A prize
// already drawn is kept.
func (l *Lottery) SetPrizes(pool []ImageRef) {
	l.prizes = appendRefs(l.prizes[:0], pool)
}

// Prizes returns the prize pool.
func (l *Lottery) Prizes() []ImageRef { return l.prizes }

// Start moves IDLE to RUNNING and disperses the tree.
func (l *Lottery) Start() bool {
	l.check()
	if l.status != LotteryIdle {
		return false
	}
	if l.count <= 0 {
		log.Warn("lottery start ignored", "reason", "no photo cards")
		return false
	}
	l.prize = ""
	l.run()
	l.setBlend(BlendDispersed)
	l.emit(EventLotteryStarted)
	return true
}

// Stop moves RUNNING to WINNER, freezing the winner and drawing a prize.
func (l *Lottery) Stop() bool {
	l.check()
	if l.status != LotteryRunning {
		return false
	}
	l.cancel()
	l.prize = DefaultPrizeRef
	if len(l.prizes) > 0 {
		l.prize = l.prizes[l.rng.IntN(len(l.prizes))]
	}
	if l.prize == "" {
		l.prize = DefaultPrizeRef
	}
	l.status = LotteryWinner
	log.Info("lottery winner", "winner", l.winner, "prize", truncateRef(l.prize))
	l.emit(EventLotteryStopped)
	return true
}

// Flip toggles between WINNER and FLIPPED.
func (l *Lottery) Flip() bool {
	l.check()
	switch l.status {
	case LotteryWinner:
		l.status = LotteryFlipped
	case LotteryFlipped:
		l.status = LotteryWinner
	default:
		return false
	}
	l.emit(EventCardFlipped)
	return true
}

// NextRound re-enters RUNNING from a showcase state. The blend target is
// left where it is.
func (l *Lottery) NextRound() bool {
	l.check()
	if !l.status.Showcase() {
		return false
	}
	l.prize = ""
	l.run()
	l.emit(EventLotteryStarted)
	return true
}

// Exit returns to IDLE from any other state and reassembles the tree.
func (l *Lottery) Exit() bool {
	l.check()
	l.cancel()
	if l.status == LotteryIdle {
		return false
	}
	l.reset()
	l.setBlend(BlendFormed)
	l.emit(EventLotteryExited)
	return true
}

// run (re)starts the shuffle and draws the first winner immediately.
func (l *Lottery) run() {
	l.cancel()
	l.status = LotteryRunning
	l.winner = l.rng.IntN(l.count)
	l.task = l.sched.Every(l.interval, l.shuffle)
}

// shuffle redraws the winner. With more than one card it always lands on
// a different index so every tick is visible.
func (l *Lottery) shuffle() {
	if l.status != LotteryRunning {
		// A stale tick after a transition; drop its handle too.
		l.cancel()
		return
	}
	if l.count > 1 {
		next := l.rng.IntN(l.count - 1)
		if next >= l.winner {
			next++
		}
		l.winner = next
	}
	l.emit(EventLotteryShuffled)
}

func (l *Lottery) cancel() {
	if l.task != nil {
		l.task.Cancel()
		l.task = nil
	}
}

func (l *Lottery) reset() {
	l.status = LotteryIdle
	l.winner = -1
	l.prize = ""
}

// check resets the machine if it ever holds an impossible combination.
// The reset reassembles the tree the same way Exit does.
func (l *Lottery) check() {
	valid := l.winner >= 0 && l.winner < l.count
	bad := false
	switch l.status {
	case LotteryIdle:
		bad = l.winner != -1 || l.task != nil
	case LotteryRunning:
		bad = !valid || l.task == nil
	case LotteryWinner, LotteryFlipped:
		bad = !valid || l.prize == "" || l.task != nil
	default:
		bad = true
	}
	if bad {
		log.Error("lottery logic error, resetting",
			"status", l.status, "winner", l.winner, "count", l.count)
		l.cancel()
		l.reset()
		l.setBlend(BlendFormed)
		l.emit(EventLotteryExited)
	}
}

func (l *Lottery) setBlend(t float64) {
	if l.SetBlend != nil {
		l.SetBlend(t)
	}
}

func (l *Lottery) emit(kind EventKind) {
	if l.Emit != nil {
		l.Emit(SceneEvent{Kind: kind, Status: l.status, Winner: l.winner, Prize: l.prize})
	}
}
