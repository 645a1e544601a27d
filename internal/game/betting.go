package game

import (
	"fmt"
	"strings"

	"github.com/cardroomlabs/holdem/internal/deck"
)

// Act validates and applies one player-submitted action. Out-of-turn
// actions and actions outside the playing phase are rejected without
// touching state. An underfunded raise or call degrades to the nearest
// legal commitment rather than being refused.
func (t *Table) Act(playerID string, action Action, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != TablePlaying {
		return fmt.Errorf("no betting in progress")
	}
	p := t.findPlayer(playerID)
	if p == nil {
		return fmt.Errorf("not seated at this table")
	}
	if p.Seat != t.turnSeat || !p.CanAct() {
		return fmt.Errorf("not your turn")
	}

	toCall := t.highestBet - p.Bet
	if action == Check && toCall > 0 {
		// Re-prompt so a confused client can recover without losing the
		// hand to the turn timer.
		t.promptCurrentActor()
		return fmt.Errorf("cannot check, %d to call", toCall)
	}

	t.stopTurnTimer()
	notice := t.applyAction(p, action, amount)

	t.logger.Debug("Action applied",
		"player", p.Name,
		"action", action,
		"bet", p.Bet,
		"pot", t.pot,
		"highestBet", t.highestBet)
	t.notifier.Announce(t.id, notice)
	t.resolveAfterAction(p.Seat)
	return nil
}

// applyAction mutates the actor's stack and the betting state, returning
// the table notice describing what happened. Callers hold the lock and
// have already validated turn order and check legality.
func (t *Table) applyAction(p *Player, action Action, amount int) string {
	toCall := t.highestBet - p.Bet
	notice := ""

	switch action {
	case Fold:
		p.Status = StatusFolded
		notice = fmt.Sprintf("%s folds", p.Name)

	case Check:
		notice = fmt.Sprintf("%s checks", p.Name)

	case Call:
		pay := min(toCall, p.Chips)
		p.Chips -= pay
		p.Bet += pay
		p.TotalBet += pay
		if p.Chips == 0 {
			p.Status = StatusAllIn
			notice = fmt.Sprintf("%s calls %d and is all-in", p.Name, pay)
		} else {
			notice = fmt.Sprintf("%s calls %d", p.Name, pay)
		}

	case Raise:
		// The requested total is clamped up to the minimum legal raise
		// and down to the player's maximum possible commitment; short
		// stacks degrade to an all-in instead of being rejected.
		minTo := t.highestBet + t.lastRaise
		maxTo := p.Chips + p.Bet
		if amount < minTo {
			amount = minTo
		}
		if amount > maxTo {
			amount = maxTo
		}

		pay := amount - p.Bet
		p.Chips -= pay
		p.Bet = amount
		p.TotalBet += pay
		if p.Chips == 0 {
			p.Status = StatusAllIn
			notice = fmt.Sprintf("%s raises to %d and is all-in", p.Name, amount)
		} else {
			notice = fmt.Sprintf("%s raises to %d", p.Name, amount)
		}
		if amount > t.highestBet {
			t.lastRaise = amount - t.highestBet
			t.highestBet = amount
			t.reopenBetting(p)
		}

	case AllIn:
		pay := p.Chips
		p.Chips = 0
		p.Bet += pay
		p.TotalBet += pay
		p.Status = StatusAllIn
		notice = fmt.Sprintf("%s is all-in for %d", p.Name, p.Bet)
		// A shove above the highest bet reopens betting exactly like a
		// raise; a shorter shove is a call-sized commitment.
		if p.Bet > t.highestBet {
			t.lastRaise = p.Bet - t.highestBet
			t.highestBet = p.Bet
			t.reopenBetting(p)
		}
	}

	p.Acted = true
	return notice
}

// reopenBetting clears the acted flag of every other still-active player
// so they must respond to the raise.
func (t *Table) reopenBetting(raiser *Player) {
	for _, p := range t.seats {
		if p != nil && p != raiser && p.Status == StatusActive {
			p.Acted = false
		}
	}
}

// roundClosed reports whether the betting round has structurally ended:
// every player who can still act has acted and matched the highest bet.
func (t *Table) roundClosed() bool {
	for _, p := range t.seats {
		if p == nil || !p.CanAct() {
			continue
		}
		if !p.Acted || p.Bet != t.highestBet {
			return false
		}
	}
	return true
}

// resolveAfterAction runs after every applied action and after a fold by
// departure: collapse to a single survivor ends the hand, a closed round
// advances the street, otherwise the turn moves on.
func (t *Table) resolveAfterAction(anchor int) {
	if t.inHandCount() <= 1 {
		t.finishUncontested()
		return
	}
	if t.roundClosed() {
		t.advanceStreet()
		return
	}
	t.advanceTurnFrom(anchor + 1)
}

// advanceTurnFrom scans seats circularly for the next eligible actor,
// skipping empty, folded, all-in and chip-less seats. Finding none means
// the round has structurally closed.
func (t *Table) advanceTurnFrom(from int) {
	n := len(t.seats)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if p := t.seats[seat]; p != nil && p.CanAct() {
			t.armTurn(seat)
			return
		}
	}
	t.advanceStreet()
}

// advanceStreet sweeps the street's bets into the pot, resets per-round
// state and deals the next board cards. When fewer than two players can
// still act, the remaining streets are dealt straight through to showdown.
func (t *Table) advanceStreet() {
	t.stopTurnTimer()

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		t.pot += p.Bet
		p.Bet = 0
		p.Acted = false
	}
	t.highestBet = 0
	t.lastRaise = t.cfg.BigBlind

	if t.street == River {
		t.beginShowdown()
		return
	}

	t.street++
	switch t.street {
	case Flop:
		t.community = append(t.community, t.dealCards(3)...)
	case Turn, River:
		t.community = append(t.community, t.dealCards(1)...)
	}

	t.logger.Debug("Street advanced", "street", t.street, "pot", t.pot)
	t.notifier.Announce(t.id, fmt.Sprintf("%s: %s", t.street, formatCards(t.community)))
	t.broadcast()

	if t.actableCount() < 2 {
		t.advanceStreet()
		return
	}
	t.advanceTurnFrom(t.dealerSeat + 1)
}

// armTurn gives the seat the turn: bumps the turn generation, broadcasts
// the state with the new actor, prompts them and schedules the timeout
// fold. Every path that resolves an action ends in a broadcast, either
// here or in the street and showdown transitions.
func (t *Table) armTurn(seat int) {
	t.turnSeat = seat
	t.turnGen++
	gen := t.turnGen

	t.broadcast()
	t.promptCurrentActor()

	t.turnTimer = t.clock.AfterFunc(t.cfg.TurnTimeout, func() {
		t.timeoutFold(gen)
	})
}

func (t *Table) promptCurrentActor() {
	p := t.seats[t.turnSeat]
	if p == nil {
		return
	}
	toCall := t.highestBet - p.Bet
	t.notifier.PromptAction(t.id, p.ID, ActionPrompt{
		ToCall:         toCall,
		MinRaiseTo:     t.highestBet + t.lastRaise,
		CanCheck:       toCall == 0,
		TimeoutSeconds: int(t.cfg.TurnTimeout.Seconds()),
	})
}

// stopTurnTimer cancels any pending timeout and invalidates its
// generation, so a callback that already fired but has not yet taken the
// lock becomes a no-op.
func (t *Table) stopTurnTimer() {
	t.turnGen++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
}

// timeoutFold is the turn timer callback: it folds the timed-out actor
// unless the generation shows the turn has since moved.
func (t *Table) timeoutFold(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != TablePlaying || gen != t.turnGen {
		return
	}
	p := t.seats[t.turnSeat]
	if p == nil || !p.CanAct() {
		return
	}

	t.stopTurnTimer()
	p.Status = StatusFolded
	p.Acted = true

	t.logger.Info("Player timed out", "player", p.Name, "seat", p.Seat)
	t.notifier.Announce(t.id, fmt.Sprintf("%s ran out of time and folds", p.Name))
	t.resolveAfterAction(p.Seat)
}

// finishUncontested ends the hand in favour of the sole remaining player
// without evaluating hands.
func (t *Table) finishUncontested() {
	t.stopTurnTimer()

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		t.pot += p.Bet
		p.Bet = 0
	}

	var winner *Player
	for _, p := range t.seats {
		if p != nil && p.InHand() {
			winner = p
			break
		}
	}

	t.status = TableShowdown
	result := HandResult{Pot: t.pot}
	if winner != nil {
		winner.Chips += t.pot
		result.Winners = []WinnerInfo{{
			Name:   winner.Name,
			Seat:   winner.Seat,
			Amount: t.pot,
		}}
		t.logger.Info("Hand won uncontested", "player", winner.Name, "pot", t.pot)
		t.notifier.Announce(t.id, fmt.Sprintf("%s wins %d uncontested", winner.Name, t.pot))
	} else {
		t.logger.Error("Hand ended with no eligible winner", "pot", t.pot)
	}
	t.pot = 0

	t.checkConservation()
	t.broadcast()
	t.notifier.AnnounceResult(t.id, result)
	t.scheduleReset()
}

// beginShowdown evaluates the remaining hands and distributes the main
// and side pots. Candidates sharing a pot's best rank split it in equal
// integer shares; the remainder goes to the winner closest to the
// dealer's left.
func (t *Table) beginShowdown() {
	t.stopTurnTimer()
	t.status = TableShowdown

	if t.inHandCount() <= 1 {
		t.finishUncontested()
		return
	}

	players := make([]*Player, 0, len(t.seats))
	for _, p := range t.seats {
		if p != nil {
			players = append(players, p)
		}
	}

	ranks := make(map[int]HandRank)
	for _, p := range players {
		if p.InHand() {
			ranks[p.Seat] = Evaluate(p.HoleCards, t.community)
		}
	}

	pots := buildPots(players, t.pot)
	totalPot := t.pot
	winnings := make(map[int]int)
	labels := make(map[int]string)

	for _, pot := range pots {
		best := HandRank(0)
		var winners []int
		for _, seat := range pot.Eligible {
			rank, ok := ranks[seat]
			if !ok {
				continue
			}
			if rank > best || len(winners) == 0 {
				best = rank
				winners = []int{seat}
			} else if rank == best {
				winners = append(winners, seat)
			}
		}
		if len(winners) == 0 {
			t.logger.Error("Pot with no eligible winner", "amount", pot.Amount)
			continue
		}

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for _, seat := range winners {
			winnings[seat] += share
			labels[seat] = ranks[seat].String()
		}
		if remainder > 0 {
			winnings[t.firstFromDealer(winners)] += remainder
		}
	}

	result := HandResult{Pot: totalPot, Showdown: true}
	for _, seat := range t.seatsFromDealer() {
		amount, ok := winnings[seat]
		if !ok {
			continue
		}
		p := t.seats[seat]
		p.Chips += amount
		result.Winners = append(result.Winners, WinnerInfo{
			Name:      p.Name,
			Seat:      seat,
			Amount:    amount,
			HandLabel: labels[seat],
		})
		t.notifier.Announce(t.id, fmt.Sprintf("%s wins %d with %s", p.Name, amount, labels[seat]))
	}
	t.pot = 0

	t.logger.Info("Showdown complete", "pot", totalPot, "winners", len(result.Winners))
	t.checkConservation()
	t.broadcast()
	t.notifier.AnnounceResult(t.id, result)
	t.scheduleReset()
}

// firstFromDealer returns the seat among candidates closest to the
// dealer's left.
func (t *Table) firstFromDealer(candidates []int) int {
	want := make(map[int]bool, len(candidates))
	for _, seat := range candidates {
		want[seat] = true
	}
	for _, seat := range t.seatsFromDealer() {
		if want[seat] {
			return seat
		}
	}
	return candidates[0]
}

// scheduleReset arms the results-display delay before the hand resets.
// The hand generation guards against a stale callback resetting a newer
// hand.
func (t *Table) scheduleReset() {
	gen := t.handGen
	t.clock.AfterFunc(t.cfg.ResultsDelay, func() {
		t.resetAfterShowdown(gen)
	})
}

func formatCards(cards []deck.Card) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}
