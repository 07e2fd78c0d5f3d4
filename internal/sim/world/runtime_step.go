package world

// Step advances the world by exactly one tick.
func (w *World) Step() {
	w.step(false)
}

// StepOnce advances one tick and returns the stepped tick and the state
// digest after it.
func (w *World) StepOnce() (uint64, string) {
	return w.step(true)
}

func (w *World) step(wantDigest bool) (uint64, string) {
	nowTick := w.tick

	// Positions are captured once; every bot avoids where the others were at
	// tick start, not where they have moved to during this tick.
	view := EnvView{
		Field:     w.field,
		Occupied:  make(map[Pos]struct{}, len(w.bots)),
		Resources: w.resources,
		Trails:    w.trails,
	}
	for _, b := range w.bots {
		view.Occupied[b.Pos] = struct{}{}
	}

	var counts tickCounts
	deposits := make([]Pos, 0, len(w.bots))
	for i := range w.bots {
		b := &w.bots[i]
		d := b.Update(&view, w.rng)
		if d.PickedUp {
			// Earlier bots in iteration order win the last unit.
			if w.resources.ConsumeOne(d.From) {
				counts.pickedUp++
			} else {
				b.CarryingFood = false
				b.LeaveMark = false
			}
		}
		if d.Stored {
			w.storedFood++
			counts.stored++
			if w.storedFood%100 == 0 {
				w.logger.Debug("storage milestone", "tick", nowTick, "stored_food", w.storedFood)
			}
		}
		if d.Deposit {
			deposits = append(deposits, d.To)
		}
	}

	// Decay first so this tick's deposits land at full strength.
	w.trails.Decay()
	for _, p := range deposits {
		w.trails.Deposit(p)
	}
	counts.deposits = len(deposits)

	w.tick++
	w.last = w.collectStats()
	w.stats.Observe(nowTick, counts)

	var digest string
	if wantDigest || w.tickLogger != nil {
		digest = w.stateDigest()
	}
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(TickLogEntry{
			Tick:       nowTick,
			StoredFood: w.storedFood,
			PickedUp:   counts.pickedUp,
			Stored:     counts.stored,
			Deposits:   counts.deposits,
			Digest:     digest,
		}); err != nil {
			w.logger.Warn("tick log write failed", "tick", nowTick, "err", err)
		}
	}

	if w.snapshotSink != nil && w.cfg.SnapshotEveryTicks > 0 && w.tick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
		snap := w.ExportSnapshot()
		select {
		case w.snapshotSink <- snap:
		default:
			// Drop snapshot if sink is backed up.
			w.logger.Warn("snapshot dropped", "tick", w.tick)
		}
	}
	return nowTick, digest
}

// StepN advances n ticks.
func (w *World) StepN(n int) {
	for i := 0; i < n; i++ {
		w.step(false)
	}
}
