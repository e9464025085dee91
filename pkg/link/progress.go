package link

// progressTracker keeps the running byte count of the active download
// and forwards deltas to the configured callback.
type progressTracker struct {
	total int
	soFar int
	fn    ProgressFunc
}

// begin resets the tracker for a transfer of total bytes. A zero total
// disables reporting for the transfer.
func (p *progressTracker) begin(total int) {
	p.total = total
	p.soFar = 0
}

// increment advances the running count and asks the callback whether to
// continue. Transfers without a total, or without a callback, always
// continue.
func (p *progressTracker) increment(delta int) bool {
	p.soFar += delta
	if p.total == 0 || p.fn == nil {
		return true
	}
	return p.fn(p.soFar, p.total, delta)
}
