package sync

// workerCount sizes the bounded insertion pool from the available processor
// count. The tiers keep small machines responsive (the monitor loop shares
// them) while letting big machines push the store harder.
func workerCount(cpus int) int {
	var n int
	switch {
	case cpus <= 2:
		n = 1
	case cpus <= 4:
		n = cpus / 2
	case cpus <= 8:
		n = cpus * 60 / 100
	case cpus <= 16:
		n = cpus * 70 / 100
	default:
		n = cpus * 75 / 100
	}
	if n < 1 {
		n = 1
	}
	return n
}
