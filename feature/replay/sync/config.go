package sync

import "time"

// Config holds configuration for replay synchronization.
type Config struct {
	// Dir is the replay folder to synchronize against.
	Dir string `mapstructure:"dir" default:"./replays"`
	// Recursive scans subfolders of Dir when set.
	Recursive bool `mapstructure:"recursive" default:"true"`
	// LockFile is the exclusive process lock acquired before any sync.
	LockFile string `mapstructure:"lock_file" default:"replay-manager.lock"`
	// ValidationFile is the timestamp file gating periodic re-checks.
	ValidationFile string `mapstructure:"validation_file" default:"replay-manager.validation"`
	// RevalidateMinutes is how often a long-running process re-verifies the
	// folder for externally added files.
	RevalidateMinutes int `mapstructure:"revalidate_minutes" default:"60"`
}

// RevalidateInterval returns the revalidation period as a duration.
func (c Config) RevalidateInterval() time.Duration {
	if c.RevalidateMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.RevalidateMinutes) * time.Minute
}
