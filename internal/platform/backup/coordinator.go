package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

const filePrefix = "pflegedms-backup-"

// Config drives the scheduler. BackupTime is HH:MM local time.
type Config struct {
	Enabled    bool
	Frequency  string // daily|weekly
	BackupTime string
	Dir        string
	MaxBackups int
}

// Status is a point-in-time snapshot of the coordinator.
type Status struct {
	LastBackup  *time.Time `json:"last_backup"`
	BackupCount int        `json:"backup_count"`
	Dir         string     `json:"dir"`
}

// Coordinator snapshots the encrypted store to timestamped files and prunes
// old snapshots. Backups use the engine's online VACUUM INTO so a live store
// yields a consistent point-in-time image, never a torn file copy.
type Coordinator struct {
	conn *db.Conn
	cfg  Config
	log  zerolog.Logger

	mu         sync.Mutex
	lastBackup time.Time

	now func() time.Time
}

func NewCoordinator(conn *db.Conn, cfg Config, logger zerolog.Logger) *Coordinator {
	return &Coordinator{conn: conn, cfg: cfg, log: logger, now: time.Now}
}

// ExecuteBackup writes one snapshot. Failure is logged and reported as
// false; it never panics or propagates.
func (c *Coordinator) ExecuteBackup(ctx context.Context) bool {
	handle, err := c.conn.DB()
	if err != nil {
		c.log.Error().Err(err).Msg("backup skipped: store not open")
		return false
	}
	if err := os.MkdirAll(c.cfg.Dir, 0o700); err != nil {
		c.log.Error().Err(err).Str("dir", c.cfg.Dir).Msg("backup directory not writable")
		return false
	}

	stamp := c.now().UTC().Format("2006-01-02T15-04-05")
	target := filepath.Join(c.cfg.Dir, filePrefix+stamp+".db")

	if _, err := handle.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		c.log.Error().Err(err).Str("target", target).Msg("backup failed")
		return false
	}

	c.mu.Lock()
	c.lastBackup = c.now()
	c.mu.Unlock()

	c.log.Info().Str("target", target).Msg("backup created")
	if err := c.prune(); err != nil {
		c.log.Error().Err(err).Msg("backup pruning failed")
	}
	return true
}

// prune keeps only the newest MaxBackups snapshot files.
func (c *Coordinator) prune() error {
	if c.cfg.MaxBackups <= 0 {
		return nil
	}
	entries, err := os.ReadDir(c.cfg.Dir)
	if err != nil {
		return fmt.Errorf("read backup directory: %w", err)
	}

	type backupFile struct {
		name string
		mod  time.Time
	}
	var files []backupFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, backupFile{name: entry.Name(), mod: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	for _, f := range files[min(len(files), c.cfg.MaxBackups):] {
		if err := os.Remove(filepath.Join(c.cfg.Dir, f.name)); err != nil {
			return fmt.Errorf("remove old backup %s: %w", f.name, err)
		}
		c.log.Info().Str("file", f.name).Msg("old backup pruned")
	}
	return nil
}

// Status reports the last backup time and current snapshot count.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	last := c.lastBackup
	c.mu.Unlock()

	var s Status
	s.Dir = c.cfg.Dir
	if !last.IsZero() {
		s.LastBackup = &last
	}
	entries, err := os.ReadDir(c.cfg.Dir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), filePrefix) {
				s.BackupCount++
			}
		}
	}
	return s
}

// Run ticks at minute granularity until ctx is cancelled. The check carries
// no persisted timer state; a process restart simply resumes checking on the
// next tick.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Coordinator) tick(ctx context.Context) {
	if !c.cfg.Enabled {
		return
	}
	hour, minute, err := parseBackupTime(c.cfg.BackupTime)
	if err != nil {
		c.log.Error().Err(err).Str("backup_time", c.cfg.BackupTime).Msg("invalid backup time")
		return
	}

	now := c.now()
	if now.Hour() != hour || now.Minute() != minute {
		return
	}
	if !c.due(now) {
		return
	}
	c.ExecuteBackup(ctx)
}

func (c *Coordinator) due(now time.Time) bool {
	c.mu.Lock()
	last := c.lastBackup
	c.mu.Unlock()

	if last.IsZero() {
		return true
	}
	switch c.cfg.Frequency {
	case "weekly":
		return now.Sub(last) >= 7*24*time.Hour-time.Minute
	default: // daily
		y1, m1, d1 := last.Date()
		y2, m2, d2 := now.Date()
		return y1 != y2 || m1 != m2 || d1 != d2
	}
}

func parseBackupTime(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse backup time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("backup time %q out of range", s)
	}
	return hour, minute, nil
}
