package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/christopherklint97/kalendr/internal/config"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSpec checks a five-field cron expression.
func ValidateSpec(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs the digest on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	digest *Digest
	logger *slog.Logger
}

func New(spec string, digest *Digest, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}

	cl := cronLogger{logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
		digest: digest,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("scheduling digest: %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if err := s.digest.Run(context.Background()); err != nil {
		s.logger.Error("digest failed", "error", err)
	}
}

// Run blocks until ctx is cancelled. It writes a PID file so a second
// instance can be detected.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePID()

	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("digest scheduled", "next", e.Next)
	}

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger forwards cron's own logging to slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kalendr-digest.pid"), nil
}

func writePID() error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePID() {
	if path, err := pidPath(); err == nil {
		os.Remove(path)
	}
}

// ReadPID returns the PID of a running digest scheduler.
func ReadPID() (int, error) {
	path, err := pidPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("no running scheduler found")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file")
	}

	return pid, nil
}
