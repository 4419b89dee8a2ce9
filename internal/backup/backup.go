package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/famdo/internal/model"
)

// ErrNotConfigured is returned when storage or the passphrase is missing.
var ErrNotConfigured = errors.New("backup not configured")

// KeyPrefix namespaces backup objects inside the bucket.
const KeyPrefix = "famdo/"

const historySize = 20

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Source produces and accepts the serialized household document.
type Source interface {
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration. A negative ScheduleHour
// disables scheduled backups.
type Config struct {
	S3            S3Config
	Passphrase    string
	ScheduleHour  int
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager uploads encrypted document snapshots to S3-compatible storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	source   Source
	client   s3Client
	history  []model.Backup
	logger   *slog.Logger
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new backup manager.
func NewManager(cfg Config, source Source, callback StatusCallback, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		source:   source,
		callback: callback,
		logger:   logger,
		now:      time.Now,
		status:   Status{State: StateDisabled},
	}
	if cfg.S3.complete() && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether storage and a passphrase are available.
func (m *Manager) Configured() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled backup loop. It is a no-op when backups are
// unconfigured or unscheduled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.ScheduleHour < 0 {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// History returns the most recent backup attempts made by this process,
// newest first.
func (m *Manager) History() []model.Backup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.history)
	slices.Reverse(out)
	return out
}

func (m *Manager) record(b model.Backup) {
	m.mu.Lock()
	m.history = append(m.history, b)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	m.mu.Unlock()
}

func (m *Manager) checkSchedule(ctx context.Context) {
	now := m.now().UTC()
	if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
		return
	}

	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}

	retention := m.cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	if _, err := m.Cleanup(ctx, retention); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow exports, encrypts, and uploads the document immediately.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	started := m.now().UTC()
	rec := model.Backup{
		Key:       fmt.Sprintf("%sbackup-%s.json.enc", KeyPrefix, started.Format("2006-01-02T150405Z")),
		Status:    model.BackupStatusUploading,
		StartedAt: started,
	}
	m.setStatus(Status{State: StateRunning, InProgress: true})

	fail := func(err error) (*model.Backup, error) {
		rec.Status = model.BackupStatusFailed
		rec.ErrorMessage = err.Error()
		m.record(rec)
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return &rec, err
	}

	data, err := m.source.Export()
	if err != nil {
		return fail(fmt.Errorf("export document: %w", err))
	}
	salt, err := GenerateSalt()
	if err != nil {
		return fail(err)
	}
	sealed, err := Encrypt(data, passphrase, salt)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(rec.Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return fail(fmt.Errorf("upload to s3: %w", err))
	}

	done := m.now().UTC()
	rec.Status = model.BackupStatusCompleted
	rec.SizeBytes = int64(len(sealed))
	rec.CompletedAt = &done
	m.record(rec)
	m.setStatus(Status{State: StateIdle, LastBackup: &done})
	m.logger.Info("backup uploaded", "key", rec.Key, "bytes", rec.SizeBytes)

	return &rec, nil
}

// Restore downloads and decrypts a backup, then replaces the live document
// with it.
func (m *Manager) Restore(ctx context.Context, key string) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		key = KeyPrefix + key
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	data, err := Decrypt(sealed, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("backup %s is not a valid document", key)
	}
	if err := m.source.Import(ctx, data); err != nil {
		return fmt.Errorf("import backup: %w", err)
	}

	m.logger.Info("backup restored", "key", key)
	return nil
}

// List returns the backups stored in the bucket, newest first.
func (m *Manager) List(ctx context.Context) ([]model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	var out []model.Backup
	pages := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(KeyPrefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			b := model.Backup{
				Key:       aws.ToString(obj.Key),
				SizeBytes: aws.ToInt64(obj.Size),
				Status:    model.BackupStatusCompleted,
			}
			if obj.LastModified != nil {
				b.StartedAt = obj.LastModified.UTC()
				b.CompletedAt = aws.Time(b.StartedAt)
			}
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b model.Backup) int { return b.StartedAt.Compare(a.StartedAt) })
	return out, nil
}

// Cleanup deletes backups older than the retention period and returns how
// many were removed.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return 0, nil
	}

	backups, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	before := m.now().UTC().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, b := range backups {
		if !b.StartedAt.Before(before) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(b.Key),
		}); err != nil {
			m.logger.Warn("delete old backup", "key", b.Key, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
