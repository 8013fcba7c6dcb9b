package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/ports"
)

const (
	// DefaultMaxRecords bounds the data array.
	DefaultMaxRecords = 100

	// DefaultPort is the device recorded in a regenerated config.
	DefaultPort = "/dev/ttyACM0"

	// DefaultBaudRate is the baud rate a config is repaired to.
	DefaultBaudRate = 9600

	indent = "  "
)

// Config describes the document the store maintains.
type Config struct {
	// Port is written to config.port when the config is regenerated.
	Port string
	// BaudRate is the only value accepted for config.baud_rate.
	BaudRate int
	// MaxRecords bounds the data array; one record is evicted per append
	// once it is exceeded.
	MaxRecords int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:       DefaultPort,
		BaudRate:   DefaultBaudRate,
		MaxRecords: DefaultMaxRecords,
	}
}

// Store appends records to the log document held by a ports.DocumentStorage.
type Store struct {
	storage ports.DocumentStorage
	cfg     Config
	logger  ports.Logger
	now     func() time.Time
	echo    io.Writer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report repairs.
func WithLogger(l ports.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithEcho sets where the rewritten document is printed after each
// successful append. Nil disables the echo.
func WithEcho(w io.Writer) Option {
	return func(s *Store) { s.echo = w }
}

// New creates a Store. Zero fields of cfg take their defaults.
func New(storage ports.DocumentStorage, cfg Config, opts ...Option) *Store {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultMaxRecords
	}

	s := &Store{
		storage: storage,
		cfg:     cfg,
		logger:  nopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stamps r with the current local time, appends it to the document,
// evicts the oldest record if the bound is exceeded and rewrites the document.
// A write failure is returned wrapped in domain.ErrPersist; the record is lost.
func (s *Store) Append(ctx context.Context, r domain.Reading) (Snapshot, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	rec, err := json.Marshal(domain.NewRecord(r, s.now()))
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode record: %w", err)
	}
	doc.data = append(doc.data, rec)

	if len(doc.data) > s.cfg.MaxRecords {
		doc.data = doc.data[1:]
		s.logger.Debug("evicted oldest record", ports.Int("max", s.cfg.MaxRecords))
	}

	out, err := doc.encode()
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode log document: %w", err)
	}

	if err := s.storage.Save(ctx, out); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	if s.echo != nil {
		_, _ = s.echo.Write(out)
	}

	return doc.snapshot(out), nil
}

// Load returns the repaired document without writing anything back.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	out, err := doc.encode()
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode log document: %w", err)
	}
	return doc.snapshot(out), nil
}

func (s *Store) load(ctx context.Context) (*document, error) {
	raw, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load log document: %w", err)
	}
	return s.repair(raw), nil
}

// repair turns whatever the storage held into a usable document.
func (s *Store) repair(raw []byte) *document {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return s.fresh()
	}

	var v json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(raw), &v); err != nil {
		s.logger.Warn("log document unreadable, starting a new one", ports.Err(err))
		return s.fresh()
	}

	switch kind(v) {
	case '[':
		var data []json.RawMessage
		if err := json.Unmarshal(v, &data); err != nil {
			s.logger.Warn("log document unreadable, starting a new one", ports.Err(err))
			return s.fresh()
		}
		s.logger.Warn("migrating bare record array into log document",
			ports.Int("records", len(data)))
		doc := s.fresh()
		doc.data = data
		return doc
	case '{':
	default:
		s.logger.Warn("log document is not an object, starting a new one")
		return s.fresh()
	}

	root, ok := decodeObject(v)
	if !ok {
		s.logger.Warn("log document unreadable, starting a new one")
		return s.fresh()
	}
	doc := &document{root: root}

	cfgRaw, present := root.get("config")
	if cfg, ok := decodeObject(cfgRaw); present && ok {
		s.repairConfig(cfg)
		doc.config = cfg
	} else {
		s.logger.Warn("config missing or malformed, regenerating",
			ports.Bool("present", present))
		doc.config = s.freshConfig()
	}

	dataRaw, present := root.get("data")
	if present && kind(dataRaw) == '[' {
		if err := json.Unmarshal(dataRaw, &doc.data); err != nil {
			doc.data = nil
		}
	} else if present {
		s.logger.Warn("data is not an array, replacing with an empty one")
	}
	if doc.data == nil {
		doc.data = []json.RawMessage{}
	}

	return doc
}

// repairConfig corrects baud_rate and fills in a missing port.
func (s *Store) repairConfig(cfg *object) {
	raw, _ := cfg.get("baud_rate")
	baud, isInt := integer(raw)
	if !isInt || baud != int64(s.cfg.BaudRate) {
		old := int64(-1)
		if isInt {
			old = baud
		}
		s.logger.Warn("correcting baud_rate in config",
			ports.Int64("from", old),
			ports.Int("to", s.cfg.BaudRate))
		cfg.set("baud_rate", json.RawMessage(strconv.Itoa(s.cfg.BaudRate)))
	}

	raw, present := cfg.get("port")
	var port string
	if !present || kind(raw) != '"' || json.Unmarshal(raw, &port) != nil {
		s.logger.Warn("port missing from config, filling in",
			ports.String("port", s.cfg.Port))
		cfg.set("port", mustMarshal(s.cfg.Port))
	}
}

func (s *Store) fresh() *document {
	return &document{
		root:   newObject(),
		config: s.freshConfig(),
		data:   []json.RawMessage{},
	}
}

func (s *Store) freshConfig() *object {
	cfg := newObject()
	cfg.set("port", mustMarshal(s.cfg.Port))
	cfg.set("baud_rate", json.RawMessage(strconv.Itoa(s.cfg.BaudRate)))
	return cfg
}

// document is the decoded log document. Members of root other than config
// and data are kept as they were.
type document struct {
	root   *object
	config *object
	data   []json.RawMessage
}

// encode renders the document with two-space indentation.
func (d *document) encode() ([]byte, error) {
	data, err := json.Marshal(d.data)
	if err != nil {
		return nil, err
	}
	cfg, err := d.config.MarshalJSON()
	if err != nil {
		return nil, err
	}
	d.root.setFront("config", cfg)
	d.root.set("data", data)

	out, err := json.MarshalIndent(d.root, "", indent)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func (d *document) snapshot(encoded []byte) Snapshot {
	snap := Snapshot{
		Data:     d.data,
		Document: encoded,
	}
	if raw, ok := d.config.get("port"); ok {
		_ = json.Unmarshal(raw, &snap.Config.Port)
	}
	if raw, ok := d.config.get("baud_rate"); ok {
		if n, ok := integer(raw); ok {
			snap.Config.BaudRate = int(n)
		}
	}
	return snap
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...ports.Field) {}
func (nopLogger) Info(msg string, fields ...ports.Field)  {}
func (nopLogger) Warn(msg string, fields ...ports.Field)  {}
func (nopLogger) Error(msg string, fields ...ports.Field) {}
