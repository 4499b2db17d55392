package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Data directory layout.
const (
	ReasonsDir    = "reasons"
	StrategiesDir = "strategies"
	BinsFile      = "bins"
	IssuersFile   = "issuers"
)

var dataExtensions = []string{".json", ".yaml", ".yml"}

// Snapshot is one consistent, immutable generation of catalog data.
type Snapshot struct {
	Catalog    *Catalog
	Strategies *Strategies
	Directory  *Directory
	Failures   map[string]error
	LoadedAt   time.Time
}

// NewSnapshot assembles a snapshot from already-built parts. Nil parts are
// replaced with empty ones.
func NewSnapshot(c *Catalog, s *Strategies, d *Directory) *Snapshot {
	if c == nil {
		c = New(nil)
	}
	if s == nil {
		s = NewStrategies(nil)
	}
	if d == nil {
		d = NewDirectory(nil, nil)
	}
	return &Snapshot{
		Catalog:    c,
		Strategies: s,
		Directory:  d,
		Failures:   map[string]error{},
		LoadedAt:   time.Now(),
	}
}

// Loader reads catalog data files from a directory.
type Loader struct {
	dataDir  string
	networks []string
	logger   *logrus.Logger
}

// NewLoader creates a loader for the given data directory and networks.
func NewLoader(dataDir string, networks []string, logger *logrus.Logger) *Loader {
	if len(networks) == 0 {
		networks = domain.DefaultNetworks
	}
	normalized := make([]string, 0, len(networks))
	for _, n := range networks {
		if n = domain.NormalizeNetwork(n); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &Loader{dataDir: dataDir, networks: normalized, logger: logger}
}

// Load reads every network's reasons and strategies plus the directory
// files. A failure for one file degrades that part to empty and is recorded
// in Snapshot.Failures; only context cancellation aborts the load.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	failures := make(map[string]error)
	reasons := make(map[string][]domain.ReasonCodeEntry)
	strategies := make(map[string]map[string]domain.RebuttalStrategy)

	for _, network := range l.networks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("catalog load cancelled: %w", err)
		}

		entries, err := l.loadReasons(network)
		if err != nil {
			l.degrade(failures, ReasonsDir+"/"+network, err)
		}
		reasons[network] = entries

		table, err := l.loadStrategies(network)
		if err != nil {
			l.degrade(failures, StrategiesDir+"/"+network, err)
		}
		strategies[network] = table
	}

	var bins map[string]domain.BinInfo
	if err := l.loadOptional(BinsFile, &bins); err != nil {
		l.degrade(failures, BinsFile, err)
	}
	var issuers map[string]domain.IssuerContact
	if err := l.loadOptional(IssuersFile, &issuers); err != nil {
		l.degrade(failures, IssuersFile, err)
	}

	snap := &Snapshot{
		Catalog:    New(reasons, l.networks...),
		Strategies: NewStrategies(strategies),
		Directory:  NewDirectory(bins, issuers),
		Failures:   failures,
		LoadedAt:   time.Now(),
	}

	fields := logrus.Fields{"data_dir": l.dataDir, "failures": len(failures), "bins": snap.Directory.BinCount()}
	for _, network := range l.networks {
		fields["entries_"+network] = snap.Catalog.Len(network)
	}
	l.logger.WithFields(fields).Info("Reason catalog loaded")

	return snap, nil
}

func (l *Loader) degrade(failures map[string]error, part string, err error) {
	wrapped := fmt.Errorf("%s: %w: %v", part, domain.ErrCatalogUnavailable, err)
	failures[part] = wrapped
	l.logger.WithFields(logrus.Fields{
		"part":  part,
		"error": err.Error(),
	}).Warn("Catalog part failed to load, using empty data")
}

func (l *Loader) loadReasons(network string) ([]domain.ReasonCodeEntry, error) {
	path, err := FindDataFile(filepath.Join(l.dataDir, ReasonsDir), network)
	if err != nil {
		return nil, err
	}

	var entries []domain.ReasonCodeEntry
	if err := DecodeFile(path, &entries); err != nil {
		return nil, err
	}

	valid := entries[:0]
	for i, e := range entries {
		if strings.TrimSpace(e.Code) == "" {
			l.logger.WithFields(logrus.Fields{
				"network": network,
				"index":   i,
				"path":    path,
			}).Warn("Skipping reason entry without code")
			continue
		}
		e.Code = strings.TrimSpace(e.Code)
		valid = append(valid, e)
	}
	return valid, nil
}

func (l *Loader) loadStrategies(network string) (map[string]domain.RebuttalStrategy, error) {
	path, err := FindDataFile(filepath.Join(l.dataDir, StrategiesDir), network)
	if err != nil {
		return nil, err
	}
	var table map[string]domain.RebuttalStrategy
	if err := DecodeFile(path, &table); err != nil {
		return nil, err
	}
	return table, nil
}

func (l *Loader) loadOptional(base string, v interface{}) error {
	path, err := FindDataFile(l.dataDir, base)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.WithField("file", base).Debug("Optional catalog file not present")
			return nil
		}
		return err
	}
	return DecodeFile(path, v)
}

// FindDataFile locates base.json, base.yaml or base.yml inside dir.
func FindDataFile(dir, base string) (string, error) {
	for _, ext := range dataExtensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &os.PathError{Op: "find", Path: filepath.Join(dir, base+".{json,yaml,yml}"), Err: os.ErrNotExist}
}

// DecodeFile decodes a JSON or YAML file chosen by extension.
func DecodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding yaml %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding json %s: %w", path, err)
		}
	}
	return nil
}

// WriteDataFile encodes v as JSON or YAML chosen by extension.
func WriteDataFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return os.WriteFile(path, data, 0644)
}
