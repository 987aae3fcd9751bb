package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/trace"
)

// policyFile is the YAML on-disk schema. Threshold fields are pointers so a
// missing field can inherit from the defaults section instead of reading as 0.
type policyFile struct {
	Institution struct {
		ID               string   `yaml:"id"`
		MaxDelegation    *float64 `yaml:"max_delegation"`
		MaxAIInvolvement *float64 `yaml:"max_ai_involvement"`
		MaxHelpLevel     *float64 `yaml:"max_help_level"`
	} `yaml:"institution"`

	Defaults   policyEntry   `yaml:"defaults"`
	Activities []policyEntry `yaml:"activities"`
}

type policyEntry struct {
	ID                     string                      `yaml:"id"`
	MaxDelegation          *float64                    `yaml:"max_delegation"`
	MaxAIInvolvement       *float64                    `yaml:"max_ai_involvement"`
	MaxHelpLevel           *float64                    `yaml:"max_help_level"`
	BlockCompleteSolutions *bool                       `yaml:"block_complete_solutions"`
	RequireJustification   *bool                       `yaml:"require_justification"`
	RiskThresholds         map[trace.Dimension]float64 `yaml:"risk_thresholds"`
}

// FileSource loads governance policies from a YAML file and serves merged
// per-activity snapshots. With watching enabled it hot-reloads on change,
// debounced so editors that write in bursts trigger one reload.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	policies map[string]*governance.Policy // by activity id
	defaults *governance.Policy

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// FileSourceConfig configures the file source.
type FileSourceConfig struct {
	// Path is the policy YAML file. Required.
	Path string

	// Watch enables fsnotify hot reload.
	Watch bool

	// DebounceInterval is the quiet period before a reload fires.
	// Default: 200ms
	DebounceInterval time.Duration
}

// NewFileSource loads the policy file and optionally starts watching it.
func NewFileSource(cfg FileSourceConfig, logger *slog.Logger) (*FileSource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("policy file path is required")
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default().With("component", "governance.source.file")
	}

	s := &FileSource{
		path:     cfg.Path,
		logger:   logger,
		policies: make(map[string]*governance.Policy),
		stopCh:   make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		if err := s.startWatching(cfg.DebounceInterval); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ActivePolicy returns the merged policy for the activity, falling back to
// the file's defaults section for unknown activities.
func (s *FileSource) ActivePolicy(activityID, institutionID string) (*governance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[activityID]
	if !ok {
		p = s.defaults
	}
	if p == nil {
		p = governance.DefaultPolicy()
	}

	out := *p
	out.ActivityID = activityID
	if out.InstitutionID == "" {
		out.InstitutionID = institutionID
	}
	if p.RiskThresholds != nil {
		out.RiskThresholds = make(map[trace.Dimension]float64, len(p.RiskThresholds))
		for k, v := range p.RiskThresholds {
			out.RiskThresholds[k] = v
		}
	}
	return &out, nil
}

// load parses the policy file and atomically replaces the snapshot.
func (s *FileSource) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read policy file %s: %w", s.path, err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse policy file %s: %w", s.path, err)
	}

	defaults := buildPolicy(file.Defaults, file)
	policies := make(map[string]*governance.Policy, len(file.Activities))
	for _, entry := range file.Activities {
		if entry.ID == "" {
			s.logger.Warn("skipping activity policy without id")
			continue
		}
		policies[entry.ID] = buildPolicy(entry, file)
	}

	s.mu.Lock()
	s.policies = policies
	s.defaults = defaults
	s.mu.Unlock()

	s.logger.Info("governance policies loaded",
		"path", s.path,
		"activity_count", len(policies),
		"institution", file.Institution.ID,
	)
	return nil
}

// buildPolicy resolves one activity entry against the defaults section and
// the institution floor. The floor overrides: an institution-wide maximum
// caps whatever the activity configured.
func buildPolicy(entry policyEntry, file policyFile) *governance.Policy {
	base := governance.DefaultPolicy()
	p := &governance.Policy{
		ActivityID:             entry.ID,
		InstitutionID:          file.Institution.ID,
		MaxDelegation:          resolveFloat(entry.MaxDelegation, file.Defaults.MaxDelegation, base.MaxDelegation),
		MaxAIInvolvement:       resolveFloat(entry.MaxAIInvolvement, file.Defaults.MaxAIInvolvement, base.MaxAIInvolvement),
		MaxHelpLevel:           resolveFloat(entry.MaxHelpLevel, file.Defaults.MaxHelpLevel, base.MaxHelpLevel),
		BlockCompleteSolutions: resolveBool(entry.BlockCompleteSolutions, file.Defaults.BlockCompleteSolutions, base.BlockCompleteSolutions),
		RequireJustification:   resolveBool(entry.RequireJustification, file.Defaults.RequireJustification, base.RequireJustification),
		RiskThresholds:         entry.RiskThresholds,
	}
	if p.RiskThresholds == nil {
		p.RiskThresholds = file.Defaults.RiskThresholds
	}
	if p.RiskThresholds == nil {
		p.RiskThresholds = base.RiskThresholds
	}

	// Apply the institution floor.
	p.MaxDelegation = capFloat(p.MaxDelegation, file.Institution.MaxDelegation)
	p.MaxAIInvolvement = capFloat(p.MaxAIInvolvement, file.Institution.MaxAIInvolvement)
	p.MaxHelpLevel = capFloat(p.MaxHelpLevel, file.Institution.MaxHelpLevel)

	return p
}

func resolveFloat(entry, defaults *float64, fallback float64) float64 {
	if entry != nil {
		return *entry
	}
	if defaults != nil {
		return *defaults
	}
	return fallback
}

func resolveBool(entry, defaults *bool, fallback bool) bool {
	if entry != nil {
		return *entry
	}
	if defaults != nil {
		return *defaults
	}
	return fallback
}

func capFloat(v float64, floor *float64) float64 {
	if floor != nil && *floor < v {
		return *floor
	}
	return v
}

// startWatching watches the policy file's directory and reloads on change.
// Watching the directory rather than the file survives editors that replace
// the file via rename.
func (s *FileSource) startWatching(debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create policy watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch policy dir %s: %w", dir, err)
	}

	s.watcher = watcher
	s.wg.Add(1)
	go s.watchLoop(debounce)

	s.logger.Info("policy hot reload enabled", "path", s.path)
	return nil
}

func (s *FileSource) watchLoop(debounce time.Duration) {
	defer s.wg.Done()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("policy watcher error", "error", err)

		case <-reload:
			if err := s.load(); err != nil {
				s.logger.Error("policy reload failed, keeping previous snapshot",
					"error", err,
				)
			}
		}
	}
}

// Close stops the watcher goroutine.
func (s *FileSource) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.watcher != nil {
			s.watcher.Close()
		}
	})
	s.wg.Wait()
	return nil
}
