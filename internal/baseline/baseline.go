package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
)

const (
	// DefaultPath is used when --update-baseline is enabled without an explicit --baseline path.
	DefaultPath = ".logspectre-baseline.json"
	fileVersion = 1
)

// Set stores baseline fingerprints.
type Set map[string]struct{}

// File is the persisted baseline JSON payload.
type File struct {
	Version      int      `json:"version"`
	Fingerprints []string `json:"fingerprints"`
}

// Load reads a baseline file. Missing files return an empty set.
func Load(path string) (Set, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("baseline path is empty")
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("read baseline file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse baseline file: %w", err)
	}
	if file.Version != 0 && file.Version != fileVersion {
		return nil, fmt.Errorf("unsupported baseline version: %d", file.Version)
	}

	set := Set{}
	for _, fingerprint := range file.Fingerprints {
		if fingerprint == "" {
			continue
		}
		set[fingerprint] = struct{}{}
	}

	return set, nil
}

// Save writes a baseline file with sorted, unique fingerprints.
func Save(path string, set Set) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return errors.New("baseline path is empty")
	}

	dir := filepath.Dir(trimmed)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create baseline directory: %w", err)
		}
	}

	payload := File{
		Version:      fileVersion,
		Fingerprints: Sorted(set),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline file: %w", err)
	}

	if err := os.WriteFile(trimmed, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write baseline file: %w", err)
	}

	return nil
}

// AddAll inserts fingerprints into the target set.
func AddAll(target Set, fingerprints []string) {
	for _, fingerprint := range fingerprints {
		if fingerprint == "" {
			continue
		}
		target[fingerprint] = struct{}{}
	}
}

// Sorted returns sorted fingerprints from a set.
func Sorted(set Set) []string {
	fingerprints := make([]string, 0, len(set))
	for fingerprint := range set {
		fingerprints = append(fingerprints, fingerprint)
	}
	sort.Strings(fingerprints)
	return fingerprints
}

// CountFindings returns the number of report cards treated as findings.
// Only savings cards count; warnings and informational cards restate
// context rather than propose a change.
func CountFindings(report *models.Report) int {
	if report == nil {
		return 0
	}

	count := 0
	for _, card := range report.Cards {
		if card.Kind == models.CardSavings {
			count++
		}
	}
	return count
}

// CollectFingerprints extracts fingerprints for all current findings in the report.
func CollectFingerprints(report *models.Report) []string {
	set := Set{}
	if report == nil {
		return []string{}
	}

	for _, card := range report.Cards {
		if card.Kind != models.CardSavings {
			continue
		}
		set[FingerprintCard(card)] = struct{}{}
	}

	return Sorted(set)
}

// SuppressKnown removes findings already present in the baseline set.
func SuppressKnown(report *models.Report, known Set) (suppressed int, remaining int) {
	if report == nil || len(known) == 0 {
		return 0, CountFindings(report)
	}

	filtered := make([]models.RecommendationCard, 0, len(report.Cards))
	for _, card := range report.Cards {
		if card.Kind == models.CardSavings {
			if _, exists := known[FingerprintCard(card)]; exists {
				suppressed++
				continue
			}
		}
		filtered = append(filtered, card)
	}
	report.Cards = filtered

	return suppressed, CountFindings(report)
}

// FingerprintCard returns a stable fingerprint for a savings recommendation.
// Dollar figures and usage numbers in the card body move run to run, so
// only the kind and title participate.
func FingerprintCard(card models.RecommendationCard) string {
	return hash("card", string(card.Kind), card.Title)
}

func hash(parts ...string) string {
	canonical := strings.Join(parts, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
