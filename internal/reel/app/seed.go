package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/store"
)

// DirectorySeed is the YAML projection of viewers, enrollments and sessions
// loaded into the directory at startup:
//
//	viewers:
//	  - id: v1
//	    active: true
//	    deviceId: d1
//	    courses: [c1]
//	sessions:
//	  - id: s1
//	    courseId: c1
//	    manifest: courses/c1/s1/index.m3u8
type DirectorySeed struct {
	Viewers  []SeedViewer  `yaml:"viewers"`
	Sessions []SeedSession `yaml:"sessions"`
}

type SeedViewer struct {
	ID        string   `yaml:"id"`
	Active    bool     `yaml:"active"`
	Suspended bool     `yaml:"suspended"`
	DeviceID  string   `yaml:"deviceId"`
	Courses   []string `yaml:"courses"`
}

type SeedSession struct {
	ID       string `yaml:"id"`
	CourseID string `yaml:"courseId"`
	Manifest string `yaml:"manifest"`
}

func LoadDirectorySeed(path string) (DirectorySeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DirectorySeed{}, fmt.Errorf("read directory seed: %w", err)
	}
	return ParseDirectorySeed(raw)
}

func ParseDirectorySeed(raw []byte) (DirectorySeed, error) {
	var seed DirectorySeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return DirectorySeed{}, fmt.Errorf("parse directory seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return DirectorySeed{}, err
	}
	return seed, nil
}

func (s DirectorySeed) validate() error {
	var errs []error
	for i, v := range s.Viewers {
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("viewers[%d]: id is required", i))
		}
	}
	for i, sess := range s.Sessions {
		if sess.ID == "" || sess.CourseID == "" || sess.Manifest == "" {
			errs = append(errs, fmt.Errorf("sessions[%d]: id, courseId and manifest are required", i))
		}
	}
	return errors.Join(errs...)
}

// Apply upserts the seed in one transaction. Existing rows not named in the
// seed are left alone.
func (s DirectorySeed) Apply(ctx context.Context, st store.Store) error {
	return st.WithTx(ctx, func(tx store.Tx) error {
		dir := tx.Directory()
		for _, v := range s.Viewers {
			err := dir.UpsertViewer(ctx, domain.Viewer{
				ID:        v.ID,
				Active:    v.Active,
				Suspended: v.Suspended,
				DeviceID:  v.DeviceID,
			})
			if err != nil {
				return fmt.Errorf("viewer %s: %w", v.ID, err)
			}
			for _, c := range v.Courses {
				if err := dir.Enroll(ctx, v.ID, c); err != nil {
					return fmt.Errorf("enroll %s in %s: %w", v.ID, c, err)
				}
			}
		}
		for _, sess := range s.Sessions {
			err := dir.UpsertSession(ctx, domain.Session{
				ID:          sess.ID,
				CourseID:    sess.CourseID,
				ManifestKey: sess.Manifest,
			})
			if err != nil {
				return fmt.Errorf("session %s/%s: %w", sess.CourseID, sess.ID, err)
			}
		}
		return nil
	})
}
