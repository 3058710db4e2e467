package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
)

type directoryRepo struct {
	db dbtx
}

func (r *directoryRepo) GetViewer(ctx context.Context, id string) (domain.Viewer, error) {
	var v domain.Viewer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, active, suspended, device_id FROM viewers WHERE id = ?`, id,
	).Scan(&v.ID, &v.Active, &v.Suspended, &v.DeviceID)
	if err != nil {
		return domain.Viewer{}, mapNotFound(err)
	}
	return v, nil
}

func (r *directoryRepo) UpsertViewer(ctx context.Context, v domain.Viewer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO viewers (id, active, suspended, device_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			active     = excluded.active,
			suspended  = excluded.suspended,
			device_id  = excluded.device_id,
			updated_at = excluded.updated_at`,
		v.ID, v.Active, v.Suspended, v.DeviceID, toMillis(time.Now()),
	)
	return err
}

func (r *directoryRepo) IsEnrolled(ctx context.Context, viewerID, courseID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE viewer_id = ? AND course_id = ?)`,
		viewerID, courseID,
	).Scan(&ok)
	return ok, err
}

func (r *directoryRepo) Enroll(ctx context.Context, viewerID, courseID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (viewer_id, course_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (viewer_id, course_id) DO NOTHING`,
		viewerID, courseID, toMillis(time.Now()),
	)
	return err
}

func (r *directoryRepo) Unenroll(ctx context.Context, viewerID, courseID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE viewer_id = ? AND course_id = ?`, viewerID, courseID)
	return err
}

func (r *directoryRepo) GetSession(ctx context.Context, courseID, sessionID string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT course_id, id, manifest_key FROM sessions WHERE course_id = ? AND id = ?`,
		courseID, sessionID,
	).Scan(&s.CourseID, &s.ID, &s.ManifestKey)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *directoryRepo) UpsertSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (course_id, id, manifest_key, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (course_id, id) DO UPDATE SET
			manifest_key = excluded.manifest_key,
			updated_at   = excluded.updated_at`,
		s.CourseID, s.ID, s.ManifestKey, toMillis(time.Now()),
	)
	return err
}
