package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/db"
	"github.com/vanguardtable/vanguard/src/jobs"
	"github.com/vanguardtable/vanguard/src/models"
	"github.com/vanguardtable/vanguard/src/oops"
	"github.com/vanguardtable/vanguard/src/utils"
)

const SessionCookieName = "VanguardSession"

const sessionDuration = time.Hour * 24 * 14

func makeSessionId() string {
	idBytes := make([]byte, 40)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}

	return base64.StdEncoding.EncodeToString(idBytes)[:40]
}

var ErrNoSession = errors.New("no session found")

func GetSession(ctx context.Context, conn db.ConnOrTx, id string) (*models.Session, error) {
	sess, err := db.QueryOne[models.Session](ctx, conn,
		"SELECT * FROM sessions WHERE id = $1 AND expires_at > CURRENT_TIMESTAMP",
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		} else {
			return nil, oops.New(err, "failed to get session")
		}
	}

	return sess, nil
}

func CreateSession(ctx context.Context, conn db.ConnOrTx, userID uuid.UUID) (*models.Session, error) {
	session := models.Session{
		ID:        makeSessionId(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionDuration),
	}

	_, err := conn.Exec(ctx,
		"INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)",
		session.ID, session.UserID, session.ExpiresAt,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn db.ConnOrTx, id string) error {
	_, err := conn.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,

		Path:    "/",
		Domain:  config.Config.Auth.CookieDomain,
		Expires: session.ExpiresAt,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Path:   "/",
	Domain: config.Config.Auth.CookieDomain,
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn db.ConnOrTx) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn db.ConnOrTx) *jobs.Job {
	job := jobs.New("periodically delete expired sessions")
	go func() {
		defer job.Finish()

		// Tick immediately so stale sessions get purged on startup.
		t := utils.NewInstaTicker(1 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				n, err := DeleteExpiredSessions(job.Ctx, conn)
				if err == nil {
					if n > 0 {
						job.Logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
					}
				} else {
					job.Logger.Error().Err(err).Msg("Failed to delete expired sessions")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
