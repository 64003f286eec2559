package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dynoquery/models"
	"dynoquery/store"
	"dynoquery/utils"
	"dynoquery/utils/logger"
)

const (
	sessionKeyPrefix = "session#"
	groupKeyPrefix   = "session_group#"
	groupIDField     = "session_group_id"
)

type SessionRepository struct {
	db     RecordStore
	logger logger.Logger
}

func NewSessionRepository(db RecordStore, log logger.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: log,
	}
}

func (r *SessionRepository) CreateGroup(ctx context.Context, group *models.SessionGroup) (*models.SessionGroup, error) {
	if err := validateStruct(group); err != nil {
		return nil, err
	}
	if group.SessionGroupID == "" {
		group.SessionGroupID = utils.GenerateUUID()
	}

	payload, err := json.Marshal(group)
	if err != nil {
		return nil, err
	}
	if err := r.db.Insert(ctx, groupKeyPrefix+group.SessionGroupID, models.RecordTypeSessionGroup, payload, zeroTime); err != nil {
		r.logger.Errorf("Failed to create session group: %v", err)
		return nil, err
	}

	r.logger.Infof("Session group created: %s", group.SessionGroupID)
	return group, nil
}

func (r *SessionRepository) ListGroups(ctx context.Context, page, pageSize int, search string) (*models.Page[models.SessionGroup], error) {
	return listPage(ctx, r.db, r.logger, store.ListOptions{
		RecordType: models.RecordTypeSessionGroup,
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OrderBy:    models.OrderByNameAsc,
	}, decodeGroup)
}

func (r *SessionRepository) GetGroup(ctx context.Context, id string) (*models.SessionGroup, error) {
	rec, err := getTyped(ctx, r.db, groupKeyPrefix+id, models.RecordTypeSessionGroup)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionGroupNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeGroup(rec)
}

func (r *SessionRepository) RenameGroup(ctx context.Context, id, name string) error {
	if err := validate.Var(name, "required,max=128"); err != nil {
		return fmt.Errorf("%w: name %s", models.ErrInvalidValue, formatValidationErrors(err))
	}
	partial, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return err
	}
	return r.db.Update(ctx, groupKeyPrefix+id, partial, models.RecordTypeSessionGroup)
}

// DeleteGroup removes a group and every session that belongs to it. It returns the number
// of sessions removed.
func (r *SessionRepository) DeleteGroup(ctx context.Context, id string) (int64, error) {
	n, err := r.db.RemoveCascade(ctx, groupKeyPrefix+id, models.RecordTypeSession, groupIDField, id)
	if isNotFound(err) {
		return 0, fmt.Errorf("%w: %s", models.ErrSessionGroupNotFound, id)
	}
	if err != nil {
		r.logger.Errorf("Failed to delete session group %s: %v", id, err)
		return 0, err
	}
	r.logger.Infof("Session group deleted: %s (%d sessions)", id, n)
	return n, nil
}

// CreateSession stores a session. Its group must already exist.
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	if err := validateStruct(session); err != nil {
		return nil, err
	}
	if _, err := r.GetGroup(ctx, session.SessionGroupID); err != nil {
		return nil, err
	}
	if session.SessionID == "" {
		session.SessionID = utils.GenerateUUID()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	if err := r.db.Insert(ctx, sessionKeyPrefix+session.SessionID, models.RecordTypeSession, payload, zeroTime); err != nil {
		r.logger.Errorf("Failed to create session: %v", err)
		return nil, err
	}

	r.logger.Infof("Session created: %s", session.SessionID)
	return session, nil
}

func (r *SessionRepository) ListSessions(ctx context.Context, page, pageSize int, search string) (*models.Page[models.Session], error) {
	return listPage(ctx, r.db, r.logger, store.ListOptions{
		RecordType: models.RecordTypeSession,
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OrderBy:    models.OrderByNameAsc,
	}, decodeSession)
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	rec, err := getTyped(ctx, r.db, sessionKeyPrefix+id, models.RecordTypeSession)
	if err != nil {
		return nil, err
	}
	return decodeSession(rec)
}

// UpdateSession applies the non-nil fields of update. Moving a session requires the
// target group to exist.
func (r *SessionRepository) UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.Session, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	if update.SessionGroupID != nil {
		if _, err := r.GetGroup(ctx, *update.SessionGroupID); err != nil {
			return nil, err
		}
	}

	partial, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}
	if err := r.db.Update(ctx, sessionKeyPrefix+id, partial, models.RecordTypeSession); err != nil {
		r.logger.Errorf("Failed to update session %s: %v", id, err)
		return nil, err
	}
	return r.GetSession(ctx, id)
}

// DeleteSession removes one session; its group is left untouched
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := getTyped(ctx, r.db, sessionKeyPrefix+id, models.RecordTypeSession); err != nil {
		return err
	}
	if err := r.db.Remove(ctx, sessionKeyPrefix+id); err != nil {
		r.logger.Errorf("Failed to delete session %s: %v", id, err)
		return err
	}
	r.logger.Infof("Session deleted: %s", id)
	return nil
}

func decodeGroup(rec *models.StoreRecord) (*models.SessionGroup, error) {
	var group models.SessionGroup
	if err := json.Unmarshal(rec.Payload, &group); err != nil {
		return nil, fmt.Errorf("%w: session group %s: %v", models.ErrMalformedStoredPayload, rec.Key, err)
	}
	return &group, nil
}

func decodeSession(rec *models.StoreRecord) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal(rec.Payload, &session); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", models.ErrMalformedStoredPayload, rec.Key, err)
	}
	return &session, nil
}
