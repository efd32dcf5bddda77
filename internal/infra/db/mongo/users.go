package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "vidaview/internal/domain/auth"
	domainuser "vidaview/internal/domain/user"
)

// UserRepository keeps accounts with a unique index on the normalised email.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(colUsers)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domainuser.ErrNotFound)
	}
	return doc.toUser(), nil
}

func (r *UserRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil || user.ID == "" {
		return domainuser.ErrIDRequired
	}
	doc := newUserDocument(user)
	if doc.Email == "" {
		return domainuser.ErrEmailRequired
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

// CountByRole tallies active users per role.
func (r *UserRepository) CountByRole(ctx context.Context) (map[domainuser.Role]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Role  string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[domainuser.Role]int, len(rows))
	for _, row := range rows {
		counts[domainuser.Role(row.Role)] = row.Count
	}
	return counts, nil
}

type userDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	Name         string `bson:"name"`
	Phone        string `bson:"phone,omitempty"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	Active       bool   `bson:"active"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:           string(u.ID),
		Email:        domainuser.NormalizeEmail(u.Email),
		Name:         u.Name,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		CreatedAt:    timeToTimestamp(u.CreatedAt),
		UpdatedAt:    timeToTimestamp(u.UpdatedAt),
	}
}

func (d userDocument) toUser() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Role:         domainuser.Role(d.Role),
		Active:       d.Active,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

// SessionStore keeps sessions keyed by token digest; a TTL index on
// expires_at reaps them.
type SessionStore struct {
	col   *mongo.Collection
	clock func() time.Time
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{col: db.Collection(colSessions), clock: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.ID == "" {
		return domainauth.ErrTokenRequired
	}
	doc := sessionDocument{
		ID:        string(session.ID),
		UserID:    string(session.UserID),
		IssuedAt:  session.IssuedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Get treats an expired session as missing; the TTL monitor runs about once a minute.
func (s *SessionStore) Get(ctx context.Context, id domainauth.Digest) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainauth.ErrSessionNotFound)
	}
	session := &domainauth.Session{
		ID:        domainauth.Digest(doc.ID),
		UserID:    domainuser.ID(doc.UserID),
		IssuedAt:  doc.IssuedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}
	if session.Expired(s.clock()) {
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id domainauth.Digest) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (s *SessionStore) RevokeUser(ctx context.Context, userID domainuser.ID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"user_id": string(userID)})
	return err
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

var (
	_ domainuser.Repository   = (*UserRepository)(nil)
	_ domainauth.SessionStore = (*SessionStore)(nil)
)
