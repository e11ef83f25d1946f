package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

const accountCollection = "accounts"

// AccountRepository is the MongoDB-backed account store.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	Email         string             `bson:"email,omitempty"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	Active        bool               `bson:"active"`
	Verified      bool               `bson:"verified"`
	ParentAdminID string             `bson:"parent_admin_id,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

// Create inserts a new account. The unique indexes on username and email make
// this the authoritative duplicate check: a lost race surfaces here as a
// duplicate-key error and is mapped to the matching domain error.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		Username:      account.Username,
		Email:         account.Email,
		PasswordHash:  account.PasswordHash,
		Role:          string(account.Role),
		Active:        account.Active,
		Verified:      account.Verified,
		ParentAdminID: account.ParentAdminID,
		CreatedAt:     account.CreatedAt.Unix(),
		UpdatedAt:     account.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateError(err)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	out := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.ID = oid.Hex()
	}
	return &out, nil
}

// duplicateError inspects which unique index a duplicate-key error violated.
// Only the index name is matched: the raw message also embeds the duplicated
// key value, which must not sway the classification.
func duplicateError(err error) error {
	if strings.Contains(err.Error(), "uniq_email") {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return ma.toDomain(), nil
}

// List returns a page of accounts matching filter, newest first.
func (r *AccountRepository) List(ctx context.Context, filter ports.ListAccountsFilter) ([]*domain.Account, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.ParentAdminID != "" {
		query["parent_admin_id"] = filter.ParentAdminID
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := int64(filter.Limit)
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page-1) * limit).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Account
	for cur.Next(ctx) {
		var ma mongoAccount
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		out = append(out, ma.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *AccountRepository) ExistsByRole(ctx context.Context, role domain.Role) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(role)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateByID(ctx, id, bson.M{"password_hash": hash})
}

func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateByID(ctx, id, bson.M{"active": active})
}

func (r *AccountRepository) SetVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"verified": true})
}

func (r *AccountRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	set["updated_at"] = time.Now().UTC().Unix()
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (ma *mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:            ma.ID.Hex(),
		Username:      ma.Username,
		Email:         ma.Email,
		PasswordHash:  ma.PasswordHash,
		Role:          domain.Role(ma.Role),
		Active:        ma.Active,
		Verified:      ma.Verified,
		ParentAdminID: ma.ParentAdminID,
		CreatedAt:     unixToTime(ma.CreatedAt),
		UpdatedAt:     unixToTime(ma.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
