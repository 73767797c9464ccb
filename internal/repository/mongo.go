package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
)

const (
	usersCollection = "users"
	gigsCollection  = "gigs"
	bidsCollection  = "bids"
)

// MongoRepo is a Store backed by MongoDB. Hires use multi-document
// transactions, so the deployment must be a replica set.
type MongoRepo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &MongoRepo{client: client, db: client.Database(database)}, nil
}

func (r *MongoRepo) users() *mongo.Collection { return r.db.Collection(usersCollection) }
func (r *MongoRepo) gigs() *mongo.Collection  { return r.db.Collection(gigsCollection) }
func (r *MongoRepo) bids() *mongo.Collection  { return r.db.Collection(bidsCollection) }

// Migrate creates the indexes the queries rely on.
func (r *MongoRepo) Migrate(ctx context.Context) error {
	if _, err := r.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo: users index: %w", err)
	}
	if _, err := r.gigs().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo: gigs index: %w", err)
	}
	if _, err := r.bids().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "gig_id", Value: 1}, {Key: "status", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongo: bids index: %w", err)
	}
	return nil
}

// Wipe deletes every bid, gig and user.
func (r *MongoRepo) Wipe(ctx context.Context) error {
	for _, c := range []*mongo.Collection{r.bids(), r.gigs(), r.users()} {
		if _, err := c.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("mongo: wipe %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepo) CreateUser(ctx context.Context, user models.User) error {
	user.Email = strings.ToLower(user.Email)
	if _, err := r.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %s: %w", user.Email, gigerrors.ErrEmailTaken)
		}
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *MongoRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	return findOne[models.User](ctx, r.users(), bson.M{"_id": userID}, gigerrors.ErrUserNotFound, "get user "+userID)
}

func (r *MongoRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, r.users(), bson.M{"email": strings.ToLower(email)}, gigerrors.ErrUserNotFound, "get user by email "+email)
}

func (r *MongoRepo) CreateGig(ctx context.Context, gig models.Gig) error {
	if _, err := r.gigs().InsertOne(ctx, gig); err != nil {
		return fmt.Errorf("create gig %s: %w", gig.ID, err)
	}
	return nil
}

func (r *MongoRepo) GetGig(ctx context.Context, gigID string) (models.Gig, error) {
	return findOne[models.Gig](ctx, r.gigs(), bson.M{"_id": gigID}, gigerrors.ErrGigNotFound, "get gig "+gigID)
}

func (r *MongoRepo) ListOpenGigs(ctx context.Context, search string) ([]models.Gig, error) {
	filter := bson.M{"status": models.GigOpen}
	if needle := strings.TrimSpace(search); needle != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(needle), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[models.Gig](ctx, r.gigs(), filter, opts, "list open gigs")
}

// CreateBid touches the gig document inside the same transaction as the
// insert so that a concurrent hire conflicts with it instead of missing the new bid.
func (r *MongoRepo) CreateBid(ctx context.Context, bid models.Bid) error {
	return r.transact(ctx, func(sc mongo.SessionContext) error {
		gig, err := findOne[models.Gig](sc, r.gigs(), bson.M{"_id": bid.GigID}, gigerrors.ErrGigNotFound, "create bid on gig "+bid.GigID)
		if err != nil {
			return err
		}
		if gig.Status != models.GigOpen {
			return fmt.Errorf("create bid on gig %s: %w", gig.ID, gigerrors.ErrGigNotOpen)
		}
		if gig.OwnerID == bid.FreelancerID {
			return fmt.Errorf("create bid on gig %s: %w - bidder owns the gig", gig.ID, gigerrors.ErrForbidden)
		}

		res, err := r.gigs().UpdateOne(sc,
			bson.M{"_id": gig.ID, "status": models.GigOpen},
			bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
		if err != nil {
			return fmt.Errorf("create bid on gig %s: %w", gig.ID, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("create bid on gig %s: %w", gig.ID, gigerrors.ErrGigNotOpen)
		}

		if _, err := r.bids().InsertOne(sc, bid); err != nil {
			return fmt.Errorf("create bid %s: %w", bid.ID, err)
		}
		return nil
	})
}

func (r *MongoRepo) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	return findOne[models.Bid](ctx, r.bids(), bson.M{"_id": bidID}, gigerrors.ErrBidNotFound, "get bid "+bidID)
}

func (r *MongoRepo) GetBidsByGig(ctx context.Context, gigID string) ([]models.Bid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[models.Bid](ctx, r.bids(), bson.M{"gig_id": gigID}, opts, "get bids for gig "+gigID)
}

// WithinTx runs fn inside a multi-document transaction. The driver retries fn
// on transient transaction errors, so fn must only stage writes through tx.
func (r *MongoRepo) WithinTx(ctx context.Context, fn func(tx HireTx) error) error {
	return r.transact(ctx, func(sc mongo.SessionContext) error {
		return fn(&mongoTx{repo: r, sc: sc})
	})
}

func (r *MongoRepo) transact(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

type mongoTx struct {
	repo *MongoRepo
	sc   mongo.SessionContext
}

// The ctx arguments are ignored in favour of the session context, which
// carries the transaction.

func (t *mongoTx) GetGig(_ context.Context, gigID string) (models.Gig, error) {
	return findOne[models.Gig](t.sc, t.repo.gigs(), bson.M{"_id": gigID}, gigerrors.ErrGigNotFound, "get gig "+gigID)
}

func (t *mongoTx) GetBid(_ context.Context, bidID string) (models.Bid, error) {
	return findOne[models.Bid](t.sc, t.repo.bids(), bson.M{"_id": bidID}, gigerrors.ErrBidNotFound, "get bid "+bidID)
}

func (t *mongoTx) GetUser(_ context.Context, userID string) (models.User, error) {
	return findOne[models.User](t.sc, t.repo.users(), bson.M{"_id": userID}, gigerrors.ErrUserNotFound, "get user "+userID)
}

func (t *mongoTx) AssignGig(_ context.Context, gigID string) error {
	res, err := t.repo.gigs().UpdateOne(t.sc,
		bson.M{"_id": gigID, "status": models.GigOpen},
		bson.M{"$set": bson.M{"status": models.GigAssigned, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("assign gig %s: %w", gigID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("assign gig %s: %w", gigID, gigerrors.ErrGigNotOpen)
	}
	return nil
}

func (t *mongoTx) MarkBidHired(_ context.Context, bidID string) error {
	res, err := t.repo.bids().UpdateOne(t.sc,
		bson.M{"_id": bidID, "status": models.BidPending},
		bson.M{"$set": bson.M{"status": models.BidHired}})
	if err != nil {
		return fmt.Errorf("mark bid %s hired: %w", bidID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mark bid %s hired: %w", bidID, gigerrors.ErrBidNotPending)
	}
	return nil
}

func (t *mongoTx) RejectPendingBids(_ context.Context, gigID, exceptBidID string) (int64, error) {
	res, err := t.repo.bids().UpdateMany(t.sc,
		bson.M{"gig_id": gigID, "status": models.BidPending, "_id": bson.M{"$ne": exceptBidID}},
		bson.M{"$set": bson.M{"status": models.BidRejected}})
	if err != nil {
		return 0, fmt.Errorf("reject pending bids for gig %s: %w", gigID, err)
	}
	return res.ModifiedCount, nil
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M, sentinel error, op string) (T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return out, fmt.Errorf("%s: %w", op, sentinel)
		}
		return out, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func findMany[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions, op string) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
