package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
)

// GormRepo is a Store backed by a relational database through GORM.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an open GORM handle.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// OpenGorm opens the database for driver and configures the connection pool.
func OpenGorm(driver, dsn string) (*GormRepo, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer at a time; concurrent hires queue on the connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return NewGormRepo(db), nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q (supported: sqlite, postgres, mysql)", driver)
	}
}

// Migrate creates or updates the users, gigs and bids tables.
func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Gig{}, &models.Bid{}); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// Wipe deletes every bid, gig and user.
func (r *GormRepo) Wipe(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Bid{}, &models.Gig{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("database: wipe: %w", err)
			}
		}
		return nil
	})
}

// Close releases the underlying connection pool.
func (r *GormRepo) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepo) CreateUser(ctx context.Context, user models.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("create user %s: %w", user.Email, err)
		}
		if existing > 0 {
			return fmt.Errorf("create user %s: %w", user.Email, gigerrors.ErrEmailTaken)
		}
		if err := tx.Create(&user).Error; err != nil {
			// the unique index still catches a concurrent registration
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create user %s: %w", user.Email, gigerrors.ErrEmailTaken)
			}
			return fmt.Errorf("create user %s: %w", user.Email, err)
		}
		return nil
	})
}

func (r *GormRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	return findUser(ctx, r.db, userID)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		return models.User{}, notFound(err, gigerrors.ErrUserNotFound, "get user by email "+email)
	}
	return user, nil
}

func (r *GormRepo) CreateGig(ctx context.Context, gig models.Gig) error {
	if err := r.db.WithContext(ctx).Create(&gig).Error; err != nil {
		return fmt.Errorf("create gig %s: %w", gig.ID, err)
	}
	return nil
}

func (r *GormRepo) GetGig(ctx context.Context, gigID string) (models.Gig, error) {
	return findGig(ctx, r.db, gigID)
}

func (r *GormRepo) ListOpenGigs(ctx context.Context, search string) ([]models.Gig, error) {
	query := r.db.WithContext(ctx).Where("status = ?", models.GigOpen)
	if needle := strings.ToLower(strings.TrimSpace(search)); needle != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!'", "%"+escapeLike(needle)+"%")
	}

	var gigs []models.Gig
	if err := query.Order("created_at desc").Find(&gigs).Error; err != nil {
		return nil, fmt.Errorf("list open gigs: %w", err)
	}
	return gigs, nil
}

func (r *GormRepo) CreateBid(ctx context.Context, bid models.Bid) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR SHARE makes a concurrent hire's gig update wait for this insert
		// (and vice versa); SQLite serialises writers on its own.
		var gig models.Gig
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&gig, "id = ?", bid.GigID).Error
		if err != nil {
			return notFound(err, gigerrors.ErrGigNotFound, "create bid on gig "+bid.GigID)
		}
		if gig.Status != models.GigOpen {
			return fmt.Errorf("create bid on gig %s: %w", gig.ID, gigerrors.ErrGigNotOpen)
		}
		if gig.OwnerID == bid.FreelancerID {
			return fmt.Errorf("create bid on gig %s: %w - bidder owns the gig", gig.ID, gigerrors.ErrForbidden)
		}
		if err := tx.Create(&bid).Error; err != nil {
			return fmt.Errorf("create bid %s: %w", bid.ID, err)
		}
		return nil
	})
}

func (r *GormRepo) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	return findBid(ctx, r.db, bidID)
}

func (r *GormRepo) GetBidsByGig(ctx context.Context, gigID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).Where("gig_id = ?", gigID).Order("created_at desc").Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("get bids for gig %s: %w", gigID, err)
	}
	return bids, nil
}

// WithinTx runs fn inside a database transaction.
func (r *GormRepo) WithinTx(ctx context.Context, fn func(tx HireTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) GetGig(ctx context.Context, gigID string) (models.Gig, error) {
	return findGig(ctx, t.db, gigID)
}

func (t *gormTx) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	return findBid(ctx, t.db, bidID)
}

func (t *gormTx) GetUser(ctx context.Context, userID string) (models.User, error) {
	return findUser(ctx, t.db, userID)
}

func (t *gormTx) AssignGig(ctx context.Context, gigID string) error {
	res := t.db.WithContext(ctx).Model(&models.Gig{}).
		Where("id = ? AND status = ?", gigID, models.GigOpen).
		Updates(map[string]interface{}{
			"status":     models.GigAssigned,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("assign gig %s: %w", gigID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("assign gig %s: %w", gigID, gigerrors.ErrGigNotOpen)
	}
	return nil
}

func (t *gormTx) MarkBidHired(ctx context.Context, bidID string) error {
	res := t.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, models.BidPending).
		Update("status", models.BidHired)
	if res.Error != nil {
		return fmt.Errorf("mark bid %s hired: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark bid %s hired: %w", bidID, gigerrors.ErrBidNotPending)
	}
	return nil
}

func (t *gormTx) RejectPendingBids(ctx context.Context, gigID, exceptBidID string) (int64, error) {
	res := t.db.WithContext(ctx).Model(&models.Bid{}).
		Where("gig_id = ? AND status = ? AND id <> ?", gigID, models.BidPending, exceptBidID).
		Update("status", models.BidRejected)
	if res.Error != nil {
		return 0, fmt.Errorf("reject pending bids for gig %s: %w", gigID, res.Error)
	}
	return res.RowsAffected, nil
}

func findUser(ctx context.Context, db *gorm.DB, userID string) (models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return models.User{}, notFound(err, gigerrors.ErrUserNotFound, "get user "+userID)
	}
	return user, nil
}

func findGig(ctx context.Context, db *gorm.DB, gigID string) (models.Gig, error) {
	var gig models.Gig
	if err := db.WithContext(ctx).First(&gig, "id = ?", gigID).Error; err != nil {
		return models.Gig{}, notFound(err, gigerrors.ErrGigNotFound, "get gig "+gigID)
	}
	return gig, nil
}

func findBid(ctx context.Context, db *gorm.DB, bidID string) (models.Bid, error) {
	var bid models.Bid
	if err := db.WithContext(ctx).First(&bid, "id = ?", bidID).Error; err != nil {
		return models.Bid{}, notFound(err, gigerrors.ErrBidNotFound, "get bid "+bidID)
	}
	return bid, nil
}

// notFound maps gorm.ErrRecordNotFound onto the given sentinel.
func notFound(err, sentinel error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, sentinel)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
