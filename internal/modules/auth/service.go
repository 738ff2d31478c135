package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultTokenTTL = 24 * time.Hour

type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
	}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// Register creates an active operator. Username and email are unique.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Operator, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return Operator{}, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&Operator{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error; err != nil {
		return Operator{}, err
	}
	if n > 0 {
		return Operator{}, ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Operator{}, err
	}

	now := s.now().UTC()
	op := Operator{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hash),
		IsAdmin:        in.IsAdmin,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&op).Error; err != nil {
		// lost a race with a concurrent register
		if isDup(err) {
			return Operator{}, ErrDuplicate
		}
		return Operator{}, err
	}

	s.logger.InfoContext(ctx, "operator registered", "operator_id", op.ID, "username", op.Username)
	return op, nil
}

type Session struct {
	AccessToken string
	Operator    Operator
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	var op Operator
	err := s.db.WithContext(ctx).First(&op, "username = ?", strings.TrimSpace(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(op.HashedPassword), []byte(password)) != nil {
		s.logger.WarnContext(ctx, "login failed", "username", op.Username)
		return Session{}, ErrInvalidCredentials
	}
	if !op.IsActive {
		return Session{}, ErrInactive
	}

	token, err := s.IssueToken(op.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: token, Operator: op}, nil
}

// IssueToken signs an HS256 token whose subject is the operator id.
func (s *Service) IssueToken(operatorID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   operatorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate resolves a bearer token to an active operator.
func (s *Service) Authenticate(ctx context.Context, token string) (Operator, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return Operator{}, ErrUnauthorized
	}

	op, err := s.Get(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return Operator{}, ErrUnauthorized
	}
	if err != nil {
		return Operator{}, err
	}
	if !op.IsActive {
		return Operator{}, ErrUnauthorized
	}
	return op, nil
}

func (s *Service) Get(ctx context.Context, id string) (Operator, error) {
	var op Operator
	if err := s.db.WithContext(ctx).First(&op, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Operator{}, ErrNotFound
		}
		return Operator{}, err
	}
	return op, nil
}

// SetActive enables or disables an operator by username. Disabled operators
// keep their history but can no longer log in or use issued tokens.
func (s *Service) SetActive(ctx context.Context, username string, active bool) error {
	res := s.db.WithContext(ctx).Model(&Operator{}).
		Where("username = ?", username).
		Updates(map[string]any{"is_active": active, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "operator active flag changed", "username", username, "active", active)
	return nil
}

func isDup(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
