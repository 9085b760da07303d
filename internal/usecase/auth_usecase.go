package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
}

type MeOutput struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type AuthUsecase struct {
	cfg   config.Config
	users repository.UserRepository
}

func NewAuthUsecase(cfg config.Config, users repository.UserRepository) *AuthUsecase {
	return &AuthUsecase{
		cfg:   cfg,
		users: users,
	}
}

// 会員登録。username/emailどちらかが使用済みなら409ではなく400を返す
//（既存クライアントが400を期待しているため）。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	//username重複チェック
	existing, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	//email重複チェック
	existing, err = u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser, //初期はuser
		Status:       model.UserStatusActive,
	}

	//保存（unique制約違反はここでも競合扱い）
	if err := u.users.Create(ctx, user); err != nil {
		return NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	return nil
}

// ログイン。成功時はaccess_tokenを返す。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil || user == nil {
		//存在しないemailでも401（ユーザーの有無を漏らさない）
		return out, NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return out, NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	//access token発行
	accessToken, err := u.issueAccessToken(user)
	if err != nil {
		return out, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	out.AccessToken = accessToken
	return out, nil
}

// トークンの持ち主を確認して挨拶を返す
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (MeOutput, error) {
	var out MeOutput

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return out, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out.Message = fmt.Sprintf("Welcome %s!", user.Username)
	out.UserID = user.ID
	return out, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(u.cfg.JWTSecret))
}
