package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/ulak/internal/client/models"
)

// AuthAPI is the authentication part of the backend contract.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	ForgotQuestion(ctx context.Context, email string) (string, error)
	ForgotReset(ctx context.Context, email, securityAnswer string) (string, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error
}

// TransferAPI is the transfer-session part of the backend contract. The
// backend owns every status transition; these calls only request them.
type TransferAPI interface {
	ListSessions(ctx context.Context, limit, offset int) ([]models.TransferSession, error)
	CreateSession(ctx context.Context, req models.CreateSessionRequest) (string, error)
	UploadFile(ctx context.Context, sessionID, fileName string, content io.Reader) error
	Accept(ctx context.Context, sessionID string) error
	Reject(ctx context.Context, sessionID string) error
	Cancel(ctx context.Context, sessionID string) error
	// Download returns the stored file content. The caller closes it.
	Download(ctx context.Context, sessionID string) (io.ReadCloser, error)
}

// Client is the complete backend surface used by the CLI.
type Client interface {
	AuthAPI
	TransferAPI
	Ping(ctx context.Context) error
	Close() error
}
