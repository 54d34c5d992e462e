package transfers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/ulak/internal/client/client"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/common"
	"github.com/dmitrijs2005/ulak/internal/filex"
	"github.com/dmitrijs2005/ulak/internal/logging"
	"github.com/google/uuid"
)

// DefaultListLimit is the page size used when none is configured.
const DefaultListLimit = 200

var checksumRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Sink receives downloaded content. Save returns where the content ended up.
type Sink interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// SendRequest describes a send: one recipient and one or more local files.
type SendRequest struct {
	ReceiverIP     string
	ReceiverUserID string
	Paths          []string
}

// Service issues transfer state transitions and holds the last fetched list.
//
// Calls are not deduplicated: two concurrent Accepts for one session both
// reach the backend. Overlapping refreshes are not coalesced either; the
// list of whichever response is applied last is kept.
type Service struct {
	api   client.TransferAPI
	log   logging.Logger
	limit int

	mu    sync.RWMutex
	items []models.TransferSession
}

func NewService(api client.TransferAPI, log logging.Logger, limit int) *Service {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return &Service{api: api, log: log, limit: limit}
}

// Refresh replaces the held list with the backend's. On failure the held
// list is kept.
func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.api.ListSessions(ctx, s.limit, 0)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if items == nil {
		items = []models.TransferSession{}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.log.Debug(ctx, "transfer list refreshed", "count", len(items))
	return nil
}

// Items returns a copy of the held list.
func (s *Service) Items() []models.TransferSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// View derives the screens' data from the held list.
func (s *Service) View(userID string) View {
	return Compute(s.Items(), userID)
}

// Find returns the held session with the given id.
func (s *Service) Find(id string) (models.TransferSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return models.TransferSession{}, false
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func validateRecipient(ip, userID string) error {
	if ip == "" && userID == "" {
		return validationErr("receiver ip or user id is required")
	}
	if userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			return validationErr("receiver user id %q is not a valid id", userID)
		}
	}
	if ip != "" {
		if _, err := netip.ParseAddr(ip); err != nil {
			return validationErr("receiver ip %q is not a valid address", ip)
		}
	}
	return nil
}

// CreateSession registers a transfer with the backend and returns its id.
// The request is refused locally, without a backend call, when it names no
// recipient or its checksum is not a lowercase hex SHA-256 digest.
func (s *Service) CreateSession(ctx context.Context, req models.CreateSessionRequest) (string, error) {
	var ip, uid string
	if req.ReceiverIP != nil {
		ip = strings.TrimSpace(*req.ReceiverIP)
	}
	if req.ReceiverUserID != nil {
		uid = strings.TrimSpace(*req.ReceiverUserID)
	}
	if ip == "" && uid == "" {
		return "", validationErr("receiver ip or user id is required")
	}
	if !checksumRe.MatchString(req.ChecksumSHA256) {
		return "", validationErr("checksum must be 64 lowercase hex characters")
	}
	if req.FileName == "" {
		return "", validationErr("file name is required")
	}
	if req.FileSize < 0 {
		return "", validationErr("file size must not be negative")
	}

	req.ReceiverIP = models.OptionalString(ip)
	req.ReceiverUserID = models.OptionalString(uid)

	id, err := s.api.CreateSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.log.Info(ctx, "transfer session created", "session_id", id, "file", req.FileName)
	return id, nil
}

// UploadFile attaches content to a session created by CreateSession.
func (s *Service) UploadFile(ctx context.Context, sessionID, fileName string, content io.Reader) error {
	if err := s.api.UploadFile(ctx, sessionID, fileName, content); err != nil {
		return fmt.Errorf("upload %s: %w", fileName, err)
	}
	s.log.Info(ctx, "file uploaded", "session_id", sessionID, "file", fileName)
	return nil
}

// Send validates the recipient and every file, then for each file in order
// computes its checksum, creates a session and uploads the content. It stops
// at the first failure and returns the ids of the sessions created so far.
// Once validation has passed the list is refreshed whatever the outcome.
func (s *Service) Send(ctx context.Context, req SendRequest) ([]string, error) {
	ip := strings.TrimSpace(req.ReceiverIP)
	uid := strings.TrimSpace(req.ReceiverUserID)
	if err := validateRecipient(ip, uid); err != nil {
		return nil, err
	}
	if len(req.Paths) == 0 {
		return nil, validationErr("at least one file is required")
	}
	for _, p := range req.Paths {
		if _, err := filex.StatRegular(p); err != nil {
			return nil, validationErr("file %s: %v", p, err)
		}
	}

	ids := make([]string, 0, len(req.Paths))
	sendErr := func() error {
		for _, p := range req.Paths {
			id, err := s.sendFile(ctx, ip, uid, p)
			if id != "" {
				ids = append(ids, id)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}()

	return ids, errors.Join(sendErr, s.Refresh(ctx))
}

func (s *Service) sendFile(ctx context.Context, ip, uid, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, size, err := filex.SHA256(f)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", path, err)
	}

	name := filepath.Base(path)
	id, err := s.CreateSession(ctx, models.CreateSessionRequest{
		ReceiverIP:     models.OptionalString(ip),
		ReceiverUserID: models.OptionalString(uid),
		FileName:       name,
		FileSize:       size,
		FileType:       models.OptionalString(mime.TypeByExtension(filepath.Ext(name))),
		ChecksumSHA256: sum,
	})
	if err != nil {
		return "", err
	}

	// The bytes sent must be the ones the checksum was computed over.
	return id, s.UploadFile(ctx, id, name, filex.NewVerifyingReader(f, sum, size))
}

type transition struct {
	verb string
	call func(ctx context.Context, id string) error
}

func (s *Service) transition(ctx context.Context, tr transition, id string) error {
	err := tr.call(ctx, id)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", tr.verb, id, err)
		s.log.Warn(ctx, "transition failed", "action", tr.verb, "session_id", id, "error", err)
	} else {
		s.log.Info(ctx, "transition done", "action", tr.verb, "session_id", id)
	}
	return errors.Join(err, s.Refresh(ctx))
}

// Accept asks the backend to accept a pending session. The list is
// re-fetched whatever the outcome.
func (s *Service) Accept(ctx context.Context, id string) error {
	return s.transition(ctx, transition{"accept", s.api.Accept}, id)
}

// Reject asks the backend to reject a pending session. The list is
// re-fetched whatever the outcome.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.transition(ctx, transition{"reject", s.api.Reject}, id)
}

// Cancel withdraws a session the caller sent. The list is re-fetched
// whatever the outcome.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, transition{"cancel", s.api.Cancel}, id)
}

// Download streams the content of a session into sink as fileName. An empty
// fileName takes the name from the held list. The list is re-fetched
// afterwards, since the backend may complete the session.
func (s *Service) Download(ctx context.Context, id, fileName string, sink Sink) (string, error) {
	if fileName == "" {
		t, ok := s.Find(id)
		if !ok {
			return "", validationErr("unknown session %s", id)
		}
		fileName = t.FileName
	}
	name, err := filex.BaseName(fileName)
	if err != nil {
		return "", validationErr("%v", err)
	}

	location, err := s.download(ctx, id, name, sink)
	if err != nil {
		s.log.Warn(ctx, "download failed", "session_id", id, "error", err)
	} else {
		s.log.Info(ctx, "file downloaded", "session_id", id, "location", location)
	}
	return location, errors.Join(err, s.Refresh(ctx))
}

func (s *Service) download(ctx context.Context, id, name string, sink Sink) (string, error) {
	rc, err := s.api.Download(ctx, id)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	defer rc.Close()

	location, err := sink.Save(ctx, name, rc)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return location, nil
}
