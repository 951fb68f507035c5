package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// MailCodeLength is the number of digits of a mail code. Digits range from 1 to 9.
const MailCodeLength = 4

// MailCodeService issues and consumes mail verification codes.
// A code is unique among the codes currently stored; consumed codes are removed and may be issued again.
type MailCodeService struct {
	mailCodes   ports.MailCodeRepository
	users       ports.UserRepository
	maxAttempts int
	codeFunc    func() (string, error)
}

// GenerateUniqueMailCode returns a code no stored mail code currently uses.
// It gives up with model.ErrCodeSpaceExhausted after the configured number of candidates.
func (s *MailCodeService) GenerateUniqueMailCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := s.codeFunc()
		if err != nil {
			return "", fmt.Errorf("error generating mail code: %w", err)
		}
		exists, err := s.mailCodes.MailCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("error checking mail code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
		log.WithField("attempt", attempt).Debug("mail code collision, regenerating")
	}
	return "", fmt.Errorf("%w after %d attempts", model.ErrCodeSpaceExhausted, s.maxAttempts)
}

// CreateMailCode stores a new mail code, generating the code when args.Code is empty.
// When bound to a user, the user must exist.
func (s *MailCodeService) CreateMailCode(ctx context.Context, args model.CreateMailCodeArgs) (*model.MailCode, error) {
	toMail := strings.TrimSpace(args.ToMail)
	if toMail == "" {
		return nil, fmt.Errorf("%w: to_mail is required", model.ErrValidation)
	}
	if args.Type == "" {
		return nil, fmt.Errorf("%w: mail code type is required", model.ErrValidation)
	}
	if args.Code != "" && !validMailCode(args.Code) {
		return nil, fmt.Errorf("%w: mail code must be %d digits from 1 to 9", model.ErrValidation, MailCodeLength)
	}

	var toUser *model.User
	if args.ToUserID != nil {
		var err error
		toUser, err = resolveUser(ctx, s.users, *args.ToUserID)
		if err != nil {
			return nil, err
		}
	}

	mailCode := &model.MailCode{
		ToMail:   toMail,
		Code:     args.Code,
		Type:     args.Type,
		ToUserID: args.ToUserID,
	}
	if mailCode.Code != "" {
		if err := s.mailCodes.InsertMailCode(ctx, mailCode); err != nil {
			return nil, fmt.Errorf("error saving mail code in repository: %w", err)
		}
		mailCode.ToUser = toUser
		return mailCode, nil
	}

	// another writer may take the generated code between the check and the insert;
	// the unique index rejects it and a new candidate is drawn.
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.GenerateUniqueMailCode(ctx)
		if err != nil {
			return nil, err
		}
		mailCode.Code = code
		err = s.mailCodes.InsertMailCode(ctx, mailCode)
		if err == nil {
			mailCode.ToUser = toUser
			return mailCode, nil
		}
		if !errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("error saving mail code in repository: %w", err)
		}
		log.WithField("attempt", attempt).Debug("mail code taken concurrently, regenerating")
	}
	return nil, fmt.Errorf("%w after %d inserts", model.ErrCodeSpaceExhausted, s.maxAttempts)
}

// ListMailCodes lists the mail codes matching the query, newest first.
func (s *MailCodeService) ListMailCodes(ctx context.Context, query ports.MailCodeQuery) ([]model.MailCode, error) {
	codes, err := s.mailCodes.ListMailCodes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing mail codes: %w", err)
	}
	return codes, nil
}

// RemoveMailCodes removes the mail codes matching the query. The query must set at least one field.
func (s *MailCodeService) RemoveMailCodes(ctx context.Context, query ports.MailCodeQuery) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, err
	}
	removed, err := s.mailCodes.RemoveMailCodes(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("error removing mail codes: %w", err)
	}
	return removed, nil
}

func validMailCode(code string) bool {
	if len(code) != MailCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '1' || code[i] > '9' {
			return false
		}
	}
	return true
}

func generateMailCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < MailCodeLength; i++ {
		d, err := randomInt(1, 9)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d))
	}
	return sb.String(), nil
}
